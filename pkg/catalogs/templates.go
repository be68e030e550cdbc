package catalogs

import (
	"fmt"
	"strings"
	"sync"
)

// Templates is a concurrent safe, insertion-ordered collection of
// course templates. Order is preserved so catalog files stay stable
// across repeated runs.
type Templates struct {
	mu        sync.RWMutex
	order     []string
	templates map[string]*Template
}

// NewTemplates creates a new Templates collection.
func NewTemplates() *Templates {
	return &Templates{
		templates: make(map[string]*Template),
	}
}

// Get returns a template by id and whether it exists.
func (t *Templates) Get(id string) (*Template, bool) {
	t.mu.RLock()
	template, ok := t.templates[id]
	t.mu.RUnlock()
	return template, ok
}

// Set sets a template by id (upsert semantics).
func (t *Templates) Set(template *Template) error {
	if template == nil {
		return fmt.Errorf("template cannot be nil")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.templates[template.ID]; !exists {
		t.order = append(t.order, template.ID)
	}
	t.templates[template.ID] = template
	return nil
}

// Add adds a template, returning an error if the id already exists.
// Template ids are immutable and unique across the catalog.
func (t *Templates) Add(template *Template) error {
	if template == nil {
		return fmt.Errorf("template cannot be nil")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.templates[template.ID]; exists {
		return fmt.Errorf("template with ID %s already exists", template.ID)
	}

	t.order = append(t.order, template.ID)
	t.templates[template.ID] = template
	return nil
}

// Exists checks if a template exists without returning it.
func (t *Templates) Exists(id string) bool {
	t.mu.RLock()
	_, ok := t.templates[id]
	t.mu.RUnlock()
	return ok
}

// List returns all templates in insertion order.
func (t *Templates) List() []*Template {
	t.mu.RLock()
	defer t.mu.RUnlock()

	list := make([]*Template, 0, len(t.order))
	for _, id := range t.order {
		list = append(list, t.templates[id])
	}
	return list
}

// Len returns the number of templates.
func (t *Templates) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.templates)
}

// FindByName resolves a template by id, case-folded name, or
// case-folded short name, in that order.
func (t *Templates) FindByName(name string) (*Template, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if template, ok := t.templates[name]; ok {
		return template, true
	}

	folded := strings.ToLower(strings.TrimSpace(name))
	for _, id := range t.order {
		template := t.templates[id]
		if strings.ToLower(template.Name) == folded {
			return template, true
		}
	}
	for _, id := range t.order {
		template := t.templates[id]
		if template.ShortName != "" && strings.ToLower(template.ShortName) == folded {
			return template, true
		}
	}
	return nil, false
}

// FindByCourseCode resolves a template by its administrative course
// code, compared case-insensitively.
func (t *Templates) FindByCourseCode(code string) (*Template, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	upper := strings.ToUpper(strings.TrimSpace(code))
	if upper == "" {
		return nil, false
	}
	for _, id := range t.order {
		template := t.templates[id]
		if template.CourseCode != "" && strings.ToUpper(template.CourseCode) == upper {
			return template, true
		}
	}
	return nil, false
}
