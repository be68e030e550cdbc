// Package catalogs provides the core catalog system for course templates
// and scheduled course events extracted from source documents.
//
// The catalog is the sole owner of both record sets. Pipeline stages
// (segmentation, alias resolution, merging) operate on borrowed views and
// never retain state across records. There is exactly one writer, so no
// transaction discipline is required; the catalog is still safe for
// concurrent reads.
//
// Example usage:
//
//	// Memory catalog (tests, fresh extraction runs)
//	cat := catalogs.New()
//
//	// File-backed catalog (loads existing JSON files if present)
//	cat, err := catalogs.NewFromPath("./data")
//	if err != nil {
//	    log.Fatal(err)
//	}
package catalogs

import (
	"os"

	"github.com/hvkurs/kursmap/pkg/constants"
	"github.com/hvkurs/kursmap/pkg/errors"
)

// Reader provides read-only access to catalog data.
type Reader interface {
	// Collections of templates and events
	Templates() *Templates
	Events() *Events

	// Gets a template or event by id
	Template(id string) (*Template, error)
	Event(id string) (*Event, error)
}

// Writer provides write operations for catalog data.
type Writer interface {
	// Sets a template or event (upsert semantics)
	SetTemplate(template *Template) error
	SetEvent(event *Event) error
}

// Persistence provides load/save against the configured directory.
type Persistence interface {
	Load() error
	Save() error
}

// Catalog is the complete interface combining all catalog capabilities.
type Catalog interface {
	Reader
	Writer
	Persistence
}

// Compile-time interface checks.
var (
	_ Catalog     = (*catalog)(nil)
	_ Reader      = (*catalog)(nil)
	_ Writer      = (*catalog)(nil)
	_ Persistence = (*catalog)(nil)
)

// catalog is the single concrete implementation of the Catalog interface.
// With no path configured it is a pure memory catalog; Load and Save
// become no-ops and errors respectively.
type catalog struct {
	options   *catalogOptions
	templates *Templates
	events    *Events
}

// Option configures a catalog.
type Option func(*catalogOptions)

type catalogOptions struct {
	path          string
	templatesFile string
	eventsFile    string
}

// WithPath configures the directory holding the catalog JSON files.
func WithPath(path string) Option {
	return func(o *catalogOptions) {
		o.path = path
	}
}

// WithTemplatesFile overrides the template catalog file name.
func WithTemplatesFile(name string) Option {
	return func(o *catalogOptions) {
		o.templatesFile = name
	}
}

// WithEventsFile overrides the event catalog file name.
func WithEventsFile(name string) Option {
	return func(o *catalogOptions) {
		o.eventsFile = name
	}
}

func catalogDefaults() *catalogOptions {
	return &catalogOptions{
		templatesFile: constants.TemplatesFile,
		eventsFile:    constants.EventsFile,
	}
}

// New creates a new catalog with the given options.
func New(opts ...Option) Catalog {
	options := catalogDefaults()
	for _, opt := range opts {
		opt(options)
	}
	return &catalog{
		options:   options,
		templates: NewTemplates(),
		events:    NewEvents(),
	}
}

// NewFromPath creates a catalog backed by JSON files on disk and loads
// whatever files already exist there. Missing files are not an error:
// a fresh run starts from an empty catalog.
func NewFromPath(path string) (Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.WrapIO("stat", path, err)
	}
	cat := New(WithPath(path))
	if err := cat.Load(); err != nil {
		return nil, errors.WrapResource("load", "catalog", path, err)
	}
	return cat, nil
}

// Templates returns the template collection.
func (cat *catalog) Templates() *Templates {
	return cat.templates
}

// Events returns the event collection.
func (cat *catalog) Events() *Events {
	return cat.events
}

// Template returns a template by id.
func (cat *catalog) Template(id string) (*Template, error) {
	t, ok := cat.templates.Get(id)
	if !ok {
		return nil, errors.NewNotFoundError("template", id)
	}
	return t, nil
}

// Event returns an event by id.
func (cat *catalog) Event(id string) (*Event, error) {
	e, ok := cat.events.Get(id)
	if !ok {
		return nil, errors.NewNotFoundError("event", id)
	}
	return e, nil
}

// SetTemplate sets a template (upsert semantics).
func (cat *catalog) SetTemplate(template *Template) error {
	if template == nil {
		return errors.NewValidationError("template", nil, "template cannot be nil")
	}
	if template.ID == "" {
		return errors.NewValidationError("id", "", "template id cannot be empty")
	}
	return cat.templates.Set(template)
}

// SetEvent sets an event (upsert semantics).
func (cat *catalog) SetEvent(event *Event) error {
	if event == nil {
		return errors.NewValidationError("event", nil, "event cannot be nil")
	}
	if event.ID == "" {
		return errors.NewValidationError("id", "", "event id cannot be empty")
	}
	return cat.events.Set(event)
}
