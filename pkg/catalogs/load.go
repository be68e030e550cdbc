package catalogs

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/hvkurs/kursmap/pkg/errors"
)

// templatesFile is the on-disk shape of the template catalog.
type templatesFile struct {
	Templates []*Template `json:"templates"`
}

// eventsFile is the on-disk shape of the event catalog.
type eventsFile struct {
	Events []*Event `json:"events"`
}

// Load loads the catalog from the configured directory. A missing file
// is not an error; a fresh run starts from an empty catalog.
func (cat *catalog) Load() error {
	if cat.options.path == "" {
		return nil // Memory catalog - nothing to load
	}

	if err := cat.loadTemplates(); err != nil {
		return err
	}
	return cat.loadEvents()
}

func (cat *catalog) loadTemplates() error {
	path := filepath.Join(cat.options.path, cat.options.templatesFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WrapIO("read", path, err)
	}

	var file templatesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return errors.WrapParse("json", path, err)
	}

	for _, t := range file.Templates {
		if err := cat.templates.Set(t); err != nil {
			return errors.WrapResource("load", "template", t.ID, err)
		}
	}
	return nil
}

func (cat *catalog) loadEvents() error {
	path := filepath.Join(cat.options.path, cat.options.eventsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WrapIO("read", path, err)
	}

	var file eventsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return errors.WrapParse("json", path, err)
	}

	for _, e := range file.Events {
		if err := cat.events.Set(e); err != nil {
			return errors.WrapResource("load", "event", e.ID, err)
		}
	}
	return nil
}
