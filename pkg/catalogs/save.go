package catalogs

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/hvkurs/kursmap/pkg/constants"
	"github.com/hvkurs/kursmap/pkg/errors"
)

// Save writes both catalog files to the configured directory. The
// pipeline calls this after each successfully processed record so a
// crash mid-run loses at most the in-flight record.
func (cat *catalog) Save() error {
	if cat.options.path == "" {
		return &errors.ConfigError{
			Component: "catalog",
			Message:   "no path configured for saving",
		}
	}

	if err := os.MkdirAll(cat.options.path, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", cat.options.path, err)
	}

	if err := cat.saveTemplates(); err != nil {
		return err
	}
	return cat.saveEvents()
}

func (cat *catalog) saveTemplates() error {
	path := filepath.Join(cat.options.path, cat.options.templatesFile)
	data, err := json.MarshalIndent(templatesFile{Templates: cat.templates.List()}, "", "  ")
	if err != nil {
		return errors.WrapParse("json", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

func (cat *catalog) saveEvents() error {
	path := filepath.Join(cat.options.path, cat.options.eventsFile)
	data, err := json.MarshalIndent(eventsFile{Events: cat.events.List()}, "", "  ")
	if err != nil {
		return errors.WrapParse("json", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
