// Package sources loads course catalog source documents from disk.
//
// Documents are pre-extracted plain text, one file per source catalog.
// The file name (without directory) is the document identifier recorded
// in sourceFiles provenance on every record it contributes to.
package sources

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hvkurs/kursmap/pkg/errors"
)

// Document is one source catalog: an opaque identifier plus its full text.
type Document struct {
	Name string
	Text string
}

// LoadFile reads a single document.
func LoadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, errors.WrapIO("read", path, err)
	}
	return Document{
		Name: filepath.Base(path),
		Text: string(data),
	}, nil
}

// LoadDirectory reads every .txt document in a directory, sorted by
// name so repeated runs process documents in a stable order.
func LoadDirectory(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapIO("read", dir, err)
	}

	var documents []Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".txt") {
			continue
		}
		doc, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		documents = append(documents, doc)
	}

	sort.Slice(documents, func(i, j int) bool {
		return documents[i].Name < documents[j].Name
	})
	return documents, nil
}
