// Package importer ingests scheduled course events from tab-separated
// exports of the administrative planning sheet.
//
// Imports are strict: an unrecognized column header or a malformed date
// list makes the remaining columns ambiguous, so the whole import
// aborts instead of guessing. Rows referencing an unknown course code
// get an automatically created minimal template so the event is never
// orphaned.
package importer

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/hvkurs/kursmap/pkg/catalogs"
	"github.com/hvkurs/kursmap/pkg/constants"
	"github.com/hvkurs/kursmap/pkg/errors"
	"github.com/hvkurs/kursmap/pkg/identity"
	"github.com/hvkurs/kursmap/pkg/logging"
)

// Column identifiers for the planning-sheet export.
const (
	colCourseCode  = "courseCode"
	colName        = "name"
	colStart       = "start"
	colEnd         = "end"
	colLocation    = "location"
	colResponsible = "eventResponsible"
	colSpots       = "spots"
	colDeadline    = "applicationDeadline"
	colNotes       = "notes"
	colCategory    = "category"
)

// headerMap maps the sheet's Swedish column headers, compared
// case-insensitively, to column identifiers.
var headerMap = map[string]string{
	"kurskod":             colCourseCode,
	"kursbenämning":       colName,
	"start":               colStart,
	"slut":                colEnd,
	"ort":                 colLocation,
	"ansvarig":            colResponsible,
	"platser":             colSpots,
	"sista ansökan":       colDeadline,
	"sista ansökningsdag": colDeadline,
	"kommentar":           colNotes,
	"övrigt":              colNotes,
	"kategori":            colCategory,
}

// autoTemplateInfo marks templates created as a side effect of an
// import rather than extracted from a catalog document.
const autoTemplateInfo = "Automatiskt skapad från kurstillfälle"

// Importer imports planning-sheet events into a catalog.
type Importer struct {
	catalog catalogs.Catalog
	logger  *zerolog.Logger
	now     func() time.Time
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the import logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(i *Importer) { i.logger = logger }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(i *Importer) { i.now = now }
}

// New creates an Importer writing into the given catalog.
func New(catalog catalogs.Catalog, opts ...Option) *Importer {
	i := &Importer{
		catalog: catalog,
		logger:  logging.Default(),
		now:     func() time.Time { return utc.Now().Time },
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Stats summarizes one import run.
type Stats struct {
	Rows          int
	NewEvents     int
	Duplicates    int
	AutoTemplates int
}

// File imports a TSV file from disk.
func (i *Importer) File(path string) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, errors.WrapIO("open", path, err)
	}
	defer f.Close()
	return i.Read(f, filepath.Base(path))
}

// Read imports TSV rows from a reader. The name is recorded as
// sourceFiles provenance on every record the import touches.
func (i *Importer) Read(r io.Reader, name string) (Stats, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return Stats{}, errors.WrapParse("tsv", name, err)
	}
	columns, err := resolveHeader(header, name)
	if err != nil {
		return Stats{}, err
	}

	registry := identity.RegistryFromCatalog(i.catalog.Events())
	stats := Stats{}

	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, errors.WrapParse("tsv", name, err)
		}
		if isBlank(record) {
			continue
		}
		stats.Rows++

		if err := i.importRow(columns, record, row, name, registry, &stats); err != nil {
			return stats, err
		}
	}

	if err := i.catalog.Save(); err != nil {
		return stats, err
	}
	return stats, nil
}

// resolveHeader maps header cells to column identifiers. An
// unrecognized header is fatal: once one column is misidentified, every
// value to its right is suspect.
func resolveHeader(header []string, name string) ([]string, error) {
	columns := make([]string, len(header))
	for idx, cell := range header {
		key := strings.ToLower(strings.TrimSpace(cell))
		if key == "" {
			continue
		}
		column, ok := headerMap[key]
		if !ok {
			return nil, &errors.ImportError{
				File:    name,
				Column:  cell,
				Message: "unrecognized column header",
			}
		}
		columns[idx] = column
	}
	return columns, nil
}

func (i *Importer) importRow(columns, record []string, row int, name string, registry *identity.Registry, stats *Stats) error {
	fields := make(map[string]string)
	for idx, column := range columns {
		if column == "" || idx >= len(record) {
			continue
		}
		value := strings.TrimSpace(record[idx])
		if value == "" {
			continue
		}
		if existing, ok := fields[column]; ok {
			// Two note-like columns can land in the same field.
			fields[column] = existing + " " + value
		} else {
			fields[column] = value
		}
	}

	dates, err := parseDates(fields[colStart], fields[colEnd], row, name)
	if err != nil {
		return err
	}

	template, err := i.resolveTemplate(fields, name, stats)
	if err != nil {
		return err
	}

	event := &catalogs.Event{
		TemplateID:          template.ID,
		CourseDates:         dates,
		Location:            fields[colLocation],
		EventResponsible:    fields[colResponsible],
		ApplicationDeadline: fields[colDeadline],
		Notes:               fields[colNotes],
		Status:              catalogs.EventStatusOpen,
		SourceFiles:         []string{name},
	}
	if raw, ok := fields[colSpots]; ok {
		if spots, err := strconv.Atoi(raw); err == nil {
			event.Spots = &spots
		}
	}
	event.NormalizeDates()

	if existing, found := registry.Lookup(identity.Compute(event)); found {
		existing.AddSourceFile(name)
		stats.Duplicates++
		return nil
	}

	registry.Assign(event)
	event.LastModified = i.now().Format(constants.TimestampLayout)
	if err := i.catalog.SetEvent(event); err != nil {
		return errors.WrapResource("create", "event", event.ID, err)
	}
	i.logger.Debug().Str("event", event.ID).Int("row", row).Msg("imported event")
	stats.NewEvents++
	return nil
}

// parseDates pairs up the comma-separated start and end date lists. A
// count mismatch means the pairing is ambiguous and the import aborts.
func parseDates(start, end string, row int, name string) ([]catalogs.CourseDate, error) {
	starts := splitDates(start)
	ends := splitDates(end)

	if len(starts) != len(ends) {
		return nil, &errors.ImportError{
			File:    name,
			Row:     row,
			Message: "start and end date counts differ",
		}
	}

	dates := make([]catalogs.CourseDate, 0, len(starts))
	for idx := range starts {
		dates = append(dates, catalogs.CourseDate{
			Start: catalogs.NormalizeDate(starts[idx]),
			End:   catalogs.NormalizeDate(ends[idx]),
		})
	}
	return dates, nil
}

func splitDates(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// resolveTemplate finds the template for a row's course code, creating
// a minimal auto template when the code is unknown.
func (i *Importer) resolveTemplate(fields map[string]string, name string, stats *Stats) (*catalogs.Template, error) {
	code := fields[colCourseCode]
	if code == "" {
		return nil, &errors.ImportError{
			File:    name,
			Message: "row without course code",
		}
	}

	if template, ok := i.catalog.Templates().FindByCourseCode(code); ok {
		template.AddSourceFile(name)
		return template, nil
	}

	template := &catalogs.Template{
		ID:             "auto-" + strings.ToLower(code),
		Name:           fields[colName],
		ShortName:      code,
		Category:       fields[colCategory],
		CourseCode:     code,
		AdditionalInfo: autoTemplateInfo,
		SourceFiles:    []string{name},
		LastModified:   i.now().Format(constants.TimestampLayout),
	}
	if template.Name == "" {
		template.Name = code
	}

	if err := i.catalog.SetTemplate(template); err != nil {
		return nil, errors.WrapResource("create", "template", template.ID, err)
	}
	i.logger.Info().Str("template", template.ID).Msg("created auto template")
	stats.AutoTemplates++
	return template, nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
