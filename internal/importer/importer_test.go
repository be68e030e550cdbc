package importer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvkurs/kursmap/internal/importer"
	"github.com/hvkurs/kursmap/pkg/catalogs"
	"github.com/hvkurs/kursmap/pkg/errors"
)

func newCatalog(t *testing.T) catalogs.Catalog {
	t.Helper()
	cat := catalogs.New(catalogs.WithPath(t.TempDir()))
	require.NoError(t, cat.SetTemplate(&catalogs.Template{
		ID:         "gruppchef-1",
		Name:       "Gruppchefskurs 1",
		CourseCode: "MAHGK8100030",
	}))
	return cat
}

func tsv(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func TestImportsEvents(t *testing.T) {
	cat := newCatalog(t)
	imp := importer.New(cat)

	stats, err := imp.Read(strings.NewReader(tsv(
		"Kurskod\tStart\tSlut\tOrt\tAnsvarig\tPlatser",
		"MAHGK8100030\t2026-09-01\t2026-09-05\tVällinge\tHvSS\t24",
	)), "events.tsv")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Rows)
	assert.Equal(t, 1, stats.NewEvents)
	assert.Equal(t, 0, stats.AutoTemplates)

	event, err := cat.Event("evt-gruppchef-1-hvss-20260901_20260905")
	require.NoError(t, err)
	assert.Equal(t, "Vällinge", event.Location)
	assert.Equal(t, catalogs.EventStatusOpen, event.Status)
	assert.Equal(t, []string{"events.tsv"}, event.SourceFiles)
	require.NotNil(t, event.Spots)
	assert.Equal(t, 24, *event.Spots)

	// The referenced template records the import as a source.
	template, err := cat.Template("gruppchef-1")
	require.NoError(t, err)
	assert.Contains(t, template.SourceFiles, "events.tsv")
}

func TestImportCreatesAutoTemplate(t *testing.T) {
	cat := newCatalog(t)
	imp := importer.New(cat)

	stats, err := imp.Read(strings.NewReader(tsv(
		"Kurskod\tKursbenämning\tStart\tSlut",
		"XY123\tNy kurs\t20260901\t20260905",
	)), "events.tsv")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.AutoTemplates)

	template, err := cat.Template("auto-xy123")
	require.NoError(t, err)
	assert.Equal(t, "Ny kurs", template.Name)
	assert.Equal(t, "XY123", template.ShortName)
	assert.Equal(t, "XY123", template.CourseCode)
	assert.NotEmpty(t, template.AdditionalInfo)
	assert.Equal(t, []string{"events.tsv"}, template.SourceFiles)
}

func TestImportMultipleDatePeriods(t *testing.T) {
	cat := newCatalog(t)
	imp := importer.New(cat)

	_, err := imp.Read(strings.NewReader(tsv(
		"Kurskod\tStart\tSlut",
		"MAHGK8100030\t2026-09-01, 2026-10-01\t2026-09-05, 2026-10-05",
	)), "events.tsv")
	require.NoError(t, err)

	events := cat.Events().List()
	require.Len(t, events, 1)
	assert.Equal(t, []catalogs.CourseDate{
		{Start: "20260901", End: "20260905"},
		{Start: "20261001", End: "20261005"},
	}, events[0].CourseDates)
}

func TestImportRejectsUnknownHeader(t *testing.T) {
	cat := newCatalog(t)
	imp := importer.New(cat)

	_, err := imp.Read(strings.NewReader(tsv(
		"Kurskod\tHemlig kolumn",
		"MAHGK8100030\tx",
	)), "events.tsv")

	var importErr *errors.ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, "Hemlig kolumn", importErr.Column)
	assert.True(t, errors.IsValidationError(err))
	assert.Equal(t, 0, cat.Events().Len())
}

func TestImportRejectsDateCountMismatch(t *testing.T) {
	cat := newCatalog(t)
	imp := importer.New(cat)

	_, err := imp.Read(strings.NewReader(tsv(
		"Kurskod\tStart\tSlut",
		"MAHGK8100030\t2026-09-01, 2026-10-01\t2026-09-05",
	)), "events.tsv")

	var importErr *errors.ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, 2, importErr.Row)
}

func TestImportDeduplicates(t *testing.T) {
	cat := newCatalog(t)
	imp := importer.New(cat)

	rows := tsv(
		"Kurskod\tStart\tSlut\tOrt",
		"MAHGK8100030\t2026-09-01\t2026-09-05\tVällinge",
		"MAHGK8100030\t20260901\t20260905\tVällinge",
	)
	stats, err := imp.Read(strings.NewReader(rows), "events.tsv")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.NewEvents)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 1, cat.Events().Len())
}

func TestImportSkipsBlankRows(t *testing.T) {
	cat := newCatalog(t)
	imp := importer.New(cat)

	stats, err := imp.Read(strings.NewReader(tsv(
		"Kurskod\tStart\tSlut",
		"",
		"MAHGK8100030\t20260901\t20260905",
	)), "events.tsv")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Rows)
	assert.Equal(t, 1, stats.NewEvents)
}
