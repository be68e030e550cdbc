package merge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvkurs/kursmap/pkg/catalogs"
	"github.com/hvkurs/kursmap/pkg/merge"
)

func storedTemplate() *catalogs.Template {
	return &catalogs.Template{
		ID:                "gruppchef-1",
		Name:              "Gruppchefskurs 1",
		ShortName:         "GC1",
		Category:          "Chefsutbildningar",
		CourseResponsible: "HvSS",
		SourceFiles:       []string{"hvss-kurskatalog-2025.txt"},
	}
}

func TestTemplatesFillsEmptyFields(t *testing.T) {
	original := storedTemplate()
	incoming := &catalogs.Template{
		Description:   "Grundläggande kurs för gruppchefer.",
		Prerequisites: []string{"Genomförd GU-F"},
	}

	merged, changed := merge.Templates(original, incoming)

	assert.True(t, changed)
	assert.Equal(t, "Grundläggande kurs för gruppchefer.", merged.Description)
	assert.Equal(t, []string{"Genomförd GU-F"}, merged.Prerequisites)
}

func TestTemplatesMonotonic(t *testing.T) {
	original := storedTemplate()
	incoming := &catalogs.Template{Description: "X"}

	merged, changed := merge.Templates(original, incoming)
	require.True(t, changed)
	assert.Equal(t, "X", merged.Description)

	// Merging the same incoming a second time is a no-op.
	again, changed := merge.Templates(merged, incoming)
	assert.False(t, changed)
	assert.Equal(t, merged, again)
}

func TestTemplatesNeverOverwritesPopulated(t *testing.T) {
	original := storedTemplate()
	original.Description = "Ursprunglig beskrivning"

	incoming := &catalogs.Template{Description: "Annan beskrivning"}

	merged, changed := merge.Templates(original, incoming)

	assert.False(t, changed)
	assert.Equal(t, "Ursprunglig beskrivning", merged.Description)
}

func TestTemplatesProtectsImmutableFields(t *testing.T) {
	original := storedTemplate()
	incoming := &catalogs.Template{
		ID:                "other-id",
		Name:              "Annan kurs",
		ShortName:         "XX9",
		Category:          "Vapenkurser",
		CourseResponsible: "MRM",
		BaseTemplateIDs:   []string{"x"},
		SourceFiles:       []string{"smuggled.txt"},
		Description:       "ny beskrivning",
	}

	merged, changed := merge.Templates(original, incoming)

	assert.True(t, changed, "description fill still applies")
	assert.Equal(t, original.ID, merged.ID)
	assert.Equal(t, original.Name, merged.Name)
	assert.Equal(t, original.ShortName, merged.ShortName)
	assert.Equal(t, original.Category, merged.Category)
	assert.Equal(t, original.CourseResponsible, merged.CourseResponsible)
	assert.Empty(t, merged.BaseTemplateIDs)
	assert.Equal(t, original.SourceFiles, merged.SourceFiles)
}

func TestTemplatesImmutableEvenWhenEmpty(t *testing.T) {
	// Category is empty on the original, but identity fields are set
	// once through administration, never through enrichment.
	original := storedTemplate()
	original.Category = ""

	incoming := &catalogs.Template{Category: "Chefsutbildningar"}

	merged, changed := merge.Templates(original, incoming)
	assert.False(t, changed)
	assert.Empty(t, merged.Category)
}

func TestTemplatesNonRegression(t *testing.T) {
	original := storedTemplate()
	original.Description = "beskrivning"
	original.TargetAudience = "gruppchefer"
	original.Syllabus = "innehåll"
	original.Purpose = "syfte"
	original.LearningObjectives = []string{"mål"}
	original.Examination = "praktiskt prov"
	original.Prerequisites = []string{"GU-F"}
	original.Literature = "Handbok Hemvärn"
	original.AdditionalInfo = "info"
	original.TypicalDuration = "två veckor"
	original.CourseCode = "MAHGK8100030"

	incoming := &catalogs.Template{
		Description:     "annat",
		TargetAudience:  "annat",
		Syllabus:        "annat",
		Purpose:         "annat",
		Examination:     "annat",
		Literature:      "annat",
		AdditionalInfo:  "annat",
		TypicalDuration: "annat",
		CourseCode:      "annat",
	}

	merged, changed := merge.Templates(original, incoming)
	assert.False(t, changed)
	assert.Equal(t, original, merged)
}

func TestTemplatesComposedExempt(t *testing.T) {
	original := storedTemplate()
	original.BaseTemplateIDs = []string{"gruppchef-1", "gruppchef-2"}

	incoming := &catalogs.Template{Description: "beskrivning av sammanslagen kurs"}

	merged, changed := merge.Templates(original, incoming)
	assert.False(t, changed)
	assert.Empty(t, merged.Description)
}

func TestTemplatesEmptyIncomingIgnored(t *testing.T) {
	original := storedTemplate()
	merged, changed := merge.Templates(original, &catalogs.Template{})
	assert.False(t, changed)
	assert.Equal(t, original, merged)
}

func TestTemplatesMetadataNotCopied(t *testing.T) {
	original := storedTemplate()
	incoming := &catalogs.Template{
		Description:    "ny",
		LastModifiedBy: "gemini-2.0-flash",
		LastModified:   "20260830-120000",
	}

	merged, changed := merge.Templates(original, incoming)
	assert.True(t, changed)
	assert.Empty(t, merged.LastModifiedBy)
	assert.Empty(t, merged.LastModified)
}
