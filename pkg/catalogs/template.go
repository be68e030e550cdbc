package catalogs

// Template is a reusable course definition, independent of any specific
// scheduled occurrence. Identity and administrative fields (see
// merge.ImmutableTemplateFields) are set once and never overwritten by
// enrichment passes.
type Template struct {
	// Identity / administrative fields
	ID                string   `json:"id" validate:"required"`
	Name              string   `json:"name" validate:"required"`
	ShortName         string   `json:"shortName,omitempty"`
	Category          string   `json:"category"`
	CourseCode        string   `json:"courseCode,omitempty"`
	CourseResponsible string   `json:"courseResponsible"`
	BaseTemplateIDs   []string `json:"baseTemplateIds"`
	SourceFiles       []string `json:"sourceFiles"`

	// Narrative fields, enriched incrementally. Each is either empty or
	// populated; enrichment only fills fields that are currently empty.
	Description        string   `json:"description"`
	TargetAudience     string   `json:"targetAudience"`
	Syllabus           string   `json:"syllabus"`
	Purpose            string   `json:"purpose"`
	LearningObjectives []string `json:"learningObjectives"`
	Examination        string   `json:"examination"`
	Prerequisites      []string `json:"prerequisites"`
	Literature         string   `json:"literature"`
	AdditionalInfo     string   `json:"additionalInfo,omitempty"`
	TypicalDuration    string   `json:"typicalDuration"`

	// Mutation metadata
	LastModifiedBy string `json:"lastModifiedBy,omitempty"`
	LastModified   string `json:"lastModified,omitempty"`
}

// IsComposed reports whether this template is a logical alias/union of
// other templates. Composed templates are exempt from narrative
// enrichment; they are not independently described entities.
func (t *Template) IsComposed() bool {
	return len(t.BaseTemplateIDs) > 0
}

// IsEnriched reports whether a previous enrichment pass already
// populated this template's description.
func (t *Template) IsEnriched() bool {
	return t.Description != ""
}

// AddSourceFile appends a contributing document identifier, skipping
// entries already recorded.
func (t *Template) AddSourceFile(name string) {
	for _, f := range t.SourceFiles {
		if f == name {
			return
		}
	}
	t.SourceFiles = append(t.SourceFiles, name)
}

// Copy returns a deep copy of the template.
func (t *Template) Copy() *Template {
	c := *t
	c.BaseTemplateIDs = append([]string(nil), t.BaseTemplateIDs...)
	c.SourceFiles = append([]string(nil), t.SourceFiles...)
	c.LearningObjectives = append([]string(nil), t.LearningObjectives...)
	c.Prerequisites = append([]string(nil), t.Prerequisites...)
	return &c
}
