// Package normalize is the boundary to the external record-normalization
// service: a language model that turns a candidate text block into a
// structured record, or reports that the block contains no record.
//
// The core treats any response that fails to parse as structured data,
// or that omits a required identity field, as "no record", never as an
// error that aborts the run. Transient service failures are retried
// with exponential backoff up to a fixed ceiling, after which they are
// escalated as a distinct fatal error kind.
package normalize

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hvkurs/kursmap/pkg/catalogs"
)

// TemplateRef is the known-template context passed to the service with
// each event block.
type TemplateRef struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName,omitempty"`
}

// TemplateRefs builds the known-template context from a template collection.
func TemplateRefs(templates *catalogs.Templates) []TemplateRef {
	list := templates.List()
	refs := make([]TemplateRef, 0, len(list))
	for _, t := range list {
		refs = append(refs, TemplateRef{ID: t.ID, Name: t.Name, ShortName: t.ShortName})
	}
	return refs
}

// Normalizer converts candidate text into structured records.
//
// Both methods return ok=false for the explicit no-record signal. A
// non-nil error is either transient-exhausted (fatal for the run, see
// errors.IsRetriesExhausted) or a per-record failure the caller logs
// and skips.
type Normalizer interface {
	// NormalizeEvent extracts one event record from a candidate block.
	NormalizeEvent(ctx context.Context, block string, refs []TemplateRef) (*catalogs.Event, bool, error)

	// EnrichTemplate populates a template's empty narrative fields from
	// source text. The returned record is merge input, not a stored
	// record; identity fields on it are ignored by the merge engine.
	EnrichTemplate(ctx context.Context, template *catalogs.Template, sourceText string) (*catalogs.Template, bool, error)

	// Model names the underlying model for mutation metadata.
	Model() string
}

// eventRecord is the versioned wire schema for a normalized event.
// Fields absent from this schema are dropped at the boundary, never
// propagated into the catalog.
type eventRecord struct {
	TemplateID          string                `json:"templateId" validate:"required"`
	CourseDates         []catalogs.CourseDate `json:"courseDates" validate:"dive"`
	Location            string                `json:"location"`
	EventResponsible    string                `json:"eventResponsible"`
	ApplicationDeadline string                `json:"applicationDeadline"`
	Spots               *int                  `json:"spots"`
	Status              string                `json:"status" validate:"omitempty,oneof=open closed cancelled"`
	Notes               string                `json:"notes"`
}

// templateRecord is the versioned wire schema for template enrichment
// output. Identity fields are carried for shape compatibility but are
// discarded by the merge engine.
type templateRecord struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	ShortName          string   `json:"shortName"`
	Category           string   `json:"category"`
	CourseCode         string   `json:"courseCode"`
	Description        string   `json:"description"`
	TargetAudience     string   `json:"targetAudience"`
	Syllabus           string   `json:"syllabus"`
	Purpose            string   `json:"purpose"`
	LearningObjectives []string `json:"learningObjectives"`
	Examination        string   `json:"examination"`
	Prerequisites      []string `json:"prerequisites"`
	Literature         string   `json:"literature"`
	AdditionalInfo     string   `json:"additionalInfo"`
	TypicalDuration    string   `json:"typicalDuration"`
}

// validate is the shared structural validator for wire records.
var validate = validator.New()

// parseEventRecord decodes raw model output into an event. ok=false
// means no record: empty output, an explicit null, unparseable JSON, a
// missing template reference, or a structural violation.
func parseEventRecord(raw string) (*catalogs.Event, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, false
	}

	var record eventRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, false
	}
	if record.TemplateID == "" {
		return nil, false
	}

	event := &catalogs.Event{
		TemplateID:          record.TemplateID,
		CourseDates:         record.CourseDates,
		Location:            record.Location,
		EventResponsible:    record.EventResponsible,
		ApplicationDeadline: record.ApplicationDeadline,
		Spots:               record.Spots,
		Status:              catalogs.EventStatus(record.Status),
		Notes:               record.Notes,
	}
	event.NormalizeDates()

	if err := validate.Struct(record); err != nil {
		return nil, false
	}
	return event, true
}

// parseTemplateRecord decodes raw enrichment output. The model
// occasionally wraps its answer in a {"template": {...}} envelope; that
// wrapping is unwrapped before decoding.
func parseTemplateRecord(raw string) (*catalogs.Template, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, false
	}

	var envelope struct {
		Template json.RawMessage `json:"template"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err == nil && len(envelope.Template) > 0 {
		raw = string(envelope.Template)
	}

	var record templateRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, false
	}

	return &catalogs.Template{
		ID:                 record.ID,
		Name:               record.Name,
		ShortName:          record.ShortName,
		Category:           record.Category,
		CourseCode:         record.CourseCode,
		Description:        record.Description,
		TargetAudience:     record.TargetAudience,
		Syllabus:           record.Syllabus,
		Purpose:            record.Purpose,
		LearningObjectives: record.LearningObjectives,
		Examination:        record.Examination,
		Prerequisites:      record.Prerequisites,
		Literature:         record.Literature,
		AdditionalInfo:     record.AdditionalInfo,
		TypicalDuration:    record.TypicalDuration,
	}, true
}
