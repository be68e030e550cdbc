package catalogs

// EventStatus is the lifecycle status of a scheduled course event.
type EventStatus string

// Event statuses.
const (
	EventStatusOpen      EventStatus = "open"
	EventStatusClosed    EventStatus = "closed"
	EventStatusCancelled EventStatus = "cancelled"
)

// String returns the string representation of an EventStatus.
func (s EventStatus) String() string {
	return string(s)
}

// CourseDate is one {start, end} period of an event, with both dates in
// the normalized 8-digit YYYYMMDD form.
type CourseDate struct {
	Start string `json:"start" validate:"omitempty,len=8,numeric"`
	End   string `json:"end" validate:"omitempty,len=8,numeric"`
}

// Complete reports whether both start and end are present.
func (d CourseDate) Complete() bool {
	return d.Start != "" && d.End != ""
}

// Event is one scheduled occurrence of a template. Two events are the
// same logical event iff they share identical
// (templateId, courseDates, location, eventResponsible); the id is
// generated once per unique fingerprint and never reassigned.
type Event struct {
	ID                  string       `json:"id" validate:"required"`
	TemplateID          string       `json:"templateId" validate:"required"`
	CourseDates         []CourseDate `json:"courseDates"`
	Location            string       `json:"location"`
	EventResponsible    string       `json:"eventResponsible"`
	ApplicationDeadline string       `json:"applicationDeadline" validate:"omitempty,len=8,numeric"`
	Spots               *int         `json:"spots"`
	Status              EventStatus  `json:"status" validate:"omitempty,oneof=open closed cancelled"`
	Notes               string       `json:"notes"`
	SourceFiles         []string     `json:"sourceFiles"`

	// Mutation metadata
	LastModifiedBy string `json:"lastModifiedBy,omitempty"`
	LastModified   string `json:"lastModified,omitempty"`
}

// AddSourceFile appends a contributing document identifier, skipping
// entries already recorded.
func (e *Event) AddSourceFile(name string) {
	for _, f := range e.SourceFiles {
		if f == name {
			return
		}
	}
	e.SourceFiles = append(e.SourceFiles, name)
}

// NormalizeDates rewrites every date field to its 8-digit form.
// Idempotent: already-normalized events pass through unchanged.
func (e *Event) NormalizeDates() {
	for i := range e.CourseDates {
		e.CourseDates[i].Start = NormalizeDate(e.CourseDates[i].Start)
		e.CourseDates[i].End = NormalizeDate(e.CourseDates[i].End)
	}
	e.ApplicationDeadline = NormalizeDate(e.ApplicationDeadline)
}

// Copy returns a deep copy of the event.
func (e *Event) Copy() *Event {
	c := *e
	c.CourseDates = append([]CourseDate(nil), e.CourseDates...)
	c.SourceFiles = append([]string(nil), e.SourceFiles...)
	if e.Spots != nil {
		spots := *e.Spots
		c.Spots = &spots
	}
	return &c
}
