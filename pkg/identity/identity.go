// Package identity deduplicates course events and assigns stable,
// globally unique, human-readable identifiers.
//
// Two events are the same logical event iff they share an identical
// (templateId, courseDates, location, eventResponsible) tuple; that
// tuple is the deduplication fingerprint. Identifiers are generated
// once per unique fingerprint and never reassigned.
package identity

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hvkurs/kursmap/pkg/catalogs"
)

// Fingerprint is the canonical serialization of an event's identity
// tuple. Semantically identical events produce equal fingerprints
// regardless of incidental date formatting; the order of date pairs is
// significant.
type Fingerprint string

// Compute derives the fingerprint for an event. Dates are reduced to
// their 8-digit form before serialization so formatting differences
// cannot split one logical event in two.
func Compute(event *catalogs.Event) Fingerprint {
	dates := make([]catalogs.CourseDate, len(event.CourseDates))
	for i, d := range event.CourseDates {
		dates[i] = catalogs.CourseDate{
			Start: catalogs.NormalizeDate(d.Start),
			End:   catalogs.NormalizeDate(d.End),
		}
	}
	// Order-preserving structured form. Marshal of a fixed struct slice
	// cannot fail.
	serialized, _ := json.Marshal(dates)

	return Fingerprint(strings.Join([]string{
		event.TemplateID,
		string(serialized),
		event.Location,
		event.EventResponsible,
	}, "|"))
}

// unknownResponsible is the sentinel for events without a responsible party.
const unknownResponsible = "unknown"

// noDates is the sentinel date-hash for events without one complete date pair.
const noDates = "nodates"

// tokenNormalizer case-folds identifier components, transliterates the
// Swedish accented vowels, and strips spaces, slashes, and periods.
var tokenNormalizer = strings.NewReplacer(
	"å", "a", "ä", "a", "ö", "o",
	" ", "", "/", "", ".", "",
)

// normalizeToken reduces an identifier component to its id-safe form.
func normalizeToken(s string) string {
	return tokenNormalizer.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// dateHash builds the date component of an event identifier: the
// "start_end" pair of every complete course date, joined with "+", or
// the nodates sentinel when no complete pair exists.
func dateHash(dates []catalogs.CourseDate) string {
	var parts []string
	for _, d := range dates {
		start := catalogs.NormalizeDate(d.Start)
		end := catalogs.NormalizeDate(d.End)
		if start == "" || end == "" {
			continue
		}
		parts = append(parts, start+"_"+end)
	}
	if len(parts) == 0 {
		return noDates
	}
	return strings.Join(parts, "+")
}

// BaseID builds the deterministic base identifier for an event. The
// location is deliberately absent: distinct locations with otherwise
// identical components collide on the base and are disambiguated by
// suffix.
func BaseID(event *catalogs.Event) string {
	responsible := event.EventResponsible
	if strings.TrimSpace(responsible) == "" {
		responsible = unknownResponsible
	}
	return strings.Join([]string{
		"evt",
		normalizeToken(event.TemplateID),
		normalizeToken(responsible),
		dateHash(event.CourseDates),
	}, "-")
}

// Registry holds the process-local fingerprint map and identifier set.
// It is rebuilt from the existing catalog at start-up so re-runs never
// reassign or collide with stored identifiers. Single writer; no
// locking required.
type Registry struct {
	fingerprints map[Fingerprint]*catalogs.Event
	ids          map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		fingerprints: make(map[Fingerprint]*catalogs.Event),
		ids:          make(map[string]struct{}),
	}
}

// RegistryFromCatalog rebuilds a registry from an existing event
// collection.
func RegistryFromCatalog(events *catalogs.Events) *Registry {
	r := NewRegistry()
	for _, event := range events.List() {
		r.Observe(event)
	}
	return r
}

// Observe registers an already-stored event's fingerprint and id.
func (r *Registry) Observe(event *catalogs.Event) {
	r.fingerprints[Compute(event)] = event
	if event.ID != "" {
		r.ids[event.ID] = struct{}{}
	}
}

// Lookup returns the event already accepted for a fingerprint, if any.
func (r *Registry) Lookup(fp Fingerprint) (*catalogs.Event, bool) {
	event, ok := r.fingerprints[fp]
	return event, ok
}

// Assign accepts a candidate event: it reserves a collision-free
// identifier, sets it on the event, and records the fingerprint.
// The caller must have checked Lookup first; assigning a duplicate
// fingerprint overwrites the mapping.
func (r *Registry) Assign(event *catalogs.Event) string {
	id := r.reserve(BaseID(event))
	event.ID = id
	r.fingerprints[Compute(event)] = event
	return id
}

// reserve finds the first unused identifier for a base: the base
// itself, then single-letter suffixes "-a" through "-z", then numeric
// suffixes from "-27" upward once the letter alphabet is exhausted.
func (r *Registry) reserve(base string) string {
	if _, taken := r.ids[base]; !taken {
		r.ids[base] = struct{}{}
		return base
	}
	for c := 'a'; c <= 'z'; c++ {
		id := fmt.Sprintf("%s-%c", base, c)
		if _, taken := r.ids[id]; !taken {
			r.ids[id] = struct{}{}
			return id
		}
	}
	for n := 27; ; n++ {
		id := fmt.Sprintf("%s-%d", base, n)
		if _, taken := r.ids[id]; !taken {
			r.ids[id] = struct{}{}
			return id
		}
	}
}
