// Package segment turns the flat text of one source document into an
// ordered sequence of candidate blocks, each a plausible self-contained
// description of one course event.
//
// Segmentation is intentionally high-recall and syntax-only. It does not
// attempt to understand catalog layout; non-event blocks are rejected
// downstream by the record normalizer.
package segment

import (
	"iter"
	"regexp"
	"strings"

	"github.com/hvkurs/kursmap/pkg/constants"
)

// trigger matches a line that plausibly anchors an event description:
// an ISO-like date with optional separators, a compact 6-8 digit date,
// or a week-number notation ("v. 35").
var trigger = regexp.MustCompile(`(?i)(20\d{2}[-/.]?\d{2}[-/.]?\d{2})|(\d{6,8})|(v\.\s?\d{2,3})`)

// IsTrigger reports whether a line matches the date trigger pattern.
func IsTrigger(line string) bool {
	return trigger.MatchString(line)
}

// Blocks returns a lazy, finite, restartable sequence of candidate
// blocks for the given document text.
//
// The scan is a single linear pass over lines. A trigger line starts
// (or restarts) the accumulation buffer seeded with that line; a new
// trigger discards anything accumulated so far without emitting it.
// Non-trigger lines are appended while a buffer is open and dropped
// otherwise. A block is emitted when the buffer reaches the line
// ceiling or at end of input, whichever comes first.
func Blocks(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		var buffer []string

		for _, line := range strings.Split(text, "\n") {
			switch {
			case IsTrigger(line):
				// Only the most recent trigger's context is kept.
				buffer = append(buffer[:0], line)
			case buffer != nil:
				buffer = append(buffer, line)
			default:
				continue // no buffer open, line dropped
			}

			if len(buffer) >= constants.BlockLineCeiling {
				if !yield(strings.Join(buffer, "\n")) {
					return
				}
				buffer = nil
			}
		}

		if len(buffer) > 0 {
			yield(strings.Join(buffer, "\n"))
		}
	}
}

// Candidates collects the full block sequence into a slice.
func Candidates(text string) []string {
	var blocks []string
	for block := range Blocks(text) {
		blocks = append(blocks, block)
	}
	return blocks
}

// eventHints are the field labels that typically surround a scheduled
// event in the catalogs. Swedish source text, matched case-folded.
var eventHints = []string{
	"plats", "datum", "sista ansökningsdag",
	"antal platser", "anmälan", "genomförs",
}

// LooksLikeEvent reports whether a candidate block carries at least two
// of the event field hints. Used as an optional pre-filter to avoid
// normalizer calls for blocks that are clearly not event records.
func LooksLikeEvent(block string) bool {
	folded := strings.ToLower(block)
	hits := 0
	for _, hint := range eventHints {
		if strings.Contains(folded, hint) {
			hits++
		}
	}
	return hits >= 2
}
