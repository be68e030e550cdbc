// Package alias computes the textual surface forms under which a course
// template may appear in source documents, and extracts the document
// subsections relevant to that template.
//
// Matching is deliberately loose: all aliases are case folded and
// matched via unanchored substring containment, trading precision for
// recall. The record normalizer downstream is responsible for rejecting
// text that turns out not to describe the template.
package alias

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/hvkurs/kursmap/pkg/catalogs"
)

// Strategy selects how relevant text is pulled out of a document.
type Strategy int

const (
	// WholeDocument includes the entire document text when any alias
	// appears anywhere in it. High recall, low precision.
	WholeDocument Strategy = iota

	// HeaderBounded captures from an alias-bearing line up to the next
	// line that looks like a section header. Finer precision, at the
	// risk of premature truncation when a document lacks clear headers.
	HeaderBounded
)

// numberSuffix splits a trailing number or "N + M" combined form off a
// course name ("Gruppchefskurs 1 + 2" -> "Gruppchefskurs", "1 + 2").
var numberSuffix = regexp.MustCompile(`^(.*?)\s+(\d+(?:\s*\+\s*\d+)*)$`)

// Resolver matches one template's aliases against document text.
type Resolver struct {
	template *catalogs.Template
	aliases  []string
}

// NewResolver creates a resolver for the given template.
func NewResolver(template *catalogs.Template) *Resolver {
	return &Resolver{
		template: template,
		aliases:  Aliases(template),
	}
}

// Aliases generates the set of case-folded surface forms for a
// template, sorted for deterministic output.
//
// From the canonical name a base is derived by stripping a trailing
// number or combined "N + M" form. Variants cover the bare base, the
// base with a "kurs" suffix (tight and spaced), and the base
// recombined with the stripped number form. The short name is added
// verbatim and with internal hyphens removed.
func Aliases(template *catalogs.Template) []string {
	fold := cases.Fold()
	set := make(map[string]struct{})
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" {
			set[fold.String(s)] = struct{}{}
		}
	}

	name := strings.TrimSpace(template.Name)
	add(name)

	base := name
	form := ""
	if m := numberSuffix.FindStringSubmatch(name); m != nil {
		base, form = m[1], m[2]
	}

	add(base)
	add(base + "kurs")
	add(base + " kurs")

	if form != "" {
		tight := strings.ReplaceAll(form, " ", "")
		add(base + tight)
		add(base + " " + form)
		add(base + "kurs " + form)
		add(base + " kurs " + form)
	}

	if template.ShortName != "" {
		add(template.ShortName)
		add(strings.ReplaceAll(template.ShortName, "-", ""))
	}

	aliases := make([]string, 0, len(set))
	for a := range set {
		aliases = append(aliases, a)
	}
	slices.Sort(aliases)
	return aliases
}

// Aliases returns the resolver's alias set.
func (r *Resolver) Aliases() []string {
	return r.aliases
}

// Matches reports whether the case-folded line contains any alias.
func (r *Resolver) Matches(line string) bool {
	folded := cases.Fold().String(line)
	for _, a := range r.aliases {
		if strings.Contains(folded, a) {
			return true
		}
	}
	return false
}

// SourceText extracts the text relevant to the template from the given
// document texts using the chosen strategy, joined across documents.
//
// An empty result means no alias matched anywhere: there is nothing to
// enrich from, and callers must skip the record or rely on explicitly
// synthesized knowledge instead.
func (r *Resolver) SourceText(texts []string, strategy Strategy) string {
	var collected []string
	for _, text := range texts {
		var section string
		switch strategy {
		case HeaderBounded:
			section = r.extractHeaderBounded(text)
		default:
			section = r.extractWholeDocument(text)
		}
		if section != "" {
			collected = append(collected, section)
		}
	}
	return strings.Join(collected, "\n\n")
}

// extractWholeDocument returns the entire document text when any alias
// appears anywhere in its case-folded form.
func (r *Resolver) extractWholeDocument(text string) string {
	folded := cases.Fold().String(text)
	for _, a := range r.aliases {
		if strings.Contains(folded, a) {
			return text
		}
	}
	return ""
}

// extractHeaderBounded scans lines, capturing from each alias-bearing
// line until the next section header or end of input. An alias on a
// header-like line restarts capture rather than stopping it.
func (r *Resolver) extractHeaderBounded(text string) string {
	var captured []string
	capturing := false

	for _, line := range strings.Split(text, "\n") {
		switch {
		case r.Matches(line):
			capturing = true
			captured = append(captured, line)
		case capturing && looksLikeHeader(line):
			capturing = false
		case capturing:
			captured = append(captured, line)
		}
	}
	return strings.Join(captured, "\n")
}

// looksLikeHeader is the section boundary heuristic: an
// uppercase-initial line of at least 6 characters.
func looksLikeHeader(line string) bool {
	trimmed := strings.TrimSpace(line)
	if utf8.RuneCountInString(trimmed) < 6 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(trimmed)
	return unicode.IsUpper(first)
}
