// Package pipeline orchestrates the two catalog runs: event extraction
// from source documents and template enrichment from the same text.
//
// Both runs are incremental and resumable. The catalog is saved after
// every accepted record, so an interrupted run loses at most the record
// in flight, and re-running over the same sources is a no-op thanks to
// fingerprint deduplication and first-writer-wins merging.
package pipeline

import (
	"context"
	"time"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/hvkurs/kursmap/internal/sources"
	"github.com/hvkurs/kursmap/pkg/alias"
	"github.com/hvkurs/kursmap/pkg/catalogs"
	"github.com/hvkurs/kursmap/pkg/constants"
	"github.com/hvkurs/kursmap/pkg/errors"
	"github.com/hvkurs/kursmap/pkg/identity"
	"github.com/hvkurs/kursmap/pkg/logging"
	"github.com/hvkurs/kursmap/pkg/merge"
	"github.com/hvkurs/kursmap/pkg/normalize"
	"github.com/hvkurs/kursmap/pkg/segment"
)

// Runner executes extraction and enrichment runs against one catalog.
type Runner struct {
	catalog    catalogs.Catalog
	normalizer normalize.Normalizer
	strategy   alias.Strategy
	logger     *zerolog.Logger
	now        func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithStrategy selects the source-text extraction strategy used during
// enrichment.
func WithStrategy(s alias.Strategy) RunnerOption {
	return func(r *Runner) { r.strategy = s }
}

// WithLogger sets the run logger.
func WithLogger(logger *zerolog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a pipeline runner.
func NewRunner(catalog catalogs.Catalog, normalizer normalize.Normalizer, opts ...RunnerOption) *Runner {
	r := &Runner{
		catalog:    catalog,
		normalizer: normalizer,
		strategy:   alias.WholeDocument,
		logger:     logging.Default(),
		now:        func() time.Time { return utc.Now().Time },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ExtractStats summarizes one event extraction run.
type ExtractStats struct {
	Documents  int
	Blocks     int
	Filtered   int
	NoRecord   int
	Unknown    int
	New        int
	Duplicates int
	Skipped    int
}

// Events extracts course events from the documents and reconciles them
// into the catalog. Per-block failures are logged and skipped; only an
// exhausted retry budget or a failed save aborts the run.
func (r *Runner) Events(ctx context.Context, documents []sources.Document) (ExtractStats, error) {
	stats := ExtractStats{Documents: len(documents)}

	registry := identity.RegistryFromCatalog(r.catalog.Events())
	refs := normalize.TemplateRefs(r.catalog.Templates())

	for _, doc := range documents {
		logger := r.logger.With().Str("document", doc.Name).Logger()

		for block := range segment.Blocks(doc.Text) {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			stats.Blocks++

			if !segment.LooksLikeEvent(block) {
				stats.Filtered++
				continue
			}

			event, ok, err := r.normalizer.NormalizeEvent(ctx, block, refs)
			if err != nil {
				if errors.IsRetriesExhausted(err) {
					return stats, err
				}
				logger.Warn().Err(err).Msg("skipping block")
				stats.Skipped++
				continue
			}
			if !ok {
				stats.NoRecord++
				continue
			}
			if !r.catalog.Templates().Exists(event.TemplateID) {
				logger.Warn().Str("template", event.TemplateID).Msg("unknown template reference, skipping block")
				stats.Unknown++
				continue
			}

			if existing, found := registry.Lookup(identity.Compute(event)); found {
				existing.AddSourceFile(doc.Name)
				if err := r.saveEvent(existing); err != nil {
					return stats, err
				}
				stats.Duplicates++
				continue
			}

			if event.Status == "" {
				event.Status = catalogs.EventStatusOpen
			}
			event.AddSourceFile(doc.Name)
			registry.Assign(event)
			r.stampEvent(event)

			if err := r.saveEvent(event); err != nil {
				return stats, err
			}
			logger.Info().Str("event", event.ID).Msg("extracted event")
			stats.New++
		}
	}

	return stats, nil
}

// EnrichStats summarizes one template enrichment run.
type EnrichStats struct {
	Templates int
	Enriched  int
	Unchanged int
	Skipped   int
}

// Enrich fills empty narrative fields on stored templates from the
// documents' text. Already-enriched and composed templates are skipped,
// as are templates whose aliases match nothing.
func (r *Runner) Enrich(ctx context.Context, documents []sources.Document) (EnrichStats, error) {
	stats := EnrichStats{Templates: r.catalog.Templates().Len()}

	for _, template := range r.catalog.Templates().List() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		logger := r.logger.With().Str("template", template.ID).Logger()

		if template.IsEnriched() || template.IsComposed() {
			stats.Skipped++
			continue
		}

		sourceText, contributors := r.collectSourceText(template, documents)
		if sourceText == "" {
			logger.Debug().Msg("no source text found")
			stats.Skipped++
			continue
		}

		enriched, ok, err := r.normalizer.EnrichTemplate(ctx, template, sourceText)
		if err != nil {
			if errors.IsRetriesExhausted(err) {
				return stats, err
			}
			logger.Warn().Err(err).Msg("skipping template")
			stats.Skipped++
			continue
		}
		if !ok {
			stats.Unchanged++
			continue
		}

		merged, changed := merge.Templates(template, enriched)
		if !changed {
			stats.Unchanged++
			continue
		}

		for _, name := range contributors {
			merged.AddSourceFile(name)
		}
		r.stampTemplate(merged)

		if err := r.catalog.SetTemplate(merged); err != nil {
			return stats, errors.WrapResource("update", "template", merged.ID, err)
		}
		if err := r.catalog.Save(); err != nil {
			return stats, err
		}
		logger.Info().Msg("enriched template")
		stats.Enriched++
	}

	return stats, nil
}

// collectSourceText gathers alias-matched text for a template across
// all documents, returning the joined text and the contributing
// document names.
func (r *Runner) collectSourceText(template *catalogs.Template, documents []sources.Document) (string, []string) {
	resolver := alias.NewResolver(template)

	var parts []string
	var contributors []string
	for _, doc := range documents {
		section := resolver.SourceText([]string{doc.Text}, r.strategy)
		if section == "" {
			continue
		}
		parts = append(parts, section)
		contributors = append(contributors, doc.Name)
	}
	if len(parts) == 0 {
		return "", nil
	}
	joined := parts[0]
	for _, p := range parts[1:] {
		joined += "\n\n" + p
	}
	return joined, contributors
}

func (r *Runner) saveEvent(event *catalogs.Event) error {
	if err := r.catalog.SetEvent(event); err != nil {
		return errors.WrapResource("update", "event", event.ID, err)
	}
	return r.catalog.Save()
}

func (r *Runner) stampEvent(event *catalogs.Event) {
	event.LastModifiedBy = r.normalizer.Model()
	event.LastModified = r.now().Format(constants.TimestampLayout)
}

func (r *Runner) stampTemplate(template *catalogs.Template) {
	template.LastModifiedBy = r.normalizer.Model()
	template.LastModified = r.now().Format(constants.TimestampLayout)
}
