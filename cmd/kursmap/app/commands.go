package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/hvkurs/kursmap/internal/importer"
	"github.com/hvkurs/kursmap/internal/sources"
	"github.com/hvkurs/kursmap/pkg/alias"
	"github.com/hvkurs/kursmap/pkg/catalogs"
	"github.com/hvkurs/kursmap/pkg/normalize"
	"github.com/hvkurs/kursmap/pkg/pipeline"
)

// newNormalizer builds the configured normalization service client.
func (a *App) newNormalizer(ctx context.Context) (normalize.Normalizer, error) {
	return normalize.NewGemini(ctx, a.config.APIKey,
		normalize.WithModel(a.config.Model),
		normalize.WithThrottle(a.config.Throttle),
		normalize.WithLogger(a.logger),
	)
}

// NewExtractCommand creates the extract command: segment source
// documents and reconcile the course events they describe into the
// catalog.
func (a *App) NewExtractCommand() *cobra.Command {
	var docsDir string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract course events from source documents",
		Long: `Extract segments each source document into candidate blocks, sends
event-like blocks to the normalization service, and reconciles the
resulting course events into the catalog. Events already present are
recognized by fingerprint and only gain source provenance.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			catalog, err := a.Catalog()
			if err != nil {
				return err
			}
			normalizer, err := a.newNormalizer(ctx)
			if err != nil {
				return err
			}
			documents, err := sources.LoadDirectory(docsDir)
			if err != nil {
				return err
			}

			runner := pipeline.NewRunner(catalog, normalizer, pipeline.WithLogger(a.logger))
			stats, err := runner.Events(ctx, documents)
			if err != nil {
				return err
			}

			a.logger.Info().
				Int("documents", stats.Documents).
				Int("blocks", stats.Blocks).
				Int("new", stats.New).
				Int("duplicates", stats.Duplicates).
				Int("no_record", stats.NoRecord).
				Int("skipped", stats.Skipped).
				Msg("extraction complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&docsDir, "docs", "docs", "directory of source catalog .txt documents")
	return cmd
}

// NewEnrichCommand creates the enrich command: fill empty template
// fields from source document text.
func (a *App) NewEnrichCommand() *cobra.Command {
	var docsDir string
	var headerBounded bool

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Enrich course templates from source documents",
		Long: `Enrich locates each template's aliases in the source documents,
sends the surrounding text to the normalization service, and merges the
result into the stored template. Populated fields are never overwritten;
already-described and composed templates are skipped.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			catalog, err := a.Catalog()
			if err != nil {
				return err
			}
			normalizer, err := a.newNormalizer(ctx)
			if err != nil {
				return err
			}
			documents, err := sources.LoadDirectory(docsDir)
			if err != nil {
				return err
			}

			strategy := alias.WholeDocument
			if headerBounded {
				strategy = alias.HeaderBounded
			}

			runner := pipeline.NewRunner(catalog, normalizer,
				pipeline.WithLogger(a.logger),
				pipeline.WithStrategy(strategy),
			)
			stats, err := runner.Enrich(ctx, documents)
			if err != nil {
				return err
			}

			a.logger.Info().
				Int("templates", stats.Templates).
				Int("enriched", stats.Enriched).
				Int("unchanged", stats.Unchanged).
				Int("skipped", stats.Skipped).
				Msg("enrichment complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&docsDir, "docs", "docs", "directory of source catalog .txt documents")
	cmd.Flags().BoolVar(&headerBounded, "header-bounded", false, "capture only alias-to-header sections instead of whole documents")
	return cmd
}

// NewImportCommand creates the import command: ingest planning-sheet
// TSV exports.
func (a *App) NewImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.tsv>",
		Short: "Import course events from a planning-sheet TSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			catalog, err := a.Catalog()
			if err != nil {
				return err
			}

			imp := importer.New(catalog, importer.WithLogger(a.logger))
			stats, err := imp.File(args[0])
			if err != nil {
				return err
			}

			a.logger.Info().
				Int("rows", stats.Rows).
				Int("new", stats.NewEvents).
				Int("duplicates", stats.Duplicates).
				Int("auto_templates", stats.AutoTemplates).
				Msg("import complete")
			return nil
		},
	}
	return cmd
}

// NewListCommand creates the list command for inspecting the catalog.
func (a *App) NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog contents",
	}
	cmd.AddCommand(a.newListTemplatesCommand())
	cmd.AddCommand(a.newListEventsCommand())
	return cmd
}

func (a *App) newListTemplatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List course templates",
		RunE: func(_ *cobra.Command, _ []string) error {
			catalog, err := a.Catalog()
			if err != nil {
				return err
			}
			templates := catalog.Templates().List()

			switch a.config.Format {
			case "json":
				return printJSON(templates)
			case "yaml":
				return printYAML(templates)
			default:
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tENRICHED")
				for _, t := range templates {
					fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", t.ID, t.Name, t.Category, t.IsEnriched())
				}
				return w.Flush()
			}
		},
	}
}

func (a *App) newListEventsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "List course events",
		RunE: func(_ *cobra.Command, _ []string) error {
			catalog, err := a.Catalog()
			if err != nil {
				return err
			}
			events := catalog.Events().List()

			switch a.config.Format {
			case "json":
				return printJSON(events)
			case "yaml":
				return printYAML(events)
			default:
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTEMPLATE\tDATES\tLOCATION\tSTATUS")
				for _, e := range events {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						e.ID, e.TemplateID, formatDates(e.CourseDates), e.Location, e.Status)
				}
				return w.Flush()
			}
		},
	}
}

func formatDates(dates []catalogs.CourseDate) string {
	parts := make([]string, 0, len(dates))
	for _, d := range dates {
		parts = append(parts, d.Start+"-"+d.End)
	}
	return strings.Join(parts, ", ")
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printYAML(v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
