package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ppiankov/fibs/internal/category"
	"github.com/spf13/cobra"
)

// harvestCmd represents the harvest command
var harvestCmd = &cobra.Command{
	Use:   "harvest [category...]",
	Short: "Build and publish sentence indices for category pages",
	Long: `Harvest reads the category manifests and, for every page:
- fetches the article and extracts citable sentences
- writes <pages_dir>/<title>.sentences.json and builds the search index
- uploads pages/<title>.json and indices/<title>.json if not yet published

Local files are reused, so an interrupted harvest resumes where it stopped.

Example:
  fibs harvest
  fibs harvest Animals Food --workers 4`,
	RunE: runHarvest,
}

func init() {
	rootCmd.AddCommand(harvestCmd)

	harvestCmd.Flags().Int("workers", 1, "pages harvested concurrently")
	harvestCmd.Flags().String("categories", "", "category manifest glob")
	harvestCmd.Flags().String("pages-dir", "", "directory of page index files")
	bindFlag(harvestCmd, "concurrency.workers", "workers")
	bindFlag(harvestCmd, "paths.categories", "categories")
	bindFlag(harvestCmd, "paths.pages_dir", "pages-dir")
}

func runHarvest(cmd *cobra.Command, args []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		categories, _, err := category.Read(s.cfg.Paths.Categories)
		if err != nil {
			return err
		}
		if len(args) > 0 {
			selected := make(category.Categories, len(args))
			for _, name := range args {
				titles, ok := categories[name]
				if !ok {
					return fmt.Errorf("unknown category %q", name)
				}
				selected[name] = titles
			}
			categories = selected
		}
		if len(categories) == 0 {
			fmt.Fprintf(os.Stderr, "No category manifests match %s\n", s.cfg.Paths.Categories)
			return nil
		}

		report, err := s.pipeline.Harvest(ctx, categories)
		for _, name := range categories.Names() {
			added, ok := report.Added[name]
			if !ok {
				continue
			}
			fmt.Printf("Added %d pages for %s.\n", added, name)
			if failed := len(report.Failed[name]); failed > 0 {
				fmt.Fprintf(os.Stderr, "✗ %d pages skipped in %s\n", failed, name)
			}
		}
		if err != nil {
			return fmt.Errorf("harvest: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Published %d new pages\n", report.Total())
		return nil
	})
}
