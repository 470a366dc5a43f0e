package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/ppiankov/fibs/internal/random"
	"github.com/ppiankov/fibs/internal/reconcile"
	"github.com/spf13/cobra"
)

// workflowCmd represents the workflow command
var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Reconcile collected claims and votes and publish a new workflow",
	Long: `Workflow reads users, comparisons, claims, votes and likes from the
datastore, writes the claim, vote and stats exports under --name, then
clusters the claims, pairs them into vote tasks, adds write tasks and
uploads workflow/<basename of --name>.json.

Example:
  fibs workflow --name logs/2024-05-01
  fibs workflow --name logs/2024-05-01 --use-cache --time-offset -5`,
	Args: cobra.NoArgs,
	RunE: runWorkflow,
}

func init() {
	rootCmd.AddCommand(workflowCmd)

	workflowCmd.Flags().String("name", "", "output prefix; its last element names the workflow (default logs/<today>)")
	workflowCmd.Flags().Int("min-length", 20, "pages with at most this many sentences get no category")
	workflowCmd.Flags().Bool("use-cache", false, "read the datastore snapshot of this run from the local cache")
	workflowCmd.Flags().Int("time-offset", -6, "hours added to UTC timestamps before computing stats days")
	workflowCmd.Flags().String("missing-category", "NOCAT", "category of pages not in any manifest")
	workflowCmd.Flags().Int64("seed", 0, "seed the random source for a reproducible workflow")
	bindFlag(workflowCmd, "run.name", "name")
	bindFlag(workflowCmd, "run.min_length", "min-length")
	bindFlag(workflowCmd, "run.use_cache", "use-cache")
	bindFlag(workflowCmd, "run.time_offset", "time-offset")
	bindFlag(workflowCmd, "run.missing_category", "missing-category")
	bindFlag(workflowCmd, "random.seed", "seed")
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		opts := random.Options{Seeded: s.cfg.Random.Seeded, Seed: s.cfg.Random.Seed}
		if cmd.Flags().Changed("seed") {
			opts.Seeded = true
		}

		res, err := s.pipeline.Generate(ctx, s.cfg.Run, random.New(opts))
		if err != nil {
			return fmt.Errorf("workflow: %w", err)
		}

		if res.FromCache {
			fmt.Fprintf(os.Stderr, "✓ Loaded snapshot from cache\n")
		}
		fmt.Fprintf(os.Stderr, "✓ %d claims accepted, %d rejected\n", res.Claims.Accepted, len(res.Claims.Errors))
		fmt.Fprintf(os.Stderr, "✓ %d comparison rows, %d consistency issues\n", res.Comparisons, len(res.Issues))
		fmt.Fprintf(os.Stderr, "✓ Percentage of true claims: %.3f\n", res.TrueProbability)
		fmt.Printf("Created new workflow %s with %d authoring tasks and %d voting tasks.\n",
			res.Name, res.Workflow.Writes, res.Workflow.Votes)

		if len(res.Stats) > 0 {
			fmt.Println(renderStats(res.Stats))
		}
		return nil
	})
}

func renderStats(rows []reconcile.StatRow) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(reconcile.StatColumns))
	for i, col := range reconcile.StatColumns {
		header[i] = col
	}
	tw.AppendHeader(header)

	for _, r := range rows {
		tw.AppendRow(table.Row{r.Day, r.Author, strconv.Itoa(r.VoteCorrect), strconv.Itoa(r.VoteIncorrect), strconv.Itoa(r.Write)})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
