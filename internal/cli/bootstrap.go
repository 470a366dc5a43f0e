package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// bootstrapCmd represents the bootstrap command
var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Seed an empty deployment with pages, claims and the default workflow",
	Long: `Bootstrap prepares a fresh deployment:
- allows GET from any origin on the bucket
- harvests a few random category pages and adds write tasks for them
- seeds claim pairs from the dataset and adds vote tasks for them
- uploads workflow/default.json

Every random draw is seeded, so repeated runs produce the same workflow.

Example:
  fibs bootstrap
  fibs bootstrap --writes 20 --votes 20 --dataset dataset/dev.jsonl`,
	Args: cobra.NoArgs,
	RunE: runBootstrap,
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)

	bootstrapCmd.Flags().Int("writes", 10, "write tasks in the default workflow")
	bootstrapCmd.Flags().Int("votes", 10, "vote tasks in the default workflow")
	bootstrapCmd.Flags().String("dataset", "", "JSONL claim dataset")
	bootstrapCmd.Flags().Int64("seed", 42, "random seed")
	bindFlag(bootstrapCmd, "workflow.bootstrap_writes", "writes")
	bindFlag(bootstrapCmd, "workflow.bootstrap_votes", "votes")
	bindFlag(bootstrapCmd, "paths.dataset", "dataset")
	bindFlag(bootstrapCmd, "random.bootstrap_seed", "seed")
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		res, err := s.pipeline.Bootstrap(ctx, s.cfg.Random.BootstrapSeed)
		if err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Published %d new pages\n", res.Harvest)
		fmt.Printf("Created new workflow %s with %d authoring tasks and %d voting tasks.\n",
			s.cfg.Workflow.DefaultName, res.Writes, res.Votes)
		return nil
	})
}
