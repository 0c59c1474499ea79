package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var similarCmd = &cobra.Command{
	Use:   "similar <collection>",
	Short: "Group near-identical faces within a collection",
	Long: `Similar clusters a collection's photos whose face embeddings are
nearly identical, which usually means duplicate shots or bursts.

Examples:
  face-gallery similar wedding
  face-gallery similar wedding --threshold 0.95 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func init() {
	rootCmd.AddCommand(similarCmd)

	similarCmd.Flags().Float64("threshold", 0, "Minimum cosine similarity (defaults to SIMILAR_THRESHOLD)")
	similarCmd.Flags().Bool("json", false, "Output as JSON")
}

func runSimilar(cmd *cobra.Command, args []string) error {
	collection := args[0]

	stack, err := buildStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	threshold := stack.cfg.Match.SimilarThreshold
	if cmd.Flags().Changed("threshold") {
		threshold = mustGetFloat64(cmd, "threshold")
	}

	groups, err := stack.engine.SimilarGroups(cmd.Context(), collection, threshold)
	if err != nil {
		return err
	}

	if mustGetBool(cmd, "json") {
		return outputJSON(groups)
	}

	if len(groups) == 0 {
		fmt.Printf("No similar photo groups in %q at similarity %.2f\n", collection, threshold)
		return nil
	}

	for i, group := range groups {
		fmt.Printf("Group %d (%d photos):\n", i+1, len(group))
		for _, url := range group {
			fmt.Printf("  %s\n", url)
		}
	}
	return nil
}
