package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match <collection> <image-file>",
	Short: "Find photos in a collection matching a probe face",
	Long: `Match runs the probe image through the face extraction service and
ranks the collection's photos by cosine similarity to the probe face.

Examples:
  # Search the wedding collection with a portrait
  face-gallery match wedding grandma.jpg

  # Stricter threshold and at most 10 results
  face-gallery match wedding grandma.jpg --threshold 0.7 --limit 10

  # Output as JSON
  face-gallery match wedding grandma.jpg --json`,
	Args: cobra.ExactArgs(2),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().Float64("threshold", 0, "Minimum cosine similarity, exclusive (defaults to MATCH_THRESHOLD)")
	matchCmd.Flags().Int("limit", 0, "Limit number of results (0 = no limit)")
	matchCmd.Flags().Bool("json", false, "Output as JSON")
}

func runMatch(cmd *cobra.Command, args []string) error {
	collection := args[0]
	imagePath := args[1]

	probe, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("reading probe image: %w", err)
	}

	stack, err := buildStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	threshold := stack.cfg.Match.Threshold
	if cmd.Flags().Changed("threshold") {
		threshold = mustGetFloat64(cmd, "threshold")
	}
	limit := mustGetInt(cmd, "limit")

	matches, err := stack.engine.Query(cmd.Context(), collection, probe, threshold, limit)
	if err != nil {
		return err
	}

	if mustGetBool(cmd, "json") {
		return outputJSON(matches)
	}

	if len(matches) == 0 {
		fmt.Printf("No matches in %q above similarity %.2f\n", collection, threshold)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tURL")
	for _, m := range matches {
		fmt.Fprintf(w, "%.4f\t%s\n", m.Score, m.URL)
	}
	return w.Flush()
}
