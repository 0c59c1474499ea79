package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <collection> [url]...",
	Short: "Ingest face embeddings from image URLs into a collection",
	Long: `Ingest downloads each image, runs it through the face extraction
service and appends the resulting embeddings to the collection's catalog.

URLs can be passed as arguments or read from a file with one URL per
line (--from-file). Images where no face is detected and images that
cannot be fetched are reported per URL; they never fail the batch.

Examples:
  # Ingest two photos into the wedding collection
  face-gallery ingest wedding https://img.example/a.jpg https://img.example/b.jpg

  # Ingest a prepared list of URLs
  face-gallery ingest wedding --from-file urls.txt

  # Output the result as JSON
  face-gallery ingest wedding --from-file urls.txt --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().String("from-file", "", "File with one image URL per line")
	ingestCmd.Flags().Bool("json", false, "Output as JSON")
}

func runIngest(cmd *cobra.Command, args []string) error {
	collection := args[0]
	urls := args[1:]

	if file := mustGetString(cmd, "from-file"); file != "" {
		fromFile, err := readURLFile(file)
		if err != nil {
			return err
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs given; pass them as arguments or via --from-file")
	}

	stack, err := buildStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	jsonOutput := mustGetBool(cmd, "json")

	var bar *progressbar.ProgressBar
	if !jsonOutput {
		bar = progressbar.NewOptions(len(urls),
			progressbar.OptionSetDescription("Ingesting"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("photos"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
		stack.pipeline.Progress = func() { _ = bar.Add(1) }
	}

	result, err := stack.pipeline.Ingest(cmd.Context(), collection, urls)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(result)
	}

	fmt.Printf("\n\nAdded %d embedding(s) to %q\n", result.Added, collection)
	if len(result.Failures) > 0 {
		fmt.Printf("Failed: %d\n", len(result.Failures))
		for _, f := range result.Failures {
			fmt.Printf("  %s (%s)\n", f.URL, f.Reason)
		}
	}
	return nil
}

// readURLFile reads one URL per line, skipping blanks and # comments.
func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening URL file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading URL file: %w", err)
	}
	return urls, nil
}

func outputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}
