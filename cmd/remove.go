package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <collection> <url>",
	Short: "Remove a photo's embeddings from a collection",
	Long: `Remove deletes every catalog record whose source URL matches the
given one. Removing a URL that is not in the catalog is a no-op.`,
	Args: cobra.ExactArgs(2),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	collection := args[0]
	url := args[1]

	stack, err := buildStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	removed, err := stack.catalogs.Remove(cmd.Context(), collection, url)
	if err != nil {
		return err
	}

	if removed {
		fmt.Printf("Removed %s from %q\n", url, collection)
	} else {
		fmt.Printf("No record for %s in %q\n", url, collection)
	}
	return nil
}
