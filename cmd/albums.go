package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var albumsCmd = &cobra.Command{
	Use:   "albums",
	Short: "List albums",
	RunE:  runAlbums,
}

var albumsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new empty album",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlbumsCreate,
}

func init() {
	rootCmd.AddCommand(albumsCmd)
	albumsCmd.AddCommand(albumsCreateCmd)

	albumsCmd.Flags().Bool("json", false, "Output as JSON")
}

func runAlbums(cmd *cobra.Command, args []string) error {
	stack, err := buildStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	albums, err := stack.gallery.ListAlbums(cmd.Context())
	if err != nil {
		return err
	}

	if mustGetBool(cmd, "json") {
		return outputJSON(albums)
	}

	if len(albums) == 0 {
		fmt.Println("No albums yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPHOTOS")
	for _, a := range albums {
		fmt.Fprintf(w, "%s\t%s\t%d\n", a.ID, a.Name, a.PhotoCount)
	}
	return w.Flush()
}

func runAlbumsCreate(cmd *cobra.Command, args []string) error {
	stack, err := buildStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	album, err := stack.gallery.CreateAlbum(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Created album %q (id %s)\n", album.Name, album.ID)
	return nil
}
