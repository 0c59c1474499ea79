package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "face-gallery",
	Short: "A photo gallery with face-based search",
	Long: `Face Gallery manages photo albums and a per-album catalog of face
embeddings. Photos are run through a face extraction service at ingest
time; afterwards any album can be searched with a probe photo and the
matching photos come back ranked by cosine similarity.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
