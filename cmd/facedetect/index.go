package main

import (
	"fmt"
	"os"

	"facedetection/internal/services/media"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var indexDir string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index images, audio and video under a directory into the media store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(os.Stderr, "Indexing %s into %s\n", indexDir, cfg.DatabaseURL)

		items, skipped, err := media.Scan(indexDir)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Fprintln(os.Stderr, "No media files found to index")
			return nil
		}

		bar := progressbar.NewOptions(len(items),
			progressbar.OptionSetDescription("Indexing media"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
		)

		uris, err := media.Index(cmd.Context(), store, items, func() { bar.Add(1) })
		bar.Finish()
		fmt.Fprintln(os.Stderr)

		for i, uri := range uris {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", uri, items[i].Data)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Indexed %d file(s), skipped %d\n", len(uris), skipped)
		return nil
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexDir, "dir", ".", "Directory to scan")
	rootCmd.AddCommand(indexCmd)
}
