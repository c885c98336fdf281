package main

import (
	"fmt"

	"facedetection/internal/services/media"

	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <ref>",
	Short: "Print the filesystem path of a media reference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, ok := media.NewResolver(store, cfg, log).Resolve(cmd.Context(), args[0])
		if !ok {
			return fmt.Errorf("cannot resolve %s", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
