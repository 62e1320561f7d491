package main

import (
	"errors"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [blueprint]",
	Short: "Export the tree as a Mermaid diagram",
	Long: `Outputs a Mermaid diagram (graph TD) of a tree description, or of a recorded
snapshot colored by the status of every node.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshot, _ := cmd.Flags().GetString("snapshot")
		var path string
		if len(args) > 0 {
			path = args[0]
		}
		if path == "" && snapshot == "" {
			return errors.New("a blueprint argument or --snapshot is required")
		}
		return cli.Graph(path, snapshot, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().String("snapshot", "", "Draw a snapshot file written by the file store")
}
