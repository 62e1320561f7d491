package main

import (
	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <blueprint>",
	Short: "Check a tree description against a capability catalog",
	Long: `Builds the description and reports every problem found. Under the lenient
policy faulty subtrees are dropped and reported; with --strict any problem fails.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := logger(cmd)
		if err != nil {
			return err
		}
		actions, _ := cmd.Flags().GetStringSlice("actions")
		senses, _ := cmd.Flags().GetStringSlice("senses")
		scriptPath, _ := cmd.Flags().GetString("script")
		commands, _ := cmd.Flags().GetString("commands")
		strict, _ := cmd.Flags().GetBool("strict")

		_, err = cli.Validate(cli.ValidateOptions{
			Blueprint: args[0],
			Actions:   actions,
			Senses:    senses,
			Script:    scriptPath,
			Commands:  commands,
			Strict:    strict,
			Out:       cmd.OutOrStdout(),
			Logger:    log,
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringSlice("actions", nil, "Available action names")
	validateCmd.Flags().StringSlice("senses", nil, "Available sense names")
	validateCmd.Flags().String("script", "", "Take capability names from a script file")
	validateCmd.Flags().String("commands", "", "Take capability names from a command capability file")
	validateCmd.Flags().Bool("strict", false, "Fail on any description problem")
}
