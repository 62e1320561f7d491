package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/pkg/builder"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <blueprint>",
	Short: "Simulate a tree with scripted capabilities",
	Long: `Builds the description against the capabilities of a script file and/or a
command capability file, then ticks it and prints the status of every tick.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := logger(cmd)
		if err != nil {
			return err
		}
		scriptPath, _ := cmd.Flags().GetString("script")
		commands, _ := cmd.Flags().GetString("commands")
		ticks, _ := cmd.Flags().GetInt("ticks")
		interval, _ := cmd.Flags().GetDuration("interval")
		untilDone, _ := cmd.Flags().GetBool("until-done")
		jsonMode, _ := cmd.Flags().GetBool("json")
		verbose, _ := cmd.Flags().GetBool("verbose")
		strict, _ := cmd.Flags().GetBool("strict")
		agentID, _ := cmd.Flags().GetString("agent")

		policy := builder.Lenient
		if strict {
			policy = builder.Strict
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		_, err = cli.Simulate(ctx, cli.RunOptions{
			Blueprint: args[0],
			Script:    scriptPath,
			Commands:  commands,
			AgentID:   agentID,
			Policy:    policy,
			Ticks:     ticks,
			Interval:  interval,
			UntilDone: untilDone,
			JSON:      jsonMode,
			Verbose:   verbose,
			Out:       cmd.OutOrStdout(),
			Style:     cli.StatusStyle(os.Stdout),
			Logger:    log,
		})
		if ctx.Err() != nil {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("script", "", "Scripted capability file (YAML or JSON)")
	runCmd.Flags().String("commands", "", "Command capability file (YAML or JSON)")
	runCmd.Flags().IntP("ticks", "n", 10, "Number of ticks")
	runCmd.Flags().Duration("interval", 0, "Pause between ticks")
	runCmd.Flags().Bool("until-done", false, "Stop at the first tick that is not RUNNING")
	runCmd.Flags().Bool("json", false, "Print one JSON snapshot per tick")
	runCmd.Flags().BoolP("verbose", "v", false, "Print every node status")
	runCmd.Flags().Bool("strict", false, "Fail on any description problem")
	runCmd.Flags().String("agent", "", "Agent id reported in snapshots")
}
