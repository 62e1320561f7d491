package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/config"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Tick a tree continuously and serve it over HTTP or MCP",
	Long: `Loads arbor.yaml, ticks the configured tree at a fixed interval and exposes
it over HTTP (/health, /info, /tree, /tick, /events, /metrics).

With --mcp the driver is served as a Model Context Protocol server instead:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		mcpMode, _ := cmd.Flags().GetBool("mcp")
		transport, _ := cmd.Flags().GetString("transport")

		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		level, format := cfg.Log.Level, cfg.Log.Format
		if cmd.Flags().Changed("log-level") {
			level, _ = cmd.Flags().GetString("log-level")
		}
		logger, err := cli.NewLogger(level, format)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := cli.NewService(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		if !mcpMode {
			return cli.Serve(ctx, svc, arbor.Version)
		}

		srv := svc.MCP(arbor.Version)
		switch transport {
		case "sse":
			logger.Info("starting MCP server (SSE)", "addr", cfg.HTTP.Addr)
			return srv.ServeSSE(ctx, cfg.HTTP.Addr, "")
		default:
			// Keep stdout free for JSON-RPC.
			log.SetOutput(os.Stderr)
			logger.Info("starting MCP server (stdio)")
			return srv.ServeStdio()
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", config.DefaultFile, "Configuration file")
	serveCmd.Flags().Bool("mcp", false, "Serve the Model Context Protocol instead of HTTP")
	serveCmd.Flags().String("transport", "stdio", "MCP transport: 'stdio' or 'sse'")
}
