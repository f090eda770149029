package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/gambit"
	"github.com/aretw0/gambit/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the Gambit engine as an MCP Server.
This allows AI agents to list scenarios, play them and read summaries as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		// Logs go to stderr; stdout carries JSON-RPC under stdio.
		log.SetOutput(os.Stderr)

		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := mcp.NewServer(a.engine, gambit.Version, mcp.WithLogger(a.logger))

		switch transport {
		case "stdio":
			a.logger.Info("starting gambit mcp server (stdio)")
			return srv.ServeStdio()
		case "sse":
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.logger.Info("starting gambit mcp server (sse)", "port", port)
			if err := srv.ServeSSE(ctx, port); err != nil {
				return err
			}
			a.logger.Info("mcp server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
