// Command uacp serves and connects to binary transport endpoints.
//
// Usage:
//
//	# Echo server on the default port
//	uacp serve
//
//	# WebSocket echo server with metrics from a config file
//	uacp serve --config uacp.yaml --scheme ws --port 8080
//
//	# Handshake, print the negotiated limits and send one message
//	uacp connect opc.tcp://localhost:4840 --message hello
//
//	# Interactive session
//	uacp connect ws://localhost:8080/uacp --interactive
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "uacp",
		Short: "Binary transport client and echo server",
		Long: `uacp speaks the HEL/ACK transport over opc.tcp and WebSocket.

It runs an echo server that accepts handshakes and returns every
message chunk, and a client that performs the handshake and reports
the negotiated limits.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var configPath string
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")

	rootCmd.AddCommand(
		serveCmd(&configPath),
		connectCmd(&configPath),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
