// Command uacp-log views and analyzes protocol capture files.
//
// Capture files are written by uacp serve and uacp connect when
// log.protocol_log is set in the config file.
//
// Usage:
//
//	uacp-log <command> [flags] <file.ulog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSONL, CSV or MessagePack
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	uacp-log view server.ulog
//
//	# View only handshake outcomes
//	uacp-log view --category handshake server.ulog
//
//	# View only outgoing chunks
//	uacp-log view --direction out server.ulog
//
//	# Filter by connection and save to new file
//	uacp-log filter --conn-id 3f2a9c10-... -o one.ulog server.ulog
//
//	# Show statistics
//	uacp-log stats server.ulog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/uacp-protocol/uacp-go/cmd/uacp-log/commands"
)

const usage = `uacp-log - Protocol Capture Analyzer

Usage:
  uacp-log <command> [flags] <file.ulog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSONL, CSV or MessagePack
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "uacp-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// parseArgs parses fs and returns the log file argument.
func parseArgs(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func usageFor(fs *flag.FlagSet, text string) func() {
	return func() {
		fmt.Fprint(os.Stderr, text)
		fs.PrintDefaults()
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = usageFor(fs, `uacp-log view - View log file in human-readable format

Usage:
  uacp-log view [flags] <file.ulog>

Flags:
`)

	layer := fs.String("layer", "", "Filter by layer (socket, transport, handshake)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (message, handshake, state, error)")
	path := parseArgs(fs, args)

	var filter commands.ViewFilter
	if *layer != "" {
		l, err := commands.ParseLayerFlag(*layer)
		if err != nil {
			fatal(err)
		}
		filter.Layer = &l
	}
	if *direction != "" {
		d, err := commands.ParseDirectionFlag(*direction)
		if err != nil {
			fatal(err)
		}
		filter.Direction = &d
	}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fatal(err)
		}
		filter.Category = &c
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fatal(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = usageFor(fs, `uacp-log export - Export log file to JSONL, CSV or MessagePack

Usage:
  uacp-log export [flags] <file.ulog>

Flags:
`)

	format := fs.String("format", "jsonl", "Output format (jsonl, csv, msgpack)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path := parseArgs(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fatal(err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = usageFor(fs, `uacp-log filter - Filter log file and write to new file

Usage:
  uacp-log filter [flags] <file.ulog>

Flags:
`)

	output := fs.String("o", "", "Output file (required)")
	connID := fs.String("conn-id", "", "Filter by connection ID")
	remote := fs.String("remote", "", "Filter by remote address")
	endpoint := fs.String("endpoint", "", "Filter by endpoint URL")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	layer := fs.String("layer", "", "Filter by layer (socket, transport, handshake)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (message, handshake, state, error)")
	path := parseArgs(fs, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	opts := commands.FilterOptions{
		Output:      *output,
		ConnID:      *connID,
		RemoteAddr:  *remote,
		EndpointURL: *endpoint,
		TimeStart:   *timeStart,
		TimeEnd:     *timeEnd,
		Layer:       *layer,
		Direction:   *direction,
		Category:    *category,
	}

	n, err := commands.RunFilter(path, opts)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Filtered %d events to %s\n", n, opts.Output)
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = usageFor(fs, `uacp-log stats - Show statistics about the log file

Usage:
  uacp-log stats <file.ulog>

`)
	path := parseArgs(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fatal(err)
	}
}
