package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/uacp-protocol/uacp-go/cmd/uacp/interactive"
	"github.com/uacp-protocol/uacp-go/pkg/config"
	"github.com/uacp-protocol/uacp-go/pkg/transport"
	"github.com/uacp-protocol/uacp-go/pkg/wire"
)

func connectCmd(configPath *string) *cobra.Command {
	var (
		messages []string
		session  bool
		wait     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "connect [endpoint-url]",
		Short: "Handshake with an endpoint",
		Long: `Open a connection, perform the HEL/ACK handshake and print the
negotiated limits. Each --message is sent as one MSG chunk and the
replies are printed until --wait elapses.

Examples:
  uacp connect opc.tcp://localhost:4840
  uacp connect opc.tcp://localhost:4840 --message hello --message world
  uacp connect ws://localhost:8080/uacp --interactive`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Endpoint.URL = args[0]
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runConnect(ctx, cfg, connectOptions{
				messages:    messages,
				interactive: session,
				wait:        wait,
				out:         cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringArrayVarP(&messages, "message", "m", nil, "Send a MSG chunk with this text (repeatable)")
	cmd.Flags().BoolVarP(&session, "interactive", "i", false, "Start an interactive session")
	cmd.Flags().DurationVar(&wait, "wait", time.Second, "How long to wait for replies")

	return cmd
}

type connectOptions struct {
	messages    []string
	interactive bool
	wait        time.Duration
	out         io.Writer
}

func runConnect(ctx context.Context, cfg *config.Config, opts connectOptions) error {
	lg, err := setupLogging(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer lg.Close()

	replies := make(chan string, 64)
	cc := cfg.ConnectionConfig()
	cc.Logger = lg.logger
	cc.ProtocolLogger = lg.protocol
	cc.Handler = func(c *transport.Connection, ev transport.Event) {
		switch ev := ev.(type) {
		case transport.MessageReceived:
			select {
			case replies <- fmt.Sprintf("%s %q", ev.Chunk[:3], ev.Chunk[wire.HeaderSize:]):
			default:
			}
		case transport.ConnectionBreak:
			select {
			case replies <- fmt.Sprintf("connection lost: %v", ev.Err):
			default:
			}
		}
	}

	conn, err := transport.NewClient(cfg.Endpoint.URL, cc)
	if err != nil {
		return err
	}
	if err := conn.Dial(ctx, cfg.Endpoint.URL); err != nil {
		return fmt.Errorf("connect %s: %w", cfg.Endpoint.URL, err)
	}
	defer conn.Close()

	printNegotiation(opts.out, conn)

	if opts.interactive {
		session, err := interactive.New(conn, replies)
		if err != nil {
			return err
		}
		sessionCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		session.Run(sessionCtx, cancel)
		return nil
	}

	for _, m := range opts.messages {
		if err := conn.WriteMessage(wire.MessageMessage, []byte(m)); err != nil {
			return fmt.Errorf("send: %w", err)
		}
	}
	if len(opts.messages) == 0 {
		return nil
	}

	timer := time.NewTimer(opts.wait)
	defer timer.Stop()
	for received := 0; received < len(opts.messages); {
		select {
		case r := <-replies:
			fmt.Fprintln(opts.out, r)
			received++
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}

func printNegotiation(w io.Writer, conn *transport.Connection) {
	n, _ := conn.Negotiated()
	fmt.Fprintf(w, "Connected:         %s\n", conn.ID())
	fmt.Fprintf(w, "Protocol version:  %d\n", n.ProtocolVersion)
	fmt.Fprintf(w, "Receive buffer:    %d\n", n.ReceiveBufferSize)
	fmt.Fprintf(w, "Send buffer:       %d\n", n.SendBufferSize)
	fmt.Fprintf(w, "Max message size:  %d\n", n.MaxMessageSize)
	fmt.Fprintf(w, "Max chunk count:   %d\n", n.MaxChunkCount)
}
