// Package interactive provides the line-oriented client session of uacp connect.
package interactive

import (
	"context"
	"fmt"
	"strings"

	"github.com/chzyer/readline"

	"github.com/uacp-protocol/uacp-go/pkg/transport"
	"github.com/uacp-protocol/uacp-go/pkg/wire"
)

// Session drives one client connection from a readline prompt.
type Session struct {
	conn    *transport.Connection
	replies <-chan string
	rl      *readline.Instance
}

// New creates a session for an established connection. Lines received on
// replies are printed above the prompt.
func New(conn *transport.Connection, replies <-chan string) (*Session, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "uacp> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Session{conn: conn, replies: replies, rl: rl}, nil
}

// Run starts the command loop. It returns on quit, EOF or ctx cancellation.
func (s *Session) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	go s.printReplies(ctx)
	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		cmd, rest, _ := strings.Cut(input, " ")

		switch strings.ToLower(cmd) {
		case "help", "?":
			s.printHelp()

		case "send", "s":
			s.cmdSend(wire.MessageMessage, rest)

		case "raw":
			s.cmdRaw(rest)

		case "stats":
			s.cmdStats()

		case "status":
			s.cmdStatus()

		case "quit", "exit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}

		if !s.conn.IsValid() {
			fmt.Fprintln(s.rl.Stdout(), "Connection closed.")
			cancel()
			return
		}
	}
}

func (s *Session) printReplies(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-s.replies:
			fmt.Fprintf(s.rl.Stdout(), "< %s\n", r)
		}
	}
}

func (s *Session) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
Commands:
  send <text>          - Send a MSG chunk
  raw <TYPE> <text>    - Send a chunk of message type OPN, MSG or CLO
  stats                - Show byte and chunk counters
  status               - Show connection state and negotiated limits
  help                 - Show this help
  quit                 - Disconnect and exit`)
}

func (s *Session) cmdSend(msgType wire.MessageType, text string) {
	if err := s.conn.WriteMessage(msgType, []byte(text)); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Send failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "> %s %q\n", msgType, text)
}

func (s *Session) cmdRaw(rest string) {
	typ, text, _ := strings.Cut(rest, " ")
	msgType := wire.MessageType(strings.ToUpper(typ))
	switch msgType {
	case wire.MessageOpen, wire.MessageMessage, wire.MessageClose:
	default:
		fmt.Fprintln(s.rl.Stdout(), "Usage: raw <OPN|MSG|CLO> <text>")
		return
	}
	s.cmdSend(msgType, text)
}

func (s *Session) cmdStats() {
	fmt.Fprintf(s.rl.Stdout(), "Bytes:  %d read, %d written\n", s.conn.BytesRead(), s.conn.BytesWritten())
	fmt.Fprintf(s.rl.Stdout(), "Chunks: %d read, %d written\n", s.conn.ChunksRead(), s.conn.ChunksWritten())
}

func (s *Session) cmdStatus() {
	fmt.Fprintf(s.rl.Stdout(), "State: %s\n", s.conn.State())
	if n, ok := s.conn.Negotiated(); ok {
		fmt.Fprintf(s.rl.Stdout(), "Negotiated: recv=%d send=%d maxMsg=%d maxChunks=%d\n",
			n.ReceiveBufferSize, n.SendBufferSize, n.MaxMessageSize, n.MaxChunkCount)
	}
}
