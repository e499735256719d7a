package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newConnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Open an interactive session on the game server",
		Long: `Connect to the game port and relay lines in both directions: each line
typed on stdin is sent as one command and every server message is printed
as it arrives, including challenges and board updates sent while idle.

Type HELP once connected for the list of commands. Press Ctrl+C or send
EOF to disconnect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			dialer := net.Dialer{Timeout: 10 * time.Second}
			conn, err := dialer.DialContext(ctx, "tcp", cfg.ServerAddr)
			if err != nil {
				return fmt.Errorf("connection failed: %w", err)
			}
			if cfg.Verbose {
				fmt.Fprintf(os.Stderr, "Connected to %s\n", cfg.ServerAddr)
			}

			return runSession(ctx, conn, os.Stdin, os.Stdout, cfg.Output == "json")
		},
	}
}

// ServerLine is one server message in JSON output mode
type ServerLine struct {
	Time time.Time `json:"time"`
	Line string    `json:"line"`
}

// runSession relays in to conn and conn to out until the server closes the
// connection or ctx is cancelled
func runSession(ctx context.Context, conn net.Conn, in io.Reader, out io.Writer, jsonLines bool) error {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	serverDone := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			printServerLine(out, scanner.Text(), jsonLines)
		}
		serverDone <- scanner.Err()
	}()

	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			if _, err := fmt.Fprintf(conn, "%s\n", scanner.Text()); err != nil {
				return
			}
		}
		// Let the server see EOF and run its teardown
		if hc, ok := conn.(interface{ CloseWrite() error }); ok {
			_ = hc.CloseWrite()
		}
	}()

	err := <-serverDone
	_ = conn.Close()
	if ctx.Err() != nil || err == nil || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return fmt.Errorf("connection error: %w", err)
}

func printServerLine(out io.Writer, line string, jsonLines bool) {
	if jsonLines {
		data, _ := json.Marshal(ServerLine{Time: time.Now(), Line: line})
		fmt.Fprintln(out, string(data))
		return
	}
	fmt.Fprintln(out, line)
}
