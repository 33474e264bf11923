// Command feed tails the service's live event feed.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

const (
	urlFlagName    = "url"
	userFlagName   = "user"
	prettyFlagName = "pretty"
)

type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func init() {
	rootCmd.Flags().String(urlFlagName, "ws://localhost:8888/api/v1/feed/ws", "Feed websocket endpoint")
	rootCmd.Flags().String(userFlagName, "", "Only receive events for this address")
	rootCmd.Flags().Bool(prettyFlagName, false, "Indent received messages")
}

var rootCmd = &cobra.Command{
	Use:          "feed",
	Short:        "Print reward events as the service commits them",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		endpoint, _ := flags.GetString(urlFlagName)
		user, _ := flags.GetString(userFlagName)
		pretty, _ := flags.GetBool(prettyFlagName)

		target, err := feedURL(endpoint, user)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return watch(ctx, target, cmd.OutOrStdout(), pretty)
	},
}

func feedURL(endpoint, user string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	if user != "" {
		if !common.IsHexAddress(user) {
			return "", fmt.Errorf("invalid user address %q", user)
		}
		q := u.Query()
		q.Set("user", common.HexToAddress(user).Hex())
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// watch prints every message until ctx is done or the server hangs up.
func watch(ctx context.Context, target string, w io.Writer, pretty bool) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	messageQueue := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		defer close(messageQueue)
		for {
			_, p, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			messageQueue <- p
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		case p, ok := <-messageQueue:
			if !ok {
				err := <-readErr
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return nil
				}
				return err
			}
			if err := printMessage(w, p, pretty); err != nil {
				return err
			}
		}
	}
}

func printMessage(w io.Writer, p []byte, pretty bool) error {
	var msg Message
	if err := json.Unmarshal(p, &msg); err != nil {
		return fmt.Errorf("unexpected message %q: %w", p, err)
	}
	if msg.Type == "" {
		return errors.New("message without type")
	}

	if pretty {
		out, err := json.MarshalIndent(msg, "", "  ")
		if err != nil {
			return err
		}
		p = out
	}
	_, err := fmt.Fprintf(w, "%s\n", p)
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
