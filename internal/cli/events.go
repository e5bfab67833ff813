package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events <group>",
		Short: "Stream WebSocket events for a group",
		Long: `Connect to the event endpoint and stream events in real-time.

The group is either a game code or "dashboard". Events include:
  - new-game-created: A new game was created
  - game-became-active: A game moved to the current slot
  - game-player-added: A player joined the game
  - game-player-removed: A player left or was removed
  - game-state-changed: The game's lifecycle state changed

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamEvents(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// Event is a received event envelope
type Event struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

func streamEvents(group string, jsonOutput bool) error {
	wsURL, err := eventsURL(cfg.ServerURL, group)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if !jsonOutput {
		fmt.Fprintf(os.Stderr, "Connected to %s (Ctrl+C to disconnect)\n", wsURL)
	}

	done := make(chan error, 1)
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				done <- err
				return
			}
			printEvent(data, jsonOutput)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sig:
		// Best-effort close handshake before dropping the connection
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		return nil
	case err := <-done:
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil
		}
		return err
	}
}

func printEvent(data []byte, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(string(data))
		return
	}

	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		fmt.Printf("[%s] %s\n", time.Now().Format(time.TimeOnly), string(data))
		return
	}

	payload := strings.TrimSpace(string(ev.Payload))
	if payload == "" || payload == "null" {
		fmt.Printf("[%s] %s\n", time.Now().Format(time.TimeOnly), ev.Kind)
		return
	}
	fmt.Printf("[%s] %s %s\n", time.Now().Format(time.TimeOnly), ev.Kind, payload)
}

func eventsURL(serverURL, group string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/events/" + group
	return u.String(), nil
}
