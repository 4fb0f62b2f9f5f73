package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/comus-party/justeprix/internal/model"
)

func newPlayCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "play <id> <token>",
		Short: "Join a session and play from the terminal",
		Long: `Connect to the session's websocket as the player owning the token.

Received events are printed as they arrive. Each line typed on stdin
is sent as a guess. Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return play(args[0], args[1], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

func play(sessionID, token string, jsonOutput bool) error {
	wsURL := strings.TrimSuffix(cfg.ServerURL, "/")
	wsURL = strings.Replace(wsURL, "http://", "ws://", 1)
	wsURL = strings.Replace(wsURL, "https://", "wss://", 1)
	wsURL += "/api/v1/sessions/" + sessionID + "/ws?token=" + token

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connection refused: HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	fmt.Fprintln(os.Stderr, "Connected. Type a number and press enter to guess.")

	done := make(chan struct{})

	// Receive loop
	go func() {
		defer close(done)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			printEvent(raw, jsonOutput)
		}
	}()

	// Stdin loop
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			guess := strings.TrimSpace(scanner.Text())
			if guess == "" {
				continue
			}
			data, err := model.EncodeEvent(model.GuessEvent{Guess: guess})
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-done:
	case <-sigCh:
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}

	return nil
}

func printEvent(raw []byte, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(string(raw))
		return
	}

	var env model.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		fmt.Println(string(raw))
		return
	}

	switch env.Type {
	case model.EventMessage:
		var msg model.MessageEvent
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			return
		}
		if msg.Indicator != "" {
			fmt.Printf("%s: %s [%s]\n", msg.Speaker, msg.Text, msg.Indicator)
		} else {
			fmt.Printf("%s: %s\n", msg.Speaker, msg.Text)
		}
	case model.EventNewRound:
		var round model.NewRoundEvent
		if err := json.Unmarshal(env.Data, &round); err != nil {
			return
		}
		fmt.Printf("--- Round %d (%s) ---\n", round.RoundNumber, round.Difficulty)
	case model.EventUpdateLeaderboard:
		var lb model.LeaderboardEvent
		if err := json.Unmarshal(env.Data, &lb); err != nil {
			return
		}
		fmt.Println("Leaderboard:")
		for i, e := range lb.Entries {
			fmt.Printf("  %d. %s - %d point(s)\n", i+1, e.DisplayName, e.Score)
		}
	case model.EventEndGame:
		fmt.Println("--- Game over ---")
	case model.EventRedirect:
		var redir model.RedirectEvent
		if err := json.Unmarshal(env.Data, &redir); err != nil {
			return
		}
		fmt.Printf("Redirect: %s\n", redir.Destination)
	default:
		fmt.Println(string(raw))
	}
}
