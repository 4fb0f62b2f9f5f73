package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage game sessions",
	}

	cmd.AddCommand(newSessionCreateCmd())
	cmd.AddCommand(newSessionGetCmd())
	cmd.AddCommand(newSessionListCmd())
	cmd.AddCommand(newSessionTerminateCmd())
	cmd.AddCommand(newSessionCheckCmd())

	return cmd
}

type createPlayerSeed struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Token       string `json:"token"`
}

type createSessionRequest struct {
	NbRounds   int                `json:"nb_rounds"`
	Difficulty string             `json:"difficulty"`
	Players    []createPlayerSeed `json:"players"`
}

func newSessionCreateCmd() *cobra.Command {
	var (
		rounds     int
		difficulty string
		players    []string
	)

	cmd := &cobra.Command{
		Use:   "create [id]",
		Short: "Create a session",
		Long: `Create a session with the given players.

Player ids and join tokens are generated and printed; hand each token
to its player out of band. Without an id argument one is generated.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := uuid.NewString()
			if len(args) > 0 {
				id = args[0]
			}

			req := createSessionRequest{
				NbRounds:   rounds,
				Difficulty: difficulty,
			}
			for _, name := range players {
				req.Players = append(req.Players, createPlayerSeed{
					ID:          uuid.NewString(),
					DisplayName: name,
					Token:       uuid.NewString(),
				})
			}

			var result Session
			if err := client.Post("/api/v1/sessions/"+id, req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)

			if cfg.Output != "json" {
				fmt.Println("Join tokens:")
				for _, p := range req.Players {
					fmt.Printf("  - %s: %s\n", p.DisplayName, p.Token)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&rounds, "rounds", 3, "Number of rounds")
	cmd.Flags().StringVar(&difficulty, "difficulty", "easy", "Difficulty: easy, medium, hard")
	cmd.Flags().StringArrayVar(&players, "player", nil, "Player display name (repeatable)")
	_ = cmd.MarkFlagRequired("player")

	return cmd
}

func newSessionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session
			if err := client.Get("/api/v1/sessions/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List live sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SessionList
			if err := client.Get("/api/v1/sessions", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionTerminateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "terminate <id>",
		Short: "Terminate a session without settlement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/sessions/" + args[0]); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Session terminated")
			return nil
		},
	}
}

func newSessionCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <id> <token>",
		Short: "Check a join token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result CheckResult
			if err := client.Get("/api/v1/sessions/"+args[0]+"/check/"+args[1], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
