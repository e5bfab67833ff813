package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameGetByCodeCmd())
	cmd.AddCommand(newGameNextCmd())
	cmd.AddCommand(newGameActiveCmd())
	cmd.AddCommand(newGameJoinCmd())
	cmd.AddCommand(newGameLeaveCmd())
	cmd.AddCommand(newGameRemovePlayerCmd())
	cmd.AddCommand(newGameTransitionCmd("activate", "Move a new game to the current slot"))
	cmd.AddCommand(newGameTransitionCmd("start", "Start an active game"))
	cmd.AddCommand(newGameTransitionCmd("finish", "Finish a started game"))
	cmd.AddCommand(newGameTransitionCmd("cancel", "Cancel a game"))

	return cmd
}

func newGameCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a new game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameDetails

			if err := client.Post("/api/games", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a game by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameDetails

			if err := client.Get(fmt.Sprintf("/api/games/%s", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameGetByCodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-code <code>",
		Short: "Get a game by its join code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameDetails

			if err := client.Get(fmt.Sprintf("/api/games/code/%s", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Get the upcoming game, if any",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameDetails

			if err := client.Get("/api/games/next", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameActiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "Get the active game, if any",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameDetails

			if err := client.Get("/api/games/active", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameJoinCmd() *cobra.Command {
	var userID string
	var voucher string

	cmd := &cobra.Command{
		Use:   "join <code>",
		Short: "Join a game by its code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"userId": userID}
			if voucher != "" {
				req["voucher"] = voucher
			}

			var result GameDetails

			if err := client.Post(fmt.Sprintf("/api/games/%s/join", args[0]), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Player id (required)")
	cmd.Flags().StringVar(&voucher, "voucher", "", "Voucher to claim on join")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newGameLeaveCmd() *cobra.Command {
	var playerID string

	cmd := &cobra.Command{
		Use:   "leave <id>",
		Short: "Leave a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"playerId": playerID}

			var result GameDetails

			if err := client.Post(fmt.Sprintf("/api/games/%s/leave", args[0]), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&playerID, "player", "", "Player id (required)")
	_ = cmd.MarkFlagRequired("player")

	return cmd
}

func newGameRemovePlayerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-player <id> <playerId>",
		Short: "Remove and ban a player from a game",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameDetails

			if err := client.Delete(fmt.Sprintf("/api/games/%s/players/%s", args[0], args[1]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameTransitionCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%s <id>", action),
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameDetails

			if err := client.Post(fmt.Sprintf("/api/games/%s/%s", args[0], action), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newConfigurationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configuration",
		Short: "Show admission configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Configuration

			if err := client.Get("/api/configuration", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
