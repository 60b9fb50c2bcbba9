package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget saved progress for a player",
	Long: `Delete the saved board and level progression of --player. Finished
runs stay on the scoreboard.

Examples:
  t2048 reset
  t2048 reset --player alice`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func runReset(_ *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.ResetPlayer(context.Background(), flagPlayer); err != nil {
		return fmt.Errorf("resetting %s: %w", flagPlayer, err)
	}
	fmt.Printf("Progress for %s has been reset.\n", flagPlayer)
	return nil
}
