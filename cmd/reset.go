package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/jarvis/internal/relay"
	"github.com/abhisek/jarvis/internal/role"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset a lesson room on the relay",
	Long:  "Clears the room's action log and resets every connected replica to the warm-up stage.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ccfg := relay.DefaultClientConfig(flagOr(cmd, "url", cfg.SyncURL))
		ccfg.Room = flagOr(cmd, "room", cfg.Room)
		ccfg.Role = role.Coach

		timeout, _ := cmd.Flags().GetDuration("timeout")
		ctx, cancel := contextWithTimeout(cmd, timeout)
		defer cancel()

		if err := relay.ResetRoom(ctx, ccfg); err != nil {
			return fmt.Errorf("reset room %s: %w", ccfg.Room, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "room %s reset\n", ccfg.Room)
		return nil
	},
}

func init() {
	resetCmd.Flags().String("room", "", "Room to reset (overrides JARVIS_ROOM)")
	resetCmd.Flags().String("url", "", "Relay WebSocket URL (overrides JARVIS_SYNC_URL)")
	resetCmd.Flags().Duration("timeout", 10*time.Second, "Give up after this long")
}
