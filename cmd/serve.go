package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/jarvis/internal/relay"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the lesson relay server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		scfg := relay.DefaultServerConfig()
		scfg.Addr = flagOr(cmd, "addr", cfg.SyncAddr)
		scfg.ShutdownTimeout = cfg.ShutdownTimeout
		if n, _ := cmd.Flags().GetInt("max-room-actions"); n > 0 {
			scfg.Hub.MaxRoomActions = n
		}
		return relay.NewServer(scfg, logger).ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides JARVIS_SYNC_ADDR)")
	serveCmd.Flags().Int("max-room-actions", 0, "Actions kept per room before older ones fold into its base state")
}
