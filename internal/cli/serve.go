package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/noah-isme/school-core/internal/server"
	"github.com/noah-isme/school-core/pkg/cache"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, logr, db, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer logr.Sync() //nolint:errcheck

			app := server.NewApp(cfg, logr, db, cache.Optional(cfg, logr))
			defer app.Close() //nolint:errcheck

			return app.Serve(ctx)
		},
	}
}
