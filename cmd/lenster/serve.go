package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go-lenster/home"
	"github.com/anatolykoptev/go-lenster/server"
)

func newServeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(*cfgPath)
			if err != nil {
				return err
			}
			defer a.store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Config{
				Addr:            a.cfg.Server.Addr,
				PublicURL:       a.cfg.Server.PublicURL,
				ProfileCookie:   a.cfg.Server.ProfileCookie,
				HandleSuffix:    a.cfg.OG.HandleSuffix,
				RateLimit:       a.cfg.Server.RateLimit,
				ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
			}, server.Deps{
				Profiles:  a.client,
				Loader:    home.NewLoader(a.client),
				Generator: a.generator,
				Store:     a.store,
			})
			if err := srv.Run(ctx); err != nil {
				return err
			}
			slog.Info("bye")
			return nil
		},
	}
}
