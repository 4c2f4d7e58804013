package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/storefront/api/backend"
	"github.com/angelmondragon/storefront/api/routes"
	"github.com/angelmondragon/storefront/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

// newDevServerCmd serves the in-memory backend so the client commands can be
// tried without a real shop.
func newDevServerCmd(c *cli) *cobra.Command {
	var (
		addr         string
		secret       string
		accessTTL    time.Duration
		emptyCatalog bool
		corsOrigins  []string
	)
	cmd := &cobra.Command{
		Use:         "devserver",
		Short:       "Run an in-memory storefront backend for local use",
		Annotations: map[string]string{standalone: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			logg := c.options.Logger
			if logg == nil {
				logg = logger.New(logger.Options{ServiceName: "storefront-devserver", Format: "console", Output: c.errOut})
			}
			if secret == "" {
				secret = os.Getenv("STOREFRONT_DEV_SECRET")
			}

			store := backend.NewStore(backend.Options{
				Secret:       secret,
				AccessTTL:    accessTTL,
				EmptyCatalog: emptyCatalog,
			})
			server := &http.Server{
				Addr: addr,
				Handler: routes.NewRouter(routes.Options{
					Store:       store,
					Logger:      logg,
					CORSOrigins: corsOrigins,
				}),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			logCtx := logg.WithFields(ctx, map[string]any{
				"addr":       addr,
				"access_ttl": accessTTL.String(),
				"origins":    strings.Join(corsOrigins, ","),
			})
			logg.Info(logCtx, "devserver.starting")

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					logg.Error(logCtx, "devserver.stopped_unexpectedly", err)
					return err
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logg.Error(logCtx, "devserver.shutdown_failed", err)
				return err
			}
			logg.Info(logCtx, "devserver.stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&secret, "secret", "", "token signing secret (default $STOREFRONT_DEV_SECRET or random)")
	cmd.Flags().DurationVar(&accessTTL, "access-ttl", 15*time.Minute, "access token lifetime")
	cmd.Flags().BoolVar(&emptyCatalog, "empty-catalog", false, "start without demo products")
	cmd.Flags().StringSliceVar(&corsOrigins, "cors-origins", nil, "allowed CORS origins")
	return cmd
}
