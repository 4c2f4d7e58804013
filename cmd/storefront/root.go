package main

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront/internal/session"
	"github.com/angelmondragon/storefront/internal/storefront"
	"github.com/angelmondragon/storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/notify"
)

// standalone marks commands that run without the client stack.
const standalone = "standalone"

// cli holds what every command shares. The App is built before each command
// runs and closed once it finishes.
type cli struct {
	out        io.Writer
	errOut     io.Writer
	loadConfig func() (*config.Config, error)
	options    storefront.Options

	jsonOutput bool
	app        *storefront.App
	routes     *session.RouteRecorder
	toasts     *toastNotifier
}

// toastNotifier prints notifications and remembers whether a failure was
// already shown, so the final error is not printed twice.
type toastNotifier struct {
	notify.Notifier
	failed atomic.Bool
}

func (t *toastNotifier) Error(ctx context.Context, message string, err error) {
	t.failed.Store(true)
	t.Notifier.Error(ctx, message, err)
}

func execute(ctx context.Context, c *cli, args []string) error {
	root := newRootCmd(c)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil && (c.toasts == nil || !c.toasts.failed.Load()) {
		_, _ = fmt.Fprintf(c.errOut, "✗ %s\n", describe(err))
	}
	return multierr.Append(err, c.close())
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Shop the storefront from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[standalone] == "true" {
				return nil
			}
			return c.open(cmd.Context())
		},
	}
	root.SetOut(c.out)
	root.SetErr(c.errOut)
	root.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "print results as JSON")

	root.AddCommand(
		newLoginCmd(c),
		newRegisterCmd(c),
		newLogoutCmd(c),
		newWhoamiCmd(c),
		newProductsCmd(c),
		newCategoriesCmd(c),
		newBrandsCmd(c),
		newCartCmd(c),
		newWishlistCmd(c),
		newOrdersCmd(c),
		newAddressesCmd(c),
		newProfileCmd(c),
		newMetricsCmd(c),
		newDevServerCmd(c),
	)
	return root
}

func (c *cli) open(ctx context.Context) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	opts := c.options
	if opts.Logger == nil {
		opts.Logger = logger.New(logger.Options{
			ServiceName: "storefront",
			Level:       logger.ParseLevel(cfg.App.LogLevel),
			Format:      cfg.App.LogFormat,
			WarnStack:   cfg.App.LogWarnStack,
			Output:      c.errOut,
		})
	}
	base := opts.Notifier
	if base == nil {
		base = notify.NewLogNotifier(c.errOut, opts.Logger)
	}
	c.toasts = &toastNotifier{Notifier: base}
	opts.Notifier = c.toasts
	c.routes = &session.RouteRecorder{}
	opts.Navigator = c.routes

	app, err := storefront.New(ctx, cfg, opts)
	if err != nil {
		return err
	}
	c.app = app
	return nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

// signedIn opens the App like the root hook does, then requires a session.
// Cobra runs only the nearest persistent pre-run, so groups chain it here.
func (c *cli) signedIn(cmd *cobra.Command, args []string) error {
	if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
		return err
	}
	return c.requireSession(cmd.Context())
}

// requireSession resolves the signed-in user or asks the shopper to log in.
func (c *cli) requireSession(ctx context.Context) error {
	user, err := c.app.Session.CheckAuth(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "not signed in, run `storefront login`")
	}
	return nil
}

// describe is the one-line text shown for a failed command.
func describe(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return err.Error()
	}
	if msg := typed.Message(); msg != "" {
		return msg
	}
	return pkgerrors.UserMessage(err)
}
