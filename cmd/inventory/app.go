package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/abgdnv/inventory/internal/bootstrap"
	"github.com/abgdnv/inventory/internal/config"
	"github.com/abgdnv/inventory/internal/inventory/menu"
	"github.com/abgdnv/inventory/internal/inventory/service"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

// appState holds what every command needs once the configuration is loaded.
type appState struct {
	cfg     *config.Config
	logger  *slog.Logger
	service service.ProductService
}

func newApp(in io.Reader, out, errOut io.Writer) *cli.App {
	rt := &appState{}
	return &cli.App{
		Name:      "inventory",
		Usage:     "Track products, quantities, prices and expiry dates",
		Reader:    in,
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a yaml config file",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "inventory backing file, overrides storage.path",
			},
		},
		Before: func(c *cli.Context) error {
			return rt.setup(c, errOut)
		},
		Action: func(c *cli.Context) error {
			return rt.interactive(c.Context, in, out)
		},
		Commands: []*cli.Command{
			listCommand(rt),
			searchCommand(rt),
			expiringCommand(rt),
			exportCommand(rt),
			reportCommand(rt),
		},
	}
}

// setup loads the configuration, builds the logger and opens the inventory.
func (rt *appState) setup(c *cli.Context, logOut io.Writer) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	if c.IsSet("file") {
		cfg.Storage.Path = c.String("file")
	}

	logger := bootstrap.NewLogger(cfg.Log.Level, logOut).With("run_id", uuid.NewString())
	logger.Debug("Configuration loaded", "config", cfg.String())

	svc, err := bootstrap.NewService(cfg, logger)
	if err != nil {
		logger.Error("Error opening inventory", "error", err)
		return err
	}

	rt.cfg, rt.logger, rt.service = cfg, logger, svc
	return nil
}

// interactive runs the menu until the user exits or ctx is cancelled.
func (rt *appState) interactive(ctx context.Context, in io.Reader, out io.Writer) error {
	m := menu.New(rt.service, in, out, rt.logger,
		menu.WithExportPath(rt.cfg.Export.Path),
		menu.WithUpcomingDays(rt.cfg.Report.UpcomingDays),
		menu.WithColor(rt.cfg.UI.Color),
	)

	g, gCtx := errgroup.WithContext(ctx)
	menuCtx, stop := context.WithCancel(gCtx)
	g.Go(func() error {
		defer stop()
		return m.Run(menuCtx)
	})
	g.Go(func() error {
		<-menuCtx.Done()
		if ctx.Err() != nil {
			rt.logger.Info("Interrupt received, leaving the menu")
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
