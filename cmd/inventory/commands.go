package main

import (
	"errors"
	"fmt"

	"github.com/abgdnv/inventory/internal/inventory/menu"
	"github.com/urfave/cli/v2"
)

func listCommand(rt *appState) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "Show every product and the stock valuation",
		Action: func(c *cli.Context) error {
			menu.RenderProducts(c.App.Writer, rt.service.FindAll(), rt.cfg.UI.Color)
			menu.RenderValuation(c.App.Writer, rt.service.Valuation())
			return nil
		},
	}
}

func searchCommand(rt *appState) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Find products by name substring or exact ID, e.g. inventory search rice",
		ArgsUsage: "TERM",
		Action: func(c *cli.Context) error {
			term := c.Args().First()
			if term == "" {
				return errors.New("search term is required")
			}
			menu.RenderProducts(c.App.Writer, rt.service.Search(term), rt.cfg.UI.Color)
			return nil
		},
	}
}

func expiringCommand(rt *appState) *cli.Command {
	return &cli.Command{
		Name:  "expiring",
		Usage: "Show products expiring within the given number of days",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "days",
				Usage: "expiry window in days, defaults to report.upcomingdays",
			},
		},
		Action: func(c *cli.Context) error {
			days := rt.cfg.Report.UpcomingDays
			if c.IsSet("days") {
				days = c.Int("days")
			}
			products, err := rt.service.Upcoming(days)
			if err != nil {
				return err
			}
			menu.RenderProducts(c.App.Writer, products, rt.cfg.UI.Color)
			return nil
		},
	}
}

func exportCommand(rt *appState) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the inventory as CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Usage: "CSV output path, defaults to export.path",
			},
		},
		Action: func(c *cli.Context) error {
			path := rt.cfg.Export.Path
			if c.IsSet("out") {
				path = c.String("out")
			}
			if err := rt.service.Export(path); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(c.App.Writer, "Estoque exportado para %s.\n", path)
			return nil
		},
	}
}

func reportCommand(rt *appState) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Show low stock products and the stock valuation",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "threshold",
				Usage: "low stock threshold, defaults to report.lowstockthreshold",
			},
		},
		Action: func(c *cli.Context) error {
			threshold := rt.cfg.Report.LowStockThreshold
			if c.IsSet("threshold") {
				threshold = c.Int("threshold")
			}
			low, err := rt.service.LowStock(threshold)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(c.App.Writer, "Estoque baixo (quantidade <= %d):\n", threshold)
			menu.RenderProducts(c.App.Writer, low, rt.cfg.UI.Color)
			menu.RenderValuation(c.App.Writer, rt.service.Valuation())
			return nil
		},
	}
}
