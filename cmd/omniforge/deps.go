package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/omniforge/omniforge/internal/output"
	"github.com/omniforge/omniforge/pkg/models"
)

func depsCmd() *cli.Command {
	return &cli.Command{
		Name:      "deps",
		Aliases:   []string{"dependencies"},
		Usage:     "Extract dependency edges",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "internal-only",
				Usage: "Show only dependencies that resolve inside the repository",
			},
		},
		Action: runDepsCmd,
	}
}

func runDepsCmd(c *cli.Context) error {
	report, err := runAnalysis(c)
	if err != nil {
		return err
	}

	internalOnly := c.Bool("internal-only")
	var edges []models.DependencyEdge
	internal := 0
	for _, e := range report.Dependencies {
		if e.Kind == models.DependencyInternal {
			internal++
		} else if internalOnly {
			continue
		}
		edges = append(edges, e)
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(edges)
	}

	if len(edges) == 0 {
		formatter.Info("No dependencies found")
		return nil
	}

	var rows [][]string
	for _, e := range edges {
		target := e.Target
		if e.ResolvedPath != "" {
			target = fmt.Sprintf("%s (%s)", e.Target, e.ResolvedPath)
		}
		rows = append(rows, []string{e.Source, target, string(e.Kind)})
	}

	table := output.NewTable(
		"Dependencies",
		[]string{"Source", "Target", "Kind"},
		rows,
		[]string{
			fmt.Sprintf("Total: %d", len(report.Dependencies)),
			fmt.Sprintf("Internal: %d", internal),
			fmt.Sprintf("External: %d", len(report.Dependencies)-internal),
		},
		nil,
	)
	return formatter.Output(table)
}
