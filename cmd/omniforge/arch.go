package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/omniforge/omniforge/internal/output"
)

func archCmd() *cli.Command {
	return &cli.Command{
		Name:      "arch",
		Aliases:   []string{"architecture"},
		Usage:     "Classify the repository's architecture pattern",
		ArgsUsage: "[path]",
		Action:    runArchCmd,
	}
}

func runArchCmd(c *cli.Context) error {
	report, err := runAnalysis(c)
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(report.Architecture)
	}

	section := &output.Section{
		Title: "Architecture",
		Content: fmt.Sprintf("Pattern: %s\nConfidence: %.0f%%",
			report.Architecture.Label, report.Architecture.Confidence*100),
		Data: report.Architecture,
	}
	if err := formatter.Output(section); err != nil {
		return err
	}

	if len(report.Architecture.Signals) > 0 {
		w := formatter.Writer()
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Signals:")
		for _, s := range report.Architecture.Signals {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}

	return nil
}
