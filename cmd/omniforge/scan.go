package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/omniforge/omniforge/internal/analyzer"
	"github.com/omniforge/omniforge/internal/engine"
	"github.com/omniforge/omniforge/internal/output"
	"github.com/omniforge/omniforge/pkg/models"
)

func scanCmd() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Aliases:   []string{"security"},
		Usage:     "Scan for security issues",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "Path to a pattern catalog (YAML or JSON); overrides config",
			},
			&cli.StringFlag{
				Name:  "min-severity",
				Value: "low",
				Usage: "Lowest severity to report: low, medium, high, critical",
			},
		},
		Action: runScanCmd,
	}
}

func runScanCmd(c *cli.Context) error {
	var opts []engine.Option
	if path := c.String("catalog"); path != "" {
		catalog, err := analyzer.LoadCatalog(path)
		if err != nil {
			return err
		}
		opts = append(opts, engine.WithCatalog(catalog))
	}

	report, err := runAnalysis(c, opts...)
	if err != nil {
		return err
	}

	minWeight := models.Severity(c.String("min-severity")).Weight()
	var findings []models.SecurityFinding
	for _, f := range report.Findings {
		if f.Severity.Weight() >= minWeight {
			findings = append(findings, f)
		}
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(struct {
			CatalogVersion string                   `json:"catalog_version"`
			Summary        models.SecuritySummary   `json:"summary"`
			Findings       []models.SecurityFinding `json:"findings"`
		}{report.CatalogVersion, report.Stats.Security, findings})
	}

	if len(findings) == 0 {
		formatter.Success("No security findings (catalog %s)", report.CatalogVersion)
		return nil
	}

	if err := formatter.Output(findingsTable(findings, report.Stats.Security)); err != nil {
		return err
	}

	// Remediation details for the worst findings
	shown := 0
	for _, f := range findings {
		if f.Severity != models.SeverityCritical && f.Severity != models.SeverityHigh {
			continue
		}
		if f.Remediation == "" {
			continue
		}
		if shown == 0 {
			color.Cyan("Remediation:")
		}
		fmt.Fprintf(formatter.Writer(), "  %s:%d (%s): %s\n", f.File, f.Line, f.PatternID, f.Remediation)
		shown++
		if shown >= 10 {
			break
		}
	}

	return nil
}
