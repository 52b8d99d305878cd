package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/omniforge/omniforge/internal/output"
	"github.com/omniforge/omniforge/pkg/models"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"all"},
		Usage:     "Run the full analysis and generate a comprehensive report",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "top",
				Value: 20,
				Usage: "Show top N files by complexity",
			},
		},
		Action: runAnalyzeCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	report, err := runAnalysisAsync(c)
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	// For JSON/TOON, output the raw report.
	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(report)
	}

	w := formatter.Writer()

	// Summary section
	summary := &output.Section{
		Title: "Analysis Summary",
		Content: fmt.Sprintf(
			"Repository: %s\nFiles: %d\nLines: %d\nArchitecture: %s (%.0f%% confidence)\nMaintainability: %.1f\nGenerated: %s",
			report.Repository.Root,
			report.Stats.TotalFiles,
			report.Stats.TotalLines,
			report.Architecture.Label,
			report.Architecture.Confidence*100,
			report.Stats.MaintainabilityScore,
			report.GeneratedAt.Format("2006-01-02 15:04:05"),
		),
	}
	if err := formatter.Output(summary); err != nil {
		return err
	}
	fmt.Fprintln(w)

	// Language breakdown
	langs := make([]string, 0, len(report.Stats.Languages))
	for l := range report.Stats.Languages {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool {
		if report.Stats.Languages[langs[i]] != report.Stats.Languages[langs[j]] {
			return report.Stats.Languages[langs[i]] > report.Stats.Languages[langs[j]]
		}
		return langs[i] < langs[j]
	})
	var langRows [][]string
	for _, l := range langs {
		langRows = append(langRows, []string{l, fmt.Sprintf("%d", report.Stats.Languages[l])})
	}
	langTable := output.NewTable("Languages", []string{"Language", "Files"}, langRows, nil, nil)
	if err := formatter.Output(langTable); err != nil {
		return err
	}

	// Top files by complexity
	files := append([]models.FileMetrics(nil), report.Files...)
	sort.SliceStable(files, func(i, j int) bool { return files[i].Cyclomatic > files[j].Cyclomatic })
	topN := c.Int("top")
	if len(files) > topN {
		files = files[:topN]
	}
	var fileRows [][]string
	for _, f := range files {
		if f.Unavailable {
			continue
		}
		cyc := fmt.Sprintf("%d", f.Cyclomatic)
		if float64(f.Cyclomatic) > report.Stats.Complexity.Avg*2 && f.Cyclomatic > 10 {
			cyc = color.RedString(cyc)
		}
		fileRows = append(fileRows, []string{
			f.Path,
			string(f.Language),
			fmt.Sprintf("%d", f.LinesOfCode),
			cyc,
			fmt.Sprintf("%.1f", f.Maintainability),
		})
	}
	fileTable := output.NewTable(
		"Files by Complexity",
		[]string{"File", "Language", "LOC", "Cyclomatic", "Maintainability"},
		fileRows,
		[]string{
			fmt.Sprintf("Min: %.0f", report.Stats.Complexity.Min),
			"",
			"",
			fmt.Sprintf("Avg: %.1f / Max: %.0f", report.Stats.Complexity.Avg, report.Stats.Complexity.Max),
			fmt.Sprintf("Avg: %.1f", report.Stats.MaintainabilityScore),
		},
		nil,
	)
	if err := formatter.Output(fileTable); err != nil {
		return err
	}

	// Security findings
	if len(report.Findings) > 0 {
		if err := formatter.Output(findingsTable(report.Findings, report.Stats.Security)); err != nil {
			return err
		}
	} else if formatter.Colored() {
		color.Green("No security findings")
		fmt.Fprintln(w)
	}

	// Issues
	if len(report.Issues) > 0 {
		color.Yellow("Files with issues (%d):", len(report.Issues))
		for _, issue := range report.Issues {
			fmt.Fprintf(w, "  - %s: %s\n", issue.Path, issue.Reason)
		}
		fmt.Fprintln(w)
	}

	// Recommendations
	if len(report.Recommendations) > 0 {
		if formatter.Colored() {
			color.Cyan("Recommendations:")
		} else {
			fmt.Fprintln(w, "Recommendations:")
		}
		for i, rec := range report.Recommendations {
			fmt.Fprintf(w, "  %d. %s\n", i+1, rec)
		}
	}

	return nil
}

// findingsTable renders security findings with a severity summary footer.
func findingsTable(findings []models.SecurityFinding, summary models.SecuritySummary) *output.Table {
	var rows [][]string
	for _, f := range findings {
		rows = append(rows, []string{
			fmt.Sprintf("%s:%d", f.File, f.Line),
			output.SeverityColor(string(f.Severity), string(f.Severity)),
			string(f.Category),
			truncate(f.Description, 50),
		})
	}
	return output.NewTable(
		"Security Findings",
		[]string{"Location", "Severity", "Category", "Description"},
		rows,
		[]string{
			fmt.Sprintf("Total: %d", summary.Total),
			fmt.Sprintf("Critical: %d / High: %d", summary.Critical, summary.High),
			fmt.Sprintf("Medium: %d", summary.Medium),
			fmt.Sprintf("Low: %d", summary.Low),
		},
		nil,
	)
}
