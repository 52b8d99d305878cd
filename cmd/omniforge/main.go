package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/omniforge/omniforge/internal/engine"
	"github.com/omniforge/omniforge/internal/output"
	"github.com/omniforge/omniforge/internal/progress"
	"github.com/omniforge/omniforge/pkg/config"
	"github.com/omniforge/omniforge/pkg/models"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

// getPath returns the repository path from positional args, defaulting to ".".
func getPath(c *cli.Context) string {
	if c.Args().Len() > 0 {
		return c.Args().First()
	}
	return "."
}

func main() {
	app := &cli.App{
		Name:    "omniforge",
		Usage:   "Repository analysis: metrics, security, dependencies, architecture",
		Version: version,
		Description: `OmniForge analyzes codebases for code quality metrics, security
issues, dependency structure, and architecture patterns.

Supports: Go, Rust, Python, TypeScript, JavaScript, Java, C, C++, C#, Ruby, PHP, Bash`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"OMNIFORGE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, markdown, toon",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Worker pool size (default: 2x CPU count)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Abort analysis after this duration",
			},
		},
		Commands: []*cli.Command{
			analyzeCmd(),
			scanCmd(),
			depsCmd(),
			archCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// loadConfig builds the effective config from the --config flag and global
// overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrDefault()
	}

	if workers := c.Int("workers"); workers > 0 {
		cfg.Analysis.Workers = workers
	}
	return cfg, nil
}

// runAnalysis builds an engine and produces a report for the path argument,
// blocking until it is done.
func runAnalysis(c *cli.Context, opts ...engine.Option) (*models.AnalysisReport, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(cfg, opts...)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if timeout := c.Duration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	spinner := progress.NewSpinner("Analyzing repository...")
	report, err := eng.RunSynchronous(ctx, getPath(c))
	if err != nil {
		spinner.FinishError(err)
		return nil, err
	}
	spinner.FinishSuccess()
	return report, nil
}

// runAnalysisAsync submits the analysis as a job and polls it to completion,
// rendering the job's progress percentage. Used by the full report command,
// where runs are long enough for a percentage to mean something.
func runAnalysisAsync(c *cli.Context, opts ...engine.Option) (*models.AnalysisReport, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(cfg, opts...)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if timeout := c.Duration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	id, err := eng.Submit(getPath(c))
	if err != nil {
		return nil, err
	}

	bar := progress.NewPercent("Analyzing repository")
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			eng.Cancel(id)
			bar.FinishError(ctx.Err())
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, engine.ErrTimeout
			}
			return nil, engine.ErrCancelled
		case <-ticker.C:
		}

		job, err := eng.Poll(id)
		if err != nil {
			bar.FinishError(err)
			return nil, err
		}
		bar.Set(job.Progress)

		switch job.State {
		case models.JobCompleted:
			bar.FinishSuccess()
			return job.Result, nil
		case models.JobFailed:
			err := errors.New(job.Error)
			bar.FinishError(err)
			return nil, err
		}
	}
}

func newFormatter(c *cli.Context) (*output.Formatter, error) {
	return output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), true)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
