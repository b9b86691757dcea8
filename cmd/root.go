package cmd

import (
	"fmt"
	"os"

	"github.com/patchset-tools/merge-report/config"
	"github.com/urfave/cli/v2"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "merge-report",
		Usage:   "Report merges whose incoming branch touched a file of interest",
		Version: "1.0.0",
		Commands: []*cli.Command{
			ReportCmd(),
			CommitsCmd(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
		},
		Action: legacyAction,
	}
}

// Common flags shared across commands
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "Path to Git repository",
			Value:   ".",
		},
		&cli.StringFlag{
			Name:  "from",
			Usage: "Starting revision (tag, branch, or commit hash)",
		},
		&cli.StringFlag{
			Name:  "to",
			Usage: "Ending revision (tag, branch, or commit hash)",
			Value: "HEAD",
		},
		&cli.StringFlag{
			Name:    "path",
			Aliases: []string{"p"},
			Usage:   "Path of interest (doublestar glob)",
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "Repository backend (gogit, cli)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (console, json)",
			Value:   "console",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default: stdout)",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Suppress progress notices on stderr",
		},
	}
}

// loadConfig loads configuration from file or defaults.
func loadConfig(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Apply overrides from CLI
	if path := c.String("path"); path != "" {
		cfg.Report.Path = path
	}
	if excludes := c.StringSlice("exclude-subject"); len(excludes) > 0 {
		cfg.Report.ExcludeSubjects = excludes
	}
	if backend := c.String("backend"); backend != "" {
		cfg.Git.Backend = backend
	}

	return cfg, nil
}

// legacyAction handles the default command behavior. The original script
// took the two revisions as positional arguments, so
// "merge-report <from> <to>" keeps working.
func legacyAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.ShowAppHelp(c)
	}
	return ReportCmd().Action(c)
}

// Run executes the CLI application.
func Run() {
	if err := App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
