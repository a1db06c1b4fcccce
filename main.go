package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskcoach/internal/app"
	"github.com/colonyops/taskcoach/internal/commands"
	"github.com/colonyops/taskcoach/internal/core/clock"
	"github.com/colonyops/taskcoach/internal/core/config"
	"github.com/colonyops/taskcoach/internal/core/logging"
	"github.com/colonyops/taskcoach/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

// commands that only need the config, not an open document
var configOnly = map[string]bool{
	"config": true,
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		taskApp   = &app.App{}
		opened    bool
	)

	flags := &commands.Flags{}

	root := &cli.Command{
		Name:      "taskcoach",
		Usage:     "Manage tasks, categories, notes and the time spent on them",
		UsageText: "taskcoach [global options] command [command options]",
		Description: `Taskcoach keeps a personal task list: hierarchical tasks with due dates,
reminders, budgets, recurrence and prerequisites, categories and notes, and
the efforts tracked against each task.

Run 'taskcoach run' to keep reminders and status changes firing, and set
sync.shared_file to keep several devices in step through one shared file.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TASKCOACH_LOG_LEVEL"),
				Value:       "warn",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/taskcoach.log)",
				Sources:     cli.EnvVars("TASKCOACH_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TASKCOACH_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("TASKCOACH_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; use explicit path or default to <datadir>/taskcoach.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "taskcoach.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			if configOnly[c.Args().First()] {
				return ctx, nil
			}

			a, err := app.Open(ctx, cfg, clock.System{})
			if err != nil {
				return ctx, fmt.Errorf("open document: %w", err)
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*taskApp = *a
			opened = true

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			var closeErr error
			if opened {
				if closeErr = taskApp.Close(); closeErr != nil {
					log.Error().Err(closeErr).Msg("failed to close document")
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return closeErr
		},
	}

	root = commands.NewTaskCmd(flags, taskApp).Register(root)
	root = commands.NewCategoryCmd(flags, taskApp).Register(root)
	root = commands.NewNoteCmd(flags, taskApp).Register(root)
	root = commands.NewTrackCmd(flags, taskApp).Register(root)
	root = commands.NewEffortCmd(flags, taskApp).Register(root)
	root = commands.NewSyncCmd(flags, taskApp).Register(root)
	root = commands.NewRunCmd(flags, taskApp).Register(root)
	root = commands.NewImportCmd(flags, taskApp).Register(root)
	root = commands.NewConfigValidateCmd(flags).Register(root)

	exitCode := 0
	runErr := root.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
