package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskcoach/internal/app"
	"github.com/colonyops/taskcoach/internal/core/eventbus"
	"github.com/colonyops/taskcoach/internal/core/model"
	"github.com/colonyops/taskcoach/internal/core/reminder"
)

type RunCmd struct {
	flags *Flags
	app   *app.App
}

// NewRunCmd creates a new run command
func NewRunCmd(flags *Flags, app *app.App) *RunCmd {
	return &RunCmd{flags: flags, app: app}
}

// Register adds the run command to the application
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Keep the document live in the foreground",
		UsageText: "taskcoach run",
		Description: `Runs until interrupted: fires reminders, reports tasks whose status
changes as time passes, saves periodically and, when a shared file is
configured, synchronizes whenever it changes.

Set scheduler.metrics_addr to expose Prometheus metrics.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *RunCmd) run(ctx context.Context, c *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := c.Root().Writer
	bus := cmd.app.Registry.Bus
	eventbus.Subscribe(bus, reminder.ReminderDue, cmd, func(d reminder.Due) {
		_, _ = fmt.Fprintf(out, "reminder: %s (%s)\n", d.Task.Subject(), d.At.Format("2006-01-02 15:04"))
	})
	eventbus.Subscribe(bus, model.TaskStatus, cmd, func(ch model.StatusChange) {
		_, _ = fmt.Fprintf(out, "%s: %s -> %s\n", ch.Task.Subject(), ch.Previous, ch.Current)
	})
	defer bus.Unsubscribe(cmd)

	return cmd.app.Run(ctx)
}
