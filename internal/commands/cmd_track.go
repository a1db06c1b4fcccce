package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskcoach/internal/app"
)

type TrackCmd struct {
	flags *Flags
	app   *app.App
}

// NewTrackCmd creates a new track command
func NewTrackCmd(flags *Flags, app *app.App) *TrackCmd {
	return &TrackCmd{flags: flags, app: app}
}

// Register adds the track command to the application
func (cmd *TrackCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "track",
		Usage: "Track time spent on tasks",
		Description: `Starting to track a task stops tracking any other task. Tracking keeps
running between invocations until it is stopped.`,
		Commands: []*cli.Command{
			{
				Name:          "start",
				Usage:         "Start tracking a task",
				UsageText:     "taskcoach track start <task>",
				ShellComplete: TaskCompleter(cmd.app),
				Action:        cmd.runStart,
			},
			{
				Name:      "stop",
				Usage:     "Stop tracking",
				UsageText: "taskcoach track stop",
				Action:    cmd.runStop,
			},
			{
				Name:      "status",
				Usage:     "Show what is being tracked",
				UsageText: "taskcoach track status",
				Action:    cmd.runStatus,
			},
		},
	})

	return app
}

func (cmd *TrackCmd) runStart(ctx context.Context, c *cli.Command) error {
	task, err := cmd.app.Lists.Tasks.Find(c.Args().First())
	if err != nil {
		return err
	}

	out := c.Root().Writer
	effort, stopped := cmd.app.Track(task)
	for _, e := range stopped {
		_, _ = fmt.Fprintf(out, "stopped %s after %s\n", e.Task().Subject(), formatDuration(e.Duration()))
	}
	_, _ = fmt.Fprintf(out, "tracking %s since %s\n", task.Subject(), humanize.Time(effort.Start()))

	return cmd.app.Save(ctx)
}

func (cmd *TrackCmd) runStop(ctx context.Context, c *cli.Command) error {
	stopped := cmd.app.StopTracking()
	if len(stopped) == 0 {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, "Nothing is being tracked")
		return nil
	}
	for _, e := range stopped {
		_, _ = fmt.Fprintf(c.Root().Writer, "stopped %s after %s\n", e.Task().Subject(), formatDuration(e.Duration()))
	}
	return cmd.app.Save(ctx)
}

func (cmd *TrackCmd) runStatus(ctx context.Context, c *cli.Command) error {
	tracked := cmd.app.Efforts.CurrentlyTracked()
	if len(tracked) == 0 {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, "Nothing is being tracked")
		return nil
	}

	now := cmd.app.Now()
	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TASK\tSTARTED\tDURATION")
	for _, e := range tracked {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", e.Task().Subject(), formatWhen(e.Start(), now), formatDuration(e.DurationAt(now)))
	}
	return w.Flush()
}
