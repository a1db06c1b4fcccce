package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskcoach/internal/app"
	"github.com/colonyops/taskcoach/internal/core/date"
	"github.com/colonyops/taskcoach/internal/core/effort"
	"github.com/colonyops/taskcoach/pkg/iojson"
)

type EffortCmd struct {
	flags *Flags
	app   *app.App

	// list flags
	by         string
	totals     bool
	jsonOutput bool

	// add flags
	start       string
	stop        string
	description string
}

// NewEffortCmd creates a new effort command
func NewEffortCmd(flags *Flags, app *app.App) *EffortCmd {
	return &EffortCmd{flags: flags, app: app}
}

// Register adds the effort command to the application
func (cmd *EffortCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "effort",
		Usage: "Report and record time spent",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Aliases:   []string{"ls"},
				Usage:     "List time spent per task and period",
				UsageText: "taskcoach effort list [--by day|week|month] [--totals] [--json]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "by", Usage: "group by day, week or month", Value: "day", Destination: &cmd.by},
					&cli.BoolFlag{Name: "totals", Usage: "one row per period across all tasks", Destination: &cmd.totals},
					&cli.BoolFlag{Name: "json", Usage: "output as JSON", Destination: &cmd.jsonOutput},
				},
				Action: cmd.runList,
			},
			{
				Name:          "add",
				Usage:         "Record an effort after the fact",
				UsageText:     "taskcoach effort add --start <when> [--stop <when>] <task>",
				ShellComplete: TaskCompleter(cmd.app),
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "start", Usage: "start of the effort", Required: true, Destination: &cmd.start},
					&cli.StringFlag{Name: "stop", Usage: "end of the effort (defaults to now)", Value: "now", Destination: &cmd.stop},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "what was done", Destination: &cmd.description},
				},
				Action: cmd.runAdd,
			},
		},
	})

	return app
}

type effortRow struct {
	Task     string    `json:"task,omitempty"`
	TaskID   string    `json:"task_id,omitempty"`
	Start    time.Time `json:"start"`
	Stop     time.Time `json:"stop"`
	Efforts  int       `json:"efforts"`
	Duration string    `json:"duration"`
	Seconds  int64     `json:"seconds"`
	Revenue  float64   `json:"revenue"`
	Tracking bool      `json:"tracking"`
}

func (cmd *EffortCmd) runList(ctx context.Context, c *cli.Command) error {
	period, err := date.ParsePeriod(cmd.by)
	if err != nil {
		return err
	}

	agg := effort.NewAggregator(cmd.app.Efforts, period)
	defer agg.Close()

	var rows []effortRow
	if cmd.totals {
		for _, t := range agg.Totals() {
			rows = append(rows, effortRow{
				Start:    t.Start,
				Stop:     t.Stop,
				Efforts:  t.Efforts,
				Duration: formatDuration(t.Duration),
				Seconds:  int64(t.Duration / time.Second),
				Revenue:  t.Revenue,
				Tracking: t.Tracking,
			})
		}
	} else {
		for _, comp := range agg.Composites() {
			d := comp.Duration()
			rows = append(rows, effortRow{
				Task:     comp.Subject(),
				TaskID:   string(comp.Task().ID()),
				Start:    comp.Start(),
				Stop:     comp.Stop(),
				Efforts:  comp.Len(),
				Duration: formatDuration(d),
				Seconds:  int64(d / time.Second),
				Revenue:  comp.Revenue(),
				Tracking: comp.IsBeingTracked(),
			})
		}
	}

	if cmd.jsonOutput {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, rows)
	}
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, "No efforts found")
		return nil
	}

	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PERIOD\tTASK\tEFFORTS\tDURATION\tREVENUE")
	for _, r := range rows {
		task := r.Task
		if cmd.totals {
			task = "(all)"
		}
		if r.Tracking {
			task += " *"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%.2f\n", periodLabel(r.Start, period), task, r.Efforts, r.Duration, r.Revenue)
	}
	return w.Flush()
}

func periodLabel(start time.Time, p date.Period) string {
	switch p {
	case date.Week:
		y, wk := start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", y, wk)
	case date.Month:
		return start.Format("2006-01")
	default:
		return start.Format("2006-01-02 Mon")
	}
}

func (cmd *EffortCmd) runAdd(ctx context.Context, c *cli.Command) error {
	task, err := cmd.app.Lists.Tasks.Find(c.Args().First())
	if err != nil {
		return err
	}

	now := cmd.app.Now()
	start, err := parseWhen(cmd.start, now, false)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	stop, err := parseWhen(cmd.stop, now, false)
	if err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	if !date.IsSet(start) || (date.IsSet(stop) && stop.Before(start)) {
		return fmt.Errorf("start must be set and not after stop")
	}

	e := cmd.app.Registry.NewEffort(task, start, stop)
	e.SetDescription(cmd.description)
	task.AddEffort(e)

	if err := cmd.app.Save(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "added %s to %s\n", formatDuration(e.DurationAt(now)), task.Subject())
	return nil
}
