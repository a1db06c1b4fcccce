package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskcoach/internal/app"
)

// TaskCompleter returns a ShellCompleteFunc that suggests the subjects of open
// tasks as positional completions.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func TaskCompleter(app *app.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		if app.Lists.Tasks == nil {
			return
		}

		w := cmd.Root().Writer
		for _, t := range app.Lists.Tasks.Items() {
			if t.Completed() {
				continue
			}
			_, _ = fmt.Fprintln(w, t.Subject())
		}
	}
}
