package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskcoach/internal/app"
	"github.com/colonyops/taskcoach/internal/core/snapshot"
	"github.com/colonyops/taskcoach/pkg/iojson"
)

type ImportCmd struct {
	flags *Flags
	app   *app.App

	reader iojson.FileReader[snapshot.Document]
}

// NewImportCmd creates the import and export commands
func NewImportCmd(flags *Flags, app *app.App) *ImportCmd {
	return &ImportCmd{flags: flags, app: app}
}

// Register adds the import and export commands to the application
func (cmd *ImportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "export",
			Usage:     "Write the whole document as JSON",
			UsageText: "taskcoach export > tasks.json",
			Action:    cmd.runExport,
		},
		&cli.Command{
			Name:      "import",
			Usage:     "Add the objects of an exported document",
			UsageText: "taskcoach import -f tasks.json",
			Description: `Reads a document written by export and adds its objects. Objects whose
IDs already exist are skipped and reported; everything else is kept.`,
			Flags:  []cli.Flag{cmd.reader.Flag()},
			Action: cmd.runImport,
		},
	)

	return app
}

func (cmd *ImportCmd) runExport(ctx context.Context, c *cli.Command) error {
	doc := snapshot.Capture(cmd.app.Lists, cmd.app.DeviceID, cmd.app.Now())
	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, doc)
}

func (cmd *ImportCmd) runImport(ctx context.Context, c *cli.Command) error {
	doc, err := cmd.reader.Read()
	if err != nil {
		return err
	}
	if doc.Version > snapshot.FormatVersion {
		return fmt.Errorf("document version %d is newer than supported version %d", doc.Version, snapshot.FormatVersion)
	}

	restoreErr := snapshot.Restore(doc, cmd.app.Registry, cmd.app.Lists)
	if restoreErr != nil {
		_, _ = fmt.Fprintf(c.Root().ErrWriter, "skipped: %v\n", restoreErr)
	}
	if err := cmd.app.Save(ctx); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "imported %d tasks, %d categories, %d notes, %d efforts\n",
		len(doc.Tasks), len(doc.Categories), len(doc.Notes), len(doc.Efforts))
	return nil
}
