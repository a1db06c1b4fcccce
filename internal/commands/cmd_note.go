package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskcoach/internal/app"
	"github.com/colonyops/taskcoach/internal/core/container"
	"github.com/colonyops/taskcoach/internal/core/model"
	"github.com/colonyops/taskcoach/internal/core/validate"
	"github.com/colonyops/taskcoach/pkg/iojson"
)

type NoteCmd struct {
	flags *Flags
	app   *app.App

	// add flags
	parent      string
	description string
	categories  []string

	// list flags
	jsonOutput bool
}

// NewNoteCmd creates a new note command
func NewNoteCmd(flags *Flags, app *app.App) *NoteCmd {
	return &NoteCmd{flags: flags, app: app}
}

// Register adds the note command to the application
func (cmd *NoteCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "note",
		Usage: "Manage notes",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a note",
				UsageText: "taskcoach note add [options] <subject>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "parent", Usage: "parent note", Destination: &cmd.parent},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "note body", Destination: &cmd.description},
					&cli.StringSliceFlag{Name: "category", Aliases: []string{"c"}, Usage: "category (repeatable)", Destination: &cmd.categories},
				},
				Action: cmd.runAdd,
			},
			{
				Name:      "list",
				Aliases:   []string{"ls"},
				Usage:     "List notes as a tree",
				UsageText: "taskcoach note list [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "output as JSON", Destination: &cmd.jsonOutput},
				},
				Action: cmd.runList,
			},
		},
	})

	return app
}

func (cmd *NoteCmd) runAdd(ctx context.Context, c *cli.Command) error {
	subject := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if err := validate.Subject(subject); err != nil {
		return err
	}

	var parent *model.Note
	if cmd.parent != "" {
		p, err := cmd.app.Lists.Notes.Find(cmd.parent)
		if err != nil {
			return fmt.Errorf("parent: %w", err)
		}
		parent = p
	}

	cats := make([]*model.Category, 0, len(cmd.categories))
	for _, ref := range cmd.categories {
		cat, err := cmd.app.Lists.Categories.Find(ref)
		if err != nil {
			return fmt.Errorf("category: %w", err)
		}
		cats = append(cats, cat)
	}

	note := cmd.app.Registry.NewNote(subject)
	note.SetDescription(cmd.description)
	for _, cat := range cats {
		note.AddCategory(cat)
	}

	if parent != nil {
		parent.AddChild(note)
	} else {
		cmd.app.Lists.Notes.Append(note)
	}

	if err := cmd.app.Save(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "added %s %s\n", shortID(note), note.Subject())
	return nil
}

type noteInfo struct {
	ID          string   `json:"id"`
	Subject     string   `json:"subject"`
	Description string   `json:"description,omitempty"`
	Parent      string   `json:"parent,omitempty"`
	Categories  []string `json:"categories,omitempty"`
}

func (cmd *NoteCmd) runList(ctx context.Context, c *cli.Command) error {
	out := c.Root().Writer
	sorter := container.BySubject[*model.Note]()

	var visit func(n *model.Note, depth int, fn func(*model.Note, int))
	visit = func(n *model.Note, depth int, fn func(*model.Note, int)) {
		fn(n, depth)
		for _, child := range sorter.Apply(n.Children()) {
			visit(child, depth+1, fn)
		}
	}

	roots := sorter.Apply(cmd.app.Lists.Notes.RootItems())
	if cmd.jsonOutput {
		infos := []noteInfo{}
		for _, n := range roots {
			visit(n, 0, func(n *model.Note, _ int) {
				info := noteInfo{ID: string(n.ID()), Subject: n.Subject(), Description: n.Description()}
				if p := n.Parent(); p != nil {
					info.Parent = string(p.ID())
				}
				for _, cat := range n.Categories() {
					info.Categories = append(info.Categories, cat.Subject())
				}
				infos = append(infos, info)
			})
		}
		return iojson.WriteWith(out, c.Root().ErrWriter, infos)
	}

	if len(roots) == 0 {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, "No notes found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSUBJECT\tCATEGORIES")
	for _, n := range roots {
		visit(n, 0, func(n *model.Note, depth int) {
			names := make([]string, 0, len(n.Categories()))
			for _, cat := range n.Categories() {
				names = append(names, cat.Subject())
			}
			_, _ = fmt.Fprintf(w, "%s\t%s%s\t%s\n",
				shortID(n), strings.Repeat("  ", depth), n.Subject(), strings.Join(names, ","))
		})
	}
	return w.Flush()
}
