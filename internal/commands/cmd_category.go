package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskcoach/internal/app"
	"github.com/colonyops/taskcoach/internal/core/appearance"
	"github.com/colonyops/taskcoach/internal/core/container"
	"github.com/colonyops/taskcoach/internal/core/model"
	"github.com/colonyops/taskcoach/internal/core/validate"
	"github.com/colonyops/taskcoach/pkg/iojson"
)

type CategoryCmd struct {
	flags *Flags
	app   *app.App

	// add flags
	parent     string
	color      string
	background string
	exclusive  bool

	// list flags
	jsonOutput bool
}

// NewCategoryCmd creates a new category command
func NewCategoryCmd(flags *Flags, app *app.App) *CategoryCmd {
	return &CategoryCmd{flags: flags, app: app}
}

// Register adds the category command to the application
func (cmd *CategoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "category",
		Aliases: []string{"cat"},
		Usage:   "Manage categories",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a category",
				UsageText: "taskcoach category add [options] <subject>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "parent", Usage: "parent category", Destination: &cmd.parent},
					&cli.StringFlag{Name: "color", Usage: "foreground color as #rrggbb", Destination: &cmd.color},
					&cli.StringFlag{Name: "background", Usage: "background color as #rrggbb", Destination: &cmd.background},
					&cli.BoolFlag{Name: "exclusive", Usage: "subcategories are mutually exclusive", Destination: &cmd.exclusive},
				},
				Action: cmd.runAdd,
			},
			{
				Name:      "list",
				Aliases:   []string{"ls"},
				Usage:     "List categories as a tree",
				UsageText: "taskcoach category list [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "output as JSON", Destination: &cmd.jsonOutput},
				},
				Action: cmd.runList,
			},
		},
	})

	return app
}

func (cmd *CategoryCmd) runAdd(ctx context.Context, c *cli.Command) error {
	subject := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if err := validate.Subject(subject); err != nil {
		return err
	}

	var parent *model.Category
	if cmd.parent != "" {
		p, err := cmd.app.Lists.Categories.Find(cmd.parent)
		if err != nil {
			return fmt.Errorf("parent: %w", err)
		}
		parent = p
	}

	cat := cmd.app.Registry.NewCategory(subject)
	if cmd.color != "" {
		fg, err := appearance.Hex(cmd.color)
		if err != nil {
			return fmt.Errorf("color: %w", err)
		}
		cat.SetForegroundColor(fg)
	}
	if cmd.background != "" {
		bg, err := appearance.Hex(cmd.background)
		if err != nil {
			return fmt.Errorf("background: %w", err)
		}
		cat.SetBackgroundColor(bg)
	}
	cat.SetExclusiveSubcategories(cmd.exclusive)

	if parent != nil {
		parent.AddChild(cat)
	} else {
		cmd.app.Lists.Categories.Append(cat)
	}

	if err := cmd.app.Save(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "added %s %s\n", shortID(cat), cat.Subject())
	return nil
}

type categoryInfo struct {
	ID        string `json:"id"`
	Subject   string `json:"subject"`
	Parent    string `json:"parent,omitempty"`
	Color     string `json:"color,omitempty"`
	Exclusive bool   `json:"exclusive"`
	Items     int    `json:"items"`
}

func (cmd *CategoryCmd) runList(ctx context.Context, c *cli.Command) error {
	out := c.Root().Writer
	sorter := container.BySubject[*model.Category]()

	var infos []categoryInfo
	var visit func(cat *model.Category, depth int, fn func(*model.Category, int))
	visit = func(cat *model.Category, depth int, fn func(*model.Category, int)) {
		fn(cat, depth)
		for _, child := range sorter.Apply(cat.Children()) {
			visit(child, depth+1, fn)
		}
	}

	collect := func(cat *model.Category, _ int) {
		info := categoryInfo{
			ID:        string(cat.ID()),
			Subject:   cat.Subject(),
			Exclusive: cat.ExclusiveSubcategories(),
			Items:     len(cat.Categorizables()),
		}
		if p := cat.Parent(); p != nil {
			info.Parent = string(p.ID())
		}
		if col := cat.ResolvedForegroundColor(); col.IsSet() {
			info.Color = col.Hex()
		}
		infos = append(infos, info)
	}

	roots := sorter.Apply(cmd.app.Lists.Categories.RootItems())
	if cmd.jsonOutput {
		for _, cat := range roots {
			visit(cat, 0, collect)
		}
		return iojson.WriteWith(out, c.Root().ErrWriter, infos)
	}

	if len(roots) == 0 {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, "No categories found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSUBJECT\tITEMS\tCOLOR")
	for _, cat := range roots {
		visit(cat, 0, func(cat *model.Category, depth int) {
			color := "-"
			if col := cat.ResolvedForegroundColor(); col.IsSet() {
				color = col.Hex()
			}
			_, _ = fmt.Fprintf(w, "%s\t%s%s\t%d\t%s\n",
				shortID(cat), strings.Repeat("  ", depth), cat.Subject(), len(cat.Categorizables()), color)
		})
	}
	return w.Flush()
}
