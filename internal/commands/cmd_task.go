package commands

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskcoach/internal/app"
	"github.com/colonyops/taskcoach/internal/core/container"
	"github.com/colonyops/taskcoach/internal/core/date"
	"github.com/colonyops/taskcoach/internal/core/model"
	"github.com/colonyops/taskcoach/internal/core/validate"
	"github.com/colonyops/taskcoach/internal/core/tree"
	"github.com/colonyops/taskcoach/pkg/iojson"
)

type TaskCmd struct {
	flags *Flags
	app   *app.App

	// add/edit flags
	parent      string
	description string
	plannedAt   string
	startedAt   string
	dueAt       string
	remindAt    string
	priority    int
	categories  []string
	budget      time.Duration
	hourlyFee   float64
	fixedFee    float64
	percent     int
	markParent  string
	requires    []string
	noRequires  []string
	subject     string
	recurrence  string

	// list flags
	search         string
	statuses       []string
	hideCompleted  bool
	hideBlocked    bool
	hideComposite  bool
	sortKey        string
	descending     bool
	tree           bool
	jsonOutput     bool
	categoryFilter []string
}

// NewTaskCmd creates a new task command
func NewTaskCmd(flags *Flags, app *app.App) *TaskCmd {
	return &TaskCmd{flags: flags, app: app}
}

// Register adds the task command to the application
func (cmd *TaskCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "task",
		Aliases: []string{"t"},
		Usage:   "Create, list and complete tasks",
		Description: `Task commands operate on the local document.

Tasks are referenced by full ID, a unique ID prefix, or their exact subject.
Dates accept 2006-01-02, "2006-01-02 15:04", RFC 3339, now, today, tomorrow
and offsets like +2h or +3d.`,
		Commands: []*cli.Command{
			cmd.addCmd(),
			cmd.editCmd(),
			cmd.listCmd(),
			cmd.showCmd(),
			cmd.completeCmd(),
			cmd.reopenCmd(),
			cmd.removeCmd(),
			cmd.snoozeCmd(),
			cmd.dismissCmd(),
		},
	})

	return app
}

func (cmd *TaskCmd) attributeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "task description", Destination: &cmd.description},
		&cli.StringFlag{Name: "start", Usage: "planned start date", Destination: &cmd.plannedAt},
		&cli.StringFlag{Name: "started", Usage: "actual start date", Destination: &cmd.startedAt},
		&cli.StringFlag{Name: "due", Usage: "due date", Destination: &cmd.dueAt},
		&cli.StringFlag{Name: "reminder", Usage: "reminder date", Destination: &cmd.remindAt},
		&cli.IntFlag{Name: "priority", Aliases: []string{"p"}, Usage: "priority (higher is more important)", Destination: &cmd.priority},
		&cli.StringSliceFlag{Name: "category", Aliases: []string{"c"}, Usage: "category to add (repeatable)", Destination: &cmd.categories},
		&cli.DurationFlag{Name: "budget", Usage: "time budget", Destination: &cmd.budget},
		&cli.FloatFlag{Name: "hourly-fee", Usage: "hourly fee", Destination: &cmd.hourlyFee},
		&cli.FloatFlag{Name: "fixed-fee", Usage: "fixed fee", Destination: &cmd.fixedFee},
		&cli.IntFlag{Name: "percent", Usage: "percentage complete (0-100)", Destination: &cmd.percent},
		&cli.StringFlag{Name: "mark-parent-completed", Usage: "complete the parent when all subtasks are done: yes, no or inherit", Destination: &cmd.markParent},
		&cli.StringSliceFlag{Name: "requires", Usage: "prerequisite task (repeatable)", Destination: &cmd.requires},
		&cli.StringFlag{Name: "recur", Usage: "recurrence: daily, weekly, monthly, yearly or none", Destination: &cmd.recurrence},
	}
}

func (cmd *TaskCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a task",
		UsageText: "taskcoach task add [options] <subject>",
		Flags: append(cmd.attributeFlags(),
			&cli.StringFlag{Name: "parent", Usage: "parent task", Destination: &cmd.parent},
		),
		Action: cmd.runAdd,
	}
}

func (cmd *TaskCmd) editCmd() *cli.Command {
	return &cli.Command{
		Name:          "edit",
		Usage:         "Change the attributes of a task",
		UsageText:     "taskcoach task edit [options] <task>",
		ShellComplete: TaskCompleter(cmd.app),
		Flags: append(cmd.attributeFlags(),
			&cli.StringFlag{Name: "subject", Aliases: []string{"s"}, Usage: "new subject", Destination: &cmd.subject},
			&cli.StringSliceFlag{Name: "no-requires", Usage: "prerequisite task to drop (repeatable)", Destination: &cmd.noRequires},
		),
		Action: cmd.runEdit,
	}
}

func (cmd *TaskCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List tasks",
		UsageText: "taskcoach task list [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "search", Usage: "substring or glob matched against subjects", Destination: &cmd.search},
			&cli.StringSliceFlag{Name: "status", Usage: "only show tasks with this status (repeatable)", Destination: &cmd.statuses},
			&cli.BoolFlag{Name: "hide-completed", Usage: "hide completed tasks", Destination: &cmd.hideCompleted},
			&cli.BoolFlag{Name: "hide-blocked", Usage: "hide tasks with uncompleted prerequisites", Destination: &cmd.hideBlocked},
			&cli.BoolFlag{Name: "hide-composite", Usage: "hide tasks that have subtasks", Destination: &cmd.hideComposite},
			&cli.StringSliceFlag{Name: "category", Aliases: []string{"c"}, Usage: "only show tasks in this category (repeatable)", Destination: &cmd.categoryFilter},
			&cli.StringFlag{Name: "sort", Usage: "sort key: " + strings.Join(sortKeys(), ", "), Value: "subject", Destination: &cmd.sortKey},
			&cli.BoolFlag{Name: "desc", Usage: "sort descending", Destination: &cmd.descending},
			&cli.BoolFlag{Name: "tree", Usage: "show the task hierarchy", Destination: &cmd.tree},
			&cli.BoolFlag{Name: "json", Usage: "output as JSON", Destination: &cmd.jsonOutput},
		},
		Action: cmd.runList,
	}
}

func (cmd *TaskCmd) showCmd() *cli.Command {
	return &cli.Command{
		Name:          "show",
		Usage:         "Show one task",
		UsageText:     "taskcoach task show [--json] <task>",
		ShellComplete: TaskCompleter(cmd.app),
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "output as JSON", Destination: &cmd.jsonOutput},
		},
		Action: cmd.runShow,
	}
}

func (cmd *TaskCmd) completeCmd() *cli.Command {
	return &cli.Command{
		Name:          "complete",
		Aliases:       []string{"done"},
		Usage:         "Mark tasks completed",
		UsageText:     "taskcoach task complete <task>...",
		ShellComplete: TaskCompleter(cmd.app),
		Action:        cmd.each("completed", func(t *model.Task) { t.Complete() }),
	}
}

func (cmd *TaskCmd) reopenCmd() *cli.Command {
	return &cli.Command{
		Name:          "reopen",
		Usage:         "Mark tasks not completed",
		UsageText:     "taskcoach task reopen <task>...",
		ShellComplete: TaskCompleter(cmd.app),
		Action:        cmd.each("reopened", func(t *model.Task) { t.Reopen() }),
	}
}

func (cmd *TaskCmd) removeCmd() *cli.Command {
	return &cli.Command{
		Name:          "rm",
		Usage:         "Remove tasks and their subtasks",
		UsageText:     "taskcoach task rm <task>...",
		ShellComplete: TaskCompleter(cmd.app),
		Action: cmd.each("removed", func(t *model.Task) {
			cmd.app.Lists.Tasks.Remove(t)
		}),
	}
}

func (cmd *TaskCmd) snoozeCmd() *cli.Command {
	return &cli.Command{
		Name:  "snooze",
		Usage: "Move a task's reminder into the future",
		UsageText: `taskcoach task snooze <task> [duration]

The duration defaults to scheduler.snooze.`,
		ShellComplete: TaskCompleter(cmd.app),
		Action:        cmd.runSnooze,
	}
}

func (cmd *TaskCmd) dismissCmd() *cli.Command {
	return &cli.Command{
		Name:          "dismiss",
		Usage:         "Clear the reminders of tasks",
		UsageText:     "taskcoach task dismiss <task>...",
		ShellComplete: TaskCompleter(cmd.app),
		Action: cmd.each("dismissed", func(t *model.Task) {
			cmd.app.Reminders.Dismiss(t)
		}),
	}
}

func (cmd *TaskCmd) runSnooze(ctx context.Context, c *cli.Command) error {
	task, err := cmd.app.Lists.Tasks.Find(c.Args().First())
	if err != nil {
		return err
	}

	d := cmd.app.Config.Scheduler.Snooze
	if arg := c.Args().Get(1); arg != "" {
		if d, err = time.ParseDuration(arg); err != nil {
			return fmt.Errorf("duration: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("duration must be positive, got %s", arg)
		}
	}

	cmd.app.Reminders.Snooze(task, d)
	if err := cmd.app.Save(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "snoozed %s %s until %s\n", shortID(task), task.Subject(), formatWhen(task.Reminder(), cmd.app.Now()))
	return nil
}

func (cmd *TaskCmd) runAdd(ctx context.Context, c *cli.Command) error {
	subject := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if err := validate.Subject(subject); err != nil {
		return err
	}

	var parent *model.Task
	if cmd.parent != "" {
		p, err := cmd.app.Lists.Tasks.Find(cmd.parent)
		if err != nil {
			return fmt.Errorf("parent: %w", err)
		}
		parent = p
	}

	task := cmd.app.Registry.NewTask(subject)
	if err := cmd.apply(c, task); err != nil {
		return err
	}
	if parent != nil {
		parent.AddChild(task)
	} else {
		cmd.app.Lists.Tasks.Append(task)
	}

	if err := cmd.app.Save(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "added %s %s\n", shortID(task), task.Subject())
	return nil
}

func (cmd *TaskCmd) runEdit(ctx context.Context, c *cli.Command) error {
	task, err := cmd.app.Lists.Tasks.Find(c.Args().First())
	if err != nil {
		return err
	}
	if c.IsSet("subject") {
		if err := validate.SubjectField("subject", cmd.subject); err != nil {
			return err
		}
		task.SetSubject(cmd.subject)
	}
	if err := cmd.apply(c, task); err != nil {
		return err
	}
	if err := cmd.app.Save(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "updated %s %s\n", shortID(task), task.Subject())
	return nil
}

// apply copies the attribute flags that were set onto task.
func (cmd *TaskCmd) apply(c *cli.Command, task *model.Task) error {
	now := cmd.app.Now()

	if c.IsSet("description") {
		task.SetDescription(cmd.description)
	}
	if c.IsSet("start") {
		t, err := parseWhen(cmd.plannedAt, now, false)
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		task.SetPlannedStartDateTime(t)
	}
	if c.IsSet("started") {
		t, err := parseWhen(cmd.startedAt, now, false)
		if err != nil {
			return fmt.Errorf("started: %w", err)
		}
		task.SetActualStartDateTime(t)
	}
	if c.IsSet("due") {
		t, err := parseWhen(cmd.dueAt, now, true)
		if err != nil {
			return fmt.Errorf("due: %w", err)
		}
		task.SetDueDateTime(t)
	}
	if c.IsSet("reminder") {
		t, err := parseWhen(cmd.remindAt, now, false)
		if err != nil {
			return fmt.Errorf("reminder: %w", err)
		}
		task.SetReminder(t)
	}
	if c.IsSet("priority") {
		task.SetPriority(cmd.priority)
	}
	if c.IsSet("budget") {
		task.SetBudget(cmd.budget)
	}
	if c.IsSet("hourly-fee") {
		task.SetHourlyFee(cmd.hourlyFee)
	}
	if c.IsSet("fixed-fee") {
		task.SetFixedFee(cmd.fixedFee)
	}
	if c.IsSet("percent") {
		if cmd.percent < 0 || cmd.percent > 100 {
			return fmt.Errorf("percent: must be between 0 and 100, got %d", cmd.percent)
		}
		task.SetPercentageComplete(cmd.percent)
	}
	if c.IsSet("mark-parent-completed") {
		s, err := model.ParseTristate(cmd.markParent)
		if err != nil {
			return fmt.Errorf("mark-parent-completed: %w", err)
		}
		task.SetMarkParentCompleted(s)
	}
	if c.IsSet("recur") {
		unit, err := model.ParseRecurrenceUnit(cmd.recurrence)
		if err != nil {
			return fmt.Errorf("recur: %w", err)
		}
		r := model.Recurrence{}
		if unit != model.RecurNone {
			r = model.Recurrence{Unit: unit, Amount: 1}
		}
		task.SetRecurrence(r)
	}
	for _, ref := range cmd.categories {
		cat, err := cmd.app.Lists.Categories.Find(ref)
		if err != nil {
			return fmt.Errorf("category: %w", err)
		}
		task.AddCategory(cat)
	}
	for _, ref := range cmd.requires {
		p, err := cmd.app.Lists.Tasks.Find(ref)
		if err != nil {
			return fmt.Errorf("requires: %w", err)
		}
		if p == task {
			return fmt.Errorf("requires: a task cannot require itself")
		}
		task.AddPrerequisite(p)
	}
	for _, ref := range cmd.noRequires {
		p, err := cmd.app.Lists.Tasks.Find(ref)
		if err != nil {
			return fmt.Errorf("no-requires: %w", err)
		}
		task.RemovePrerequisite(p)
	}
	return nil
}

// each resolves every argument to a task, applies fn, and saves.
func (cmd *TaskCmd) each(verb string, fn func(*model.Task)) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() == 0 {
			return fmt.Errorf("at least one task is required")
		}

		tasks := make([]*model.Task, 0, c.Args().Len())
		for _, ref := range c.Args().Slice() {
			t, err := cmd.app.Lists.Tasks.Find(ref)
			if err != nil {
				return err
			}
			tasks = append(tasks, t)
		}
		for _, t := range tasks {
			fn(t)
			_, _ = fmt.Fprintf(c.Root().Writer, "%s %s %s\n", verb, shortID(t), t.Subject())
		}
		return cmd.app.Save(ctx)
	}
}

func (cmd *TaskCmd) runList(ctx context.Context, c *cli.Command) error {
	stages, err := cmd.stages()
	if err != nil {
		return err
	}
	sorter, err := container.TaskSorter(cmd.sortKey, cmd.descending)
	if err != nil {
		return err
	}

	tasks := sorter.Apply(cmd.app.Lists.Tasks.View(stages...))
	out := c.Root().Writer
	now := cmd.app.Now()

	if cmd.jsonOutput {
		infos := make([]taskInfo, 0, len(tasks))
		for _, t := range tasks {
			infos = append(infos, cmd.info(t))
		}
		return iojson.WriteWith(out, c.Root().ErrWriter, infos)
	}

	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, "No tasks found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSUBJECT\tSTATUS\tDUE\tPRIORITY\tSPENT")
	row := func(t *model.Task, depth int) {
		_, _ = fmt.Fprintf(w, "%s\t%s%s\t%s\t%s\t%d\t%s\n",
			shortID(t),
			strings.Repeat("  ", depth),
			t.Subject(),
			t.Status(),
			formatWhen(t.DueDateTime(), now),
			t.Priority(),
			formatDuration(cmd.app.Efforts.TimeSpentForTask(t, false)),
		)
	}
	if cmd.tree {
		walkTree(tasks, sorter, row)
	} else {
		for _, t := range tasks {
			row(t, 0)
		}
	}
	return w.Flush()
}

func (cmd *TaskCmd) stages() ([]container.Stage[*model.Task], error) {
	var stages []container.Stage[*model.Task]

	if cmd.search != "" {
		stages = append(stages, container.SearchFilter[*model.Task]{Query: cmd.search, TreeMode: cmd.tree})
	}

	if len(cmd.categoryFilter) > 0 {
		cats := make([]*model.Category, 0, len(cmd.categoryFilter))
		for _, ref := range cmd.categoryFilter {
			cat, err := cmd.app.Lists.Categories.Find(ref)
			if err != nil {
				return nil, fmt.Errorf("category: %w", err)
			}
			cats = append(cats, cat)
		}
		stages = append(stages, container.CategoryFilter[*model.Task]{Categories: cats})
	}

	var view container.TaskViewFilter
	if cmd.hideCompleted {
		view = container.HideCompleted()
	}
	view.HideBlocked = cmd.hideBlocked
	view.HideCompositeTasks = cmd.hideComposite
	view.TreeMode = cmd.tree
	if len(cmd.statuses) > 0 {
		keep := make([]model.Status, 0, len(cmd.statuses))
		for _, s := range cmd.statuses {
			st, err := model.ParseStatus(s)
			if err != nil {
				return nil, err
			}
			keep = append(keep, st)
		}
		for _, st := range model.Statuses {
			if !slices.Contains(keep, st) {
				view.HideStatuses = append(view.HideStatuses, st)
			}
		}
	}
	stages = append(stages, view)

	return stages, nil
}

// walkTree visits tasks depth first, parents before children, siblings in
// sorter order. Tasks whose parent is not in tasks are treated as roots.
func walkTree(tasks []*model.Task, sorter container.Sorter[*model.Task], fn func(*model.Task, int)) {
	visible := make(map[*model.Task]bool, len(tasks))
	for _, t := range tasks {
		visible[t] = true
	}

	var visit func(t *model.Task, depth int)
	visit = func(t *model.Task, depth int) {
		fn(t, depth)
		for _, child := range sorter.Apply(t.Children()) {
			if visible[child] {
				visit(child, depth+1)
			}
		}
	}
	for _, t := range tasks {
		if p := t.Parent(); p == nil || !visible[p] {
			visit(t, 0)
		}
	}
}

func (cmd *TaskCmd) runShow(ctx context.Context, c *cli.Command) error {
	task, err := cmd.app.Lists.Tasks.Find(c.Args().First())
	if err != nil {
		return err
	}

	info := cmd.info(task)
	if cmd.jsonOutput {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, info)
	}
	return printTask(c.Root().Writer, task, info, cmd.app.Now())
}

type taskInfo struct {
	ID                 string     `json:"id"`
	Subject            string     `json:"subject"`
	Description        string     `json:"description,omitempty"`
	Status             string     `json:"status"`
	Parent             string     `json:"parent,omitempty"`
	Children           int        `json:"children"`
	Priority           int        `json:"priority"`
	PlannedStart       *time.Time `json:"planned_start,omitempty"`
	ActualStart        *time.Time `json:"actual_start,omitempty"`
	Due                *time.Time `json:"due,omitempty"`
	Completed          *time.Time `json:"completed,omitempty"`
	Reminder           *time.Time `json:"reminder,omitempty"`
	Recurrence         string     `json:"recurrence,omitempty"`
	Categories         []string   `json:"categories,omitempty"`
	Prerequisites      []string   `json:"prerequisites,omitempty"`
	Blocked            bool       `json:"blocked"`
	Tracking           bool       `json:"tracking"`
	TimeSpent          string     `json:"time_spent"`
	RecursiveTimeSpent string     `json:"recursive_time_spent"`
	BudgetLeft         string     `json:"budget_left,omitempty"`
	PercentComplete    int        `json:"percent_complete"`
	FixedFee           float64    `json:"fixed_fee,omitempty"`
	Revenue            float64    `json:"revenue"`
	MarkParent         string     `json:"mark_parent_completed,omitempty"`
	Color              string     `json:"color,omitempty"`
}

func (cmd *TaskCmd) info(t *model.Task) taskInfo {
	info := taskInfo{
		ID:                 string(t.ID()),
		Subject:            t.Subject(),
		Description:        t.Description(),
		Status:             string(t.Status()),
		Children:           len(t.Children()),
		Priority:           t.Priority(),
		PlannedStart:       optTime(t.PlannedStartDateTime()),
		ActualStart:        optTime(t.ActualStartDateTime()),
		Due:                optTime(t.DueDateTime()),
		Completed:          optTime(t.CompletionDateTime()),
		Reminder:           optTime(t.Reminder()),
		Blocked:            t.Blocked(),
		Tracking:           t.IsBeingTracked(),
		TimeSpent:          formatDuration(cmd.app.Efforts.TimeSpentForTask(t, false)),
		RecursiveTimeSpent: formatDuration(cmd.app.Efforts.TimeSpentForTask(t, true)),
		PercentComplete:    t.RecursivePercentageComplete(),
		FixedFee:           t.FixedFee(),
		Revenue:            t.RecursiveRevenue(),
	}
	if m := t.MarkParentCompleted(); m != model.Inherit {
		info.MarkParent = m.String()
	}
	if p := t.Parent(); p != nil {
		info.Parent = string(p.ID())
	}
	if r := t.Recurrence(); r.Unit != model.RecurNone {
		info.Recurrence = fmt.Sprintf("every %d %s", r.Amount, r.Unit)
	}
	for _, c := range t.Categories() {
		info.Categories = append(info.Categories, c.Subject())
	}
	for _, p := range t.Prerequisites() {
		info.Prerequisites = append(info.Prerequisites, p.Subject())
	}
	if left, ok := t.RecursiveBudgetLeft(); ok {
		info.BudgetLeft = formatDuration(left)
	}
	if c := t.ResolvedForegroundColor(); c.IsSet() {
		info.Color = c.Hex()
	}
	return info
}

func printTask(out io.Writer, t *model.Task, info taskInfo, now time.Time) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	line := func(k, v string) { _, _ = fmt.Fprintf(w, "%s:\t%s\n", k, v) }

	line("ID", info.ID)
	line("Subject", info.Subject)
	if info.Description != "" {
		line("Description", info.Description)
	}
	line("Status", info.Status)
	if p := t.Parent(); p != nil {
		line("Parent", p.Subject())
	}
	line("Priority", fmt.Sprint(info.Priority))
	line("Planned start", formatWhen(t.PlannedStartDateTime(), now))
	if date.IsSet(t.ActualStartDateTime()) {
		line("Started", formatWhen(t.ActualStartDateTime(), now))
	}
	line("Due", formatWhen(t.DueDateTime(), now))
	if date.IsSet(t.CompletionDateTime()) {
		line("Completed", formatWhen(t.CompletionDateTime(), now))
	}
	if date.IsSet(t.Reminder()) {
		line("Reminder", formatWhen(t.Reminder(), now))
	}
	if info.Recurrence != "" {
		line("Recurrence", info.Recurrence)
	}
	if len(info.Categories) > 0 {
		line("Categories", strings.Join(info.Categories, ", "))
	}
	if len(info.Prerequisites) > 0 {
		line("Prerequisites", strings.Join(info.Prerequisites, ", "))
	}
	line("Time spent", fmt.Sprintf("%s (%s with subtasks)", info.TimeSpent, info.RecursiveTimeSpent))
	if info.BudgetLeft != "" {
		line("Budget left", info.BudgetLeft)
	}
	line("Complete", fmt.Sprintf("%d%%", info.PercentComplete))
	if info.Tracking {
		line("Tracking", "yes")
	}
	return w.Flush()
}

func optTime(t time.Time) *time.Time {
	if !date.IsSet(t) {
		return nil
	}
	return &t
}

func shortID(obj interface{ ID() tree.ID }) string {
	id := string(obj.ID())
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func sortKeys() []string {
	keys := make([]string, 0, len(container.TaskSortKeys))
	for k := range container.TaskSortKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
