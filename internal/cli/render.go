package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/v2kk/stackctl/internal/engine"
	"github.com/v2kk/stackctl/internal/resource"
	"github.com/v2kk/stackctl/internal/state"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithHeaderAutoFormat(tw.Off),
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.Off}},
		})))
}

func coloredAction(a engine.Action) string {
	switch a {
	case engine.ActionCreate:
		return color.GreenString(string(a))
	case engine.ActionReplace:
		return color.YellowString(string(a))
	case engine.ActionDelete:
		return color.RedString(string(a))
	case engine.ActionRead:
		return color.CyanString(string(a))
	default:
		return string(a)
	}
}

func coloredStatus(s resource.Status) string {
	switch s {
	case resource.StatusResolved:
		return color.GreenString(s.String())
	case resource.StatusFailed:
		return color.RedString(s.String())
	case resource.StatusSkipped:
		return color.YellowString(s.String())
	default:
		return s.String()
	}
}

// renderResult prints the per-declaration outcomes of an apply or destroy run
// followed by a one-line summary.
func renderResult(w io.Writer, res *engine.Result) error {
	table := newTable(w)
	table.Header("Resource", "Action", "Status", "ID", "Detail")

	data := make([][]any, 0, len(res.Outcomes))
	for _, o := range res.Outcomes {
		detail := ""
		switch {
		case o.Err != nil:
			detail = o.Err.Error()
		case o.SkippedBecause != "":
			detail = "dependency " + o.SkippedBecause + " did not resolve"
		}
		data = append(data, []any{o.Key, coloredAction(o.Action), coloredStatus(o.Status), o.ID, detail})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	c := res.Counts()
	fmt.Fprintf(w, "\nStack %s: %d resolved, %d no-op, %d failed, %d skipped (run %s)\n",
		res.Stack, c.Resolved, c.NoOp, c.Failed, c.Skipped, res.RunID)
	return nil
}

// renderPlan prints the actions an apply would take without touching any
// provider.
func renderPlan(w io.Writer, stackName string, steps []engine.Step) error {
	table := newTable(w)
	table.Header("Resource", "Action")

	data := make([][]any, 0, len(steps))
	for _, s := range steps {
		data = append(data, []any{s.Key, coloredAction(s.Action)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nStack %s: %d declarations planned\n", stackName, len(steps))
	return nil
}

// renderState prints the recorded resources of a stack, sorted by key.
func renderState(w io.Writer, stackName string, records map[string]*state.Record) error {
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table := newTable(w)
	table.Header("Resource", "ID", "Applied", "Run")

	data := make([][]any, 0, len(keys))
	for _, k := range keys {
		rec := records[k]
		data = append(data, []any{k, rec.ID, rec.AppliedAt.Format("2006-01-02 15:04:05"), rec.RunID})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nStack %s: %d recorded resources\n", stackName, len(keys))
	return nil
}
