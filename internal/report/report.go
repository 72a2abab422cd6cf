// Package report renders run results and cluster details as terminal tables.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"

	"github.com/vvka-141/dwhetl/internal/config"
	"github.com/vvka-141/dwhetl/internal/etl"
	"github.com/vvka-141/dwhetl/pkg/dwh"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// maxListedKeys caps how many differing keys are printed per side.
const maxListedKeys = 20

// Printer writes report sections to an output stream.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter creates a Printer. Titles are styled only when w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &Printer{w: w, color: color}
}

func (p *Printer) title(s string) {
	if p.color {
		s = titleStyle.Render(s)
	}
	fmt.Fprintf(p.w, "\n%s\n", s)
}

func (p *Printer) status(ok bool, s string) string {
	if !p.color {
		return s
	}
	if ok {
		return okStyle.Render(s)
	}
	return warnStyle.Render(s)
}

func (p *Printer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.w)
	t.SetStyle(table.StyleLight)
	return t
}

func (p *Printer) keyValues(title string, rows [][2]string) {
	p.title(title)
	t := p.newTable()
	t.AppendHeader(table.Row{"Param", "Value"})
	for _, r := range rows {
		t.AppendRow(table.Row{r[0], r[1]})
	}
	t.Render()
}

// Params prints the cluster parameters shown before provisioning.
func (p *Printer) Params(params []config.Param) {
	rows := make([][2]string, 0, len(params))
	for _, param := range params {
		rows = append(rows, [2]string{param.Name, param.Value})
	}
	p.keyValues("Cluster parameters", rows)
}

// ClusterProperties prints the selected properties of a described cluster.
func (p *Printer) ClusterProperties(rows [][2]string) {
	p.keyValues("DB Status", rows)
}

// Plan prints the ordered steps of a validated plan.
func (p *Printer) Plan(plan *etl.Plan) {
	p.title("Step plan")
	t := p.newTable()
	t.AppendHeader(table.Row{"#", "Phase", "Step", "Table", "Depends on"})
	for i, step := range plan.Steps {
		t.AppendRow(table.Row{i + 1, step.Phase, step.Name, step.Table, strings.Join(step.DependsOn, ", ")})
	}
	t.Render()
	if len(plan.Satisfied) > 0 {
		fmt.Fprintf(p.w, "Staging already loaded: %s\n", strings.Join(plan.Satisfied, ", "))
	}
}

// PlanSQL prints the statement of every planned step.
func (p *Printer) PlanSQL(plan *etl.Plan) {
	for _, step := range plan.Steps {
		p.title(fmt.Sprintf("-- %s", step.Name))
		fmt.Fprintln(p.w, step.SQL)
	}
}

// Steps prints the executed load statements with their timings.
func (p *Printer) Steps(steps []dwh.StepResult) {
	p.title("Load steps")
	t := p.newTable()
	t.AppendHeader(table.Row{"Step", "Table", "Rows", "Seconds"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	for _, s := range steps {
		t.AppendRow(table.Row{s.Name, s.Table, s.RowsAffected, fmt.Sprintf("%.2f", s.Duration.Seconds())})
	}
	t.Render()
}

// Quality prints one row per checked table.
func (p *Printer) Quality(reports []dwh.QualityReport) {
	p.title("Quality checks")
	t := p.newTable()
	t.AppendHeader(table.Row{"Table", "Primary key", "Before", "Duplicated keys", "Removed", "After"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	for _, r := range reports {
		t.AppendRow(table.Row{r.Table, r.PrimaryKey, r.Before, r.DuplicateKeys, p.status(r.Removed == 0, fmt.Sprint(r.Removed)), r.After})
	}
	t.Render()
}

// Reconciliation prints the key counts of both sides and the keys each side
// lacks. Differences are findings; they are printed, not raised.
func (p *Printer) Reconciliation(d dwh.KeySetDiff) {
	p.title(fmt.Sprintf("Reconciliation %s ↔ %s", d.Left, d.Right))
	t := p.newTable()
	t.AppendHeader(table.Row{"Column", "Unique values"})
	t.AppendRow(table.Row{d.Left.String(), d.LeftCount})
	t.AppendRow(table.Row{d.Right.String(), d.RightCount})
	t.Render()

	if d.Matches() {
		fmt.Fprintln(p.w, p.status(true, "✓ key sets match"))
		return
	}
	p.missing(MissingLabel(d.Right, d.Left), d.OnlyInRight)
	p.missing(MissingLabel(d.Left, d.Right), d.OnlyInLeft)
}

func (p *Printer) missing(label string, keys []string) {
	if len(keys) == 0 {
		return
	}
	shown := keys
	suffix := ""
	if len(shown) > maxListedKeys {
		shown = shown[:maxListedKeys]
		suffix = fmt.Sprintf(", ... (%d more)", len(keys)-maxListedKeys)
	}
	fmt.Fprintf(p.w, "%s %d %s: %s%s\n", p.status(false, "!"), len(keys), label, strings.Join(shown, ", "), suffix)
}

// MissingLabel describes values of have that do not occur in lack.
func MissingLabel(have, lack dwh.KeyRef) string {
	if have.Table == dwh.TableUsers && lack.Table == dwh.TableSongplays {
		return "users with no NextSong plays"
	}
	return fmt.Sprintf("%s values missing from %s", have, lack)
}

// Run prints every section of a pipeline run report.
func (p *Printer) Run(r *dwh.RunReport) {
	if len(r.Steps) > 0 {
		p.Steps(r.Steps)
	}
	if len(r.Quality) > 0 {
		p.Quality(r.Quality)
	}
	for _, d := range r.Reconciliations {
		p.Reconciliation(d)
	}
	fmt.Fprintf(p.w, "\nRun %s finished in %.2f sec\n", r.RunID, r.Duration.Seconds())
}
