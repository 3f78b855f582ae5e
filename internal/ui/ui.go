// Package ui prints harbor's human-facing output: one styled line per record
// outcome, end-of-run state, port snapshots, validation reports, billing
// results and telemetry events. Styling degrades to plain text when the
// writer is not a terminal.
package ui

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/papapumpkin/harbor/internal/billing"
	"github.com/papapumpkin/harbor/internal/cargo"
	"github.com/papapumpkin/harbor/internal/port"
	"github.com/papapumpkin/harbor/internal/scenario"
	"github.com/papapumpkin/harbor/internal/sim"
	"github.com/papapumpkin/harbor/internal/store"
)

// Status icons.
const (
	iconOK   = "✓"
	iconFail = "✗"
	iconPort = "⚓"
	iconShip = "◆"
	iconNote = "·"
)

// Printer writes styled lines to a single writer.
type Printer struct {
	w io.Writer

	ok     lipgloss.Style
	bad    lipgloss.Style
	dim    lipgloss.Style
	bold   lipgloss.Style
	accent lipgloss.Style
	header lipgloss.Style
}

// New returns a Printer writing to w. Colors follow what w supports.
func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:      w,
		ok:     r.NewStyle().Foreground(lipgloss.Color("#00E676")).Bold(true),
		bad:    r.NewStyle().Foreground(lipgloss.Color("#FF5252")).Bold(true),
		dim:    r.NewStyle().Foreground(lipgloss.Color("#8C8C8C")),
		bold:   r.NewStyle().Bold(true),
		accent: r.NewStyle().Foreground(lipgloss.Color("#00BFFF")),
		header: r.NewStyle().Foreground(lipgloss.Color("#00BFFF")).Bold(true),
	}
}

// Error prints an error line.
func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.w, "%s %s\n", p.bad.Render("error:"), msg)
}

// Info prints a de-emphasized line.
func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.w, p.dim.Render(msg))
}

// Fuel formats an amount of fuel with thousands separators and two decimals.
func Fuel(f float64) string {
	return humanize.CommafWithDigits(math.Round(f*100)/100, 2)
}

// Weight formats a container or hold weight.
func Weight(w float64) string {
	return humanize.CommafWithDigits(math.Round(w*10)/10, 1)
}

// RunStart prints the header of a scenario run.
func (p *Printer) RunStart(path string, records int, metric port.Metric) {
	fmt.Fprintf(p.w, "%s %s %s\n",
		p.header.Render("── run "+path+" ──"),
		p.dim.Render(fmt.Sprintf("%d record(s),", records)),
		p.dim.Render(metric.String()+" distance"))
}

// Report implements sim.Reporter.
func (p *Printer) Report(o sim.Outcome) {
	label := o.Action
	if label == "" {
		label = string(o.Kind)
	}
	line := fmt.Sprintf("#%-3d %-9s %s", o.Index, label, o.Subject)
	if o.ShipID != "" && !strings.HasPrefix(o.Subject, "ship ") {
		line += " " + p.dim.Render("ship "+o.ShipID)
	}

	if !o.OK() {
		fmt.Fprintf(p.w, "%s %s %s\n", p.bad.Render(iconFail), line, p.bad.Render(o.Err.Error()))
		return
	}
	var extra []string
	if o.PortID != "" && o.Kind == scenario.KindCommand {
		extra = append(extra, "at "+o.PortID)
	}
	if o.ShipID != "" {
		extra = append(extra, "fuel "+Fuel(o.Fuel))
	}
	if len(extra) > 0 {
		line += " " + p.dim.Render("("+strings.Join(extra, ", ")+")")
	}
	fmt.Fprintf(p.w, "%s %s\n", p.ok.Render(iconOK), line)
}

// Summary prints the counts and the final state of every port and ship.
func (p *Printer) Summary(sum *sim.Summary) {
	status := p.ok.Render(fmt.Sprintf("%d applied", sum.Applied))
	if sum.Rejected > 0 {
		status += ", " + p.bad.Render(fmt.Sprintf("%d rejected", sum.Rejected))
	}
	fmt.Fprintf(p.w, "\n%s %s %s\n", p.header.Render("run"), p.dim.Render(sum.RunID), status)

	for _, pt := range sum.Registry.Ports() {
		p.Port(pt.Snapshot())
	}
	for _, sh := range sum.Registry.Ships() {
		p.ship(store.ShipState{
			ID:          sh.ID(),
			PortID:      sh.Port().ID(),
			Fuel:        sh.Fuel(),
			MaxWeight:   sh.MaxWeight(),
			Limits:      sh.Limits(),
			Consumption: sh.Consumption(),
			Containers:  sh.Containers(),
		})
	}
}

// Port prints a port snapshot.
func (p *Printer) Port(s port.Snapshot) {
	fmt.Fprintf(p.w, "%s %s %s\n",
		p.accent.Render(iconPort),
		p.bold.Render("port "+s.ID),
		p.dim.Render(fmt.Sprintf("(%.4f, %.4f)", s.Latitude, s.Longitude)))
	if len(s.Ships) > 0 {
		fmt.Fprintf(p.w, "    docked:     %s\n", strings.Join(s.Ships, ", "))
	}
	if len(s.History) > 0 {
		fmt.Fprintf(p.w, "    departures: %s\n", strings.Join(s.History, ", "))
	}
	p.containers("pool", s.Containers)
}

// ShipState prints a stored ship.
func (p *Printer) ShipState(s store.ShipState) {
	p.ship(s)
}

// ship prints one ship line: hold count against MaxAll, weight against
// MaxWeight and the consumption of the hold.
func (p *Printer) ship(s store.ShipState) {
	var w float64
	for _, c := range s.Containers {
		w += c.Weight
	}
	fmt.Fprintf(p.w, "%s %s %s\n",
		p.accent.Render(iconShip),
		p.bold.Render("ship "+s.ID),
		p.dim.Render(fmt.Sprintf("at %s, fuel %s, %d/%d container(s), %s/%s kg, consumption %s",
			s.PortID, Fuel(s.Fuel), len(s.Containers), s.Limits.MaxAll,
			Weight(w), Weight(s.MaxWeight), Fuel(s.Consumption))))
	p.containers("hold", s.Containers)
}

func (p *Printer) containers(label string, cs []cargo.Container) {
	if len(cs) == 0 {
		return
	}
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		parts = append(parts, fmt.Sprintf("%s %s %s", c.ID, c.Category, Weight(c.Weight)))
	}
	fmt.Fprintf(p.w, "    %-11s %s\n", label+":", strings.Join(parts, p.dim.Render(" | ")))
}

// ValidateResult prints the outcome of validating a scenario.
func (p *Printer) ValidateResult(name string, records int, errs []*scenario.RecordError) {
	if len(errs) == 0 {
		fmt.Fprintf(p.w, "%s %s\n", p.ok.Render(iconOK+" scenario "+name), fmt.Sprintf("%d record(s), no errors", records))
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", p.bad.Render(fmt.Sprintf("%s scenario %s", iconFail, name)), fmt.Sprintf("%d error(s) in %d record(s):", len(errs), records))
	for _, e := range errs {
		fmt.Fprintf(p.w, "  %s %s %s\n", p.bad.Render("•"), p.dim.Render("["+string(e.Category)+"]"), e.Error())
	}
}

// Runs prints stored runs, newest first.
func (p *Printer) Runs(runs []store.Run) {
	if len(runs) == 0 {
		p.Info("no runs stored")
		return
	}
	for _, r := range runs {
		fmt.Fprintf(p.w, "%s %s %s %s\n",
			p.bold.Render(r.ID),
			r.Scenario,
			p.ok.Render(fmt.Sprintf("%d applied", r.Applied))+", "+p.bad.Render(fmt.Sprintf("%d rejected", r.Rejected)),
			p.dim.Render(r.Distance+", "+humanize.Time(r.CreatedAt)))
	}
}

// BillingResult prints one billing step.
func (p *Printer) BillingResult(r billing.Result) {
	if r.Step.Note != "" {
		fmt.Fprintln(p.w, p.header.Render("── "+r.Step.Note+" ──"))
	}

	var what string
	switch r.Step.Action {
	case billing.ActionPay:
		what = fmt.Sprintf("bill %s pays %s", r.Step.Bill, Fuel(r.Step.Amount))
	case billing.ActionLimit:
		what = fmt.Sprintf("bill %s limit %+g", r.Step.Bill, r.Step.Amount)
	default:
		who := fmt.Sprintf("customer %d", r.Step.Customer)
		if r.Customer != nil {
			who = r.Customer.FirstName
		}
		what = fmt.Sprintf("%s %s %g via operator %d", who, r.Step.Action, r.Step.Amount, r.Step.OperatorID)
	}
	line := fmt.Sprintf("#%-3d %s", r.Index, what)

	if r.Err != nil {
		fmt.Fprintf(p.w, "%s %s %s\n", p.bad.Render(iconFail), line, p.bad.Render(r.Err.Error()))
		return
	}
	detail := fmt.Sprintf("debt %s / limit %s", Fuel(r.Bill.Debt), Fuel(r.Bill.Limit))
	if r.Cost > 0 {
		detail = "cost " + Fuel(r.Cost) + ", " + detail
	}
	fmt.Fprintf(p.w, "%s %s %s\n", p.ok.Render(iconOK), line, p.dim.Render("("+detail+")"))
}

// BillingSummary prints every bill of a network sorted by ID.
func (p *Printer) BillingSummary(bills []*billing.Bill) {
	fmt.Fprintln(p.w, p.header.Render("── bills ──"))
	for _, b := range bills {
		fmt.Fprintf(p.w, "%s %s %s\n", p.accent.Render(iconNote), p.bold.Render("bill "+b.ID),
			p.dim.Render(fmt.Sprintf("operator %d, debt %s / limit %s", b.OperatorID, Fuel(b.Debt), Fuel(b.Limit))))
	}
}
