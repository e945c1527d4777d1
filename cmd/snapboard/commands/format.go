package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wonny/snapboard/internal/dashboard"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	separator       = "───────────────────────────────────────────────────────────"
	doubleSeparator = "═══════════════════════════════════════════════════════════"
)

// printer writes the shared CLI layout to w
type printer struct {
	w io.Writer
}

func (p printer) header(title string) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, doubleSeparator)
	fmt.Fprintf(p.w, "  %s\n", title)
	fmt.Fprintln(p.w, separator)
}

func (p printer) success(message string) {
	fmt.Fprintf(p.w, "✅ %s\n", message)
}

func (p printer) warning(message string) {
	fmt.Fprintf(p.w, "⚠️  %s\n", message)
}

func (p printer) keyValue(key, value string, keyWidth int) {
	fmt.Fprintf(p.w, "   %-*s : %s\n", keyWidth, key, value)
}

// tableHeader prints column titles and an underline sized to the widths
func (p printer) tableHeader(columns []string, widths []int) {
	p.tableRow(columns, widths)

	total := 0
	for i, width := range widths {
		total += width
		if i < len(widths)-1 {
			total += 2 // spacing
		}
	}
	fmt.Fprintln(p.w, strings.Repeat("─", total))
}

func (p printer) tableRow(values []string, widths []int) {
	for i, val := range values {
		if i < len(values)-1 {
			fmt.Fprintf(p.w, "%-*s  ", widths[i], val)
		} else {
			fmt.Fprint(p.w, val)
		}
	}
	fmt.Fprintln(p.w)
}

// sectionOK prints a non-ok section state and reports whether the body should follow
func (p printer) sectionOK(state dashboard.SectionState) bool {
	if state.OK() {
		return true
	}
	p.warning(fmt.Sprintf("[%s] %s", state.Status, state.Message))
	return false
}

// printDashboard renders every section for the terminal
func printDashboard(w io.Writer, d *dashboard.Dashboard) {
	p := printer{w: w}

	p.header("Snapboard Dashboard")
	p.keyValue("Generated", formatTime(&d.GeneratedAt), 10)
	p.keyValue("Config", d.ConfigHash, 10)

	printHoldings(p, d.Holdings)
	printSeries(p, d.Series)
	printPanels(p, d.Panels)
	if d.Ema != nil {
		printEma(p, d.Ema)
	}

	fmt.Fprintln(w, doubleSeparator)
	if d.Degraded() {
		p.warning("Some sections are degraded")
	} else {
		p.success("All sections ok")
	}
}

func printHoldings(p printer, h dashboard.HoldingsSection) {
	p.header("Holdings")
	if !p.sectionOK(h.SectionState) {
		return
	}

	p.keyValue("As of", formatTime(h.AsOf), 10)
	p.keyValue("Total", formatUSD(h.TotalValue), 10)
	fmt.Fprintln(p.w)

	widths := []int{4, 10, 16, 14, 8}
	p.tableHeader([]string{"#", "Coin", "Amount", "USD Value", "Share"}, widths)

	shares := make(map[string]float64, len(h.Allocation))
	for _, a := range h.Allocation {
		shares[a.Entity] = a.Share
	}
	for i, s := range h.Holdings {
		p.tableRow([]string{
			fmt.Sprintf("%d", i+1),
			s.Entity,
			fmt.Sprintf("%.6f", s.Amount),
			formatUSD(s.Value),
			fmt.Sprintf("%.1f%%", shares[s.Entity]*100),
		}, widths)
	}
}

func printSeries(p printer, s dashboard.SeriesSection) {
	p.header("Total Value")
	if !p.sectionOK(s.SectionState) {
		return
	}

	p.keyValue("Points", fmt.Sprintf("%d", len(s.Points)), 11)
	p.keyValue("Last import", formatTime(s.LastImport), 11)
	if n := len(s.Points); n > 0 {
		first, last := s.Points[0], s.Points[n-1]
		p.keyValue("First", fmt.Sprintf("%s  %s", formatTime(&first.Timestamp), formatUSD(first.TotalValue)), 11)
		p.keyValue("Latest", fmt.Sprintf("%s  %s", formatTime(&last.Timestamp), formatUSD(last.TotalValue)), 11)
	}
}

func printPanels(p printer, panels []dashboard.PanelSection) {
	p.header("Panels")
	if len(panels) == 0 {
		fmt.Fprintln(p.w, "   (none configured)")
		return
	}

	widths := []int{14, 14, 12, 12, 10}
	p.tableHeader([]string{"Panel", "Field", "Value", "Label", "Severity"}, widths)

	for _, panel := range panels {
		name := panel.Name
		if !panel.OK() || panel.Classification == nil {
			p.tableRow([]string{name, panel.Field, "-", string(panel.Status), panel.Message}, widths)
			continue
		}
		c := panel.Classification
		p.tableRow([]string{name, panel.Field, fmt.Sprintf("%.4g", c.RawValue), string(c.Label), string(c.Severity)}, widths)
	}
}

func printEma(p printer, e *dashboard.EmaSection) {
	p.header("EMA Matrix (" + e.Table + ")")
	if e.Matrix == nil {
		p.sectionOK(e.SectionState)
		return
	}
	if !e.OK() {
		p.warning(fmt.Sprintf("[%s] %s", e.Status, e.Message))
	}

	columns := append([]string{"Entity"}, e.Matrix.Timeframes...)
	widths := make([]int, len(columns))
	widths[0] = 10
	for i := 1; i < len(widths); i++ {
		widths[i] = 5
	}
	p.tableHeader(columns, widths)

	failed := make(map[int]string, len(e.RowErrors))
	for _, re := range e.RowErrors {
		failed[re.Index] = re.Error
	}

	for _, row := range e.Matrix.Rows {
		if msg, ok := failed[row.Index]; ok {
			p.tableRow([]string{fmt.Sprintf("#%d", row.Index), "✗ " + msg}, widths[:2])
			continue
		}
		values := []string{row.Entity}
		for _, cell := range row.Cells {
			values = append(values, arrow(cell.FastAboveSlow))
		}
		p.tableRow(values, widths)
	}
}

func arrow(up bool) string {
	if up {
		return "▲"
	}
	return "▼"
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04 UTC")
}

// formatUSD renders a dollar amount with thousands separators
func formatUSD(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := fmt.Sprintf("%.2f", v)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + frac
}
