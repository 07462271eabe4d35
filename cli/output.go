package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sartorproj/epicast/dashboard"
)

// printer writes views as styled terminal text. Styling is dropped
// when w is not a terminal.
type printer struct {
	w     io.Writer
	title lipgloss.Style
	label lipgloss.Style
	muted lipgloss.Style
	alert lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:     w,
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#4F46E5")),
		label: r.NewStyle().Bold(true),
		muted: r.NewStyle().Faint(true),
		alert: r.NewStyle().Foreground(lipgloss.Color("#DC2626")),
	}
}

func (p *printer) line(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) view(v *dashboard.View) {
	sel := v.Selection
	p.line("%s", p.title.Render(sel.Region))
	p.line("%s", p.muted.Render(sel.Start.Format(time.DateOnly)+" to "+sel.End.Format(time.DateOnly)))
	p.line("")

	deaths := "n/a"
	if v.Stats.Deaths != nil {
		deaths = strconv.FormatInt(*v.Stats.Deaths, 10)
	}
	p.line("%s %d", p.label.Render("Confirmed cases:"), v.Stats.Confirmed)
	p.line("%s %s", p.label.Render("Deaths:"), deaths)
	p.line("")

	p.line("%s", p.label.Render(fmt.Sprintf("Anomalies (z > %.2f)", v.Threshold)))
	if len(v.Anomalies) == 0 {
		p.line("%s", p.muted.Render("none"))
	} else {
		rows := make([][]string, 0, len(v.Anomalies))
		for _, a := range v.Anomalies {
			rows = append(rows, []string{
				a.Date.Format(time.DateOnly),
				strconv.FormatFloat(a.Delta, 'f', 0, 64),
				p.alert.Render(strconv.FormatFloat(a.ZScore, 'f', 2, 64)),
			})
		}
		p.line("%s", table.New().
			Border(lipgloss.NormalBorder()).
			Headers("Date", "New cases", "Z-score").
			Rows(rows...).
			String())
	}
	p.line("")

	p.line("%s", p.label.Render(fmt.Sprintf("Forecast (%d days)", sel.Horizon)))
	rows := make([][]string, 0, len(v.Table))
	for _, r := range v.Table {
		rows = append(rows, []string{r.Date.Format(time.DateOnly), strconv.FormatInt(r.Count, 10)})
	}
	p.line("%s", table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Date", "Forecasted Cases").
		Rows(rows...).
		String())
}
