// Package report renders a dashboard view as charts and tables.
package report

import (
	"image/color"
	"io"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sartorproj/epicast/dashboard"
	"github.com/sartorproj/epicast/timeseries"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Chart size, matching a wide dashboard panel.
const (
	ChartWidth  = 10 * vg.Inch
	ChartHeight = 4 * vg.Inch
)

var (
	seriesColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	forecastRed  = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	dateTickMark = plot.TimeTicks{Format: "2006-01-02"}
)

// HistoryChart plots confirmed cases with the forecast overlaid.
func HistoryChart(view *dashboard.View) (*plot.Plot, error) {
	p := newChart("Confirmed Cases + Forecast ("+itoa(len(view.Forecast))+" days)", "Cases")

	history, err := plotter.NewLine(toXYs(view.Confirmed))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build history line")
	}
	history.LineStyle.Color = seriesColor
	history.LineStyle.Width = vg.Points(1.5)

	predicted, err := plotter.NewLine(toXYs(view.Predicted))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build forecast line")
	}
	predicted.LineStyle.Color = forecastRed
	predicted.LineStyle.Width = vg.Points(1.5)

	p.Add(history, predicted)
	p.Legend.Add("Confirmed Cases", history)
	p.Legend.Add("Forecast", predicted)
	return p, nil
}

// AnomalyChart plots daily new cases with the flagged days marked.
func AnomalyChart(view *dashboard.View) (*plot.Plot, error) {
	p := newChart("Daily New Cases with Anomalies", "New Cases")

	daily, err := plotter.NewLine(toXYs(view.Daily))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build daily line")
	}
	daily.LineStyle.Color = seriesColor
	p.Add(daily)
	p.Legend.Add("Daily Cases", daily)

	if len(view.Anomalies) > 0 {
		marks := make(plotter.XYs, len(view.Anomalies))
		for i, f := range view.Anomalies {
			marks[i].X = unix(f.Date)
			marks[i].Y = f.Delta
		}
		scatter, err := plotter.NewScatter(marks)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to build anomaly markers")
		}
		scatter.GlyphStyle.Color = forecastRed
		scatter.GlyphStyle.Radius = vg.Points(4)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(scatter)
		p.Legend.Add("Anomalies", scatter)
	}
	return p, nil
}

// WriteChart encodes p in format ("png" or "svg") to w.
func WriteChart(w io.Writer, p *plot.Plot, format string) error {
	wt, err := p.WriterTo(ChartWidth, ChartHeight, format)
	if err != nil {
		return goerr.Wrap(err, "failed to render chart", goerr.V("format", format))
	}
	if _, err := wt.WriteTo(w); err != nil {
		return goerr.Wrap(err, "failed to write chart", goerr.V("format", format))
	}
	return nil
}

func newChart(title, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = dateTickMark
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())
	return p
}

func toXYs(s *timeseries.Series) plotter.XYs {
	if s == nil {
		return nil
	}
	xys := make(plotter.XYs, s.Len())
	for i := range xys {
		xys[i].X = unix(s.Timestamps[i])
		xys[i].Y = s.Values[i]
	}
	return xys
}

func unix(t time.Time) float64 {
	return float64(t.Unix())
}
