package report

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/telemetry.report/internal/units"
)

// AssetsHost serves the echarts javascript for rendered pages.
var AssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// ErrEmptyTrackMap is returned when there are no points to draw.
var ErrEmptyTrackMap = errors.New("track map has no points")

func initOpts(title string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle:  title,
		Theme:      "white",
		Width:      "900px",
		Height:     "420px",
		AssetsHost: AssetsHost,
	})
}

// trackDistributionChart is a bar of session counts per track.
func trackDistributionChart(r Report) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts("Track distribution"),
		charts.WithTitleOpts(opts.Title{Title: "Track distribution", Subtitle: fmt.Sprintf("%d sessions", r.Dashboard.TotalSessions)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	names := make([]string, 0, len(r.Distributions.Tracks))
	data := make([]opts.BarData, 0, len(r.Distributions.Tracks))
	for _, e := range r.Distributions.Tracks {
		names = append(names, e.Track)
		data = append(data, opts.BarData{Name: fmt.Sprintf("%.1f%%", e.Percentage), Value: e.Count})
	}
	bar.SetXAxis(names).AddSeries("sessions", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	return bar
}

// progressChart plots best lap per session in seconds.
func progressChart(r Report) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		initOpts("Lap time progress"),
		charts.WithTitleOpts(opts.Title{Title: "Lap time progress", Subtitle: "best lap " + r.Display.BestLap}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "seconds", Scale: opts.Bool(true)}),
	)

	dates := make([]string, 0, len(r.Distributions.Progress))
	data := make([]opts.LineData, 0, len(r.Distributions.Progress))
	for _, p := range r.Distributions.Progress {
		dates = append(dates, p.Date)
		data = append(data, opts.LineData{Name: p.Track, Value: units.Milliseconds(p.BestLapTime) / 1000})
	}
	line.SetXAxis(dates).AddSeries("best lap", data,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ShowSymbol: opts.Bool(true)}))
	return line
}

// activityChart shows sessions and laps per day.
func activityChart(r Report) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts("Activity"),
		charts.WithTitleOpts(opts.Title{Title: "Activity", Subtitle: r.Timezone}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	days := make([]string, 0, len(r.Distributions.Activity))
	sessions := make([]opts.BarData, 0, len(r.Distributions.Activity))
	laps := make([]opts.BarData, 0, len(r.Distributions.Activity))
	for _, a := range r.Distributions.Activity {
		days = append(days, a.Date)
		sessions = append(sessions, opts.BarData{Value: a.Sessions})
		laps = append(laps, opts.BarData{Value: a.Laps})
	}
	bar.SetXAxis(days).
		AddSeries("sessions", sessions).
		AddSeries("laps", laps)
	return bar
}

// RenderDashboardHTML writes a self-contained chart page for r.
func RenderDashboardHTML(w io.Writer, r Report) error {
	page := components.NewPage()
	page.SetPageTitle("Telemetry dashboard")
	page.SetAssetsHost(AssetsHost)
	page.AddCharts(
		trackDistributionChart(r),
		progressChart(r),
		activityChart(r),
	)
	return page.Render(w)
}

// RenderTrackMapPNG draws tm at its viewport size. The smoothed path is
// used when present, and the start/finish point is marked.
func RenderTrackMapPNG(w io.Writer, tm TrackMap) error {
	poly := tm.Smoothed
	if len(poly.Points) == 0 {
		poly = tm.Polyline
	}
	if len(poly.Points) == 0 {
		return ErrEmptyTrackMap
	}

	// Screen y grows downwards; plot y grows upwards.
	flip := func(y float64) float64 { return tm.Viewport.Height - y }

	pts := make(plotter.XYs, len(poly.Points))
	for i, p := range poly.Points {
		pts[i] = plotter.XY{X: p.X, Y: flip(p.Y)}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s lap %d  %s", tm.SessionID, tm.LapNumber, tm.LapTime)
	p.X.Min, p.X.Max = 0, tm.Viewport.Width
	p.Y.Min, p.Y.Max = 0, tm.Viewport.Height
	p.HideAxes()

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("track line: %w", err)
	}
	line.Color = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	line.Width = vg.Points(2)
	p.Add(line)

	start := poly.Points[0]
	if poly.Start != nil {
		start = *poly.Start
	}
	marker, err := plotter.NewScatter(plotter.XYs{{X: start.X, Y: flip(start.Y)}})
	if err != nil {
		return fmt.Errorf("start marker: %w", err)
	}
	marker.GlyphStyle = draw.GlyphStyle{
		Color:  color.RGBA{R: 220, G: 40, B: 40, A: 255},
		Radius: vg.Points(5),
		Shape:  draw.CircleGlyph{},
	}
	p.Add(marker)
	p.Legend.Add("start/finish", marker)

	wt, err := p.WriterTo(vg.Points(tm.Viewport.Width), vg.Points(tm.Viewport.Height), "png")
	if err != nil {
		return fmt.Errorf("render track map: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return fmt.Errorf("encode track map: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}
