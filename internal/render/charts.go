package render

import (
	"fmt"
	"io"
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/chartlens/internal/analysis"
)

// pointStyle renders points only (no connecting line).
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    3,
		DotColor:    col,
	}
}

// paddedRange returns a range around [lo, hi] that is never zero-width.
func paddedRange(lo, hi float64) *chart.ContinuousRange {
	pad := (hi - lo) * 0.05
	if pad < 1 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func bounds(vals []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// Scatter plots early peak rank against total weeks on board, one dot per row.
// Rows without an early peak are skipped.
func Scatter(w io.Writer, rows []analysis.Row, opt Options) error {
	xs := make([]float64, 0, len(rows))
	ys := make([]float64, 0, len(rows))
	for _, r := range rows {
		if !r.PeakRankFirst4Weeks.Valid {
			continue
		}
		xs = append(xs, float64(r.PeakRankFirst4Weeks.Rank))
		ys = append(ys, float64(r.TotalWeeksOnBoard))
	}
	if len(xs) == 0 {
		return &analysis.EmptySelectionError{What: "no rows to plot"}
	}
	width, height := opt.size()
	xlo, xhi := bounds(xs)
	ylo, yhi := bounds(ys)
	ch := chart.Chart{
		Title:      "Impact of Early Peak Rank on Longevity",
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "Peak rank (first 4 weeks)", Range: paddedRange(xlo, xhi)},
		YAxis:      chart.YAxis{Name: "Total weeks on board", Range: paddedRange(ylo, yhi)},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: "rows", XValues: xs, YValues: ys, Style: pointStyle(drawing.ColorFromHex("1f77b4"))},
		},
	}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render scatter: %w", err)
	}
	return nil
}

// TopArtists draws the mean weeks on board per artist as bars.
func TopArtists(w io.Writer, artists []analysis.ArtistLongevity, opt Options) error {
	if len(artists) == 0 {
		return &analysis.EmptySelectionError{What: "no artists to plot"}
	}
	width, height := opt.size()
	bars := make([]chart.Value, len(artists))
	hi := 0.0
	for i, a := range artists {
		bars[i] = chart.Value{Label: truncate(a.Artist, 14), Value: a.MeanWeeks}
		hi = math.Max(hi, a.MeanWeeks)
	}
	if hi <= 0 {
		hi = 1
	}
	barWidth := (width - 80) / (2 * len(bars))
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < 8 {
		barWidth = 8
	}
	bc := chart.BarChart{
		Title:      "Top Artists by Average Longevity on Chart",
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		Background: chart.Style{Padding: chart.Box{Top: 40, Bottom: 16}},
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: hi * 1.1}},
		Bars:       bars,
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render bar: %w", err)
	}
	return nil
}

// Trends draws one rank line per selected song over time.
func Trends(w io.Writer, trends []analysis.SongTrend, opt Options) error {
	if len(trends) == 0 {
		return &analysis.EmptySelectionError{What: "no songs to plot"}
	}
	width, height := opt.size()
	var series []chart.Series
	var all []float64
	for _, tr := range trends {
		times := make([]time.Time, len(tr.Points))
		ys := make([]float64, len(tr.Points))
		for i, p := range tr.Points {
			times[i] = p.Date
			ys[i] = float64(p.Rank)
		}
		// Pad to at least two X values for go-chart
		if len(times) == 1 {
			times = append(times, times[0].Add(24*time.Hour))
			ys = append(ys, ys[0])
		}
		all = append(all, ys...)
		series = append(series, chart.TimeSeries{Name: truncate(tr.Song, 24), XValues: times, YValues: ys, Style: chart.Style{StrokeWidth: 2}})
	}
	lo, hi := bounds(all)
	ch := chart.Chart{
		Title:      "Time Series Trend of Song Rankings",
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "Date", ValueFormatter: chart.TimeValueFormatter},
		YAxis:      chart.YAxis{Name: "Chart rank", Range: paddedRange(lo, hi)},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render line: %w", err)
	}
	return nil
}
