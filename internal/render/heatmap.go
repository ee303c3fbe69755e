package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/chartlens/internal/analysis"
)

// yearGrid adapts a YearMatrix to plotter.GridXYZ: columns are years, rows artists.
// Absent cells are NaN.
type yearGrid struct{ m *analysis.YearMatrix }

func (g yearGrid) Dims() (c, r int)   { return len(g.m.Years), len(g.m.Artists) }
func (g yearGrid) Z(c, r int) float64 { return g.m.Cell(r, c).Float() }
func (g yearGrid) X(c int) float64    { return float64(c) }
func (g yearGrid) Y(r int) float64    { return float64(r) }

// Heatmap draws mean rank per artist and year. Cells without observations are
// left transparent instead of being painted as rank 0.
func Heatmap(w io.Writer, m *analysis.YearMatrix, opt Options) error {
	if m == nil || len(m.Artists) == 0 || len(m.Years) == 0 {
		return &analysis.EmptySelectionError{What: "no cells to plot"}
	}
	width, height := opt.size()

	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range m.Artists {
		for j := range m.Years {
			if c := m.Cell(i, j); c.Valid {
				lo = math.Min(lo, c.Value)
				hi = math.Max(hi, c.Value)
			}
		}
	}
	if math.IsInf(lo, 1) {
		return &analysis.EmptySelectionError{What: "no cells to plot"}
	}
	if hi == lo {
		hi = lo + 1
	}

	p := plot.New()
	p.Title.Text = "Heatmap of Artist Performance by Year (mean rank)"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Artist"

	hm := plotter.NewHeatMap(yearGrid{m: m}, palette.Heat(12, 1))
	hm.NaN = color.Transparent
	hm.Min = lo
	hm.Max = hi
	p.Add(hm)

	years := make([]string, len(m.Years))
	for i, y := range m.Years {
		years[i] = strconv.Itoa(y)
	}
	artists := make([]string, len(m.Artists))
	for i, a := range m.Artists {
		artists[i] = truncate(a, 22)
	}
	p.NominalX(years...)
	p.NominalY(artists...)

	// vgimg renders at 96 dpi; convert pixels to points.
	wt, err := p.WriterTo(vg.Length(width)*vg.Inch/96, vg.Length(height)*vg.Inch/96, "png")
	if err != nil {
		return fmt.Errorf("render heatmap: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write heatmap: %w", err)
	}
	return nil
}
