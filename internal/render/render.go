// Package render draws the dashboard charts as PNG images.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Options sizes a chart in pixels.
type Options struct {
	Width  int
	Height int
}

// DefaultOptions returns the dashboard chart size.
func DefaultOptions() Options { return Options{Width: 800, Height: 480} }

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 800
	}
	if h <= 0 {
		h = 480
	}
	return w, h
}

// Kind names one of the dashboard charts.
type Kind string

const (
	KindScatter Kind = "scatter"
	KindBar     Kind = "bar"
	KindLine    Kind = "line"
	KindHeatmap Kind = "heatmap"
)

// Kinds lists the charts in dashboard order.
var Kinds = []Kind{KindScatter, KindBar, KindLine, KindHeatmap}

// Placeholder writes a neutral image carrying msg, used when a selection is empty.
func Placeholder(w io.Writer, msg string, opt Options) error {
	width, height := opt.size()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 245, G: 245, B: 245, A: 255}), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	dr := &font.Drawer{Dst: img, Src: image.NewUniform(color.RGBA{R: 90, G: 90, B: 90, A: 255}), Face: face}
	tw := dr.MeasureString(msg).Ceil()
	x := (width - tw) / 2
	if x < 8 {
		x = 8
	}
	y := height/2 + face.Metrics().Ascent.Ceil()/2
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(msg)
	return png.Encode(w, img)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
