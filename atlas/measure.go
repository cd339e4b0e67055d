package atlas

import (
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Measurer measures and draws text for the packer
type Measurer interface {
	// Measure returns the pixel size of the rendered text
	Measure(text string) (width, height int)
	// Draw renders text with its top-left corner at (x, y)
	Draw(dst draw.Image, text string, x, y int)
}

// FaceMeasurer measures and draws with an x/image font face
type FaceMeasurer struct {
	Face font.Face
}

// NewFaceMeasurer wraps a font face
func NewFaceMeasurer(face font.Face) *FaceMeasurer {
	return &FaceMeasurer{Face: face}
}

// Measure returns the text width (the larger of the ink extent and the advance)
// and the line height (ascent plus descent, both rounded up)
func (m *FaceMeasurer) Measure(text string) (int, int) {
	metrics := m.Face.Metrics()
	height := metrics.Ascent.Ceil() + metrics.Descent.Ceil()
	if text == "" {
		return 0, height
	}

	bounds, advance := font.BoundString(m.Face, text)
	right := bounds.Max.X
	if advance > right {
		right = advance
	}
	width := right.Ceil()
	if width < 0 {
		width = 0
	}
	return width, height
}

// Draw renders black text with its baseline at y + ascent
func (m *FaceMeasurer) Draw(dst draw.Image, text string, x, y int) {
	ascent := m.Face.Metrics().Ascent.Ceil()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.Black,
		Face: m.Face,
		Dot:  fixed.P(x, y+ascent),
	}
	d.DrawString(text)
}
