// Package atlas renders annotation texts into one shared texture.
//
// Texts are laid out by a greedy row packer: each text goes to the right of the
// previous one and wraps to a new row when it would cross the right edge. Input order
// is preserved and nothing is ever moved once placed.
package atlas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/tsawler/ifcnotes/internal/logging"
)

// ErrOverflow reports that texts did not fit on the canvas
var ErrOverflow = errors.New("texture atlas overflow")

// Item is one text to pack
type Item struct {
	ID   string
	Text string
}

// Info is the packed rectangle of one item, in pixels with a top-left origin
type Info struct {
	ID     string
	Text   string
	X      int // left
	Y      int // top
	Width  int
	Height int
}

// Rect returns the pixel rectangle
func (i Info) Rect() image.Rectangle {
	return image.Rect(i.X, i.Y, i.X+i.Width, i.Y+i.Height)
}

// Atlas is the packed texture and the placement of every item, in input order
type Atlas struct {
	Image   *image.RGBA
	Entries []Info
	// Overflow holds the indices of entries that extend past the canvas; their
	// drawing is clipped
	Overflow []int
}

// Size returns the canvas side length in pixels
func (a *Atlas) Size() int {
	return a.Image.Bounds().Dx()
}

// Overflowed reports whether any entry extends past the canvas
func (a *Atlas) Overflowed() bool {
	return len(a.Overflow) > 0
}

// OverflowError returns an error wrapping ErrOverflow, or nil
func (a *Atlas) OverflowError() error {
	if !a.Overflowed() {
		return nil
	}
	first := a.Entries[a.Overflow[0]]
	return fmt.Errorf("%w: %d of %d texts do not fit on a %dx%d canvas (first: #%s %q)",
		ErrOverflow, len(a.Overflow), len(a.Entries), a.Size(), a.Size(), first.ID, first.Text)
}

// Pack lays out the items on a white square canvas of side pixels and draws them
func Pack(items []Item, side int, m Measurer) (*Atlas, error) {
	if side <= 0 {
		return nil, fmt.Errorf("atlas size must be positive, got %d", side)
	}

	img := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	a := &Atlas{Image: img, Entries: make([]Info, 0, len(items))}

	x, y, rowHeight := 0, 0, 0
	for i, item := range items {
		w, h := m.Measure(item.Text)

		// Wrap when the text would cross the right edge. A text wider than the
		// canvas still starts a row of its own, also after zero-width entries.
		if x+w > side && (x > 0 || rowHeight > 0) {
			x = 0
			y += rowHeight
			rowHeight = 0
		}

		info := Info{ID: item.ID, Text: item.Text, X: x, Y: y, Width: w, Height: h}
		a.Entries = append(a.Entries, info)
		if x+w > side || y+h > side {
			a.Overflow = append(a.Overflow, i)
		}

		m.Draw(img, item.Text, x, y)

		x += w
		if h > rowHeight {
			rowHeight = h
		}
	}

	if a.Overflowed() {
		logging.Logger().Warn("texture atlas overflow", "overflow", len(a.Overflow), "entries", len(a.Entries), "size", side)
	}
	return a, nil
}
