package ocr

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/tsawler/ifcnotes/atlas"
	"github.com/tsawler/ifcnotes/internal/logging"
)

// Recognizer reads text from an image
type Recognizer interface {
	Recognize(img image.Image) (string, error)
}

// VerifyOptions controls how atlas entries are prepared for recognition
type VerifyOptions struct {
	// Scale is the upscaling factor applied to each crop, 3 when zero
	Scale int
	// Margin is the white border added around each crop in pixels after scaling,
	// 10 when zero
	Margin int
}

func (o VerifyOptions) normalize() VerifyOptions {
	if o.Scale <= 0 {
		o.Scale = 3
	}
	if o.Margin <= 0 {
		o.Margin = 10
	}
	return o
}

// Mismatch is an entry whose recognized text differs from its literal
type Mismatch struct {
	Index    int
	ID       string
	Expected string
	Got      string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("#%s: expected %q, recognized %q", m.ID, m.Expected, m.Got)
}

// Result summarises a verification run
type Result struct {
	Checked    int
	Skipped    int // empty texts and entries clipped by the canvas
	Mismatches []Mismatch
}

// OK reports whether every checked entry matched
func (r *Result) OK() bool {
	return len(r.Mismatches) == 0
}

// Verify recognizes every atlas entry and compares it with the literal. Whitespace
// differences are ignored.
func Verify(r Recognizer, a *atlas.Atlas, opts VerifyOptions) (*Result, error) {
	opts = opts.normalize()
	log := logging.Logger()

	clipped := make(map[int]bool, len(a.Overflow))
	for _, i := range a.Overflow {
		clipped[i] = true
	}

	res := &Result{}
	for i, e := range a.Entries {
		if clipped[i] || strings.TrimSpace(e.Text) == "" || e.Width == 0 || e.Height == 0 {
			res.Skipped++
			continue
		}

		got, err := r.Recognize(Crop(a.Image, e.Rect(), opts))
		if err != nil {
			return nil, fmt.Errorf("recognizing #%s: %w", e.ID, err)
		}
		res.Checked++

		if normalizeText(got) != normalizeText(e.Text) {
			m := Mismatch{Index: i, ID: e.ID, Expected: e.Text, Got: got}
			res.Mismatches = append(res.Mismatches, m)
			log.Debug("OCR mismatch", "id", e.ID, "expected", e.Text, "got", got)
		}
	}

	log.Info("verified atlas", "checked", res.Checked, "skipped", res.Skipped, "mismatches", len(res.Mismatches))
	return res, nil
}

// Crop cuts rect out of img, scales it up and pads it with white. Tesseract reads
// small rendered glyphs poorly without this.
func Crop(img image.Image, rect image.Rectangle, opts VerifyOptions) *image.RGBA {
	opts = opts.normalize()
	rect = rect.Intersect(img.Bounds())

	w := rect.Dx()*opts.Scale + 2*opts.Margin
	h := rect.Dy()*opts.Scale + 2*opts.Margin
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	target := image.Rect(opts.Margin, opts.Margin, w-opts.Margin, h-opts.Margin)
	xdraw.CatmullRom.Scale(dst, target, img, rect, xdraw.Src, nil)
	return dst
}

// normalizeText collapses runs of whitespace
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
