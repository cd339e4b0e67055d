package atlas

import "math"

// UV is a texture coordinate with a bottom-left origin, normalised to 0..1
type UV struct {
	U, V float64
}

// UVs returns the texture coordinates of an entry in the order
// (left, bottom), (right, bottom), (right, top), (left, top), matching the
// face corners p0..p3
func UVs(info Info, width, height int) [4]UV {
	w := float64(width)
	h := float64(height)

	left := float64(info.X) / w
	right := float64(info.X+info.Width) / w
	top := (h - float64(info.Y)) / h
	bottom := (h - float64(info.Y+info.Height)) / h

	return [4]UV{
		{left, bottom},
		{right, bottom},
		{right, top},
		{left, top},
	}
}

// UVs returns the texture coordinates of every entry, four per entry
func (a *Atlas) UVs() []UV {
	b := a.Image.Bounds()
	out := make([]UV, 0, 4*len(a.Entries))
	for _, e := range a.Entries {
		uv := UVs(e, b.Dx(), b.Dy())
		out = append(out, uv[:]...)
	}
	return out
}

// RectFromUV converts a UV quad back to a top-left pixel rectangle
func RectFromUV(uv [4]UV, width, height int) (x, y, w, h int) {
	fw := float64(width)
	fh := float64(height)

	left := uv[0].U * fw
	right := uv[1].U * fw
	bottom := uv[0].V * fh
	top := uv[3].V * fh

	x = int(math.Round(left))
	y = int(math.Round(fh - top))
	w = int(math.Round(right - left))
	h = int(math.Round(top - bottom))
	return x, y, w, h
}
