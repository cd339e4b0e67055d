package atlas

import (
	"bytes"
	"fmt"
	"image/png"
	"io"

	"github.com/tsawler/ifcnotes/internal/atomicfile"
)

// WritePNG encodes the atlas image as PNG
func (a *Atlas) WritePNG(w io.Writer) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(w, a.Image); err != nil {
		return fmt.Errorf("failed to encode atlas: %w", err)
	}
	return nil
}

// PNG returns the encoded atlas image
func (a *Atlas) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := a.WritePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SavePNG writes the atlas image to path. The file is written next to its final
// name first and renamed, so a failed run leaves no partial image.
func (a *Atlas) SavePNG(path string) error {
	data, err := a.PNG()
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(path, data)
}
