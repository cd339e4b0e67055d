// Package format provides input format detection for IFC models.
package format

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format represents an IFC exchange format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// STEP indicates a STEP physical file (.ifc).
	STEP
	// ZIP indicates a zip archive holding a STEP physical file (.ifczip).
	ZIP
	// XML indicates an ifcXML document (.ifcxml). It is detected but not supported.
	XML
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case STEP:
		return "IFC-SPF"
	case ZIP:
		return "IFCZIP"
	case XML:
		return "IFCXML"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case STEP:
		return ".ifc"
	case ZIP:
		return ".ifczip"
	case XML:
		return ".ifcxml"
	default:
		return ""
	}
}

// Supported reports whether the reader can load the format.
func (f Format) Supported() bool {
	return f == STEP || f == ZIP
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".ifc", ".stp", ".step":
		return STEP
	case ".ifczip":
		return ZIP
	case ".ifcxml":
		return XML
	default:
		return Unknown
	}
}

// stepMagic opens every STEP physical file
var stepMagic = []byte("ISO-10303-21")

// DetectFromMagic checks the leading bytes to determine format.
// Zip archives are reported as Unknown; use DetectFromReader to look inside them.
func DetectFromMagic(data []byte) Format {
	data = trimLeadingSpace(data)
	if len(data) < 4 {
		return Unknown
	}

	if bytes.HasPrefix(data, stepMagic) {
		return STEP
	}

	// ZIP magic: PK\x03\x04
	if data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04 {
		return Unknown
	}

	if detectXMLMagic(data) {
		return XML
	}

	return Unknown
}

func trimLeadingSpace(data []byte) []byte {
	start := 0
	for start < len(data) && (data[start] == ' ' || data[start] == '\t' || data[start] == '\n' || data[start] == '\r') {
		start++
	}
	return data[start:]
}

// detectXMLMagic checks for an XML document that mentions ifcXML
func detectXMLMagic(data []byte) bool {
	upper := strings.ToUpper(string(data[:min(len(data), 512)]))
	if !strings.HasPrefix(upper, "<?XML") {
		return false
	}
	return strings.Contains(upper, "IFC")
}

// DetectFromReader inspects the content to determine format.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 512)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	if len(magic) >= 4 && magic[0] == 0x50 && magic[1] == 0x4B && magic[2] == 0x03 && magic[3] == 0x04 {
		return detectZIPFormat(r, size)
	}

	return DetectFromMagic(magic), nil
}

// detectZIPFormat reports ZIP when the archive holds an .ifc entry
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}
	if FindModelEntry(zr) != nil {
		return ZIP, nil
	}
	return Unknown, nil
}

// FindModelEntry returns the first .ifc entry of an archive, or nil.
func FindModelEntry(zr *zip.Reader) *zip.File {
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(f.Name), ".ifc") {
			return f
		}
	}
	return nil
}
