package ifcnotes

import (
	"fmt"
	"strings"
)

// WarningType classifies non-fatal issues found during a conversion
type WarningType int

const (
	// WarningAtlasOverflow means some texts did not fit on the atlas and are clipped
	WarningAtlasOverflow WarningType = iota
	// WarningNoAnnotations means the model has no IfcAnnotation
	WarningNoAnnotations
	// WarningNoTexts means annotations exist but none carries a text literal with extent
	WarningNoTexts
	// WarningUnknownSchema means the file schema is not one of the IFC releases
	WarningUnknownSchema
	// WarningEmptyText means a literal is empty and renders as a blank quad
	WarningEmptyText
	// WarningOCRMismatch means a rendered text was not read back as written
	WarningOCRMismatch
)

// String returns a short name for the warning type
func (t WarningType) String() string {
	switch t {
	case WarningAtlasOverflow:
		return "atlas overflow"
	case WarningNoAnnotations:
		return "no annotations"
	case WarningNoTexts:
		return "no texts"
	case WarningUnknownSchema:
		return "unknown schema"
	case WarningEmptyText:
		return "empty text"
	case WarningOCRMismatch:
		return "OCR mismatch"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal issue: the conversion succeeded but the result may be
// incomplete or imperfect
type Warning struct {
	Type    WarningType
	Message string
	ID      string // instance id the warning is about, if any
}

// String formats the warning for display
func (w Warning) String() string {
	if w.ID != "" {
		return fmt.Sprintf("%s: #%s: %s", w.Type, w.ID, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Type, w.Message)
}

// FormatWarnings joins warnings into one line each
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
