package extract

import "errors"

var (
	// ErrMissingAttribute is returned when a required attribute is unset
	ErrMissingAttribute = errors.New("missing attribute")
	// ErrNotAnnotation is returned when an element other than an IfcAnnotation is
	// passed where an annotation is expected
	ErrNotAnnotation = errors.New("not an IfcAnnotation")
	// ErrUnsupportedPlacement is returned for placement kinds without a transform,
	// e.g. IfcGridPlacement
	ErrUnsupportedPlacement = errors.New("unsupported placement")
	// ErrInvalidExtent is returned for negative text extents
	ErrInvalidExtent = errors.New("invalid extent")
)
