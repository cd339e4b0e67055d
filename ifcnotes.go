// Package ifcnotes converts the 2D annotation texts of an IFC building model into a
// textured 3D scene: every IfcTextLiteralWithExtent becomes a flat quad in world
// space, and all texts are rendered into one shared texture atlas.
//
// Basic usage:
//
//	warnings, err := ifcnotes.Open("house.ifc").Font("Go").SaveGLB("notes.glb")
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", ifcnotes.FormatWarnings(warnings))
//	}
//
// With options:
//
//	texts, _, err := ifcnotes.Open("house.ifc").Texts()
//
//	scene, _, err := ifcnotes.Open("house.ifc").
//	    FontFile("/usr/share/fonts/NotoSansCJK-Regular.ttc", 0).
//	    FontSize(48).
//	    AtlasSize(4096).
//	    StrictAtlas().
//	    Scene()
//
// For advanced use cases, the lower-level reader, resolver and extract packages are
// also available.
package ifcnotes

import (
	"log/slog"

	"github.com/tsawler/ifcnotes/internal/logging"
	"github.com/tsawler/ifcnotes/reader"
)

// Open opens an IFC file and returns a Converter for fluent configuration.
// The file is read by the first terminal operation, like Texts() or SaveGLB(),
// and closed when it returns.
//
// Example:
//
//	texts, warnings, err := ifcnotes.Open("house.ifc").Texts()
func Open(filename string) *Converter {
	return &Converter{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromReader creates a Converter from an already-opened reader.Reader.
// This is useful when you need more control over the reader lifecycle.
// Note: The caller is responsible for closing the reader.
//
// Example:
//
//	r, err := reader.Open("house.ifc")
//	if err != nil {
//	    // handle error
//	}
//	defer r.Close()
//	texts, warnings, err := ifcnotes.FromReader(r).Texts()
func FromReader(r *reader.Reader) *Converter {
	return &Converter{
		reader:       r,
		ownsReader:   false,
		readerOpened: true,
		options:      defaultOptions(),
	}
}

// SetLogger sets the logger used by all ifcnotes packages. By default nothing is
// logged. Passing nil restores the silent default.
//
// Example:
//
//	ifcnotes.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the logger used by all ifcnotes packages.
func Logger() *slog.Logger {
	return logging.Logger()
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	header := ifcnotes.Must(ifcnotes.Open("house.ifc").Header())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustResult is a helper that wraps a terminal operation returning a value, warnings
// and an error, and panics if the error is non-nil. It discards warnings.
//
// Example:
//
//	texts := ifcnotes.MustResult(ifcnotes.Open("house.ifc").Texts())
func MustResult[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
