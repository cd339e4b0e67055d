package ifcnotes

import (
	"io"

	"github.com/tsawler/ifcnotes/config"
)

// Options holds configuration for a conversion.
type Options struct {
	cfg config.Config

	// Progress output for reading the model, nil for none
	progress io.Writer
}

// defaultOptions returns the default conversion options. No font is selected.
func defaultOptions() Options {
	return Options{cfg: *config.Default()}
}

// clone creates a copy of Options.
func (o Options) clone() Options {
	// config.Config holds only values
	return Options{cfg: o.cfg, progress: o.progress}
}

// Config returns a copy of the effective configuration.
func (o Options) Config() config.Config {
	return o.cfg
}
