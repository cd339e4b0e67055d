// Package config loads conversion settings from a YAML file.
//
// Every setting has a default, so an empty file is valid except for the font, which
// must always be given, either in the file or on the command line.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/ifcnotes/atlas"
	"github.com/tsawler/ifcnotes/mesh"
)

// Defaults
const (
	DefaultFontSize  = 32
	DefaultDPI       = 72
	DefaultAtlasSize = 2048
	DefaultMaxDepth  = 256
	DefaultLanguage  = "eng"

	maxConfigSize = 1024 * 1024
)

// Config holds the settings of one conversion
type Config struct {
	Font   Font   `yaml:"font"`
	Atlas  Atlas  `yaml:"atlas"`
	Export Export `yaml:"export"`
	Walk   Walk   `yaml:"walk"`
	OCR    OCR    `yaml:"ocr"`
}

// Font selects the font texts are rendered with
type Font struct {
	Path   string  `yaml:"path"`
	Family string  `yaml:"family"`
	Index  int     `yaml:"index"`
	Size   float64 `yaml:"size"`
	DPI    float64 `yaml:"dpi"`
}

// Atlas controls the texture atlas
type Atlas struct {
	Size int `yaml:"size"`
	// Strict turns atlas overflow into an error instead of a warning
	Strict bool `yaml:"strict"`
}

// Export controls the written files
type Export struct {
	YUp       bool   `yaml:"y_up"`
	Name      string `yaml:"name"`
	AtlasPNG  string `yaml:"atlas_png"` // optional side file for the atlas image
	Report    string `yaml:"report"`    // optional HTML report
	Generator string `yaml:"generator"`
}

// Walk limits the element traversal
type Walk struct {
	MaxDepth int `yaml:"max_depth"`
}

// OCR configures atlas verification
type OCR struct {
	Language string `yaml:"language"`
	Scale    int    `yaml:"scale"`
	Margin   int    `yaml:"margin"`
}

// Default returns a configuration with every default applied and no font
func Default() *Config {
	c := &Config{}
	c.normalize()
	return c
}

// normalize fills zero values with defaults
func (c *Config) normalize() {
	if c.Font.Size == 0 {
		c.Font.Size = DefaultFontSize
	}
	if c.Font.DPI == 0 {
		c.Font.DPI = DefaultDPI
	}
	if c.Atlas.Size == 0 {
		c.Atlas.Size = DefaultAtlasSize
	}
	if c.Walk.MaxDepth == 0 {
		c.Walk.MaxDepth = DefaultMaxDepth
	}
	if c.OCR.Language == "" {
		c.OCR.Language = DefaultLanguage
	}
}

// Validate checks the settings. The font is required.
func (c *Config) Validate() error {
	var errs []error
	if err := c.FontConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("font: %w", err))
	}
	if c.Atlas.Size <= 0 {
		errs = append(errs, fmt.Errorf("atlas: size must be positive, got %d", c.Atlas.Size))
	}
	if c.Walk.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("walk: max_depth must not be negative, got %d", c.Walk.MaxDepth))
	}
	if c.OCR.Scale < 0 || c.OCR.Margin < 0 {
		errs = append(errs, fmt.Errorf("ocr: scale and margin must not be negative"))
	}
	return errors.Join(errs...)
}

// FontConfig returns the font settings for the atlas
func (c *Config) FontConfig() atlas.FontConfig {
	return atlas.FontConfig{
		Path:   c.Font.Path,
		Family: c.Font.Family,
		Index:  c.Font.Index,
		Size:   c.Font.Size,
		DPI:    c.Font.DPI,
	}
}

// ExportOptions returns the scene export settings
func (c *Config) ExportOptions() mesh.ExportOptions {
	return mesh.ExportOptions{YUp: c.Export.YUp, Name: c.Export.Name, Generator: c.Export.Generator}
}

// Parse decodes YAML and applies defaults. Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxConfigSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if len(data) > maxConfigSize {
		return nil, fmt.Errorf("config larger than %d bytes", maxConfigSize)
	}

	c := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	c.normalize()
	return c, nil
}

// Load reads a YAML configuration file
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Marshal encodes the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
