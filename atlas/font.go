package atlas

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/fontscan"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/tsawler/ifcnotes/internal/logging"
)

// ErrFontNotFound is returned when a family is not installed
var ErrFontNotFound = errors.New("font family not found")

// FontConfig selects the font used to render texts. Either Path or Family is required.
type FontConfig struct {
	Path   string  // TrueType/OpenType file or collection (.ttc)
	Family string  // family name looked up among system fonts, or one of the embedded Go fonts
	Index  int     // face index inside a collection
	Size   float64 // point size
	DPI    float64 // resolution, 72 makes points equal pixels
}

// embedded are the families available without any installed font
var embedded = map[string][]byte{
	"go":     goregular.TTF,
	"gobold": gobold.TTF,
	"gomono": gomono.TTF,
}

// embeddedNames are the display names of the embedded families
var embeddedNames = []string{"Go", "Go Bold", "Go Mono"}

// Validate checks that the configuration names a font and a usable size
func (c FontConfig) Validate() error {
	if c.Path == "" && c.Family == "" {
		return fmt.Errorf("font path or family is required")
	}
	if c.Size <= 0 {
		return fmt.Errorf("font size must be positive, got %g", c.Size)
	}
	if c.DPI < 0 {
		return fmt.Errorf("font DPI must not be negative, got %g", c.DPI)
	}
	if c.Index < 0 {
		return fmt.Errorf("font index must not be negative, got %d", c.Index)
	}
	return nil
}

// LoadFace opens the configured font at the configured size
func LoadFace(cfg FontConfig) (font.Face, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		data  []byte
		index = cfg.Index
		err   error
	)
	switch {
	case cfg.Path != "":
		data, err = os.ReadFile(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read font: %w", err)
		}
	default:
		var path string
		data, path, index, err = findFamily(cfg.Family)
		if err != nil {
			return nil, err
		}
		if path != "" {
			logging.Logger().Debug("resolved font family", "family", cfg.Family, "path", path, "index", index)
		}
	}

	return NewFace(data, index, cfg.Size, cfg.DPI)
}

// NewFace parses font data (a single font or a collection) and creates a face
func NewFace(data []byte, index int, size, dpi float64) (font.Face, error) {
	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	if index < 0 || index >= coll.NumFonts() {
		return nil, fmt.Errorf("font index %d out of range, collection has %d fonts", index, coll.NumFonts())
	}
	f, err := coll.Font(index)
	if err != nil {
		return nil, fmt.Errorf("failed to load font %d: %w", index, err)
	}

	if dpi == 0 {
		dpi = 72
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}
	return face, nil
}

// normalizeFamily folds case and drops separators so "Noto Sans JP" matches "notosansjp"
func normalizeFamily(name string) string {
	name = strings.ToLower(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, name)
}

// findFamily returns the font data for a family name. Embedded Go fonts are served
// from memory; anything else is looked up among the system fonts, preferring the
// regular upright face.
func findFamily(family string) (data []byte, path string, index int, err error) {
	want := normalizeFamily(family)
	if ttf, ok := embedded[want]; ok {
		return ttf, "", 0, nil
	}

	footprints, err := systemFonts()
	if err != nil {
		return nil, "", 0, err
	}

	var match *fontscan.Footprint
	for i := range footprints {
		fp := &footprints[i]
		if normalizeFamily(fp.Family) != want {
			continue
		}
		if match == nil {
			match = fp
		}
		if fp.Aspect.Style == gtfont.StyleNormal && fp.Aspect.Weight == gtfont.WeightNormal {
			match = fp
			break
		}
	}
	if match == nil {
		return nil, "", 0, fmt.Errorf("%q: %w", family, ErrFontNotFound)
	}

	data, err = os.ReadFile(match.Location.File)
	if err != nil {
		return nil, "", 0, fmt.Errorf("failed to read font: %w", err)
	}
	return data, match.Location.File, int(match.Location.Index), nil
}

// systemFonts scans the installed fonts; the index is cached in the user cache directory
func systemFonts() ([]fontscan.Footprint, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	footprints, err := fontscan.SystemFonts(nil, filepath.Join(cacheDir, "ifcnotes"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan system fonts: %w", err)
	}
	return footprints, nil
}

// Families lists the font families that LoadFace can resolve by name: the embedded
// Go fonts followed by the installed families, sorted
func Families() ([]string, error) {
	footprints, err := systemFonts()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var installed []string
	for _, fp := range footprints {
		key := normalizeFamily(fp.Family)
		if fp.Family == "" || seen[key] {
			continue
		}
		seen[key] = true
		installed = append(installed, fp.Family)
	}
	slices.Sort(installed)

	return append(slices.Clone(embeddedNames), installed...), nil
}
