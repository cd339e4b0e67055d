package ifcnotes

import (
	"fmt"
	"io"
	"strings"

	"github.com/tsawler/ifcnotes/atlas"
	"github.com/tsawler/ifcnotes/config"
	"github.com/tsawler/ifcnotes/dump"
	"github.com/tsawler/ifcnotes/extract"
	"github.com/tsawler/ifcnotes/internal/atomicfile"
	"github.com/tsawler/ifcnotes/internal/logging"
	"github.com/tsawler/ifcnotes/mesh"
	"github.com/tsawler/ifcnotes/model"
	"github.com/tsawler/ifcnotes/ocr"
	"github.com/tsawler/ifcnotes/reader"
	"github.com/tsawler/ifcnotes/report"
	"github.com/tsawler/ifcnotes/resolver"
	"github.com/tsawler/ifcnotes/walk"
)

// Converter provides a fluent interface for converting the annotation texts of an
// IFC model. Each configuration method returns a new Converter instance, making it
// safe for concurrent use and allowing method chaining.
type Converter struct {
	// Source
	filename string
	reader   *reader.Reader

	// Lifecycle
	ownsReader   bool // true if we opened the reader and should close it
	readerOpened bool // true if reader has been opened

	// Configuration
	options Options

	// Accumulated error (fail-fast)
	err error

	// Warnings accumulated during processing
	warnings []Warning
}

// Scene is the complete result of a conversion
type Scene struct {
	Header      reader.Header
	Schema      string
	Annotations []*model.AnnotationNode
	Texts       []*model.TextRecord
	Mesh        *mesh.Mesh
	Atlas       *atlas.Atlas
}

// clone creates a shallow copy of the Converter with a copy of options.
// This ensures immutability - each chain method returns a new instance.
func (c *Converter) clone() *Converter {
	return &Converter{
		filename:     c.filename,
		reader:       c.reader,
		ownsReader:   c.ownsReader,
		readerOpened: c.readerOpened,
		options:      c.options.clone(),
		err:          c.err,
		warnings:     append([]Warning(nil), c.warnings...),
	}
}

// ensureReader opens the reader if not already open.
func (c *Converter) ensureReader() error {
	if c.readerOpened {
		return nil
	}
	if c.filename == "" {
		return fmt.Errorf("no filename specified")
	}

	var opts []reader.Option
	if c.options.progress != nil {
		opts = append(opts, reader.WithProgress(c.options.progress))
	}
	r, err := reader.Open(c.filename, opts...)
	if err != nil {
		return fmt.Errorf("failed to open model: %w", err)
	}
	c.reader = r
	c.ownsReader = true
	c.readerOpened = true
	return nil
}

// Close releases resources associated with the Converter.
// It is safe to call Close multiple times.
func (c *Converter) Close() error {
	if c.ownsReader && c.reader != nil {
		err := c.reader.Close()
		c.reader = nil
		c.ownsReader = false
		c.readerOpened = false
		return err
	}
	return nil
}

// warn records a warning and logs it
func (c *Converter) warn(t WarningType, id, format string, args ...any) {
	w := Warning{Type: t, ID: id, Message: fmt.Sprintf(format, args...)}
	c.warnings = append(c.warnings, w)
	logging.Logger().Warn(w.Message, "type", t.String(), "id", id)
}

// ============================================================================
// Configuration Methods (return new Converter instance)
// ============================================================================

// Font selects a font family by name. The embedded Go fonts ("Go", "Go Bold",
// "Go Mono") are always available; other names are looked up among the installed
// system fonts.
//
// Example:
//
//	_, err := ifcnotes.Open("house.ifc").Font("Noto Sans JP").SaveGLB("out.glb")
func (c *Converter) Font(family string) *Converter {
	n := c.clone()
	n.options.cfg.Font.Family = family
	n.options.cfg.Font.Path = ""
	return n
}

// FontFile selects a TrueType/OpenType font file. For collections (.ttc) index
// selects the face.
//
// Example:
//
//	_, err := ifcnotes.Open("house.ifc").FontFile("msgothic.ttc", 0).SaveGLB("out.glb")
func (c *Converter) FontFile(path string, index int) *Converter {
	n := c.clone()
	n.options.cfg.Font.Path = path
	n.options.cfg.Font.Index = index
	n.options.cfg.Font.Family = ""
	return n
}

// FontSize sets the point size texts are rendered at.
func (c *Converter) FontSize(points float64) *Converter {
	n := c.clone()
	if points <= 0 && n.err == nil {
		n.err = fmt.Errorf("font size must be positive, got %g", points)
	}
	n.options.cfg.Font.Size = points
	return n
}

// DPI sets the rendering resolution. At 72 DPI one point is one pixel.
func (c *Converter) DPI(dpi float64) *Converter {
	n := c.clone()
	if dpi <= 0 && n.err == nil {
		n.err = fmt.Errorf("DPI must be positive, got %g", dpi)
	}
	n.options.cfg.Font.DPI = dpi
	return n
}

// AtlasSize sets the side length of the square texture atlas in pixels.
func (c *Converter) AtlasSize(pixels int) *Converter {
	n := c.clone()
	if pixels <= 0 && n.err == nil {
		n.err = fmt.Errorf("atlas size must be positive, got %d", pixels)
	}
	n.options.cfg.Atlas.Size = pixels
	return n
}

// StrictAtlas makes texts that do not fit on the atlas an error. By default they
// are clipped and reported as a warning.
func (c *Converter) StrictAtlas() *Converter {
	n := c.clone()
	n.options.cfg.Atlas.Strict = true
	return n
}

// YUp exports the scene with glTF's Y-up axes instead of IFC's Z-up axes.
func (c *Converter) YUp() *Converter {
	n := c.clone()
	n.options.cfg.Export.YUp = true
	return n
}

// MeshName sets the name of the exported mesh and node.
func (c *Converter) MeshName(name string) *Converter {
	n := c.clone()
	n.options.cfg.Export.Name = name
	return n
}

// MaxDepth limits how deep annotation subtrees are walked.
func (c *Converter) MaxDepth(depth int) *Converter {
	n := c.clone()
	n.options.cfg.Walk.MaxDepth = depth
	return n
}

// AtlasPNG makes SaveGLB also write the atlas image to path.
func (c *Converter) AtlasPNG(path string) *Converter {
	n := c.clone()
	n.options.cfg.Export.AtlasPNG = path
	return n
}

// Report makes SaveGLB also write an HTML inspection report to path.
func (c *Converter) Report(path string) *Converter {
	n := c.clone()
	n.options.cfg.Export.Report = path
	return n
}

// Progress shows a progress bar on w while the model is read.
func (c *Converter) Progress(w io.Writer) *Converter {
	n := c.clone()
	n.options.progress = w
	return n
}

// WithConfig replaces all settings with cfg.
//
// Example:
//
//	cfg, err := config.Load("ifcnotes.yml")
//	...
//	_, err = ifcnotes.Open("house.ifc").WithConfig(cfg).SaveGLB("out.glb")
func (c *Converter) WithConfig(cfg *config.Config) *Converter {
	n := c.clone()
	if cfg == nil {
		if n.err == nil {
			n.err = fmt.Errorf("nil config")
		}
		return n
	}
	n.options.cfg = *cfg
	return n
}

// Options returns the effective options.
func (c *Converter) Options() Options {
	return c.options.clone()
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Header returns the header section of the model.
func (c *Converter) Header() (reader.Header, error) {
	s := c.session()
	if s.err != nil {
		return reader.Header{}, s.err
	}
	if err := s.ensureReader(); err != nil {
		return reader.Header{}, err
	}
	defer s.Close()
	return s.reader.Header(), nil
}

// Texts returns every text literal with extent below the model's annotations, in
// file order.
//
// Example:
//
//	texts, _, err := ifcnotes.Open("house.ifc").Texts()
//	for _, t := range texts {
//	    p, err := t.FaceVertices()
//	    ...
//	}
func (c *Converter) Texts() ([]*model.TextRecord, []Warning, error) {
	s := c.session()
	if s.err != nil {
		return nil, nil, s.err
	}
	if err := s.ensureReader(); err != nil {
		return nil, nil, err
	}
	defer s.Close()

	result, err := s.extract()
	if err != nil {
		return nil, s.warnings, err
	}
	return result.Texts, s.warnings, nil
}

// Scene runs the whole conversion and returns its result without writing anything.
func (c *Converter) Scene() (*Scene, []Warning, error) {
	return c.session().runScene()
}

// WriteGLB converts the model and writes the scene as binary glTF to w.
func (c *Converter) WriteGLB(w io.Writer) ([]Warning, error) {
	s := c.session()
	scene, warnings, err := s.runScene()
	if err != nil {
		return warnings, err
	}
	return warnings, mesh.WriteGLB(w, scene.Mesh, scene.Atlas, s.options.cfg.ExportOptions())
}

// SaveGLB converts the model and writes the scene to path. When configured, the
// atlas image and the HTML report are written next to it. Either every file is
// written or, on error, none of them.
//
// Example:
//
//	warnings, err := ifcnotes.Open("house.ifc").Font("Go").SaveGLB("notes.glb")
func (c *Converter) SaveGLB(path string) ([]Warning, error) {
	s := c.session()
	scene, warnings, err := s.runScene()
	if err != nil {
		return warnings, err
	}

	cfg := s.options.cfg
	var batch atomicfile.Batch
	defer batch.Discard()

	glb, err := mesh.GLB(scene.Mesh, scene.Atlas, cfg.ExportOptions())
	if err != nil {
		return warnings, err
	}
	if err := batch.Add(path, glb); err != nil {
		return warnings, err
	}

	if cfg.Export.AtlasPNG != "" {
		img, err := scene.Atlas.PNG()
		if err != nil {
			return warnings, err
		}
		if err := batch.Add(cfg.Export.AtlasPNG, img); err != nil {
			return warnings, err
		}
	}
	if cfg.Export.Report != "" {
		page, err := s.report(scene, warnings)
		if err != nil {
			return warnings, err
		}
		if err := batch.Add(cfg.Export.Report, page); err != nil {
			return warnings, err
		}
	}

	if err := batch.Commit(); err != nil {
		return warnings, err
	}
	logging.Logger().Info("wrote scene", "path", path, "texts", len(scene.Texts),
		"atlas", cfg.Export.AtlasPNG, "report", cfg.Export.Report)
	return warnings, nil
}

// Dump writes the element tree of one element, or of every annotation when id is 0.
func (c *Converter) Dump(w io.Writer, id int) ([]Warning, error) {
	s := c.session()
	if s.err != nil {
		return nil, s.err
	}
	if err := s.ensureReader(); err != nil {
		return nil, err
	}
	defer s.Close()

	res := resolver.NewResolver(s.reader)
	opts := []walk.Option{walk.WithMaxDepth(s.options.cfg.Walk.MaxDepth)}

	if id != 0 {
		e, err := res.Element(id)
		if err != nil {
			return s.warnings, err
		}
		return s.warnings, dump.Tree(w, "", e, opts...)
	}

	annotations := res.ElementsOf("IfcAnnotation")
	if len(annotations) == 0 {
		s.warn(WarningNoAnnotations, "", "model has no IfcAnnotation")
	}
	for _, e := range annotations {
		name, _ := e.Text("GlobalId")
		if err := dump.Tree(w, name, e, opts...); err != nil {
			return s.warnings, err
		}
	}
	return s.warnings, nil
}

// Verify converts the model and reads every rendered text back with r. Texts that
// are not recognized as written are returned as warnings too.
func (c *Converter) Verify(r ocr.Recognizer) (*ocr.Result, []Warning, error) {
	s := c.session()
	scene, warnings, err := s.runScene()
	if err != nil {
		return nil, warnings, err
	}

	cfg := s.options.cfg
	res, err := ocr.Verify(r, scene.Atlas, ocr.VerifyOptions{Scale: cfg.OCR.Scale, Margin: cfg.OCR.Margin})
	if err != nil {
		return nil, s.warnings, err
	}
	for _, m := range res.Mismatches {
		s.warn(WarningOCRMismatch, m.ID, "expected %q, recognized %q", m.Expected, m.Got)
	}
	return res, s.warnings, nil
}

// ============================================================================
// Internal
// ============================================================================

// session returns the private copy a terminal operation works on, so that
// warnings and an opened reader never leak into the Converter it was called on.
func (c *Converter) session() *Converter {
	return c.clone()
}

// runScene opens the model, converts it and closes it again
func (c *Converter) runScene() (*Scene, []Warning, error) {
	if c.err != nil {
		return nil, nil, c.err
	}
	if err := c.options.cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if err := c.ensureReader(); err != nil {
		return nil, nil, err
	}
	defer c.Close()

	scene, err := c.scene()
	if err != nil {
		return nil, c.warnings, err
	}
	return scene, c.warnings, nil
}

// knownSchemas are the IFC releases with annotation texts
var knownSchemas = []string{"IFC2X", "IFC4"}

// extract collects the annotations and texts of the open model
func (c *Converter) extract() (*extract.Result, error) {
	schema := c.reader.Schema()
	known := false
	for _, prefix := range knownSchemas {
		if strings.HasPrefix(strings.ToUpper(schema), prefix) {
			known = true
		}
	}
	if !known {
		c.warn(WarningUnknownSchema, "", "file schema %q is not an IFC release, attribute names may be wrong", schema)
	}

	res := resolver.NewResolver(c.reader)
	x := extract.New(res, extract.WithMaxDepth(c.options.cfg.Walk.MaxDepth))
	result, err := x.Extract()
	if err != nil {
		return nil, err
	}

	switch {
	case len(result.Annotations) == 0:
		c.warn(WarningNoAnnotations, "", "model has no IfcAnnotation")
	case len(result.Texts) == 0:
		c.warn(WarningNoTexts, "", "%d annotations but no text literal with extent", len(result.Annotations))
	}
	for _, t := range result.Texts {
		if t.Literal == "" {
			c.warn(WarningEmptyText, t.ID, "text literal is empty")
		}
	}

	logging.Logger().Info("extracted annotation texts",
		"annotations", len(result.Annotations), "texts", len(result.Texts), "elements", res.CacheSize())
	return result, nil
}

// scene runs extraction, face building and atlas packing
func (c *Converter) scene() (*Scene, error) {
	result, err := c.extract()
	if err != nil {
		return nil, err
	}

	faces, err := mesh.BuildFaces(result.Texts)
	if err != nil {
		return nil, err
	}

	a, err := c.pack(result.Texts)
	if err != nil {
		return nil, err
	}

	return &Scene{
		Header:      c.reader.Header(),
		Schema:      c.reader.Schema(),
		Annotations: result.Annotations,
		Texts:       result.Texts,
		Mesh:        faces,
		Atlas:       a,
	}, nil
}

// pack renders the texts into the atlas
func (c *Converter) pack(texts []*model.TextRecord) (*atlas.Atlas, error) {
	cfg := c.options.cfg
	face, err := atlas.LoadFace(cfg.FontConfig())
	if err != nil {
		return nil, err
	}
	defer face.Close()

	items := make([]atlas.Item, len(texts))
	for i, t := range texts {
		items[i] = atlas.Item{ID: t.ID, Text: t.Literal}
	}

	a, err := atlas.Pack(items, cfg.Atlas.Size, atlas.NewFaceMeasurer(face))
	if err != nil {
		return nil, err
	}
	if a.Overflowed() {
		if cfg.Atlas.Strict {
			return nil, a.OverflowError()
		}
		for _, i := range a.Overflow {
			e := a.Entries[i]
			c.warn(WarningAtlasOverflow, e.ID, "text %q at %d,%d (%dx%d) exceeds the %dpx atlas",
				e.Text, e.X, e.Y, e.Width, e.Height, cfg.Atlas.Size)
		}
	}
	return a, nil
}

// report renders the HTML report
func (c *Converter) report(scene *Scene, warnings []Warning) ([]byte, error) {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	source := c.filename
	if source == "" {
		source = scene.Header.Name
	}
	return report.HTML(report.Data{
		Title:    "Annotation texts of " + displayName(source),
		Source:   source,
		Schema:   scene.Schema,
		Mesh:     scene.Mesh,
		Atlas:    scene.Atlas,
		Warnings: lines,
	})
}

func displayName(source string) string {
	if source == "" {
		return "model"
	}
	if i := strings.LastIndexAny(source, `/\`); i >= 0 {
		return source[i+1:]
	}
	return source
}
