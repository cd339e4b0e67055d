package reader

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsawler/ifcnotes/core"
	"github.com/tsawler/ifcnotes/format"
	"github.com/tsawler/ifcnotes/schema"
)

// ErrInstanceNotFound is returned when a referenced instance id is not in the file
var ErrInstanceNotFound = errors.New("instance not found")

// Reader represents a loaded IFC model
type Reader struct {
	header    Header
	instances map[int]*core.Instance
	order     []int            // instance ids in file order
	byType    map[string][]int // upper-case type name -> ids in file order
	size      int64            // bytes of STEP text read
}

// Option configures a Reader
type Option func(*options)

type options struct {
	progress    io.Writer
	size        int64
	description string
}

// WithProgress renders a progress bar on w while the file is parsed
func WithProgress(w io.Writer) Option {
	return func(o *options) {
		o.progress = w
	}
}

// withSize sets the expected input size for the progress bar
func withSize(size int64, description string) Option {
	return func(o *options) {
		o.size = size
		o.description = description
	}
}

// NewReader parses STEP physical file content from r
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	o := options{size: -1, description: "reading"}
	for _, opt := range opts {
		opt(&o)
	}

	counter := &countingReader{r: r}
	var input io.Reader = counter
	if o.progress != nil {
		var bar interface{ Finish() error }
		input, bar = progressReader(counter, o.progress, o.size, o.description)
		defer bar.Finish()
	}

	reader := &Reader{
		instances: make(map[int]*core.Instance),
		byType:    make(map[string][]int),
	}
	if err := reader.parse(core.NewParser(input)); err != nil {
		return nil, err
	}
	reader.size = counter.n
	return reader, nil
}

// Open opens a model file and returns a Reader.
// Plain .ifc files and .ifczip archives are supported; ifcXML is not.
func Open(filename string, opts ...Option) (*Reader, error) {
	f := format.Detect(filename)
	switch f {
	case format.STEP:
		return openSTEP(filename, opts)
	case format.ZIP:
		return openZIP(filename, opts)
	case format.XML:
		return nil, fmt.Errorf("unsupported format %s: %s", f, filename)
	}

	// Unknown extension: sniff the content
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}
	f, err = format.DetectFromReader(file, info.Size())
	file.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to detect format: %w", err)
	}
	switch f {
	case format.STEP:
		return openSTEP(filename, opts)
	case format.ZIP:
		return openZIP(filename, opts)
	}
	return nil, fmt.Errorf("unsupported format %s: %s", f, filename)
}

func openSTEP(filename string, opts []Option) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	opts = append([]Option{withSize(info.Size(), filepath.Base(filename))}, opts...)
	return NewReader(file, opts...)
}

func openZIP(filename string, opts []Option) (*Reader, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer zr.Close()

	entry := format.FindModelEntry(&zr.Reader)
	if entry == nil {
		return nil, fmt.Errorf("archive %s contains no .ifc file", filename)
	}
	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in archive: %w", entry.Name, err)
	}
	defer rc.Close()

	opts = append([]Option{withSize(int64(entry.UncompressedSize64), entry.Name)}, opts...)
	return NewReader(rc, opts...)
}

// Close releases the instance table
func (r *Reader) Close() error {
	r.instances = nil
	r.order = nil
	r.byType = nil
	return nil
}

// parse reads the whole exchange structure
func (r *Reader) parse(p *core.Parser) error {
	if err := p.ExpectKeyword("ISO-10303-21"); err != nil {
		return fmt.Errorf("invalid STEP file: %w", err)
	}
	if err := p.ExpectKeyword("HEADER"); err != nil {
		return fmt.Errorf("failed to parse header: %w", err)
	}
	for !p.AtKeyword("ENDSEC") {
		if p.AtEOF() {
			return fmt.Errorf("failed to parse header: unexpected end of file")
		}
		he, err := p.ParseHeaderEntity()
		if err != nil {
			return fmt.Errorf("failed to parse header: %w", err)
		}
		if err := r.header.apply(he); err != nil {
			return fmt.Errorf("failed to parse header: %w", err)
		}
	}
	if err := p.ExpectKeyword("ENDSEC"); err != nil {
		return err
	}

	// A file may carry several DATA sections
	sections := 0
	for p.AtKeyword("DATA") {
		if _, err := p.ExpectSection("DATA"); err != nil {
			return fmt.Errorf("failed to parse data section: %w", err)
		}
		if err := r.parseData(p); err != nil {
			return err
		}
		sections++
	}
	if sections == 0 {
		return fmt.Errorf("invalid STEP file: no DATA section")
	}

	if err := p.ExpectKeyword("END-ISO-10303-21"); err != nil {
		return fmt.Errorf("invalid STEP file: %w", err)
	}
	return nil
}

// parseData reads instances up to and including ENDSEC
func (r *Reader) parseData(p *core.Parser) error {
	for !p.AtKeyword("ENDSEC") {
		if p.AtEOF() {
			return fmt.Errorf("failed to parse data section: unexpected end of file")
		}
		inst, err := p.ParseInstance()
		if err != nil {
			return fmt.Errorf("failed to parse data section: %w", err)
		}
		if _, dup := r.instances[inst.ID]; dup {
			return fmt.Errorf("duplicate instance #%d", inst.ID)
		}
		r.instances[inst.ID] = inst
		r.order = append(r.order, inst.ID)
		typ := strings.ToUpper(inst.Name)
		r.byType[typ] = append(r.byType[typ], inst.ID)
	}
	return p.ExpectKeyword("ENDSEC")
}

// Header returns the HEADER section
func (r *Reader) Header() Header {
	return r.header
}

// Schema returns the first schema named in FILE_SCHEMA, e.g. IFC2X3 or IFC4
func (r *Reader) Schema() string {
	if len(r.header.Schemas) == 0 {
		return ""
	}
	return r.header.Schemas[0]
}

// Len returns the number of instances
func (r *Reader) Len() int {
	return len(r.order)
}

// Size returns the number of bytes of STEP text that were parsed
func (r *Reader) Size() int64 {
	return r.size
}

// Instance returns the instance with the given id
func (r *Reader) Instance(id int) (*core.Instance, error) {
	inst, ok := r.instances[id]
	if !ok {
		return nil, fmt.Errorf("#%d: %w", id, ErrInstanceNotFound)
	}
	return inst, nil
}

// InstancesOf returns every instance of typ or one of its subtypes, in file order.
// The type name is matched case-insensitively.
func (r *Reader) InstancesOf(typ string) []*core.Instance {
	want := strings.ToUpper(typ)
	if _, known := schema.Lookup(want); !known {
		return r.collect(r.byType[want])
	}

	var ids []int
	for _, id := range r.order {
		if schema.IsA(r.instances[id].Name, want) {
			ids = append(ids, id)
		}
	}
	return r.collect(ids)
}

// Types returns the distinct instance type names with their counts
func (r *Reader) Types() map[string]int {
	counts := make(map[string]int, len(r.byType))
	for typ, ids := range r.byType {
		counts[typ] = len(ids)
	}
	return counts
}

func (r *Reader) collect(ids []int) []*core.Instance {
	out := make([]*core.Instance, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.instances[id])
	}
	return out
}

// countingReader counts the bytes read through it
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
