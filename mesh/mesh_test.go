package mesh

import (
	"bytes"
	"errors"
	"image/draw"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/tsawler/ifcnotes/atlas"
	"github.com/tsawler/ifcnotes/model"
)

type boxMeasurer struct{}

func (boxMeasurer) Measure(text string) (int, int)    { return 8 * len(text), 8 }
func (boxMeasurer) Draw(draw.Image, string, int, int) {}

func record(id string, sx, sy float64, offset model.Vec3) *model.TextRecord {
	parent := &model.AnnotationNode{GlobalID: "g" + id, LocalPlacement: model.Translate(offset)}
	parent.Attach(&model.WorldContext{ID: "1", WorldCoordinateSystem: model.Identity()})
	return &model.TextRecord{
		ID:        id,
		Parent:    parent,
		Placement: model.Identity(),
		SizeX:     sx,
		SizeY:     sy,
		Literal:   "t" + id,
	}
}

func packFor(t *testing.T, m *Mesh) *atlas.Atlas {
	t.Helper()
	items := make([]atlas.Item, len(m.Faces))
	for i, f := range m.Faces {
		items[i] = atlas.Item{ID: f.ID, Text: f.Text}
	}
	a, err := atlas.Pack(items, 64, boxMeasurer{})
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	return a
}

// TestBuildFaces tests vertices, normals and indices of the quads
func TestBuildFaces(t *testing.T) {
	m, err := BuildFaces([]*model.TextRecord{
		record("1", 2, 1, model.Vec3{}),
		record("2", 1, 1, model.Vec3{X: 10}),
	})
	if err != nil {
		t.Fatalf("BuildFaces failed: %v", err)
	}

	if len(m.Faces) != 2 {
		t.Fatalf("expected 2 faces, got %d", len(m.Faces))
	}
	expected := [4]model.Vec3{{X: 0, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}, {X: 2, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0}}
	for i, v := range m.Faces[0].Vertices {
		if !v.ApproxEqual(expected[i], 1e-9) {
			t.Errorf("vertex %d: expected %v, got %v", i, expected[i], v)
		}
	}
	for i, n := range m.Faces[0].Normals {
		if !n.ApproxEqual(model.Vec3{Z: 2}, 1e-9) {
			t.Errorf("normal %d: expected (0,0,2), got %v", i, n)
		}
	}
	if n := m.Faces[0].Normal(); !n.ApproxEqual(model.UnitZ, 1e-9) {
		t.Errorf("expected unit +Z normal, got %v", n)
	}
	if v := m.Faces[1].Vertices[0]; !v.ApproxEqual(model.Vec3{X: 10}, 1e-9) {
		t.Errorf("expected second face at x=10, got %v", v)
	}

	wantIdx := []uint32{0, 2, 3, 0, 1, 2, 4, 6, 7, 4, 5, 6}
	if len(m.Indices) != len(wantIdx) {
		t.Fatalf("expected %d indices, got %d", len(wantIdx), len(m.Indices))
	}
	for i := range wantIdx {
		if m.Indices[i] != wantIdx[i] {
			t.Errorf("index %d: expected %d, got %d", i, wantIdx[i], m.Indices[i])
		}
	}
	if m.Triangles() != 4 {
		t.Errorf("expected 4 triangles, got %d", m.Triangles())
	}
	if len(m.Positions()) != 8 {
		t.Errorf("expected 8 positions, got %d", len(m.Positions()))
	}
}

// TestBuildFacesNoContext tests that a text without a world context fails
func TestBuildFacesNoContext(t *testing.T) {
	r := record("1", 1, 1, model.Vec3{})
	r.Parent.Context = nil
	if _, err := BuildFaces([]*model.TextRecord{r}); !errors.Is(err, model.ErrNoContext) {
		t.Errorf("expected ErrNoContext, got %v", err)
	}
}

// TestDegenerateNormal tests the +Z fallback for zero-area quads
func TestDegenerateNormal(t *testing.T) {
	m, err := BuildFaces([]*model.TextRecord{record("1", 0, 0, model.Vec3{})})
	if err != nil {
		t.Fatalf("BuildFaces failed: %v", err)
	}
	if n := m.Faces[0].Normal(); n != model.UnitZ {
		t.Errorf("expected +Z, got %v", n)
	}
}

// TestAxisConversion tests the Y-up mapping
func TestAxisConversion(t *testing.T) {
	v := model.Vec3{X: 1, Y: 2, Z: 3}
	if got := (ExportOptions{}).axis(v); got != [3]float32{1, 2, 3} {
		t.Errorf("expected Z-up unchanged, got %v", got)
	}
	if got := (ExportOptions{YUp: true}).axis(v); got != [3]float32{1, 3, -2} {
		t.Errorf("expected (1,3,-2), got %v", got)
	}
}

// TestDocument tests the structure of the glTF document
func TestDocument(t *testing.T) {
	m, err := BuildFaces([]*model.TextRecord{record("1", 2, 1, model.Vec3{}), record("2", 1, 1, model.Vec3{})})
	if err != nil {
		t.Fatalf("BuildFaces failed: %v", err)
	}
	doc, err := Document(m, packFor(t, m), ExportOptions{Name: "notes", Generator: "test"})
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}

	if len(doc.Meshes) != 1 || doc.Meshes[0].Name != "notes" {
		t.Fatalf("expected one mesh named notes, got %v", doc.Meshes)
	}
	prim := doc.Meshes[0].Primitives[0]
	for _, attr := range []string{gltf.POSITION, gltf.NORMAL, gltf.TEXCOORD_0} {
		idx, ok := prim.Attributes[attr]
		if !ok {
			t.Errorf("missing attribute %s", attr)
			continue
		}
		if doc.Accessors[idx].Count != 8 {
			t.Errorf("%s: expected 8 elements, got %d", attr, doc.Accessors[idx].Count)
		}
	}
	if doc.Accessors[*prim.Indices].Count != 12 {
		t.Errorf("expected 12 indices, got %d", doc.Accessors[*prim.Indices].Count)
	}
	if len(doc.Images) != 1 || doc.Images[0].MimeType != "image/png" {
		t.Errorf("expected one PNG image, got %v", doc.Images)
	}
	if len(doc.Textures) != 1 || len(doc.Samplers) != 1 {
		t.Errorf("expected one texture and sampler")
	}
	if !doc.Materials[0].DoubleSided {
		t.Error("expected double sided material")
	}
	if doc.Asset.Generator != "test" {
		t.Errorf("expected generator test, got %q", doc.Asset.Generator)
	}
	if len(doc.Scenes[0].Nodes) != 1 {
		t.Errorf("expected one node in the scene, got %d", len(doc.Scenes[0].Nodes))
	}
}

// TestDocumentMismatch tests an atlas that does not match the faces
func TestDocumentMismatch(t *testing.T) {
	m, err := BuildFaces([]*model.TextRecord{record("1", 1, 1, model.Vec3{})})
	if err != nil {
		t.Fatalf("BuildFaces failed: %v", err)
	}
	a, err := atlas.Pack(nil, 8, boxMeasurer{})
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	if _, err := Document(m, a, ExportOptions{}); err == nil {
		t.Error("expected error")
	}
}

// TestEmptyDocument tests that no texts still yield a valid scene
func TestEmptyDocument(t *testing.T) {
	m, err := BuildFaces(nil)
	if err != nil {
		t.Fatalf("BuildFaces failed: %v", err)
	}
	doc, err := Document(m, packFor(t, m), ExportOptions{})
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}
	if len(doc.Meshes) != 0 {
		t.Errorf("expected no meshes, got %d", len(doc.Meshes))
	}
}

// TestSaveGLB tests writing and reading back a binary glTF
func TestSaveGLB(t *testing.T) {
	m, err := BuildFaces([]*model.TextRecord{record("1", 2, 1, model.Vec3{})})
	if err != nil {
		t.Fatalf("BuildFaces failed: %v", err)
	}
	a := packFor(t, m)

	path := filepath.Join(t.TempDir(), "out.glb")
	if err := SaveGLB(path, m, a, ExportOptions{}); err != nil {
		t.Fatalf("SaveGLB failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("glTF")) {
		t.Fatalf("expected GLB magic, got %q", data[:4])
	}

	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(doc.Meshes) != 1 || len(doc.Images) != 1 {
		t.Errorf("expected one mesh and one image, got %d and %d", len(doc.Meshes), len(doc.Images))
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the output file, got %d entries", len(entries))
	}
}

// TestGLBDeterministic tests that encoding the same scene twice gives identical bytes
func TestGLBDeterministic(t *testing.T) {
	records := []*model.TextRecord{
		record("1", 2, 1, model.Vec3{X: 1, Y: 2, Z: 3}),
		record("2", 1, 0.5, model.Vec3{X: -4}),
	}

	var outputs [2][]byte
	for i := range outputs {
		m, err := BuildFaces(records)
		if err != nil {
			t.Fatalf("BuildFaces failed: %v", err)
		}
		data, err := GLB(m, packFor(t, m), ExportOptions{YUp: true})
		if err != nil {
			t.Fatalf("GLB failed: %v", err)
		}
		outputs[i] = data
	}
	if !bytes.HasPrefix(outputs[0], []byte("glTF")) {
		t.Error("expected binary glTF")
	}
	if !bytes.Equal(outputs[0], outputs[1]) {
		t.Errorf("outputs differ (%d vs %d bytes)", len(outputs[0]), len(outputs[1]))
	}
}

// TestSaveGLBFailure tests that a failed export leaves no file
func TestSaveGLBFailure(t *testing.T) {
	m, err := BuildFaces([]*model.TextRecord{record("1", 1, 1, model.Vec3{})})
	if err != nil {
		t.Fatalf("BuildFaces failed: %v", err)
	}
	a, err := atlas.Pack(nil, 8, boxMeasurer{})
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	dir := t.TempDir()
	if err := SaveGLB(filepath.Join(dir, "out.glb"), m, a, ExportOptions{}); err == nil {
		t.Fatal("expected error")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected empty directory, got %d entries", len(entries))
	}
}
