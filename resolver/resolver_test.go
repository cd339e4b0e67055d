package resolver

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tsawler/ifcnotes/core"
	"github.com/tsawler/ifcnotes/schema"
	"github.com/tsawler/ifcnotes/walk"
)

// mockReader is a mock ObjectReader for testing
type mockReader struct {
	instances map[int]*core.Instance
	order     []int
}

// newMockReader parses instance lines such as "#1=IFCDIRECTION((1.,0.));"
func newMockReader(t *testing.T, lines ...string) *mockReader {
	t.Helper()
	m := &mockReader{instances: make(map[int]*core.Instance)}
	parser := core.NewParser(strings.NewReader(strings.Join(lines, "\n")))
	for !parser.AtEOF() {
		inst, err := parser.ParseInstance()
		if err != nil {
			t.Fatalf("failed to parse fixture: %v", err)
		}
		m.instances[inst.ID] = inst
		m.order = append(m.order, inst.ID)
	}
	return m
}

func (m *mockReader) Instance(id int) (*core.Instance, error) {
	inst, ok := m.instances[id]
	if !ok {
		return nil, fmt.Errorf("instance #%d not found", id)
	}
	return inst, nil
}

func (m *mockReader) InstancesOf(typ string) []*core.Instance {
	var out []*core.Instance
	for _, id := range m.order {
		if schema.IsA(m.instances[id].Name, typ) {
			out = append(out, m.instances[id])
		}
	}
	return out
}

var fixture = []string{
	"#1=IFCCARTESIANPOINT((1.,2.,3.));",
	"#2=IFCAXIS2PLACEMENT3D(#1,$,$);",
	"#3=IFCLOCALPLACEMENT($,#2);",
	"#4=IFCANNOTATION('G1',$,IFCLABEL('Note'),$,$,#3,#5);",
	"#5=IFCPRODUCTDEFINITIONSHAPE($,$,(#6));",
	"#6=IFCSHAPEREPRESENTATION(#7,'Annotation','Annotation2D',(#8,#9));",
	"#7=IFCGEOMETRICREPRESENTATIONCONTEXT($,'Plan',2,1.E-05,#2,$);",
	"#8=IFCPOLYLINE((#1,#1));",
	"#9=IFCGEOMETRICCURVESET((#8));",
	"#10=IFCANNOTATION('G2',$,$,$,$,#3,$);",
	"#11=IFCSOMETHINGELSE(#99,'x');",
}

// TestElement tests basic element accessors
func TestElement(t *testing.T) {
	res := NewResolver(newMockReader(t, fixture...))

	e, err := res.Element(4)
	if err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}
	if e.ID() != 4 || e.Type() != "IfcAnnotation" || e.Key() != "#4" {
		t.Errorf("unexpected identity %d %s %s", e.ID(), e.Type(), e.Key())
	}
	if e.String() != "IfcAnnotation#4" {
		t.Errorf("unexpected string %s", e.String())
	}
	if !e.IsA("IfcProduct") {
		t.Error("expected IfcAnnotation to be an IfcProduct")
	}
	if s, ok := e.Text("GlobalId"); !ok || s != "G1" {
		t.Errorf("expected GlobalId G1, got %q", s)
	}
	if s, ok := e.Text("Name"); !ok || s != "Note" {
		t.Errorf("expected typed label Note, got %q", s)
	}
	if _, ok := e.Text("Description"); ok {
		t.Error("expected unset Description")
	}

	again, err := res.Element(4)
	if err != nil || again != e {
		t.Error("expected the cached element")
	}
}

// TestRef tests entity-valued attributes
func TestRef(t *testing.T) {
	res := NewResolver(newMockReader(t, fixture...))
	e, _ := res.Element(3)

	if rel, err := e.Ref("PlacementRelTo"); err != nil || rel != nil {
		t.Errorf("expected nil for unset reference, got %v, %v", rel, err)
	}

	rel, err := e.Ref("RelativePlacement")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rel.ID() != 2 {
		t.Errorf("expected #2, got %s", rel)
	}

	loc, _ := rel.Ref("Location")
	coords, err := loc.Floats("Coordinates")
	if err != nil || len(coords) != 3 || coords[2] != 3 {
		t.Errorf("unexpected coordinates %v, %v", coords, err)
	}

	if _, err := e.Ref("Nope"); !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("expected ErrUnknownAttribute, got %v", err)
	}
}

// TestDanglingReference tests references to missing instances
func TestDanglingReference(t *testing.T) {
	res := NewResolver(newMockReader(t, fixture...))
	e, _ := res.Element(11)

	if e.Type() != "IFCSOMETHINGELSE" {
		t.Errorf("expected unknown type name as written, got %s", e.Type())
	}
	if _, err := e.Ref("Attribute0"); err == nil {
		t.Error("expected error for dangling reference")
	}
	if _, err := e.Attributes(); err == nil {
		t.Error("expected Attributes to fail on a dangling reference")
	}
}

// TestAttributes tests declaration order and reference resolution
func TestAttributes(t *testing.T) {
	res := NewResolver(newMockReader(t, fixture...))
	e, _ := res.Element(6)

	attrs, err := e.Attributes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	names := []string{"ContextOfItems", "RepresentationIdentifier", "RepresentationType", "Items"}
	if len(attrs) != len(names) {
		t.Fatalf("expected %d attributes, got %d", len(names), len(attrs))
	}
	for i, a := range attrs {
		if a.Name != names[i] {
			t.Errorf("attribute %d: expected %s, got %s", i, names[i], a.Name)
		}
	}
	if ctx, ok := attrs[0].Value.(*Element); !ok || ctx.ID() != 7 {
		t.Errorf("expected ContextOfItems to resolve to #7, got %v", attrs[0].Value)
	}
	if _, ok := attrs[3].Value.(core.List); !ok {
		t.Errorf("expected Items to stay a list, got %T", attrs[3].Value)
	}
}

// TestChildCollections tests the Representations, Items and Elements aggregates
func TestChildCollections(t *testing.T) {
	res := NewResolver(newMockReader(t, fixture...))

	tests := []struct {
		id    int
		kind  string
		count int
	}{
		{5, "Representation", 1},
		{6, "Item", 2},
		{9, "Element", 1},
		{1, "", 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("#%d", tt.id), func(t *testing.T) {
			e, _ := res.Element(tt.id)
			cs, err := e.ChildCollections()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.count == 0 {
				if len(cs) != 0 {
					t.Errorf("expected no collections, got %v", cs)
				}
				return
			}
			if len(cs) != 1 || cs[0].Kind != tt.kind || len(cs[0].Members) != tt.count {
				t.Errorf("unexpected collections %+v", cs)
			}
		})
	}
}

// TestWalkElements tests that elements plug into the walker
func TestWalkElements(t *testing.T) {
	res := NewResolver(newMockReader(t, fixture...))
	root, _ := res.Element(4)

	var names []string
	err := walk.Walk("G1", root, func(_ int, name string, node walk.Traversable) (walk.Signal, error) {
		names = append(names, name+"="+node.(*Element).String())
		if name == "ContextOfItems" {
			return walk.SkipSubtree, nil
		}
		return walk.Continue, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"G1=IfcAnnotation#4",
		"ObjectPlacement=IfcLocalPlacement#3",
		"RelativePlacement=IfcAxis2Placement3D#2",
		"Location=IfcCartesianPoint#1",
		"Representation=IfcProductDefinitionShape#5",
		"Representation[0]=IfcShapeRepresentation#6",
		"ContextOfItems=IfcGeometricRepresentationContext#7",
		"Item[0]=IfcPolyline#8",
		"Item[1]=IfcGeometricCurveSet#9",
		"Element[0]=IfcPolyline#8",
	}
	if strings.Join(names, "\n") != strings.Join(want, "\n") {
		t.Errorf("unexpected traversal:\n%s", strings.Join(names, "\n"))
	}
}

// TestElementsOf tests type queries through the resolver
func TestElementsOf(t *testing.T) {
	res := NewResolver(newMockReader(t, fixture...))
	annotations := res.ElementsOf("IfcAnnotation")
	if len(annotations) != 2 || annotations[0].ID() != 4 || annotations[1].ID() != 10 {
		t.Errorf("unexpected annotations %v", annotations)
	}
	if res.CacheSize() != 2 {
		t.Errorf("expected 2 cached elements, got %d", res.CacheSize())
	}
}

// TestResolveDeep tests resolution inside aggregates
func TestResolveDeep(t *testing.T) {
	res := NewResolver(newMockReader(t, fixture...))
	v, err := res.ResolveDeep(core.List{core.Ref(1), core.List{core.Ref(2)}, core.Int(3)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list := v.([]any)
	if e, ok := list[0].(*Element); !ok || e.ID() != 1 {
		t.Errorf("expected #1, got %v", list[0])
	}
	if inner := list[1].([]any); inner[0].(*Element).ID() != 2 {
		t.Errorf("expected nested #2, got %v", inner[0])
	}
	if list[2] != core.Int(3) {
		t.Errorf("expected 3 unchanged, got %v", list[2])
	}

	if _, err := res.ResolveDeep(core.List{core.Ref(42)}); err == nil {
		t.Error("expected error for missing instance")
	}
}
