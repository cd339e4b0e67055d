package core

import (
	"io"
	"strings"
	"testing"
)

// TestParserPrimitives tests parsing single parameters
func TestParserPrimitives(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Object
	}{
		{"unset", "$", Null{}},
		{"derived", "*", Derived{}},
		{"int", "-12", Int(-12)},
		{"real", "0.5", Real(0.5)},
		{"exponent", "1.E-05", Real(1e-05)},
		{"string", "'Hi'", String("Hi")},
		{"enum", ".BOTTOM-LEFT.", nil},
		{"enum plain", ".LEFT.", Enum("LEFT")},
		{"ref", "#42", Ref(42)},
		{"binary", `"1F"`, Binary("1F")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser(strings.NewReader(tt.input))
			obj, err := parser.ParseObject()
			if tt.expected == nil {
				if err == nil {
					t.Errorf("expected error, got %v", obj)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if obj != tt.expected {
				t.Errorf("expected %v (%T), got %v (%T)", tt.expected, tt.expected, obj, obj)
			}
		})
	}
}

// TestParserList tests aggregates, including nesting and empty lists
func TestParserList(t *testing.T) {
	parser := NewParser(strings.NewReader("((1.,2.),(),#3,$)"))
	obj, err := parser.ParseObject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list, ok := obj.(List)
	if !ok {
		t.Fatalf("expected List, got %T", obj)
	}
	if list.Len() != 4 {
		t.Fatalf("expected 4 elements, got %d", list.Len())
	}

	inner, ok := list.Get(0).(List)
	if !ok {
		t.Fatalf("expected nested List, got %T", list.Get(0))
	}
	floats, err := inner.Floats()
	if err != nil {
		t.Fatalf("Floats failed: %v", err)
	}
	if floats[0] != 1 || floats[1] != 2 {
		t.Errorf("expected [1 2], got %v", floats)
	}

	if empty, ok := list.Get(1).(List); !ok || empty.Len() != 0 {
		t.Errorf("expected empty list, got %v", list.Get(1))
	}
	if refs := list.Refs(); len(refs) != 1 || refs[0] != 3 {
		t.Errorf("expected refs [#3], got %v", refs)
	}
	if list.Get(10) != nil {
		t.Error("expected nil for out of range index")
	}
}

// TestParserTyped tests typed parameters such as IFCLABEL('x')
func TestParserTyped(t *testing.T) {
	parser := NewParser(strings.NewReader("IFCLENGTHMEASURE(2.5)"))
	obj, err := parser.ParseObject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	typed, ok := obj.(Typed)
	if !ok {
		t.Fatalf("expected Typed, got %T", obj)
	}
	if typed.Name != "IFCLENGTHMEASURE" {
		t.Errorf("expected IFCLENGTHMEASURE, got %s", typed.Name)
	}
	if f, ok := Number(typed); !ok || f != 2.5 {
		t.Errorf("expected 2.5, got %v", f)
	}
}

// TestParseInstance tests simple entity instances
func TestParseInstance(t *testing.T) {
	input := "#75793=IFCTEXTLITERALWITHEXTENT('50',#75792,.LEFT.,#75787,'bottom-left');"
	parser := NewParser(strings.NewReader(input))
	inst, err := parser.ParseInstance()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inst.ID != 75793 {
		t.Errorf("expected id 75793, got %d", inst.ID)
	}
	if inst.Name != "IFCTEXTLITERALWITHEXTENT" {
		t.Errorf("unexpected name %s", inst.Name)
	}
	if inst.Args.Len() != 5 {
		t.Fatalf("expected 5 args, got %d", inst.Args.Len())
	}
	if s, ok := inst.Args.Get(0).(String); !ok || s != "50" {
		t.Errorf("expected literal '50', got %v", inst.Args.Get(0))
	}
	if r, ok := inst.Args.Get(1).(Ref); !ok || r != 75792 {
		t.Errorf("expected #75792, got %v", inst.Args.Get(1))
	}
	if !parser.AtEOF() {
		t.Error("expected parser at EOF")
	}
}

// TestParseComplexInstance tests the external mapping form
func TestParseComplexInstance(t *testing.T) {
	input := "#9=(IFCLENGTHUNIT()IFCNAMEDUNIT(*,.LENGTHUNIT.)IFCSIUNIT(.MILLI.,.METRE.));"
	parser := NewParser(strings.NewReader(input))
	inst, err := parser.ParseInstance()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inst.IsComplex() {
		t.Fatal("expected complex instance")
	}
	if len(inst.Parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(inst.Parts))
	}
	if inst.Name != "IFCLENGTHUNIT" {
		t.Errorf("expected first part name, got %s", inst.Name)
	}
	if inst.Parts[2].Name != "IFCSIUNIT" {
		t.Errorf("expected IFCSIUNIT, got %s", inst.Parts[2].Name)
	}
}

// TestParseHeaderEntity tests header section entries
func TestParseHeaderEntity(t *testing.T) {
	parser := NewParser(strings.NewReader("FILE_SCHEMA(('IFC2X3'));"))
	he, err := parser.ParseHeaderEntity()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if he.Name != "FILE_SCHEMA" {
		t.Errorf("expected FILE_SCHEMA, got %s", he.Name)
	}
	schemas, ok := he.Args.Get(0).(List)
	if !ok || schemas.Len() != 1 || schemas.Get(0) != String("IFC2X3") {
		t.Errorf("unexpected schema list %v", he.Args.Get(0))
	}
}

// TestParserErrors tests malformed instances
func TestParserErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing equals", "#1 IFCX();"},
		{"missing semicolon", "#1=IFCX()"},
		{"unclosed list", "#1=IFCX((1.,2.);"},
		{"missing comma", "#1=IFCX(1. 2.);"},
		{"not an instance", "IFCX();"},
		{"empty complex", "#1=();"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser(strings.NewReader(tt.input))
			if _, err := parser.ParseInstance(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// TestParserEOF tests that an empty input yields io.EOF
func TestParserEOF(t *testing.T) {
	parser := NewParser(strings.NewReader("   "))
	if _, err := parser.ParseObject(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

// TestExpectSection tests section keywords with and without parameters
func TestExpectSection(t *testing.T) {
	parser := NewParser(strings.NewReader("DATA;\nDATA('main',('IFC4'));"))
	args, err := parser.ExpectSection("DATA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args != nil {
		t.Errorf("expected no parameters, got %v", args)
	}

	args, err = parser.ExpectSection("DATA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.Len() != 2 {
		t.Errorf("expected 2 parameters, got %d", args.Len())
	}

	if _, err := NewParser(strings.NewReader("HEADER;")).ExpectSection("DATA"); err == nil {
		t.Error("expected error for wrong keyword")
	}
}
