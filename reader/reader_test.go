package reader

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// minimalIFC is a small model with one annotation and its placement chain
const minimalIFC = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION(('ViewDefinition [CoordinationView]'),'2;1');
FILE_NAME('house.ifc','2024-01-01T00:00:00',('Architect'),('Office'),'IFC text','Modeller 1.0','');
FILE_SCHEMA(('IFC2X3'));
ENDSEC;
DATA;
#1=IFCCARTESIANPOINT((0.,0.,0.));
#2=IFCAXIS2PLACEMENT3D(#1,$,$);
#3=IFCLOCALPLACEMENT($,#2);
/* annotation */
#4=IFCANNOTATION('0OL3LCjon8C8eMGVs718Tk',$,'Note',$,$,#3,$);
#5=IFCTEXTLITERALWITHEXTENT('50',#6,.LEFT.,#7,'bottom-left');
#6=IFCAXIS2PLACEMENT2D(#8,$);
#7=IFCPLANAREXTENT(0.55,0.4);
#8=IFCCARTESIANPOINT((13.5,10.6));
ENDSEC;
END-ISO-10303-21;
`

// createTempModel writes content to a file with the given name
func createTempModel(t *testing.T, name, content string) string {
	t.Helper()

	tmpFile := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create temp model: %v", err)
	}
	return tmpFile
}

// TestOpen tests opening a model file
func TestOpen(t *testing.T) {
	reader, err := Open(createTempModel(t, "house.ifc", minimalIFC))
	if err != nil {
		t.Fatalf("failed to open model: %v", err)
	}
	defer reader.Close()

	if reader.Len() != 8 {
		t.Errorf("expected 8 instances, got %d", reader.Len())
	}
	if reader.Schema() != "IFC2X3" {
		t.Errorf("expected IFC2X3, got %q", reader.Schema())
	}
	if reader.Size() != int64(len(minimalIFC)) {
		t.Errorf("expected %d bytes read, got %d", len(minimalIFC), reader.Size())
	}
}

// TestOpenNonExistent tests opening a missing file
func TestOpenNonExistent(t *testing.T) {
	if _, err := Open("/nonexistent/house.ifc"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

// TestOpenXML tests that ifcXML is rejected
func TestOpenXML(t *testing.T) {
	_, err := Open(createTempModel(t, "house.ifcxml", `<?xml version="1.0"?><ifcXML/>`))
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("expected unsupported format error, got %v", err)
	}
}

// TestOpenSniffed tests content detection for an unknown extension
func TestOpenSniffed(t *testing.T) {
	reader, err := Open(createTempModel(t, "house.txt", minimalIFC))
	if err != nil {
		t.Fatalf("failed to open model: %v", err)
	}
	if reader.Len() != 8 {
		t.Errorf("expected 8 instances, got %d", reader.Len())
	}
}

// TestOpenZIP tests reading the model out of an .ifczip archive
func TestOpenZIP(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("model/house.ifc")
	if err != nil {
		t.Fatalf("failed to create entry: %v", err)
	}
	w.Write([]byte(minimalIFC))
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close archive: %v", err)
	}

	reader, err := Open(createTempModel(t, "house.ifczip", buf.String()))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	if reader.Len() != 8 {
		t.Errorf("expected 8 instances, got %d", reader.Len())
	}
}

// TestHeader tests header section parsing
func TestHeader(t *testing.T) {
	reader, err := NewReader(strings.NewReader(minimalIFC))
	if err != nil {
		t.Fatalf("failed to read model: %v", err)
	}

	h := reader.Header()
	if h.Name != "house.ifc" {
		t.Errorf("expected name house.ifc, got %q", h.Name)
	}
	if h.ImplementationLevel != "2;1" {
		t.Errorf("expected implementation level 2;1, got %q", h.ImplementationLevel)
	}
	if len(h.Author) != 1 || h.Author[0] != "Architect" {
		t.Errorf("unexpected authors %v", h.Author)
	}
	if h.OriginatingSystem != "Modeller 1.0" {
		t.Errorf("unexpected originating system %q", h.OriginatingSystem)
	}
}

// TestInstance tests lookup by id
func TestInstance(t *testing.T) {
	reader, err := NewReader(strings.NewReader(minimalIFC))
	if err != nil {
		t.Fatalf("failed to read model: %v", err)
	}

	inst, err := reader.Instance(7)
	if err != nil {
		t.Fatalf("failed to get instance: %v", err)
	}
	if inst.Name != "IFCPLANAREXTENT" {
		t.Errorf("expected IFCPLANAREXTENT, got %s", inst.Name)
	}

	_, err = reader.Instance(99)
	if !errors.Is(err, ErrInstanceNotFound) {
		t.Errorf("expected ErrInstanceNotFound, got %v", err)
	}
}

// TestInstancesOf tests lookup by type, including subtypes
func TestInstancesOf(t *testing.T) {
	reader, err := NewReader(strings.NewReader(minimalIFC))
	if err != nil {
		t.Fatalf("failed to read model: %v", err)
	}

	tests := []struct {
		typ  string
		want []int
	}{
		{"IfcAnnotation", []int{4}},
		{"IFCCARTESIANPOINT", []int{1, 8}},
		{"IfcTextLiteral", []int{5}},
		{"IfcPlacement", []int{2, 6}},
		{"IfcWall", nil},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			got := reader.InstancesOf(tt.typ)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d instances, got %d", len(tt.want), len(got))
			}
			for i, inst := range got {
				if inst.ID != tt.want[i] {
					t.Errorf("instance %d: expected #%d, got #%d", i, tt.want[i], inst.ID)
				}
			}
		})
	}
}

// TestTypes tests the per-type counts
func TestTypes(t *testing.T) {
	reader, err := NewReader(strings.NewReader(minimalIFC))
	if err != nil {
		t.Fatalf("failed to read model: %v", err)
	}
	types := reader.Types()
	if types["IFCCARTESIANPOINT"] != 2 || types["IFCANNOTATION"] != 1 {
		t.Errorf("unexpected counts %v", types)
	}
}

// TestProgress tests that a progress bar is rendered
func TestProgress(t *testing.T) {
	var out bytes.Buffer
	reader, err := NewReader(strings.NewReader(minimalIFC), WithProgress(&out))
	if err != nil {
		t.Fatalf("failed to read model: %v", err)
	}
	if reader.Len() != 8 {
		t.Errorf("expected 8 instances, got %d", reader.Len())
	}
	if out.Len() == 0 {
		t.Error("expected progress output")
	}
}

// TestReaderErrors tests malformed models
func TestReaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"not step", "%PDF-1.4", "invalid STEP file"},
		{"no data", "ISO-10303-21;\nHEADER;\nENDSEC;\nEND-ISO-10303-21;", "no DATA section"},
		{"duplicate id", "ISO-10303-21;HEADER;ENDSEC;DATA;#1=IFCDIRECTION((1.,0.));#1=IFCDIRECTION((0.,1.));ENDSEC;END-ISO-10303-21;", "duplicate instance #1"},
		{"truncated", "ISO-10303-21;HEADER;ENDSEC;DATA;#1=IFCDIRECTION((1.,0.));", "unexpected end of file"},
		{"bad instance", "ISO-10303-21;HEADER;ENDSEC;DATA;#1=IFCDIRECTION((1.,0.);ENDSEC;END-ISO-10303-21;", "failed to parse data section"},
		{"empty schema", "ISO-10303-21;HEADER;FILE_SCHEMA(());ENDSEC;DATA;ENDSEC;END-ISO-10303-21;", "no schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(strings.NewReader(tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestMultipleDataSections tests files with several DATA sections
func TestMultipleDataSections(t *testing.T) {
	content := "ISO-10303-21;HEADER;ENDSEC;DATA('a',('IFC4'));#1=IFCDIRECTION((1.,0.));ENDSEC;" +
		"DATA;#2=IFCDIRECTION((0.,1.));ENDSEC;END-ISO-10303-21;"
	reader, err := NewReader(strings.NewReader(content))
	if err != nil {
		t.Fatalf("failed to read model: %v", err)
	}
	if reader.Len() != 2 {
		t.Errorf("expected 2 instances, got %d", reader.Len())
	}
}
