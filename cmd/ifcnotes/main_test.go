package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fixture = "../../testdata/annotations.ifc"

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

// TestTextsCommand tests the corner listing
func TestTextsCommand(t *testing.T) {
	out, _, err := runCLI(t, "texts", fixture)
	if err != nil {
		t.Fatalf("texts failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "[Wohnen]:(1, 2, 3),") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "[24.5 m²]:") {
		t.Errorf("unexpected second line %q", lines[1])
	}
}

// TestConvertCommand tests writing a scene with a config file
func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "ifcnotes.yml")
	if err := os.WriteFile(cfgPath, []byte("font:\n  family: Go\natlas:\n  size: 512\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	glb := filepath.Join(dir, "out.glb")
	png := filepath.Join(dir, "atlas.png")

	out, _, err := runCLI(t, "-config", cfgPath, "convert", "-o", glb, "-atlas-png", png, "-size", "20", fixture)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if strings.TrimSpace(out) != glb {
		t.Errorf("expected output path, got %q", out)
	}
	for _, p := range []string{glb, png} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s: %v", p, err)
		}
	}
}

// TestConvertRequiresFont tests the missing font error
func TestConvertRequiresFont(t *testing.T) {
	_, _, err := runCLI(t, "convert", "-o", filepath.Join(t.TempDir(), "x.glb"), fixture)
	if err == nil || !strings.Contains(err.Error(), "font") {
		t.Errorf("expected font error, got %v", err)
	}
}

// TestDumpCommand tests dumping one element
func TestDumpCommand(t *testing.T) {
	out, _, err := runCLI(t, "dump", "-id", "23", fixture)
	if err != nil {
		t.Fatalf("dump failed: %v", err)
	}
	if out != "(IfcPlanarExtent#23): SizeInX=2.0, SizeInY=0.5\n" {
		t.Errorf("unexpected output %q", out)
	}
}

// TestUsageErrors tests bad invocations
func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"explode", fixture}},
		{"no model", []string{"texts"}},
		{"two models", []string{"texts", fixture, fixture}},
		{"bad flag", []string{"dump", "-nope", fixture}},
		{"missing config", []string{"-config", "/nonexistent.yml", "texts", fixture}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := runCLI(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}
