package core

import "testing"

// TestDecodeString tests the STEP string control directives
func TestDecodeString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Hello", "Hello"},
		{"backslash", `C:\\temp`, `C:\temp`},
		{"latin1 hex", `Caf\X\E9`, "Café"},
		{"S directive", `\S\i`, "é"},
		{"code page switch", `\PE\\S\P`, "а"},
		{"utf16", `\X2\3042308A304C3068\X0\`, "ありがと"},
		{"utf16 mixed", `A\X2\00E9\X0\B`, "AéB"},
		{"ucs4", `\X4\0001F600\X0\`, "\U0001F600"},
		{"lone backslash", `a\b`, `a\b`},
		{"nfc", "e\u0301", "é"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeString(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

// TestDecodeStringErrors tests malformed directives
func TestDecodeStringErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated X2", `\X2\0041`},
		{"odd X2 run", `\X2\004\X0\`},
		{"bad hex", `\X\ZZ`},
		{"truncated X", `\X\4`},
		{"unknown code page", `\PZ\`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeString(tt.input); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// TestParserDecodesStrings tests that parsed strings are decoded
func TestParserDecodesStrings(t *testing.T) {
	parser := NewParser(stringsReader(`'\X2\6CE8\X0\''s'`))
	obj, err := parser.ParseObject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj != String("注's") {
		t.Errorf("expected 注's, got %q", obj.String())
	}
}
