package core

import (
	"strings"
	"testing"
)

func TestIsText(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"empty", nil, true},
		{"plain", []byte("hello world\n"), true},
		{"env file", []byte("KEY=value\r\nOTHER=1\t# comment\n"), true},
		{"utf8", []byte("naïve café"), true},
		{"null byte", []byte("abc\x00def"), false},
		{"invalid utf8", []byte{0xff, 0xfe, 'a'}, false},
		{"control heavy", []byte("\x01\x02\x03\x04abc"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsText(tt.data); got != tt.want {
				t.Errorf("IsText(%q) = %v, want %v", tt.data, got, tt.want)
			}
		})
	}
}

func TestGenerateUnifiedDiff_Identical(t *testing.T) {
	out, err := GenerateUnifiedDiff("n", "f", []byte("same\n"), []byte("same\n"))
	if err != nil {
		t.Fatalf("GenerateUnifiedDiff failed: %v", err)
	}
	if out != "" {
		t.Errorf("Expected empty diff, got %q", out)
	}
}

func TestGenerateUnifiedDiff_AddedLines(t *testing.T) {
	out, err := GenerateUnifiedDiff("n", "f", []byte("line1\n"), []byte("line1\nline2\n"))
	if err != nil {
		t.Fatalf("GenerateUnifiedDiff failed: %v", err)
	}
	if !strings.Contains(out, "+line2") {
		t.Errorf("Expected added line in %q", out)
	}
	if !strings.HasPrefix(out, "--- lockbox/n\n+++ f\n") {
		t.Errorf("Unexpected headers in %q", out)
	}
}

func TestGenerateUnifiedDiff_Binary(t *testing.T) {
	out, err := GenerateUnifiedDiff("n", "f", []byte("text"), []byte("bin\x00ary"))
	if err != nil {
		t.Fatalf("GenerateUnifiedDiff failed: %v", err)
	}
	if !strings.Contains(out, "Binary content") {
		t.Errorf("Expected binary notice, got %q", out)
	}
}
