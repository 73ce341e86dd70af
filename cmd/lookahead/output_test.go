package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]column{{title: "Head", right: true}, {title: "Type"}, {title: "Run", right: true}}, [][]string{
		{"0", "Keyframe", "2"},
		{"3"},
	})
	for _, want := range []string{"Head", "Type", "Keyframe"} {
		requireContains(t, out, want)
	}
	if lines := strings.Count(out, "\n") + 1; lines != 6 {
		t.Fatalf("expected 6 rendered lines, got %d:\n%s", lines, out)
	}
	if renderTable(nil, [][]string{{"x"}}) != "" {
		t.Fatal("expected empty output without columns")
	}
}

func TestIsTerminalRejectsBuffers(t *testing.T) {
	if isTerminal(&bytes.Buffer{}) {
		t.Fatal("buffer reported as terminal")
	}
}

func TestTitleLabel(t *testing.T) {
	if got := titleLabel("reference"); got != "Reference" {
		t.Fatalf("titleLabel = %q", got)
	}
}
