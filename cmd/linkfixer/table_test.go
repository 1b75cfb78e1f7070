package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderTable_keepsHeadingCase(t *testing.T) {
	var buf bytes.Buffer
	out := renderTable(&buf, runColumns, [][]string{{"abc", "2026-05-01 08:30:00", "3s"}})
	if !strings.Contains(out, "Checked") || strings.Contains(out, "CHECKED") {
		t.Errorf("headings rewritten:\n%s", out)
	}
	if !strings.Contains(out, "abc") {
		t.Errorf("row missing:\n%s", out)
	}
}

func TestRenderTable_alignsNumericColumnsRight(t *testing.T) {
	var buf bytes.Buffer
	out := renderTable(&buf, []column{left("Name"), right("Count")}, [][]string{{"a", "7"}, {"b", "1234"}})
	var row string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, " a ") {
			row = line
		}
	}
	if !strings.Contains(row, "    7 │") {
		t.Errorf("count not right-aligned in %q:\n%s", row, out)
	}
}

func TestRenderTable_noColumns(t *testing.T) {
	if got := renderTable(&bytes.Buffer{}, nil, [][]string{{"x"}}); got != "" {
		t.Errorf("got %q", got)
	}
}
