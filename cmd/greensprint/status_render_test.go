package main

import (
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Daemon", statusWarn, "Not running", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Daemon:", "[WARN] Not running")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Daemon", statusOK, "Running (pid 42)", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader("Records", false)
	if len(lines) != 2 {
		t.Fatalf("expected header and rule, got %d lines", len(lines))
	}
	if lines[0] != "== Records ==" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != strings.Repeat("-", len(lines[0])) {
		t.Fatalf("expected rule matching header width, got %q", lines[1])
	}

	colored := renderSectionHeader("Records", true)
	if !strings.HasPrefix(colored[0], ansiBlue) || !strings.HasSuffix(colored[0], ansiReset) {
		t.Fatalf("expected colored header, got %q", colored[0])
	}
}

func TestStatusKindFromCheck(t *testing.T) {
	if kind := statusKindFromCheck(true); kind != statusOK {
		t.Fatalf("expected passing check to map to OK, got %v", kind)
	}
	if kind := statusKindFromCheck(false); kind != statusError {
		t.Fatalf("expected failing check to map to ERROR, got %v", kind)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
