package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/guardline/restoreaudit/internal/domain/validation"
)

func TestTableRender(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable("ID", "SCORE")
	table.writer = &buf
	table.AddRow("abc123", "88.5")
	table.Render()

	out := buf.String()
	for _, want := range []string{"ID", "SCORE", "abc123", "88.5", "--"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly-10", 10, "exactly-10"},
		{"this is far too long", 10, "this is..."},
		{"abc", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestFormatRTOMet(t *testing.T) {
	if got := formatRTOMet(nil); got != "n/a" {
		t.Errorf("nil = %q, want n/a", got)
	}
	if got := formatRTOMet(validation.BoolPtr(true)); got != "met" {
		t.Errorf("true = %q, want met", got)
	}
	if got := formatRTOMet(validation.BoolPtr(false)); got != "missed" {
		t.Errorf("false = %q, want missed", got)
	}
}

func TestFormatSeverity(t *testing.T) {
	if got := formatSeverity("High"); got != "[H] HIGH" {
		t.Errorf("High = %q", got)
	}
	if got := formatSeverity("Info"); got != "[i] INFO" {
		t.Errorf("Info = %q", got)
	}
	if got := formatSeverity("Unknown"); got != "Unknown" {
		t.Errorf("Unknown = %q", got)
	}
}

func TestResolveSources(t *testing.T) {
	sources, err := resolveSources([]string{"/data/lab-surebackup.json:surebackup", "/data/manual.csv:csv"}, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("got %d sources", len(sources))
	}
	if sources[0].Path != "/data/lab-surebackup.json" || sources[0].Kind != "surebackup" {
		t.Errorf("source[0] = %+v", sources[0])
	}

	if _, err := resolveSources([]string{"no-kind"}, ""); err == nil {
		t.Error("expected error for spec without kind")
	}
	if _, err := resolveSources([]string{"trailing:"}, ""); err == nil {
		t.Error("expected error for empty kind")
	}
}
