package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/guardline/restoreaudit/internal/ingest"
	"github.com/guardline/restoreaudit/internal/pkg/logger"
	"github.com/guardline/restoreaudit/internal/services"
	"github.com/guardline/restoreaudit/internal/testutil"
)

func buildBundle(t *testing.T) *services.PostureBundle {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "manual.csv")
	content := `Platform,VMName,TestName,Passed,RTOTargetMinutes,RTOActualMinutes
VMware,web01,Boot Check,true,30,20
AWS,web02,Boot Check,false,0,0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	log := logger.Nop()
	service := services.NewAssessmentService(ingest.New(log), testutil.NewMockSnapshotRepository(), log)
	bundle, err := service.Run(context.Background(), services.RunOptions{
		Org:     "acme",
		Sources: []ingest.Source{{Path: path, Kind: ingest.KindCSV}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return bundle
}

func TestWriteHTML(t *testing.T) {
	bundle := buildBundle(t)

	var buf bytes.Buffer
	if err := WriteHTML(&buf, "acme", bundle); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		"Recoverability Posture Report",
		"acme",
		bundle.Score.Grade,
		"web01",
		"web02",
		"Baseline run",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}

	// The untagged failed VM renders the RTO tri-state as n/a.
	if !strings.Contains(html, "n/a") {
		t.Error("untagged RTO not rendered as n/a")
	}
}

func TestWriteHTMLEscapesDetails(t *testing.T) {
	bundle := buildBundle(t)
	bundle.Summary.Results[0].Details = `<script>alert(1)</script>`

	var buf bytes.Buffer
	if err := WriteHTML(&buf, "acme", bundle); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(buf.String(), "<script>alert(1)</script>") {
		t.Error("details not HTML-escaped")
	}
}
