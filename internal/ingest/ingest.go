package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/guardline/restoreaudit/internal/domain/validation"
	"github.com/guardline/restoreaudit/internal/pkg/errors"
	"github.com/guardline/restoreaudit/internal/pkg/logger"
	"github.com/guardline/restoreaudit/internal/pkg/metrics"
)

// Source kinds
const (
	KindSureBackup  = "surebackup"
	KindCloudVerify = "cloudverify"
	KindRestoreJob  = "restorejob"
	KindCSV         = "csv"
)

// Source is one configured result input.
type Source struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// Provenance records what one source contributed to a run.
type Provenance struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Records int    `json:"records"`
	Skipped bool   `json:"skipped"`
	Manual  bool   `json:"manual"`
}

// Ingestor normalizes heterogeneous result sources into the canonical
// result type. Unreadable sources are skipped with a warning; only a run
// with zero results overall is treated as fatal, and that decision belongs
// to the caller.
type Ingestor struct {
	logger *logger.Logger
}

// New creates an Ingestor.
func New(log *logger.Logger) *Ingestor {
	return &Ingestor{logger: log}
}

// Discover scans a directory for result files by naming convention and
// returns them as sources in deterministic (sorted) order.
func Discover(dir string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.SourceUnreadable(dir, err)
	}

	var sources []Source
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		kind := kindForFilename(e.Name())
		if kind == "" {
			continue
		}
		sources = append(sources, Source{Path: filepath.Join(dir, e.Name()), Kind: kind})
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Path < sources[j].Path })
	return sources, nil
}

func kindForFilename(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, "-surebackup.json"):
		return KindSureBackup
	case strings.HasSuffix(lower, "-cloudverify.json"):
		return KindCloudVerify
	case strings.HasSuffix(lower, "-restorejob.json"):
		return KindRestoreJob
	case strings.HasSuffix(lower, ".csv"):
		return KindCSV
	default:
		return ""
	}
}

// Ingest reads every source and returns the combined normalized results
// plus per-source provenance. A source that cannot be read or parsed is
// logged, recorded as skipped, and does not fail the ingest. When
// defaultRTOMinutes is positive it is applied to every record whose
// source did not carry its own RTO target.
func (i *Ingestor) Ingest(sources []Source, defaultRTOMinutes int) ([]validation.Result, []Provenance) {
	ingestedAt := time.Now().UTC()

	var results []validation.Result
	provenance := make([]Provenance, 0, len(sources))

	for _, src := range sources {
		prov := Provenance{Path: src.Path, Kind: src.Kind, Manual: src.Kind == KindCSV}

		parsed, err := i.parseSource(src, ingestedAt, defaultRTOMinutes)
		if err != nil {
			i.logger.WithFields(map[string]interface{}{
				"source": src.Path,
				"kind":   src.Kind,
			}).ErrorWithErr(err, "Skipping unreadable result source")
			metrics.RecordSkippedSource(src.Kind)
			prov.Skipped = true
			provenance = append(provenance, prov)
			continue
		}

		prov.Records = len(parsed)
		provenance = append(provenance, prov)
		results = append(results, parsed...)

		i.logger.WithFields(map[string]interface{}{
			"source":  src.Path,
			"kind":    src.Kind,
			"records": len(parsed),
		}).Info("Ingested result source")
	}

	return results, provenance
}

func (i *Ingestor) parseSource(src Source, ingestedAt time.Time, defaultRTO int) ([]validation.Result, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, errors.SourceUnreadable(src.Path, err)
	}

	switch src.Kind {
	case KindSureBackup:
		return i.parseSureBackup(src.Path, data, ingestedAt, defaultRTO)
	case KindCloudVerify:
		return i.parseCloudVerify(src.Path, data, ingestedAt, defaultRTO)
	case KindRestoreJob:
		return i.parseRestoreJob(src.Path, data, ingestedAt, defaultRTO)
	case KindCSV:
		return i.parseCSV(src.Path, data, ingestedAt, defaultRTO)
	default:
		return nil, errors.SourceUnreadable(src.Path, fmt.Errorf("unknown source kind %q", src.Kind))
	}
}

// defaultTarget substitutes the run-level RTO target when a record carries
// none of its own.
func (i *Ingestor) defaultTarget(source, record string, target, defaultRTO int) int {
	if target > 0 || defaultRTO <= 0 {
		return target
	}
	i.logDefault(source, record, "rto_target_minutes", strconv.Itoa(defaultRTO)+" (run default)")
	return defaultRTO
}

// logDefault records a field-level degradation so an auditor can
// reconstruct how the evidence was assembled.
func (i *Ingestor) logDefault(source, record, field, assumed string) {
	i.logger.WithFields(map[string]interface{}{
		"source":  source,
		"record":  record,
		"field":   field,
		"assumed": assumed,
	}).Warn("Field missing or malformed, default applied")
}
