package report

import (
	"html/template"
	"io"
	"time"

	"github.com/guardline/restoreaudit/internal/services"
)

// reportData wraps a posture bundle with presentation-only fields.
type reportData struct {
	*services.PostureBundle
	Org         string
	GeneratedAt time.Time
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"severityClass": severityClass,
	"rtoMet": func(met *bool) string {
		if met == nil {
			return "n/a"
		}
		if *met {
			return "met"
		}
		return "missed"
	},
}).Parse(reportHTML))

func severityClass(severity string) string {
	switch severity {
	case "High":
		return "sev-high"
	case "Medium":
		return "sev-medium"
	case "Low":
		return "sev-low"
	default:
		return "sev-info"
	}
}

// WriteHTML renders the posture report for a completed run.
func WriteHTML(w io.Writer, org string, bundle *services.PostureBundle) error {
	return reportTemplate.Execute(w, reportData{
		PostureBundle: bundle,
		Org:           org,
		GeneratedAt:   time.Now().UTC(),
	})
}

const reportHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Recoverability Posture Report - {{.Org}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem auto; max-width: 60rem; color: #1a1a2e; }
h1, h2 { color: #16213e; }
table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
th, td { border: 1px solid #d0d0e0; padding: 0.4rem 0.6rem; text-align: left; font-size: 0.85rem; }
th { background: #f0f0f8; }
.score { font-size: 3rem; font-weight: 700; }
.grade { font-size: 1.6rem; padding: 0.2rem 0.8rem; border-radius: 6px; background: #e8f0fe; }
.sev-high { color: #b00020; font-weight: 600; }
.sev-medium { color: #b36b00; font-weight: 600; }
.sev-low { color: #1a6b9a; }
.sev-info { color: #2a7a2a; }
.fail { color: #b00020; }
.pass { color: #2a7a2a; }
.meta { color: #666; font-size: 0.8rem; }
.delta-up { color: #2a7a2a; }
.delta-down { color: #b00020; }
</style>
</head>
<body>
<h1>Recoverability Posture Report</h1>
<p class="meta">Organization {{.Org}} &middot; run {{.Summary.RunID}} &middot; generated {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}</p>

<h2>Posture Score</h2>
<p><span class="score">{{printf "%.1f" .Score.OverallScore}}</span> <span class="grade">{{.Score.Grade}}</span></p>
<table>
<tr><th>Dimension</th><th>Score</th><th>Weight</th><th>Basis</th></tr>
{{range .Score.SubScores}}<tr><td>{{.Dimension}}</td><td>{{printf "%.1f" .Score}}</td><td>{{printf "%.0f" .Weight}}</td><td>{{.Basis}}</td></tr>
{{end}}</table>

<h2>Summary</h2>
<table>
<tr><th>VMs</th><th>Tests</th><th>Passed</th><th>Failed</th><th>Pass Rate</th><th>Avg RTO (min)</th><th>RTO Compliance</th><th>Platforms</th></tr>
<tr>
<td>{{.Summary.TotalVMs}}</td>
<td>{{.Summary.TotalTests}}</td>
<td class="pass">{{.Summary.PassedTests}}</td>
<td class="fail">{{.Summary.FailedTests}}</td>
<td>{{printf "%.1f" .Summary.PassRate}}%</td>
<td>{{printf "%.2f" .Summary.AvgRTOMinutes}}</td>
<td>{{printf "%.1f" .Summary.RTOComplianceRate}}%</td>
<td>{{range $i, $p := .Summary.Platforms}}{{if $i}}, {{end}}{{$p}}{{end}}</td>
</tr>
</table>

{{if .Delta}}
<h2>Trend vs. Prior Run</h2>
<p class="meta">Compared to run {{.Delta.PriorRunID}} from {{.Delta.PriorCreatedAt.Format "2006-01-02 15:04 MST"}}</p>
<table>
<tr><th>Metric</th><th>Prior</th><th>Current</th><th>Change</th></tr>
<tr><td>Score</td><td>{{printf "%.1f" .Delta.Score.Prior}}</td><td>{{printf "%.1f" .Delta.Score.Current}}</td><td class="{{if ge .Delta.Score.Diff 0.0}}delta-up{{else}}delta-down{{end}}">{{printf "%+.2f" .Delta.Score.Diff}}</td></tr>
<tr><td>Pass Rate</td><td>{{printf "%.1f" .Delta.PassRate.Prior}}%</td><td>{{printf "%.1f" .Delta.PassRate.Current}}%</td><td class="{{if ge .Delta.PassRate.Diff 0.0}}delta-up{{else}}delta-down{{end}}">{{printf "%+.2f" .Delta.PassRate.Diff}}</td></tr>
<tr><td>VMs Covered</td><td>{{printf "%.0f" .Delta.TotalVMs.Prior}}</td><td>{{printf "%.0f" .Delta.TotalVMs.Current}}</td><td>{{printf "%+.0f" .Delta.TotalVMs.Diff}}</td></tr>
<tr><td>Findings</td><td>{{printf "%.0f" .Delta.FindingCount.Prior}}</td><td>{{printf "%.0f" .Delta.FindingCount.Current}}</td><td>{{printf "%+.0f" .Delta.FindingCount.Diff}}</td></tr>
</table>
{{else}}
<h2>Trend</h2>
<p class="meta">Baseline run; no prior snapshot to compare against.</p>
{{end}}

<h2>Findings ({{len .Findings}})</h2>
{{if .Findings}}
<table>
<tr><th>Severity</th><th>Category</th><th>Finding</th><th>Recommendation</th><th>Framework</th></tr>
{{range .Findings}}<tr>
<td class="{{severityClass .Severity}}">{{.Severity}}</td>
<td>{{.Category}}</td>
<td><strong>{{.Title}}</strong><br>{{.Detail}}</td>
<td>{{.Recommendation}}</td>
<td class="meta">{{.Framework}}</td>
</tr>
{{end}}</table>
{{else}}
<p>No findings.</p>
{{end}}

<h2>Test Results ({{len .Summary.Results}})</h2>
<table>
<tr><th>Platform</th><th>VM</th><th>Category</th><th>Test</th><th>Result</th><th>Duration (s)</th><th>RTO</th><th>Details</th></tr>
{{range .Summary.Results}}<tr>
<td>{{.Platform}}</td>
<td>{{.VMName}}</td>
<td>{{.TestCategory}}</td>
<td>{{.TestName}}</td>
<td class="{{if .Passed}}pass{{else}}fail{{end}}">{{if .Passed}}Pass{{else}}Fail{{end}}</td>
<td>{{printf "%.2f" .DurationSeconds}}</td>
<td>{{rtoMet .RTOMet}}</td>
<td class="meta">{{.Details}}</td>
</tr>
{{end}}</table>

<h2>Evidence Sources</h2>
<table>
<tr><th>Path</th><th>Kind</th><th>Records</th><th>Provenance</th></tr>
{{range .Snapshot.Sources}}<tr>
<td>{{.Path}}</td><td>{{.Kind}}</td><td>{{.Records}}</td><td>{{if .Manual}}manual{{else}}automated{{end}}</td>
</tr>
{{end}}</table>

<p class="meta">Mapped frameworks: {{range $i, $f := .Snapshot.Frameworks}}{{if $i}}, {{end}}{{$f}}{{end}}</p>
</body>
</html>
`
