// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"io"

	"github.com/google/safehtml/template"
)

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"percent": percent,
	"points":  points,
}).Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Victim Cache Results</title>
<style>
.vcstat { border-collapse: collapse; }
.vcstat th:nth-child(1), .vcstat td:nth-child(1) { text-align: left; }
.vcstat td { text-align: right; padding: 0em 1em; }
.vcstat th { border-top: 1px solid #666; border-bottom: 1px solid #ccc; }
.met { font-weight: bold; }
.missed { font-weight: bold; color: #c00; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<table class="vcstat">
<tr><th>benchmark<th>hit rate<th>occupancy<th>accesses
{{range .Rows -}}
<tr><td>{{.Name}}<td>{{.HitRate}}<td>{{.Occupancy}}<td>{{.Accesses}}
{{end -}}
</table>
{{with .Summary -}}
<p>{{.Benchmarks}} benchmarks, hit rate {{.HitRate}}, occupancy {{.Occupancy}}, {{.Accesses}} accesses</p>
{{- end}}
{{with .Comparison}}
<h2>{{$.Baseline}} vs {{$.Candidate}}</h2>
<table class="vcstat">
<tr><th>checkpoint<th>benchmarks<th>mean hit rate<th>mean occupancy
<tr><td>{{$.Baseline}}<td>{{.Baseline.Benchmarks}}<td>{{percent .Baseline.HitRate.Mean}}<td>{{percent .Baseline.Occupancy.Mean}}
<tr><td>{{$.Candidate}}<td>{{.Candidate.Benchmarks}}<td>{{percent .Candidate.HitRate.Mean}}<td>{{percent .Candidate.Occupancy.Mean}}
</table>
{{if .TargetMet -}}
<p class="met">improvement {{points .Delta}} points (target {{points .MinDelta}}): target met</p>
{{- else -}}
<p class="missed">improvement {{points .Delta}} points (target {{points .MinDelta}}): target missed</p>
{{- end}}
{{end}}
{{with .Pairs}}
<table class="vcstat">
<tr><th>benchmark<th>baseline<th>candidate<th>delta<th>relative
{{range .Pairs -}}
<tr><td>{{.Benchmark}}<td>{{percent .Baseline}}<td>{{percent .Candidate}}<td>{{points .Delta}}<td>{{if .RelativeOK}}{{points .Relative}}%{{else}}n/a{{end}}
{{end -}}
</table>
{{if .InBand -}}
<p class="met">mean relative improvement {{points .MeanRelative}}%: in band</p>
{{- else -}}
<p class="missed">mean relative improvement {{points .MeanRelative}}%: outside band</p>
{{- end}}
{{end}}
</body>
</html>
`))

// htmlReport is the template view of a report.
type htmlReport struct {
	*report
	Rows []row
}

func (r *report) writeHTML(w io.Writer) error {
	return htmlTemplate.Execute(w, htmlReport{report: r, Rows: r.rows()})
}
