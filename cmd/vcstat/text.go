// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/adaptivecache/vcperf/checkpoint"
	"github.com/adaptivecache/vcperf/internal/texttab"
	"github.com/adaptivecache/vcperf/vcfmt"
	"github.com/adaptivecache/vcperf/vcmath"
)

// A report is everything vcstat prints for one run.
type report struct {
	Title   string
	Results *vcfmt.ResultSet

	// Baseline and Candidate label the sides of Comparison.
	Baseline, Candidate string
	Comparison          *checkpoint.Report // nil without a candidate
	Pairs               *checkpoint.PairReport
}

// A row is a formatted benchmark record. Missing metrics are "-".
type row struct {
	Name, HitRate, Occupancy, Accesses string
}

func (r *report) rows() []row {
	var rows []row
	for _, rec := range r.Results.Records() {
		x := row{Name: rec.Name, HitRate: "-", Occupancy: "-", Accesses: "-"}
		if rec.HitRate.Valid {
			x.HitRate = percent(rec.HitRate.Float64)
		}
		if rec.Occupancy.Valid {
			x.Occupancy = percent(rec.Occupancy.Float64)
		}
		if rec.Accesses.Valid {
			x.Accesses = strconv.FormatInt(rec.Accesses.Int64, 10)
		}
		rows = append(rows, x)
	}
	return rows
}

func (r *report) Summary() vcmath.Summary {
	return vcmath.Summarize(r.Results)
}

func percent(x float64) string { return fmt.Sprintf("%.2f%%", x) }

func points(x float64) string { return fmt.Sprintf("%+.2f", x) }

func status(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

func (r *report) writeText(w io.Writer) error {
	fmt.Fprintf(w, "results: %s\n\n", r.Title)
	var t texttab.Table
	t.Row().Cell("benchmark").Cell("hit rate", texttab.Right).Cell("occupancy", texttab.Right).Cell("accesses", texttab.Right)
	t.Rule()
	for _, x := range r.rows() {
		t.Row().Cell(x.Name).Cell(x.HitRate, texttab.Right).Cell(x.Occupancy, texttab.Right).Cell(x.Accesses, texttab.Right)
	}
	if err := t.Format(w); err != nil {
		return err
	}

	s := r.Summary()
	fmt.Fprintln(w)
	var agg texttab.Table
	agg.Row().Cell("benchmarks").Cellf("%d", s.Benchmarks)
	agg.Row().Cell("hit rate").Cell(s.HitRate.String())
	agg.Row().Cell("occupancy").Cell(s.Occupancy.String())
	agg.Row().Cell("accesses").Cellf("%d", s.Accesses)
	if err := agg.Format(w); err != nil {
		return err
	}

	if c := r.Comparison; c != nil {
		fmt.Fprintf(w, "\ncomparison: %s vs %s\n\n", r.Baseline, r.Candidate)
		var t texttab.Table
		t.Row().Cell("checkpoint").Cell("benchmarks", texttab.Right).Cell("mean hit rate", texttab.Right).Cell("mean occupancy", texttab.Right)
		t.Rule()
		for _, x := range []struct {
			label string
			s     vcmath.Summary
		}{{r.Baseline, c.Baseline}, {r.Candidate, c.Candidate}} {
			t.Row().Cell(x.label).Cell(strconv.Itoa(x.s.Benchmarks), texttab.Right).
				Cell(percent(x.s.HitRate.Mean), texttab.Right).Cell(percent(x.s.Occupancy.Mean), texttab.Right)
		}
		if err := t.Format(w); err != nil {
			return err
		}
		fmt.Fprintf(w, "\nimprovement: %s points (target %s): %s\n",
			points(c.Delta), points(c.MinDelta), status(c.TargetMet, "target met", "target missed"))
	}

	if p := r.Pairs; p != nil {
		fmt.Fprintln(w)
		var t texttab.Table
		t.Row().Cell("benchmark").Cell("baseline", texttab.Right).Cell("candidate", texttab.Right).
			Cell("delta", texttab.Right).Cell("relative", texttab.Right).Cell("in band")
		t.Rule()
		for _, imp := range p.Pairs {
			rel, band := "n/a", "-"
			if imp.RelativeOK {
				rel, band = points(imp.Relative)+"%", status(imp.InBand, "yes", "no")
			}
			t.Row().Cell(imp.Benchmark).Cell(percent(imp.Baseline), texttab.Right).Cell(percent(imp.Candidate), texttab.Right).
				Cell(points(imp.Delta), texttab.Right).Cell(rel, texttab.Right).Cell(band)
		}
		if err := t.Format(w); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "\nmean relative improvement: %s%% (band %g-%g%%): %s\n",
			points(p.MeanRelative), p.Lo, p.Hi, status(p.InBand, "in band", "outside band"))
		return err
	}
	return nil
}
