// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package checkpoint compares a baseline checkpoint of victim cache
// results against a candidate checkpoint.
//
// Two comparisons are provided. Compare reports the difference of the
// mean hit rates of the two checkpoints in percentage points and does
// not pair benchmarks up. Pairs reports, for each benchmark present
// in both checkpoints, the relative improvement of its hit rate.
package checkpoint

import (
	"errors"
	"fmt"

	"github.com/aclements/go-moremath/stats"
	"github.com/adaptivecache/vcperf/vcfmt"
	"github.com/adaptivecache/vcperf/vcmath"
)

var (
	// ErrEmptyResultSet is matched by errors returned when either
	// side of a comparison has no benchmarks.
	ErrEmptyResultSet = errors.New("empty result set")

	// ErrNoCommonBenchmarks is returned by Pairs when no benchmark
	// has a hit rate on both sides.
	ErrNoCommonBenchmarks = errors.New("no common benchmarks")
)

// A Target is the acceptance criteria for a comparison.
type Target struct {
	// MinDelta is the minimum improvement of the mean hit rate, in
	// percentage points, for Compare to report the target as met.
	MinDelta float64

	// Lo and Hi bound the inclusive band of relative improvement,
	// in percent, accepted by Pairs.
	Lo, Hi float64
}

// DefaultTarget is the target used by Compare.
var DefaultTarget = Target{MinDelta: 8, Lo: 8, Hi: 15}

// A Report is the result of comparing two checkpoints.
type Report struct {
	Baseline, Candidate vcmath.Summary

	// Delta is Candidate.HitRate.Mean - Baseline.HitRate.Mean.
	Delta float64

	// MinDelta is the threshold Delta was checked against.
	MinDelta float64

	// TargetMet is Delta >= MinDelta.
	TargetMet bool
}

// Compare compares candidate against baseline using DefaultTarget.
func Compare(baseline, candidate *vcfmt.ResultSet) (*Report, error) {
	return DefaultTarget.Compare(baseline, candidate)
}

// Compare summarizes both checkpoints and reports whether the mean
// hit rate of candidate improves on baseline by at least t.MinDelta.
func (t Target) Compare(baseline, candidate *vcfmt.ResultSet) (*Report, error) {
	if err := checkSides(baseline, candidate); err != nil {
		return nil, err
	}
	b, c := vcmath.Summarize(baseline), vcmath.Summarize(candidate)
	delta := c.HitRate.Mean - b.HitRate.Mean
	return &Report{
		Baseline:  b,
		Candidate: c,
		Delta:     delta,
		MinDelta:  t.MinDelta,
		TargetMet: delta >= t.MinDelta,
	}, nil
}

func checkSides(baseline, candidate *vcfmt.ResultSet) error {
	if baseline.Len() == 0 {
		return fmt.Errorf("baseline checkpoint: %w", ErrEmptyResultSet)
	}
	if candidate.Len() == 0 {
		return fmt.Errorf("candidate checkpoint: %w", ErrEmptyResultSet)
	}
	return nil
}

// Relative returns the improvement of candidate over baseline as a
// percentage of baseline. ok is false if baseline is not positive,
// in which case pct is 0.
func Relative(baseline, candidate float64) (pct float64, ok bool) {
	if baseline <= 0 {
		return 0, false
	}
	return (candidate - baseline) / baseline * 100, true
}

// InBand reports whether pct lies within [t.Lo, t.Hi].
func (t Target) InBand(pct float64) bool {
	return pct >= t.Lo && pct <= t.Hi
}

// An Improvement is the hit rate change of a single benchmark.
type Improvement struct {
	Benchmark           string
	Baseline, Candidate float64 // hit rates in percent

	// Delta is Candidate - Baseline in percentage points.
	Delta float64

	// Relative is Delta as a percentage of Baseline. It is only
	// meaningful if RelativeOK.
	Relative   float64
	RelativeOK bool

	// InBand reports whether Relative is within the target band.
	InBand bool
}

// A PairReport is the per-benchmark comparison of two checkpoints.
type PairReport struct {
	Pairs []Improvement

	// MeanRelative is the mean of Relative over the pairs where it
	// is defined, or 0 if there are none.
	MeanRelative float64

	// Lo and Hi are the band MeanRelative was checked against.
	Lo, Hi float64

	// InBand reports whether MeanRelative is within [Lo, Hi]. It is
	// false if no pair has a defined relative improvement.
	InBand bool
}

// Pairs compares the hit rate of each benchmark that has one in both
// checkpoints. Pairs are in baseline order.
func (t Target) Pairs(baseline, candidate *vcfmt.ResultSet) (*PairReport, error) {
	if err := checkSides(baseline, candidate); err != nil {
		return nil, err
	}
	r := &PairReport{Lo: t.Lo, Hi: t.Hi}
	var rels []float64
	for _, b := range baseline.Records() {
		c, ok := candidate.Lookup(b.Name)
		if !ok || !b.HitRate.Valid || !c.HitRate.Valid {
			continue
		}
		imp := Improvement{
			Benchmark: b.Name,
			Baseline:  b.HitRate.Float64,
			Candidate: c.HitRate.Float64,
			Delta:     c.HitRate.Float64 - b.HitRate.Float64,
		}
		imp.Relative, imp.RelativeOK = Relative(imp.Baseline, imp.Candidate)
		if imp.RelativeOK {
			imp.InBand = t.InBand(imp.Relative)
			rels = append(rels, imp.Relative)
		}
		r.Pairs = append(r.Pairs, imp)
	}
	if len(r.Pairs) == 0 {
		return nil, ErrNoCommonBenchmarks
	}
	if len(rels) > 0 {
		r.MeanRelative = stats.Mean(rels)
		r.InBand = t.InBand(r.MeanRelative)
	}
	return r, nil
}
