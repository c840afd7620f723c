// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vcmath computes summary statistics over victim cache
// benchmark results.
package vcmath

import (
	"fmt"

	"github.com/aclements/go-moremath/stats"
	"github.com/adaptivecache/vcperf/vcfmt"
)

// A Stat summarizes the defined values of one metric.
//
// If no value is defined, N is 0 and Mean, Min, and Max are 0.
type Stat struct {
	N              int
	Mean, Min, Max float64
}

// Describe returns the Stat of xs.
func Describe(xs []float64) Stat {
	if len(xs) == 0 {
		return Stat{}
	}
	lo, hi := stats.Bounds(xs)
	return Stat{N: len(xs), Mean: stats.Mean(xs), Min: lo, Max: hi}
}

func (s Stat) String() string {
	if s.N == 0 {
		return "n=0"
	}
	return fmt.Sprintf("%.2f (min %.2f, max %.2f, n=%d)", s.Mean, s.Min, s.Max, s.N)
}

// A Summary is the aggregate of a ResultSet.
type Summary struct {
	// Benchmarks is the number of benchmarks in the ResultSet,
	// whether or not they reported any metric.
	Benchmarks int

	// HitRate and Occupancy summarize the defined hit rates and
	// occupancies, in percent.
	HitRate   Stat
	Occupancy Stat

	// Accesses is the sum of the defined access counts.
	Accesses int64
}

// Summarize computes the Summary of rs.
//
// Values are taken in ResultSet order, so the result is
// deterministic for a given ResultSet.
func Summarize(rs *vcfmt.ResultSet) Summary {
	var hit, occ []float64
	var acc int64
	for _, rec := range rs.Records() {
		if rec.HitRate.Valid {
			hit = append(hit, rec.HitRate.Float64)
		}
		if rec.Occupancy.Valid {
			occ = append(occ, rec.Occupancy.Float64)
		}
		if rec.Accesses.Valid {
			acc += rec.Accesses.Int64
		}
	}
	return Summary{
		Benchmarks: rs.Len(),
		HitRate:    Describe(hit),
		Occupancy:  Describe(occ),
		Accesses:   acc,
	}
}
