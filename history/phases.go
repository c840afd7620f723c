// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package history

import (
	"github.com/aclements/go-gg/ggstat"
	"github.com/aclements/go-gg/table"
)

// A PhaseSummary aggregates the samples taken during one phase.
type PhaseSummary struct {
	Phase   Phase
	Samples int

	// MeanHitRate and MeanOccupancy are fractions in [0, 1].
	MeanHitRate   float64
	MeanOccupancy float64

	MeanSize, MinSize, MaxSize float64
}

// Phases summarizes samples by phase, in increasing phase order.
func Phases(samples []Sample) []PhaseSummary {
	if len(samples) == 0 {
		return nil
	}
	phases := make([]int, len(samples))
	hits := make([]float64, len(samples))
	occs := make([]float64, len(samples))
	sizes := make([]float64, len(samples))
	for i, s := range samples {
		phases[i] = int(s.Phase)
		hits[i] = s.HitRate
		occs[i] = s.Occupancy
		sizes[i] = float64(s.VictimSize)
	}
	var b table.Builder
	b.Add(ColPhase, phases).
		Add(ColHitRate, hits).
		Add(ColOccupancy, occs).
		Add(ColVictimSize, sizes)

	g := table.SortBy(b.Done(), ColPhase)
	g = ggstat.Agg(ColPhase)(
		ggstat.AggCount("samples"),
		ggstat.AggMean(ColHitRate, ColOccupancy, ColVictimSize),
		ggstat.AggMin(ColVictimSize),
		ggstat.AggMax(ColVictimSize),
	).F(g)
	tab := g.Table(table.RootGroupID)

	var (
		ids   = tab.MustColumn(ColPhase).([]int)
		count = tab.MustColumn("samples").([]int)
		hit   = tab.MustColumn("mean " + ColHitRate).([]float64)
		occ   = tab.MustColumn("mean " + ColOccupancy).([]float64)
		mean  = tab.MustColumn("mean " + ColVictimSize).([]float64)
		lo    = tab.MustColumn("min " + ColVictimSize).([]float64)
		hi    = tab.MustColumn("max " + ColVictimSize).([]float64)
	)
	out := make([]PhaseSummary, tab.Len())
	for i := range out {
		out[i] = PhaseSummary{
			Phase:         Phase(ids[i]),
			Samples:       count[i],
			MeanHitRate:   hit[i],
			MeanOccupancy: occ[i],
			MeanSize:      mean[i],
			MinSize:       lo[i],
			MaxSize:       hi[i],
		}
	}
	return out
}
