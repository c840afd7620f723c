// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package history reads the adaptation history exported by the
// adaptive victim cache controller.
//
// The history is a CSV file with a header row naming at least the
// columns
//
//	timestamp,victim_size,hit_rate,occupancy,phase
//
// and optionally a decision column. Each row is one snapshot taken
// when the controller re-evaluated the victim cache size. Hit rate
// and occupancy are fractions in [0, 1].
package history

import "fmt"

// A Phase identifies the program behavior the controller detected.
type Phase int

const (
	MemoryIntensive Phase = iota
	ComputeIntensive
	Mixed
	Unknown
)

var phaseNames = []string{"memory-intensive", "compute-intensive", "mixed", "unknown"}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// A Decision is the sizing action the controller took.
type Decision int

const (
	Increase Decision = iota
	Decrease
	Maintain
	NoChange
)

var decisionNames = []string{"increase", "decrease", "maintain", "no-change"}

func (d Decision) String() string {
	if d >= 0 && int(d) < len(decisionNames) {
		return decisionNames[d]
	}
	return fmt.Sprintf("Decision(%d)", int(d))
}

// A Sample is one snapshot of the controller state.
type Sample struct {
	// Timestamp is the instruction count at which the snapshot was
	// taken.
	Timestamp uint64

	// VictimSize is the victim cache size in entries.
	VictimSize int

	// HitRate and Occupancy are fractions in [0, 1].
	HitRate   float64
	Occupancy float64

	Phase Phase

	// Decision is the action taken at this snapshot. HasDecision
	// is false if the history has no decision column.
	Decision    Decision
	HasDecision bool
}
