// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aclements/go-gg/table"
	"github.com/adaptivecache/vcperf/vcfmt"
)

// Column names of the history table.
const (
	ColTimestamp  = "timestamp"
	ColVictimSize = "victim_size"
	ColHitRate    = "hit_rate"
	ColOccupancy  = "occupancy"
	ColPhase      = "phase"
	ColDecision   = "decision"
)

var required = []string{ColTimestamp, ColVictimSize, ColHitRate, ColOccupancy, ColPhase}

// A RowError reports a malformed row of a history file.
type RowError struct {
	FileName string
	Line     int
	Column   string
	Msg      string
}

func (e *RowError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s: %s", e.FileName, e.Line, e.Column, e.Msg)
}

// ReadFile reads the history at path.
func ReadFile(path string) ([]Sample, error) {
	f, err := vcfmt.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, path)
}

// Read reads a history from r. The returned samples are ordered by
// timestamp; samples with equal timestamps keep their file order.
func Read(r io.Reader, fileName string) ([]Sample, error) {
	if fileName == "" {
		fileName = "<unknown>"
	}
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &RowError{FileName: fileName, Line: 1, Msg: "missing header"}
	} else if err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	cols := make(map[string]int)
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, &RowError{FileName: fileName, Line: 1, Column: name, Msg: "missing column"}
		}
	}
	_, hasDecision := cols[ColDecision]

	var (
		ts        []uint64
		sizes     []int
		hits      []float64
		occs      []float64
		phases    []int
		decisions []int
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &RowError{FileName: fileName, Line: pe.Line, Msg: pe.Err.Error()}
			}
			return nil, fmt.Errorf("%s: %w", fileName, err)
		}
		line, _ := cr.FieldPos(0)
		p := rowParser{fileName: fileName, line: line, row: row, cols: cols}

		t := p.parseUint(ColTimestamp)
		size := p.parseInt(ColVictimSize)
		hit := p.parseFraction(ColHitRate)
		occ := p.parseFraction(ColOccupancy)
		phase := p.parseInt(ColPhase)
		var decision int
		if hasDecision {
			decision = p.parseInt(ColDecision)
		}
		if p.err != nil {
			return nil, p.err
		}
		if size <= 0 {
			return nil, &RowError{fileName, line, ColVictimSize, fmt.Sprintf("size %d is not positive", size)}
		}

		ts = append(ts, t)
		sizes = append(sizes, size)
		hits = append(hits, hit)
		occs = append(occs, occ)
		phases = append(phases, phase)
		decisions = append(decisions, decision)
	}
	if len(ts) == 0 {
		return nil, nil
	}

	var b table.Builder
	b.Add(ColTimestamp, ts).
		Add(ColVictimSize, sizes).
		Add(ColHitRate, hits).
		Add(ColOccupancy, occs).
		Add(ColPhase, phases).
		Add(ColDecision, decisions)
	tab := table.SortBy(b.Done(), ColTimestamp).Table(table.RootGroupID)
	return samples(tab, hasDecision), nil
}

// samples converts a history table back to Samples.
func samples(tab *table.Table, hasDecision bool) []Sample {
	ts := tab.MustColumn(ColTimestamp).([]uint64)
	sizes := tab.MustColumn(ColVictimSize).([]int)
	hits := tab.MustColumn(ColHitRate).([]float64)
	occs := tab.MustColumn(ColOccupancy).([]float64)
	phases := tab.MustColumn(ColPhase).([]int)
	decisions := tab.MustColumn(ColDecision).([]int)

	out := make([]Sample, tab.Len())
	for i := range out {
		out[i] = Sample{
			Timestamp:   ts[i],
			VictimSize:  sizes[i],
			HitRate:     hits[i],
			Occupancy:   occs[i],
			Phase:       Phase(phases[i]),
			Decision:    Decision(decisions[i]),
			HasDecision: hasDecision,
		}
	}
	return out
}

type rowParser struct {
	fileName string
	line     int
	row      []string
	cols     map[string]int
	err      error
}

func (p *rowParser) field(col string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	i := p.cols[col]
	if i >= len(p.row) {
		p.fail(col, "missing value")
		return "", false
	}
	return strings.TrimSpace(p.row[i]), true
}

func (p *rowParser) fail(col, msg string) {
	if p.err == nil {
		p.err = &RowError{p.fileName, p.line, col, msg}
	}
}

func (p *rowParser) parseUint(col string) uint64 {
	s, ok := p.field(col)
	if !ok {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		p.fail(col, fmt.Sprintf("bad integer %q", s))
	}
	return v
}

func (p *rowParser) parseInt(col string) int {
	s, ok := p.field(col)
	if !ok {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		p.fail(col, fmt.Sprintf("bad integer %q", s))
	}
	return v
}

func (p *rowParser) parseFraction(col string) float64 {
	s, ok := p.field(col)
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !(v >= 0 && v <= 1) {
		p.fail(col, fmt.Sprintf("%q is not a fraction in [0, 1]", s))
		return 0
	}
	return v
}
