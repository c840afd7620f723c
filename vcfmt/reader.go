// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vcfmt

import (
	"bufio"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedMetricValue is matched by errors returned when a metric
// line carries a value that cannot be parsed.
var ErrMalformedMetricValue = errors.New("malformed metric value")

// A ValueError reports a metric value that could not be parsed.
type ValueError struct {
	FileName string
	Line     int
	Label    string // metric label, e.g. "Hit Rate"
	Value    string // value text after trimming
	Err      error  // underlying parse error
}

func (e *ValueError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s:%d: malformed %s value %q: %v", e.FileName, e.Line, e.Label, e.Value, e.Err)
}

func (e *ValueError) Unwrap() error { return e.Err }

func (e *ValueError) Is(target error) bool {
	return target == ErrMalformedMetricValue
}

var (
	errNotFinite = errors.New("value is not finite")
	errNegative  = errors.New("value is negative")
)

// metric labels, in the order they are tried on each line.
const (
	labelHitRate   = "Hit Rate"
	labelAccesses  = "Total Accesses"
	labelOccupancy = "Occupancy"
)

// MaxLineSize is the longest log line a Reader accepts, in bytes.
// A longer line stops the read with an error wrapping
// bufio.ErrTooLong.
const MaxLineSize = 1 << 20

// A Reader extracts benchmark results from a simulator log.
type Reader struct {
	s        *bufio.Scanner
	fileName string
}

// NewReader constructs a reader to extract results from r.
// fileName is used in error messages; it is purely diagnostic.
func NewReader(r io.Reader, fileName string) *Reader {
	if fileName == "" {
		fileName = "<unknown>"
	}
	s := bufio.NewScanner(r)
	s.Buffer(nil, MaxLineSize)
	return &Reader{s: s, fileName: fileName}
}

// ReadResultSet reads the remainder of the input and returns the
// benchmarks found in it.
//
// Lines that are neither start markers nor metric lines are ignored,
// as are metric lines that appear before the first start marker.
// A metric value that fails to parse aborts the read with a
// *ValueError and no partial results.
func (r *Reader) ReadResultSet() (*ResultSet, error) {
	var x extraction
	line := 0
	for r.s.Scan() {
		line++
		if err := x.line(r.s.Text()); err != nil {
			if ve, ok := err.(*ValueError); ok {
				ve.FileName, ve.Line = r.fileName, line
			}
			return nil, err
		}
	}
	if err := r.s.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", r.fileName, err)
	}
	return x.result(), nil
}

// Extract returns the benchmarks found in lines.
func Extract(lines []string) (*ResultSet, error) {
	var x extraction
	for i, l := range lines {
		if err := x.line(l); err != nil {
			if ve, ok := err.(*ValueError); ok {
				ve.FileName, ve.Line = "<input>", i+1
			}
			return nil, err
		}
	}
	return x.result(), nil
}

// extraction is the state of a single pass over a log.
type extraction struct {
	rs  ResultSet
	cur int // index of the current benchmark in rs, or -1
	ok  bool
}

func (x *extraction) result() *ResultSet {
	rs := x.rs
	return &rs
}

func (x *extraction) line(l string) error {
	l = strings.TrimSpace(l)

	if name, ok := startMarker(l); ok {
		x.cur = x.rs.put(Record{Name: name})
		x.ok = true
	}
	if !x.ok {
		return nil
	}

	// A start marker line may itself carry a metric.
	rec := &x.rs.records[x.cur]
	switch {
	case strings.Contains(l, labelHitRate+":"):
		v, err := parsePercent(labelHitRate, l)
		if err != nil {
			return err
		}
		rec.HitRate = sql.NullFloat64{Float64: v, Valid: true}
	case strings.Contains(l, labelAccesses+":"):
		text := metricField(l)
		n, err := strconv.ParseInt(text, 10, 64)
		if err == nil && n < 0 {
			err = errNegative
		}
		if err != nil {
			return &ValueError{Label: labelAccesses, Value: text, Err: err}
		}
		rec.Accesses = sql.NullInt64{Int64: n, Valid: true}
	case strings.Contains(l, labelOccupancy+":"):
		v, err := parsePercent(labelOccupancy, l)
		if err != nil {
			return err
		}
		rec.Occupancy = sql.NullFloat64{Float64: v, Valid: true}
	}
	return nil
}

// startMarker reports whether l starts a benchmark section and, if
// so, returns the benchmark name.
func startMarker(l string) (string, bool) {
	if !strings.Contains(l, "Benchmark") || !strings.Contains(l, "Starting") {
		return "", false
	}
	i := strings.IndexByte(l, '[')
	if i < 0 {
		return "", false
	}
	j := strings.IndexByte(l[i+1:], ']')
	if j <= 0 {
		return "", false
	}
	return l[i+1 : i+1+j], true
}

// metricField returns the text after the first colon of l, up to any
// following colon, with surrounding space removed.
func metricField(l string) string {
	_, v, _ := strings.Cut(l, ":")
	v, _, _ = strings.Cut(v, ":")
	return strings.TrimSpace(v)
}

func parsePercent(label, l string) (float64, error) {
	text := strings.TrimSpace(strings.TrimRight(metricField(l), "%"))
	v, err := strconv.ParseFloat(text, 64)
	if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
		err = errNotFinite
	}
	if err != nil {
		return 0, &ValueError{Label: label, Value: text, Err: err}
	}
	return v, nil
}
