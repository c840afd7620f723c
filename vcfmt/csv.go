// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vcfmt

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// CSVHeader is the header row written by WriteCSV.
var CSVHeader = []string{"Benchmark", "Hit Rate (%)", "Occupancy (%)", "Total Accesses"}

// WriteCSV writes rs to w as a table with one row per benchmark in
// insertion order. Missing metrics are written as 0.
func WriteCSV(w io.Writer, rs *ResultSet) error {
	cw := csv.NewWriter(w)
	rows := [][]string{CSVHeader}
	for _, rec := range rs.Records() {
		rows = append(rows, []string{
			rec.Name,
			strof(rec.HitRate.Float64),
			strof(rec.Occupancy.Float64),
			strconv.FormatInt(rec.Accesses.Int64, 10),
		})
	}
	return cw.WriteAll(rows)
}

func strof(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// ReadCSV reads a table written by WriteCSV. Every metric of the
// returned records is valid, since the table form has no notion of a
// missing value.
func ReadCSV(r io.Reader, fileName string) (*ResultSet, error) {
	if fileName == "" {
		fileName = "<unknown>"
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(CSVHeader)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: missing header", fileName)
	} else if err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	for i, h := range header {
		if strings.TrimSpace(h) != CSVHeader[i] {
			return nil, fmt.Errorf("%s:1: unexpected column %q, want %q", fileName, h, CSVHeader[i])
		}
	}

	rs := new(ResultSet)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("%s: %w", fileName, err)
		}
		line, _ := cr.FieldPos(0)
		bad := func(label, value string, err error) error {
			return &ValueError{FileName: fileName, Line: line, Label: label, Value: value, Err: err}
		}
		// Names are kept verbatim; WriteCSV quotes any with leading
		// space, which TrimLeadingSpace leaves intact.
		name := row[0]
		if name == "" {
			return nil, fmt.Errorf("%s:%d: empty benchmark name", fileName, line)
		}
		hit, err := parseFinite(row[1])
		if err != nil {
			return nil, bad(labelHitRate, row[1], err)
		}
		occ, err := parseFinite(row[2])
		if err != nil {
			return nil, bad(labelOccupancy, row[2], err)
		}
		acc, err := strconv.ParseInt(strings.TrimSpace(row[3]), 10, 64)
		if err == nil && acc < 0 {
			err = errNegative
		}
		if err != nil {
			return nil, bad(labelAccesses, row[3], err)
		}
		rs.put(Record{
			Name:      name,
			HitRate:   sql.NullFloat64{Float64: hit, Valid: true},
			Occupancy: sql.NullFloat64{Float64: occ, Valid: true},
			Accesses:  sql.NullInt64{Int64: acc, Valid: true},
		})
	}
	return rs, nil
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		var ne *strconv.NumError
		if errors.As(err, &ne) {
			err = ne.Err
		}
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}
