// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vcfmt provides the data model and readers for victim cache
// benchmark results.
//
// Benchmark results come from free-text simulator logs. Each
// benchmark section begins with a start marker such as
//
//	[Sequential] Benchmark Starting
//
// followed by metric lines like
//
//	Hit Rate: 12.50%
//	Total Accesses: 1000
//	Occupancy: 64.00%
//
// Any other output between sections is ignored, provided no line is
// longer than MaxLineSize. A Reader extracts
// these sections into a ResultSet, which can also be written and
// re-read in a flat CSV form with WriteCSV and ReadCSV.
package vcfmt

import "database/sql"

// A Record is the metrics extracted for a single benchmark.
//
// Each metric is optional. A metric that never appeared in the input
// has Valid == false; this is distinct from a metric that appeared
// with the value 0.
type Record struct {
	// Name is the benchmark name taken from the start marker.
	Name string

	// HitRate is the victim cache hit rate in percent.
	HitRate sql.NullFloat64

	// Occupancy is the victim cache occupancy in percent.
	Occupancy sql.NullFloat64

	// Accesses is the total number of victim cache accesses.
	Accesses sql.NullInt64
}

// A ResultSet is an insertion-ordered collection of Records keyed by
// benchmark name.
//
// A ResultSet is not modified after it is returned by this package or
// by NewResultSet, so it is safe to share between readers.
type ResultSet struct {
	records []Record
	index   map[string]int
}

// NewResultSet returns a ResultSet containing recs in order.
//
// If two records share a name, the later one replaces the earlier
// one but keeps the earlier one's position.
func NewResultSet(recs ...Record) *ResultSet {
	rs := new(ResultSet)
	for _, rec := range recs {
		rs.put(rec)
	}
	return rs
}

// put stores rec under rec.Name and returns its index.
func (rs *ResultSet) put(rec Record) int {
	if rs.index == nil {
		rs.index = make(map[string]int)
	}
	if i, ok := rs.index[rec.Name]; ok {
		rs.records[i] = rec
		return i
	}
	rs.index[rec.Name] = len(rs.records)
	rs.records = append(rs.records, rec)
	return len(rs.records) - 1
}

// Len returns the number of benchmarks in rs.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.records)
}

// Names returns the benchmark names in rs in insertion order.
func (rs *ResultSet) Names() []string {
	names := make([]string, rs.Len())
	for i := range names {
		names[i] = rs.records[i].Name
	}
	return names
}

// Records returns a copy of the records in rs in insertion order.
func (rs *ResultSet) Records() []Record {
	if rs.Len() == 0 {
		return nil
	}
	return append([]Record(nil), rs.records...)
}

// Lookup returns the record for the named benchmark.
func (rs *ResultSet) Lookup(name string) (Record, bool) {
	if rs == nil {
		return Record{}, false
	}
	i, ok := rs.index[name]
	if !ok {
		return Record{}, false
	}
	return rs.records[i], true
}
