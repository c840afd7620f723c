// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	. "github.com/adaptivecache/vcperf/storage/db"
	"github.com/adaptivecache/vcperf/storage/db/dbtest"
	"github.com/adaptivecache/vcperf/vcfmt"
)

func results() *vcfmt.ResultSet {
	return vcfmt.NewResultSet(
		vcfmt.Record{
			Name:      "Sequential",
			HitRate:   sql.NullFloat64{Float64: 12.5, Valid: true},
			Occupancy: sql.NullFloat64{Float64: 64, Valid: true},
			Accesses:  sql.NullInt64{Int64: 1000, Valid: true},
		},
		vcfmt.Record{Name: "Random", HitRate: sql.NullFloat64{Float64: 0, Valid: true}},
		vcfmt.Record{Name: "Idle"},
	)
}

// TestSaveLoad verifies that a checkpoint reads back with its order
// and missing metrics intact.
func TestSaveLoad(t *testing.T) {
	ctx := context.Background()

	db := dbtest.NewDB(t)

	defer SetNow(time.Time{})
	SetNow(time.Unix(86400, 0))

	rs := results()
	cp, err := db.SaveCheckpoint(ctx, "static", "results.txt", rs)
	if err != nil {
		t.Fatalf("SaveCheckpoint: %v", err)
	}
	if cp.Label != "static" || cp.Count != 3 || !cp.Created.Equal(time.Unix(86400, 0)) {
		t.Errorf("SaveCheckpoint = %+v", cp)
	}

	got, back, err := db.LoadCheckpoint(ctx, "static")
	if err != nil {
		t.Fatalf("LoadCheckpoint: %v", err)
	}
	if diff := cmp.Diff(*cp, *got); diff != "" {
		t.Errorf("checkpoint mismatch (-saved +loaded):\n%s", diff)
	}
	if diff := cmp.Diff(rs.Records(), back.Records()); diff != "" {
		t.Errorf("results mismatch (-saved +loaded):\n%s", diff)
	}
}

// TestLoadLatest verifies that LoadCheckpoint returns the most recent
// checkpoint with a label.
func TestLoadLatest(t *testing.T) {
	ctx := context.Background()

	db := dbtest.NewDB(t)

	first := vcfmt.NewResultSet(vcfmt.Record{Name: "a", HitRate: sql.NullFloat64{Float64: 1, Valid: true}})
	second := vcfmt.NewResultSet(vcfmt.Record{Name: "b", HitRate: sql.NullFloat64{Float64: 2, Valid: true}})
	other := vcfmt.NewResultSet(vcfmt.Record{Name: "c"})
	for _, s := range []struct {
		label string
		rs    *vcfmt.ResultSet
	}{
		{"adaptive", first},
		{"adaptive", second},
		{"static", other},
	} {
		if _, err := db.SaveCheckpoint(ctx, s.label, "", s.rs); err != nil {
			t.Fatalf("SaveCheckpoint(%s): %v", s.label, err)
		}
	}

	_, rs, err := db.LoadCheckpoint(ctx, "adaptive")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"b"}, rs.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	cps, err := db.ListCheckpoints(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var labels []string
	for _, cp := range cps {
		labels = append(labels, cp.Label)
		if cp.Count != 1 {
			t.Errorf("checkpoint %d has count %d, want 1", cp.ID, cp.Count)
		}
	}
	if diff := cmp.Diff([]string{"static", "adaptive", "adaptive"}, labels); diff != "" {
		t.Errorf("ListCheckpoints labels mismatch (-want +got):\n%s", diff)
	}
	if n, err := db.CountCheckpoints(); err != nil || n != 3 {
		t.Errorf("CountCheckpoints = %d, %v, want 3", n, err)
	}
}

func TestLoadMissing(t *testing.T) {
	db := dbtest.NewDB(t)

	_, _, err := db.LoadCheckpoint(context.Background(), "nope")
	if !errors.Is(err, ErrNoCheckpoint) {
		t.Errorf("LoadCheckpoint(nope) error = %v, want ErrNoCheckpoint", err)
	}
}

// TestSaveEmpty verifies that a checkpoint with no benchmarks can be
// stored and listed.
func TestSaveEmpty(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewDB(t)

	if _, err := db.SaveCheckpoint(ctx, "", "", vcfmt.NewResultSet()); err == nil {
		t.Errorf("SaveCheckpoint with empty label succeeded")
	}
	if _, err := db.SaveCheckpoint(ctx, "empty", "", vcfmt.NewResultSet()); err != nil {
		t.Fatal(err)
	}
	_, rs, err := db.LoadCheckpoint(ctx, "empty")
	if err != nil {
		t.Fatal(err)
	}
	if rs.Len() != 0 {
		t.Errorf("loaded %d benchmarks, want 0", rs.Len())
	}
}

// TestForeignKeys verifies that results cannot refer to a missing
// checkpoint.
func TestForeignKeys(t *testing.T) {
	db := dbtest.NewDB(t)

	_, err := DBSQL(db).Exec("INSERT INTO Results(CheckpointID, Seq, Benchmark) VALUES (42, 0, 'x')")
	if err == nil {
		t.Errorf("insert with dangling CheckpointID succeeded")
	}
}
