// Copyright 2016 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db stores checkpoints of victim cache results in a SQL
// database.
package db

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/adaptivecache/vcperf/vcfmt"
)

// ErrNoCheckpoint is returned by LoadCheckpoint when no checkpoint
// has the requested label.
var ErrNoCheckpoint = errors.New("no such checkpoint")

// DB is a high-level interface to a database of checkpoints.
// It's safe for concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	insertCheckpoint *sql.Stmt
	insertResult     *sql.Stmt
	lastCheckpoint   *sql.Stmt
	selectResults    *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a connection to driverName.
// This is used by the sqlite3 package to configure the connection pool.
// It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Checkpoints (
	CheckpointID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Label VARCHAR(255) NOT NULL,
	Source VARCHAR(1024) NOT NULL,
	Created BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS Results (
	CheckpointID BIGINT UNSIGNED,
	Seq BIGINT UNSIGNED,
	Benchmark VARCHAR(255) NOT NULL,
	HitRate DOUBLE NULL,
	Occupancy DOUBLE NULL,
	Accesses BIGINT NULL,
	PRIMARY KEY (CheckpointID, Seq),
	FOREIGN KEY (CheckpointID) REFERENCES Checkpoints(CheckpointID) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS CheckpointsLabel ON Checkpoints(Label);
{{end}}
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	db.insertCheckpoint, err = db.sql.Prepare("INSERT INTO Checkpoints(Label, Source, Created) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	db.insertResult, err = db.sql.Prepare("INSERT INTO Results(CheckpointID, Seq, Benchmark, HitRate, Occupancy, Accesses) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	db.lastCheckpoint, err = db.sql.Prepare("SELECT CheckpointID, Source, Created FROM Checkpoints WHERE Label = ? ORDER BY CheckpointID DESC LIMIT 1")
	if err != nil {
		return err
	}
	db.selectResults, err = db.sql.Prepare("SELECT Benchmark, HitRate, Occupancy, Accesses FROM Results WHERE CheckpointID = ? ORDER BY Seq")
	if err != nil {
		return err
	}
	return nil
}

// now is a hook for testing
var now = time.Now

// A Checkpoint is a labeled set of results saved at a point in time.
type Checkpoint struct {
	ID      int64
	Label   string
	Source  string // where the results were read from
	Created time.Time
	Count   int // number of benchmarks
}

// SaveCheckpoint stores rs under label in a single transaction.
func (db *DB) SaveCheckpoint(ctx context.Context, label, source string, rs *vcfmt.ResultSet) (cp *Checkpoint, err error) {
	if label == "" {
		return nil, errors.New("empty checkpoint label")
	}
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	created := now().UTC().Truncate(time.Second)
	res, err := tx.StmtContext(ctx, db.insertCheckpoint).ExecContext(ctx, label, source, created.Unix())
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	insert := tx.StmtContext(ctx, db.insertResult)
	for seq, rec := range rs.Records() {
		if _, err := insert.ExecContext(ctx, id, seq, rec.Name, rec.HitRate, rec.Occupancy, rec.Accesses); err != nil {
			return nil, err
		}
	}
	return &Checkpoint{ID: id, Label: label, Source: source, Created: created, Count: rs.Len()}, nil
}

// LoadCheckpoint returns the most recently saved checkpoint with the
// given label and its results. Benchmark order and missing metrics
// are preserved.
func (db *DB) LoadCheckpoint(ctx context.Context, label string) (*Checkpoint, *vcfmt.ResultSet, error) {
	cp := &Checkpoint{Label: label}
	var created int64
	err := db.lastCheckpoint.QueryRowContext(ctx, label).Scan(&cp.ID, &cp.Source, &created)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("%w: %q", ErrNoCheckpoint, label)
	} else if err != nil {
		return nil, nil, err
	}
	cp.Created = time.Unix(created, 0).UTC()

	rows, err := db.selectResults.QueryContext(ctx, cp.ID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	var recs []vcfmt.Record
	for rows.Next() {
		var rec vcfmt.Record
		if err := rows.Scan(&rec.Name, &rec.HitRate, &rec.Occupancy, &rec.Accesses); err != nil {
			return nil, nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	cp.Count = len(recs)
	return cp, vcfmt.NewResultSet(recs...), nil
}

// ListCheckpoints returns all checkpoints, most recent first.
func (db *DB) ListCheckpoints(ctx context.Context) ([]Checkpoint, error) {
	rows, err := db.sql.QueryContext(ctx, `
SELECT c.CheckpointID, c.Label, c.Source, c.Created, COUNT(r.Seq)
FROM Checkpoints c LEFT JOIN Results r ON r.CheckpointID = c.CheckpointID
GROUP BY c.CheckpointID, c.Label, c.Source, c.Created
ORDER BY c.CheckpointID DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cps []Checkpoint
	for rows.Next() {
		var cp Checkpoint
		var created int64
		if err := rows.Scan(&cp.ID, &cp.Label, &cp.Source, &created, &cp.Count); err != nil {
			return nil, err
		}
		cp.Created = time.Unix(created, 0).UTC()
		cps = append(cps, cp)
	}
	return cps, rows.Err()
}

// CountCheckpoints returns the number of checkpoints stored in the
// database. This is intended for use in tests.
func (db *DB) CountCheckpoints() (int, error) {
	var count int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM Checkpoints").Scan(&count)
	return count, err
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	for _, stmt := range []*sql.Stmt{db.insertCheckpoint, db.insertResult, db.lastCheckpoint, db.selectResults} {
		if err := stmt.Close(); err != nil {
			return err
		}
	}
	return db.sql.Close()
}
