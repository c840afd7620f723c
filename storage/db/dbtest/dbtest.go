// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dbtest opens empty checkpoint databases for tests.
package dbtest

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"flag"
	"fmt"
	"testing"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"
	_ "github.com/go-sql-driver/mysql"

	"github.com/adaptivecache/vcperf/storage/db"
	_ "github.com/adaptivecache/vcperf/storage/db/sqlite3"
)

var cloudsql = flag.String("cloudsql", "", "run database tests on Cloud SQL `instance` (project:region:name) instead of in-memory SQLite")

// NewDB returns an empty checkpoint database. It is closed when t
// finishes; a Cloud SQL database is also dropped.
func NewDB(t testing.TB) *db.DB {
	t.Helper()
	driver, dsn := "sqlite3", ":memory:"
	if *cloudsql != "" {
		driver, dsn = "mysql", cloudDB(t)
	}
	d, err := db.OpenSQL(driver, dsn)
	if err != nil {
		t.Fatalf("open %s database: %v", driver, err)
	}
	t.Cleanup(func() { d.Close() })

	n, err := d.CountCheckpoints()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("found %d checkpoint(s) in a new database, want 0", n)
	}
	return d
}

// cloudDB creates a uniquely named database on the -cloudsql instance
// and returns its DSN.
func cloudDB(t testing.TB) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		t.Fatal(err)
	}
	name := "vcperf_test_" + hex.EncodeToString(buf)
	root := fmt.Sprintf("root:@cloudsql(%s)/", *cloudsql)

	admin, err := sql.Open("mysql", root)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := admin.Exec("CREATE DATABASE `" + name + "`"); err != nil {
		admin.Close()
		t.Fatal(err)
	}
	t.Logf("using Cloud SQL database %q", name)
	// Cleanups run last-in first-out, so the checkpoint connection
	// registered by NewDB is closed before the drop.
	t.Cleanup(func() {
		if _, err := admin.Exec("DROP DATABASE `" + name + "`"); err != nil {
			t.Error(err)
		}
		admin.Close()
	})
	return root + name
}
