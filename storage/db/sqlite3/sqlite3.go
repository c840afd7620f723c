// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sqlite3 provides the sqlite3 driver for
// github.com/adaptivecache/vcperf/storage/db.
// It must be imported instead of go-sqlite3 to ensure foreign keys
// are properly honored.
package sqlite3

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/adaptivecache/vcperf/storage/db"
)

func init() {
	db.RegisterOpenHook("sqlite3", func(db *sql.DB) error {
		// A ":memory:" database exists per connection, and
		// PRAGMA foreign_keys is per connection as well.
		db.SetMaxOpenConns(1)
		_, err := db.Exec("PRAGMA foreign_keys = ON")
		return err
	})
}
