// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vcfmt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrSourceNotFound is matched by errors returned when an input file
// cannot be opened.
var ErrSourceNotFound = errors.New("source not found")

// A SourceError reports an input file that could not be opened.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

func (e *SourceError) Is(target error) bool {
	return target == ErrSourceNotFound
}

// Open opens path for reading, reporting failure as a *SourceError.
func Open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		// os.Open already includes the path in its error.
		var pe *os.PathError
		if errors.As(err, &pe) {
			err = pe.Err
		}
		return nil, &SourceError{Path: path, Err: err}
	}
	return f, nil
}

// ReadFile extracts the benchmarks from the log at path.
func ReadFile(path string) (*ResultSet, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewReader(f, path).ReadResultSet()
}

// ReadCSVFile reads a results table previously written by WriteCSV.
func ReadCSVFile(path string) (*ResultSet, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f, path)
}

// ReadResults reads path as a table written by WriteCSV if its name
// ends in ".csv" (in any case), and as a simulator log otherwise.
func ReadResults(path string) (*ResultSet, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ReadCSVFile(path)
	}
	return ReadFile(path)
}
