// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package export writes victim cache results to files, object
// storage, and monitoring systems.
//
// Export failures are reported as *WriteError, which callers are
// expected to log without aborting the rest of their work.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/adaptivecache/vcperf/vcfmt"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// ErrExportWriteFailure is matched by all errors returned by this
// package.
var ErrExportWriteFailure = errors.New("export write failure")

// A WriteError reports a failure to write results to Dest.
type WriteError struct {
	Dest string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("export to %s: %v", e.Dest, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool {
	return target == ErrExportWriteFailure
}

// Options configure Export.
type Options struct {
	// Stdout receives the table when the destination is "-".
	// If nil, os.Stdout is used.
	Stdout io.Writer

	// GCS are the client options for gs:// destinations. If empty,
	// application default credentials are used.
	GCS []option.ClientOption
}

// Export writes rs as a CSV table to dest. dest is "-" for standard
// output, gs://bucket/object for Google Cloud Storage, or otherwise
// a local file path whose parent directories are created as needed.
func Export(ctx context.Context, dest string, rs *vcfmt.ResultSet, opts *Options) error {
	if opts == nil {
		opts = new(Options)
	}
	var err error
	switch {
	case dest == "":
		err = errors.New("empty destination")
	case dest == "-":
		w := opts.Stdout
		if w == nil {
			w = os.Stdout
		}
		err = vcfmt.WriteCSV(w, rs)
	case strings.HasPrefix(dest, "gs://"):
		err = writeGCS(ctx, dest, rs, opts.GCS)
	default:
		err = writeFile(dest, rs)
	}
	if err != nil {
		return &WriteError{Dest: dest, Err: err}
	}
	return nil
}

func writeFile(path string, rs *vcfmt.ResultSet) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := vcfmt.WriteCSV(f, rs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ParseGCSURL splits a gs://bucket/object URL.
func ParseGCSURL(u string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(u, "gs://")
	if !ok {
		return "", "", fmt.Errorf("%q is not a gs:// URL", u)
	}
	bucket, object, _ = strings.Cut(rest, "/")
	if bucket == "" || object == "" || strings.HasSuffix(object, "/") {
		return "", "", fmt.Errorf("%q does not name a bucket and object", u)
	}
	return bucket, object, nil
}

func writeGCS(ctx context.Context, dest string, rs *vcfmt.ResultSet, opts []option.ClientOption) error {
	bucket, object, err := ParseGCSURL(dest)
	if err != nil {
		return err
	}
	if len(opts) == 0 {
		ts, err := google.DefaultTokenSource(ctx, storage.ScopeReadWrite)
		if err != nil {
			return err
		}
		opts = []option.ClientOption{option.WithTokenSource(ts)}
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return err
	}
	defer client.Close()

	// Canceling ctx abandons a partial upload.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w := client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = "text/csv"
	if err := vcfmt.WriteCSV(w, rs); err != nil {
		return err
	}
	// The upload is only committed by Close.
	return w.Close()
}
