// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Vcstat summarizes victim cache benchmark logs and compares checkpoints.
//
// Usage:
//
//	vcstat [flags] results.txt
//
// Vcstat reads the log produced by a benchmark run (or a CSV table
// previously written by -export, if the file name ends in .csv),
// prints every benchmark and the aggregate hit rate and occupancy,
// and optionally compares it against a second checkpoint.
//
// # Comparing checkpoints
//
// With -compare adaptive.txt, results.txt is the baseline and
// adaptive.txt the candidate. Vcstat prints the mean hit rate of both
// sides and the improvement in percentage points, and reports whether
// it reaches the target (8 points by default). The -pairs flag adds a
// table of per-benchmark relative improvements checked against the
// 8-15% band.
//
// Either side can instead come from the checkpoint database:
// -baseline label compares the stored checkpoint against results.txt,
// and -candidate label compares results.txt against the stored one.
// The database is given by -db driver:dsn or the configuration file,
// for example
//
//	vcstat -db sqlite3:checkpoints.db -save static results.txt
//	vcstat -db sqlite3:checkpoints.db -baseline static adaptive.txt
//
// A Cloud SQL instance can be reached with the mysql driver and a DSN
// of the form root:@cloudsql(project:region:instance)/vcperf.
//
// # Exporting
//
// -export dest writes the results as CSV to dest, which may be "-"
// for standard output, a local path, or gs://bucket/object. Export
// failures are reported but do not stop vcstat. -metrics file writes
// the results as Prometheus metrics in the textfile collector format,
// and -influx publishes them to the InfluxDB bucket named in the
// configuration file.
//
// # Exit status
//
// Vcstat exits with status 2 on usage errors, and 1 if the input
// cannot be read, contains no benchmarks, or cannot be compared.
// With -require-target it also exits 1 when a comparison misses the
// target.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"
	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/adaptivecache/vcperf/export"
	"github.com/adaptivecache/vcperf/internal/config"
	"github.com/adaptivecache/vcperf/internal/logging"
	"github.com/adaptivecache/vcperf/storage/db"
	_ "github.com/adaptivecache/vcperf/storage/db/sqlite3"
	"github.com/adaptivecache/vcperf/vcfmt"
)

var exit = os.Exit // replaced during testing

var (
	errUsage        = errors.New("usage")
	errNoResults    = errors.New("no results found")
	errTargetMissed = errors.New("comparison missed the target")
)

func main() {
	exit(run(os.Stdout, os.Stderr, os.Args[1:]))
}

// run runs vcstat and returns its exit status.
func run(w, wErr io.Writer, args []string) int {
	log := logging.New(wErr, "vcstat", false)
	err := vcstat(w, wErr, log, args)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	}
	log.Error(err.Error())
	return 1
}

type flags struct {
	compare   string
	baseline  string
	candidate string
	export    string
	html      bool
	pairs     bool
	save      string
	db        string
	config    string
	metrics   string
	influx    bool
	require   bool
	verbose   bool
}

func parseFlags(wErr io.Writer, args []string) (*flags, string, error) {
	var f flags
	fs := flag.NewFlagSet("vcstat", flag.ContinueOnError)
	fs.SetOutput(wErr)
	fs.Usage = func() {
		fmt.Fprintf(wErr, "usage: vcstat [flags] results.txt\n")
		fmt.Fprintf(wErr, "flags:\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&f.compare, "compare", "", "compare against the candidate results in `file`")
	fs.StringVar(&f.baseline, "baseline", "", "use the stored checkpoint `label` as the baseline")
	fs.StringVar(&f.candidate, "candidate", "", "use the stored checkpoint `label` as the candidate")
	fs.StringVar(&f.export, "export", "", "export results as CSV to `dest` (-, path, or gs://bucket/object)")
	fs.BoolVar(&f.html, "html", false, "print an HTML report")
	fs.BoolVar(&f.pairs, "pairs", false, "print per-benchmark relative improvements")
	fs.StringVar(&f.save, "save", "", "store the results as checkpoint `label`")
	fs.StringVar(&f.db, "db", "", "checkpoint database as `driver:dsn`")
	fs.StringVar(&f.config, "config", "", "read configuration from `file`")
	fs.StringVar(&f.metrics, "metrics", "", "write Prometheus metrics to `file`")
	fs.BoolVar(&f.influx, "influx", false, "publish results to the configured InfluxDB bucket")
	fs.BoolVar(&f.require, "require-target", false, "exit 1 if a comparison misses the target")
	fs.BoolVar(&f.verbose, "v", false, "log progress")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, "", errUsage
		}
		return nil, "", fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, "", errUsage
	}
	if f.compare != "" && f.candidate != "" {
		fmt.Fprintf(wErr, "vcstat: -compare and -candidate are mutually exclusive\n")
		return nil, "", errUsage
	}
	if f.baseline != "" && (f.compare != "" || f.candidate != "") {
		fmt.Fprintf(wErr, "vcstat: -baseline compares against results.txt; it cannot be combined with -compare or -candidate\n")
		return nil, "", errUsage
	}
	return &f, fs.Arg(0), nil
}

// A side is one checkpoint of a run.
type side struct {
	label string
	path  string // empty for stored checkpoints
	rs    *vcfmt.ResultSet
}

// distinguish relabels two sides that share a label, first with their
// cleaned paths and then, if those agree too, with their roles.
// Labels key the exported metrics, so they must differ.
func distinguish(b, c *side) {
	if b.label != c.label {
		return
	}
	if b.path != "" {
		b.label = filepath.Clean(b.path)
	}
	if c.path != "" {
		c.label = filepath.Clean(c.path)
	}
	if b.label == c.label {
		b.label += " (baseline)"
		c.label += " (candidate)"
	}
}

func vcstat(w, wErr io.Writer, log *zap.Logger, args []string) error {
	f, path, err := parseFlags(wErr, args)
	if err != nil {
		return err
	}
	if f.verbose {
		log = logging.New(wErr, "vcstat", true)
	}
	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	ctx := context.Background()

	rs, err := vcfmt.ReadResults(path)
	if err != nil {
		return err
	}
	if rs.Len() == 0 {
		return errNoResults
	}
	log.Debug("read results", zap.String("file", path), zap.Int("benchmarks", rs.Len()))
	primary := side{label: filepath.Base(path), path: path, rs: rs}
	if f.save != "" {
		primary.label = f.save
	}

	var store *db.DB
	if f.save != "" || f.baseline != "" || f.candidate != "" {
		store, err = openDB(f.db, cfg.Database)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	// Resolve the two sides of the comparison, if any.
	baseline := primary
	var candidate *side
	if f.baseline != "" {
		baseline, err = loadSide(ctx, store, f.baseline)
		if err != nil {
			return err
		}
		candidate = &primary
	}
	switch {
	case f.compare != "":
		crs, err := vcfmt.ReadResults(f.compare)
		if err != nil {
			return err
		}
		candidate = &side{label: filepath.Base(f.compare), path: f.compare, rs: crs}
	case f.candidate != "":
		s, err := loadSide(ctx, store, f.candidate)
		if err != nil {
			return err
		}
		candidate = &s
	}

	if candidate != nil {
		distinguish(&baseline, candidate)
	}

	rep := &report{Title: primary.label, Results: primary.rs}
	if candidate != nil {
		target := cfg.Target.Target()
		rep.Baseline, rep.Candidate = baseline.label, candidate.label
		rep.Comparison, err = target.Compare(baseline.rs, candidate.rs)
		if err != nil {
			return fmt.Errorf("comparing %s and %s: %w", baseline.label, candidate.label, err)
		}
		if f.pairs {
			rep.Pairs, err = target.Pairs(baseline.rs, candidate.rs)
			if err != nil {
				return fmt.Errorf("comparing %s and %s: %w", baseline.label, candidate.label, err)
			}
		}
	}

	if f.html {
		err = rep.writeHTML(w)
	} else {
		err = rep.writeText(w)
	}
	if err != nil {
		return err
	}

	if f.save != "" {
		cp, err := store.SaveCheckpoint(ctx, f.save, path, primary.rs)
		if err != nil {
			return fmt.Errorf("saving checkpoint %q: %w", f.save, err)
		}
		log.Info("saved checkpoint", zap.String("label", cp.Label), zap.Int64("id", cp.ID), zap.Int("benchmarks", cp.Count))
	}

	// The remaining sinks are best effort.
	sides := []side{primary}
	if candidate != nil {
		sides = []side{baseline, *candidate}
	}
	if f.export != "" {
		opts := &export.Options{Stdout: w, GCS: cfg.GCS.ClientOptions()}
		if err := export.Export(ctx, f.export, primary.rs, opts); err != nil {
			log.Warn("export failed", zap.Error(err))
		} else if f.export != "-" {
			log.Info("exported results", zap.String("dest", f.export))
		}
	}
	if f.metrics != "" {
		m := export.NewMetrics()
		for _, s := range sides {
			m.ObserveResults(s.label, s.rs)
		}
		if rep.Comparison != nil {
			m.ObserveComparison(rep.Comparison)
		}
		if err := m.WriteTextfile(f.metrics); err != nil {
			log.Warn("writing metrics failed", zap.Error(err))
		}
	}
	if f.influx {
		publish(ctx, log, cfg.Influx, sides)
	}

	if f.require && rep.Comparison != nil && !rep.Comparison.TargetMet {
		return errTargetMissed
	}
	return nil
}

// openDB opens the checkpoint database named by the -db flag value,
// falling back to the configured one.
func openDB(flagValue string, dc config.DBConfig) (*db.DB, error) {
	driver, dsn := dc.Driver, dc.DSN
	if flagValue != "" {
		var ok bool
		driver, dsn, ok = strings.Cut(flagValue, ":")
		if !ok || driver == "" || dsn == "" {
			return nil, fmt.Errorf("-db %q: want driver:dsn", flagValue)
		}
	}
	if dsn == "" {
		return nil, errors.New("no checkpoint database configured; use -db")
	}
	return db.OpenSQL(driver, dsn)
}

func loadSide(ctx context.Context, store *db.DB, label string) (side, error) {
	cp, rs, err := store.LoadCheckpoint(ctx, label)
	if err != nil {
		return side{}, err
	}
	return side{label: cp.Label, rs: rs}, nil
}

func publish(ctx context.Context, log *zap.Logger, ic export.InfluxConfig, sides []side) {
	if ic.URL == "" {
		log.Warn("-influx given but no influx url configured")
		return
	}
	p := export.NewInfluxPublisher(ic)
	defer p.Close()
	for _, s := range sides {
		if err := p.Publish(ctx, s.label, s.rs); err != nil {
			log.Warn("publishing to influx failed", zap.String("checkpoint", s.label), zap.Error(err))
			return
		}
	}
	log.Debug("published to influx", zap.String("url", ic.URL))
}
