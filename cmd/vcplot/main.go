// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Vcplot draws charts of victim cache behavior.
//
// Usage:
//
//	vcplot [flags] [history.csv]
//
// Given a history file recorded by the adaptive controller, vcplot
// draws the victim cache size, hit rate, and occupancy over time to
// adaptation_plot.png and prints a per-phase summary. The history is
// a CSV file with the columns timestamp, victim_size, hit_rate,
// occupancy, phase, and optionally decision.
//
// The flags select further charts:
//
//	-results file               hit rate per benchmark (hit_rate_comparison.png)
//	-static file -adaptive file checkpoint comparison (checkpoint_comparison.png)
//	-demo                       hit rate chart of built-in sample data
//
// Charts are written to the directory given by -o.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/adaptivecache/vcperf/history"
	"github.com/adaptivecache/vcperf/internal/config"
	"github.com/adaptivecache/vcperf/internal/logging"
	"github.com/adaptivecache/vcperf/internal/texttab"
	"github.com/adaptivecache/vcperf/vcfmt"
	"github.com/adaptivecache/vcperf/vcplot"
)

var exit = os.Exit // replaced during testing

var errUsage = errors.New("usage")

func main() {
	exit(run(os.Stdout, os.Stderr, os.Args[1:]))
}

// run runs vcplot and returns its exit status.
func run(w, wErr io.Writer, args []string) int {
	log := logging.New(wErr, "vcplot", false)
	err := plot(w, wErr, log, args)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	}
	log.Error(err.Error())
	return 1
}

// demoResults are representative hit rates of the synthetic
// benchmarks under the adaptive victim cache.
var demoResults = []struct {
	name    string
	hitRate float64
}{
	{"Sequential", 2.1},
	{"Random", 8.7},
	{"Repeated", 15.3},
	{"Strided", 4.5},
	{"Mixed", 11.2},
	{"Phase", 13.8},
}

func demoResultSet() *vcfmt.ResultSet {
	recs := make([]vcfmt.Record, len(demoResults))
	for i, d := range demoResults {
		recs[i].Name = d.name
		recs[i].HitRate.Float64, recs[i].HitRate.Valid = d.hitRate, true
	}
	return vcfmt.NewResultSet(recs...)
}

func plot(w, wErr io.Writer, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("vcplot", flag.ContinueOnError)
	fs.SetOutput(wErr)
	fs.Usage = func() {
		fmt.Fprintf(wErr, "usage: vcplot [flags] [history.csv]\n")
		fmt.Fprintf(wErr, "flags:\n")
		fs.PrintDefaults()
	}
	var (
		flagOut      = fs.String("o", "", "write charts to `dir` (default from config, or results)")
		flagDPI      = fs.Int("dpi", 0, "image resolution in `dots` per inch (default from config, or 300)")
		flagDemo     = fs.Bool("demo", false, "draw the hit rate chart of built-in demo data")
		flagResults  = fs.String("results", "", "draw the hit rate chart of the results in `file`")
		flagStatic   = fs.String("static", "", "static checkpoint results `file` for the comparison chart")
		flagAdaptive = fs.String("adaptive", "", "adaptive checkpoint results `file` for the comparison chart")
		flagConfig   = fs.String("config", "", "read configuration from `file`")
		flagVerbose  = fs.Bool("v", false, "log progress")
	)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errUsage
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if (*flagStatic == "") != (*flagAdaptive == "") {
		fmt.Fprintf(wErr, "vcplot: -static and -adaptive must be given together\n")
		return errUsage
	}
	if fs.NArg() > 1 || (fs.NArg() == 0 && !*flagDemo && *flagResults == "" && *flagStatic == "") {
		fs.Usage()
		return errUsage
	}
	if *flagVerbose {
		log = logging.New(wErr, "vcplot", true)
	}

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		return err
	}
	opts := vcplot.Options{Dir: cfg.Plot.Dir, DPI: cfg.Plot.DPI}
	if *flagOut != "" {
		opts.Dir = *flagOut
	}
	if *flagDPI > 0 {
		opts.DPI = *flagDPI
	}

	wrote := func(path string) {
		fmt.Fprintf(w, "wrote %s\n", path)
	}

	if fs.NArg() == 1 {
		samples, err := history.ReadFile(fs.Arg(0))
		if err != nil {
			return err
		}
		log.Debug("read history", zap.String("file", fs.Arg(0)), zap.Int("samples", len(samples)))
		path, err := opts.WriteAdaptation(samples)
		if err != nil {
			return fmt.Errorf("%s: %w", fs.Arg(0), err)
		}
		wrote(path)
		if err := writePhases(w, history.Phases(samples)); err != nil {
			return err
		}
	}
	if *flagDemo {
		path, err := opts.WriteHitRates(demoResultSet())
		if err != nil {
			return err
		}
		wrote(path)
	}
	if *flagResults != "" {
		rs, err := vcfmt.ReadResults(*flagResults)
		if err != nil {
			return err
		}
		path, err := opts.WriteHitRates(rs)
		if err != nil {
			return fmt.Errorf("%s: %w", *flagResults, err)
		}
		wrote(path)
	}
	if *flagStatic != "" {
		static, err := vcfmt.ReadResults(*flagStatic)
		if err != nil {
			return err
		}
		adaptive, err := vcfmt.ReadResults(*flagAdaptive)
		if err != nil {
			return err
		}
		path, err := opts.WriteCheckpoints(static, adaptive)
		if err != nil {
			return err
		}
		wrote(path)
	}
	return nil
}

// writePhases prints the per-phase summary of a history.
func writePhases(w io.Writer, phases []history.PhaseSummary) error {
	fmt.Fprintln(w)
	var t texttab.Table
	t.Row().Cell("phase").Cell("samples", texttab.Right).Cell("hit rate", texttab.Right).
		Cell("occupancy", texttab.Right).Cell("size", texttab.Right).Cell("min", texttab.Right).Cell("max", texttab.Right)
	t.Rule()
	for _, p := range phases {
		t.Row().Cell(p.Phase.String()).
			Cell(fmt.Sprint(p.Samples), texttab.Right).
			Cell(fmt.Sprintf("%.2f%%", p.MeanHitRate*100), texttab.Right).
			Cell(fmt.Sprintf("%.2f%%", p.MeanOccupancy*100), texttab.Right).
			Cell(fmt.Sprintf("%.1f", p.MeanSize), texttab.Right).
			Cell(fmt.Sprintf("%.0f", p.MinSize), texttab.Right).
			Cell(fmt.Sprintf("%.0f", p.MaxSize), texttab.Right)
	}
	return t.Format(w)
}
