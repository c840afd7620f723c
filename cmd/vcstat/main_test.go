// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/adaptivecache/vcperf/checkpoint"
	"github.com/adaptivecache/vcperf/vcfmt"
)

// vcstatRun runs vcstat with args and checks its exit status.
func vcstatRun(t *testing.T, wantStatus int, args ...string) (stdout, stderr string) {
	t.Helper()
	var out, errOut strings.Builder
	t.Logf("vcstat %s", strings.Join(args, " "))
	if status := run(&out, &errOut, args); status != wantStatus {
		t.Fatalf("exit status %d, want %d\nstderr:\n%s", status, wantStatus, errOut.String())
	}
	return out.String(), errOut.String()
}

func td(name string) string { return filepath.Join("testdata", name) }

func wantContains(t *testing.T, what, got string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("%s does not contain %q:\n%s", what, want, got)
		}
	}
}

func TestSummary(t *testing.T) {
	out, errOut := vcstatRun(t, 0, td("static.txt"))
	wantContains(t, "stdout", out,
		"results: static.txt\n",
		"benchmark   hit rate  occupancy  accesses\n",
		"Sequential     2.00%     40.00%     10000\n",
		"Mixed         10.00%     60.00%     30000\n",
		"benchmarks  3\n",
		"hit rate    6.00 (min 2.00, max 10.00, n=3)\n",
		"accesses    60000\n",
	)
	if strings.Contains(out, "comparison") {
		t.Errorf("summary without -compare printed a comparison:\n%s", out)
	}
	if errOut != "" {
		t.Errorf("unexpected stderr:\n%s", errOut)
	}
}

func TestErrorValues(t *testing.T) {
	var out, errOut strings.Builder
	log := zaptest.NewLogger(t)
	if err := vcstat(&out, &errOut, log, []string{td("empty.txt")}); !errors.Is(err, errNoResults) {
		t.Errorf("empty input: got %v, want errNoResults", err)
	}
	err := vcstat(&out, &errOut, log, []string{td("malformed.txt")})
	if !errors.Is(err, vcfmt.ErrMalformedMetricValue) {
		t.Errorf("malformed input: got %v, want ErrMalformedMetricValue", err)
	}
	err = vcstat(&out, &errOut, log, []string{"-compare", td("empty.txt"), td("static.txt")})
	if !errors.Is(err, checkpoint.ErrEmptyResultSet) {
		t.Errorf("empty candidate: got %v, want ErrEmptyResultSet", err)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected stdout:\n%s", out.String())
	}
}

func TestCompare(t *testing.T) {
	out, _ := vcstatRun(t, 0, "-compare", td("adaptive.txt"), td("static.txt"))
	wantContains(t, "stdout", out,
		"comparison: static.txt vs adaptive.txt\n",
		"static.txt             3          6.00%          50.00%\n",
		"adaptive.txt           3         15.00%          80.00%\n",
		"improvement: +9.00 points (target +8.00): target met\n",
	)
}

func TestPairs(t *testing.T) {
	out, _ := vcstatRun(t, 0, "-pairs", "-compare", td("adaptive.txt"), td("static.txt"))
	wantContains(t, "stdout", out,
		"Sequential     2.00%     11.00%  +9.00  +450.00%  no\n",
		"Mixed         10.00%     19.00%  +9.00   +90.00%  no\n",
		"mean relative improvement: +230.00% (band 8-15%): outside band\n",
	)
}

func TestRequireTarget(t *testing.T) {
	// Swapping the sides turns the improvement into a regression.
	out, errOut := vcstatRun(t, 1, "-require-target", "-compare", td("static.txt"), td("adaptive.txt"))
	wantContains(t, "stdout", out, "improvement: -9.00 points (target +8.00): target missed\n")
	wantContains(t, "stderr", errOut, "missed the target")

	vcstatRun(t, 0, "-require-target", "-compare", td("adaptive.txt"), td("static.txt"))
}

func TestConfigTarget(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "vcperf.yaml")
	if err := os.WriteFile(cfg, []byte("target:\n  minDelta: 10\n"), 0o666); err != nil {
		t.Fatal(err)
	}
	out, _ := vcstatRun(t, 0, "-config", cfg, "-compare", td("adaptive.txt"), td("static.txt"))
	wantContains(t, "stdout", out, "improvement: +9.00 points (target +10.00): target missed\n")
}

func TestInputErrors(t *testing.T) {
	for _, test := range []struct {
		name string
		args []string
		want string
	}{
		{"noResults", []string{td("empty.txt")}, "error vcstat: no results found"},
		{"malformed", []string{td("malformed.txt")}, `malformed Hit Rate value "abc"`},
		{"missing", []string{td("missing.txt")}, "missing.txt"},
		{"missingCompare", []string{"-compare", td("missing.txt"), td("static.txt")}, "missing.txt"},
		{"emptyCandidate", []string{"-compare", td("empty.txt"), td("static.txt")}, "candidate checkpoint"},
	} {
		t.Run(test.name, func(t *testing.T) {
			out, errOut := vcstatRun(t, 1, test.args...)
			if out != "" {
				t.Errorf("unexpected stdout:\n%s", out)
			}
			wantContains(t, "stderr", errOut, test.want)
		})
	}
}

func TestUsage(t *testing.T) {
	for _, args := range [][]string{
		{},
		{td("static.txt"), td("adaptive.txt")},
		{"-nosuchflag", td("static.txt")},
		{"-compare", td("adaptive.txt"), "-candidate", "x", td("static.txt")},
		{"-baseline", "static", "-compare", td("adaptive.txt"), td("static.txt")},
		{"-baseline", "static", "-candidate", "adaptive", td("static.txt")},
	} {
		out, errOut := vcstatRun(t, 2, args...)
		if out != "" {
			t.Errorf("vcstat %v: unexpected stdout:\n%s", args, out)
		}
		if errOut == "" {
			t.Errorf("vcstat %v: no usage message", args)
		}
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out", "static.csv")
	_, errOut := vcstatRun(t, 0, "-export", dest, td("static.txt"))
	wantContains(t, "stderr", errOut, "exported results")

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	want := "Benchmark,Hit Rate (%),Occupancy (%),Total Accesses\n" +
		"Sequential,2,40,10000\n" +
		"Random,6,50,20000\n" +
		"Mixed,10,60,30000\n"
	if string(data) != want {
		t.Errorf("exported:\n%s\nwant:\n%s", data, want)
	}

	// The export reads back as input.
	out, _ := vcstatRun(t, 0, "-compare", td("adaptive.txt"), dest)
	wantContains(t, "stdout", out, "improvement: +9.00 points")
}

func TestExportStdout(t *testing.T) {
	out, _ := vcstatRun(t, 0, "-export", "-", td("static.txt"))
	wantContains(t, "stdout", out, "Benchmark,Hit Rate (%),Occupancy (%),Total Accesses\nSequential,2,40,10000\n")
}

func TestExportFailure(t *testing.T) {
	// A directory cannot be written as a file, but the run still
	// succeeds.
	out, errOut := vcstatRun(t, 0, "-export", t.TempDir(), td("static.txt"))
	wantContains(t, "stdout", out, "results: static.txt")
	wantContains(t, "stderr", errOut, "warn vcstat: export failed", `"error": "export to `)
}

func TestCheckpoints(t *testing.T) {
	dsn := "sqlite3:" + filepath.Join(t.TempDir(), "checkpoints.db")

	_, errOut := vcstatRun(t, 0, "-db", dsn, "-save", "static", td("static.txt"))
	wantContains(t, "stderr", errOut, "saved checkpoint", `"label": "static"`)

	out, _ := vcstatRun(t, 0, "-db", dsn, "-baseline", "static", td("adaptive.txt"))
	wantContains(t, "stdout", out,
		"comparison: static vs adaptive.txt\n",
		"improvement: +9.00 points (target +8.00): target met\n",
	)

	out, _ = vcstatRun(t, 0, "-db", dsn, "-candidate", "static", td("adaptive.txt"))
	wantContains(t, "stdout", out, "improvement: -9.00 points")

	_, errOut = vcstatRun(t, 1, "-db", dsn, "-baseline", "adaptive", td("adaptive.txt"))
	wantContains(t, "stderr", errOut, "no such checkpoint")
}

func TestCheckpointsNeedDB(t *testing.T) {
	_, errOut := vcstatRun(t, 1, "-save", "static", td("static.txt"))
	wantContains(t, "stderr", errOut, "no checkpoint database configured")

	_, errOut = vcstatRun(t, 1, "-db", "sqlite3", "-save", "static", td("static.txt"))
	wantContains(t, "stderr", errOut, "want driver:dsn")
}

func TestMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vcperf.prom")
	vcstatRun(t, 0, "-metrics", path, "-compare", td("adaptive.txt"), td("static.txt"))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	wantContains(t, "metrics", string(data),
		`vcperf_benchmark_hit_rate_percent{benchmark="Sequential",checkpoint="static.txt"} 2`,
		`vcperf_benchmark_hit_rate_percent{benchmark="Sequential",checkpoint="adaptive.txt"} 11`,
		"vcperf_comparison_hit_rate_delta_percent 9\n",
		"vcperf_comparison_target_met 1\n",
	)
}

func TestInfluxUnconfigured(t *testing.T) {
	_, errOut := vcstatRun(t, 0, "-influx", td("static.txt"))
	wantContains(t, "stderr", errOut, "no influx url configured")
}

func TestHTML(t *testing.T) {
	out, _ := vcstatRun(t, 0, "-html", "-pairs", "-compare", td("adaptive.txt"), td("static.txt"))
	wantContains(t, "stdout", out,
		"<!doctype html>",
		"<h1>static.txt</h1>",
		"<tr><td>Sequential<td>2.00%<td>40.00%<td>10000",
		"<h2>static.txt vs adaptive.txt</h2>",
		"target met</p>",
		"outside band</p>",
	)
	if strings.Contains(out, "results: ") {
		t.Errorf("-html printed the text report:\n%s", out)
	}
}

// copyTestdata copies the named testdata file to dir/results.txt.
func copyTestdata(t *testing.T, name, dir string) string {
	t.Helper()
	data, err := os.ReadFile(td(name))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dir, 0o777); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "results.txt")
	if err := os.WriteFile(path, data, 0o666); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSameFileNames(t *testing.T) {
	dir := t.TempDir()
	static := copyTestdata(t, "static.txt", filepath.Join(dir, "cp1"))
	adaptive := copyTestdata(t, "adaptive.txt", filepath.Join(dir, "cp2"))
	metrics := filepath.Join(dir, "vcperf.prom")

	out, _ := vcstatRun(t, 0, "-metrics", metrics, "-compare", adaptive, static)
	wantContains(t, "stdout", out,
		"comparison: "+static+" vs "+adaptive+"\n",
		"improvement: +9.00 points",
	)
	data, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatal(err)
	}
	wantContains(t, "metrics", string(data),
		`vcperf_benchmark_hit_rate_percent{benchmark="Sequential",checkpoint="`+static+`"} 2`,
		`vcperf_benchmark_hit_rate_percent{benchmark="Sequential",checkpoint="`+adaptive+`"} 11`,
	)
}

func TestCompareWithItself(t *testing.T) {
	path := td("static.txt")
	out, _ := vcstatRun(t, 0, "-compare", path, path)
	wantContains(t, "stdout", out,
		"comparison: "+path+" (baseline) vs "+path+" (candidate)\n",
		"improvement: +0.00 points (target +8.00): target missed\n",
	)
}
