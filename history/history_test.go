// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package history

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adaptivecache/vcperf/vcfmt"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const controllerExport = `timestamp,victim_size,hit_rate,occupancy,phase,decision
10000,16,0.05,0.9,0,0
20000,32,0.10,0.7,0,0
30000,32,0.12,0.5,2,2
40000,24,0.20,0.3,1,1
`

func TestRead(t *testing.T) {
	got, err := Read(strings.NewReader(controllerExport), "history.csv")
	if err != nil {
		t.Fatal(err)
	}
	want := []Sample{
		{10000, 16, 0.05, 0.9, MemoryIntensive, Increase, true},
		{20000, 32, 0.10, 0.7, MemoryIntensive, Increase, true},
		{30000, 32, 0.12, 0.5, Mixed, Maintain, true},
		{40000, 24, 0.20, 0.3, ComputeIntensive, Decrease, true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
}

func TestReadOrdersByTimestamp(t *testing.T) {
	in := `phase,occupancy,hit_rate,victim_size,timestamp
1,0.5,0.3,8,300
0,0.5,0.1,4,100
2,0.5,0.2,6,200
3,0.5,0.4,2,200
`
	got, err := Read(strings.NewReader(in), "")
	if err != nil {
		t.Fatal(err)
	}
	var ts []uint64
	var sizes []int
	for _, s := range got {
		ts = append(ts, s.Timestamp)
		sizes = append(sizes, s.VictimSize)
		if s.HasDecision {
			t.Errorf("sample %+v has a decision without a decision column", s)
		}
	}
	if diff := cmp.Diff([]uint64{100, 200, 200, 300}, ts); diff != "" {
		t.Errorf("timestamps mismatch (-want +got):\n%s", diff)
	}
	// Equal timestamps keep their file order.
	if diff := cmp.Diff([]int{4, 6, 2, 8}, sizes); diff != "" {
		t.Errorf("sizes mismatch (-want +got):\n%s", diff)
	}
}

func TestReadEmpty(t *testing.T) {
	got, err := Read(strings.NewReader("timestamp,victim_size,hit_rate,occupancy,phase\n"), "")
	if err != nil || len(got) != 0 {
		t.Errorf("Read(header only) = %v, %v, want no samples", got, err)
	}
}

func TestReadErrors(t *testing.T) {
	const header = "timestamp,victim_size,hit_rate,occupancy,phase\n"
	for _, test := range []struct {
		name, in string
		line     int
		col      string
	}{
		{"noHeader", "", 1, ""},
		{"missingColumn", "timestamp,victim_size,hit_rate,phase\n1,2,0.1,0\n", 1, "occupancy"},
		{"badTimestamp", header + "x,16,0.1,0.5,0\n", 2, "timestamp"},
		{"negativeTimestamp", header + "-5,16,0.1,0.5,0\n", 2, "timestamp"},
		{"zeroSize", header + "1,16,0.1,0.5,0\n2,0,0.1,0.5,0\n", 3, "victim_size"},
		{"hitRateAboveOne", header + "1,16,12.5,0.5,0\n", 2, "hit_rate"},
		{"occupancyNaN", header + "1,16,0.1,NaN,0\n", 2, "occupancy"},
		{"shortRow", header + "1,16,0.1\n", 2, ""},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(test.in), "h.csv")
			var re *RowError
			if !errors.As(err, &re) {
				t.Fatalf("error %v is not a *RowError", err)
			}
			if fn, line := re.Pos(); fn != "h.csv" || line != test.line {
				t.Errorf("Pos() = %s:%d, want h.csv:%d", fn, line, test.line)
			}
			if re.Column != test.col {
				t.Errorf("Column = %q, want %q", re.Column, test.col)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adaptation_history.csv")
	if err := os.WriteFile(path, []byte(controllerExport), 0o666); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Errorf("got %d samples, want 4", len(got))
	}
	if _, err := ReadFile(path + ".missing"); !errors.Is(err, vcfmt.ErrSourceNotFound) {
		t.Errorf("ReadFile(missing) error = %v, want ErrSourceNotFound", err)
	}
}

func TestPhases(t *testing.T) {
	samples, err := Read(strings.NewReader(controllerExport), "")
	if err != nil {
		t.Fatal(err)
	}
	got := Phases(samples)
	want := []PhaseSummary{
		{Phase: MemoryIntensive, Samples: 2, MeanHitRate: 0.075, MeanOccupancy: 0.8, MeanSize: 24, MinSize: 16, MaxSize: 32},
		{Phase: ComputeIntensive, Samples: 1, MeanHitRate: 0.2, MeanOccupancy: 0.3, MeanSize: 24, MinSize: 24, MaxSize: 24},
		{Phase: Mixed, Samples: 1, MeanHitRate: 0.12, MeanOccupancy: 0.5, MeanSize: 32, MinSize: 32, MaxSize: 32},
	}
	approx := cmpopts.EquateApprox(0, 1e-9)
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("phase summaries mismatch (-want +got):\n%s", diff)
	}
}

func TestPhasesSingle(t *testing.T) {
	got := Phases([]Sample{{Timestamp: 1, VictimSize: 10, HitRate: 0.5, Occupancy: 0.25, Phase: Unknown}})
	if len(got) != 1 || got[0].Phase != Unknown || got[0].Samples != 1 || math.Abs(got[0].MeanHitRate-0.5) > 1e-12 {
		t.Errorf("Phases(single) = %+v", got)
	}
	if Phases(nil) != nil {
		t.Errorf("Phases(nil) is not nil")
	}
}

func TestPhaseString(t *testing.T) {
	for p, want := range map[Phase]string{
		MemoryIntensive:  "memory-intensive",
		ComputeIntensive: "compute-intensive",
		Mixed:            "mixed",
		Unknown:          "unknown",
		Phase(7):         "Phase(7)",
	} {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", int(p), got, want)
		}
	}
	if got := NoChange.String(); got != "no-change" {
		t.Errorf("NoChange.String() = %q", got)
	}
}
