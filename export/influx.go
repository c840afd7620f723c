// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package export

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/adaptivecache/vcperf/vcfmt"
	"github.com/adaptivecache/vcperf/vcmath"
)

// InfluxConfig locates an InfluxDB v2 bucket.
type InfluxConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`

	// Measurement is the measurement name for per-benchmark
	// points. Summary points use Measurement + "_summary".
	// If empty, "victim_cache" is used.
	Measurement string `yaml:"measurement"`
}

// An InfluxPublisher writes results to InfluxDB.
type InfluxPublisher struct {
	client      influxdb2.Client
	writer      api.WriteAPIBlocking
	measurement string
	dest        string

	// now returns the timestamp of published points.
	now func() time.Time
}

// NewInfluxPublisher returns a publisher for the bucket described by
// cfg. The caller must Close it.
func NewInfluxPublisher(cfg InfluxConfig) *InfluxPublisher {
	m := cfg.Measurement
	if m == "" {
		m = "victim_cache"
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &InfluxPublisher{
		client:      client,
		writer:      client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		measurement: m,
		dest:        cfg.URL,
		now:         time.Now,
	}
}

// Publish writes one point per benchmark of rs and one summary point,
// all tagged with the checkpoint label. Benchmarks without any
// metric are skipped.
func (p *InfluxPublisher) Publish(ctx context.Context, checkpoint string, rs *vcfmt.ResultSet) error {
	ts := p.now()
	var points []*write.Point
	for _, rec := range rs.Records() {
		fields := make(map[string]interface{})
		if rec.HitRate.Valid {
			fields["hit_rate"] = rec.HitRate.Float64
		}
		if rec.Occupancy.Valid {
			fields["occupancy"] = rec.Occupancy.Float64
		}
		if rec.Accesses.Valid {
			fields["accesses"] = rec.Accesses.Int64
		}
		if len(fields) == 0 {
			continue
		}
		tags := map[string]string{"checkpoint": checkpoint, "benchmark": rec.Name}
		points = append(points, influxdb2.NewPoint(p.measurement, tags, fields, ts))
	}

	s := vcmath.Summarize(rs)
	points = append(points, influxdb2.NewPoint(p.measurement+"_summary",
		map[string]string{"checkpoint": checkpoint},
		map[string]interface{}{
			"benchmarks":     s.Benchmarks,
			"hit_rate_mean":  s.HitRate.Mean,
			"hit_rate_min":   s.HitRate.Min,
			"hit_rate_max":   s.HitRate.Max,
			"occupancy_mean": s.Occupancy.Mean,
			"accesses":       s.Accesses,
		}, ts))

	if err := p.writer.WritePoint(ctx, points...); err != nil {
		return &WriteError{Dest: p.dest, Err: err}
	}
	return nil
}

// Close releases the client's resources.
func (p *InfluxPublisher) Close() {
	p.client.Close()
}
