// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the optional YAML configuration file shared by
// the vcperf commands.
//
// A configuration file looks like
//
//	target:
//	  minDelta: 8
//	  bandLow: 8
//	  bandHigh: 15
//	database:
//	  driver: sqlite3
//	  dsn: checkpoints.db
//	influx:
//	  url: http://localhost:8086
//	  token: secret
//	  org: perf
//	  bucket: victim-cache
//	gcs:
//	  credentialsFile: /path/to/key.json
//	plot:
//	  dir: results
//	  dpi: 300
//
// Every section is optional; omitted values keep their defaults.
package config

import (
	"errors"
	"fmt"
	"io"

	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"

	"github.com/adaptivecache/vcperf/checkpoint"
	"github.com/adaptivecache/vcperf/export"
	"github.com/adaptivecache/vcperf/vcfmt"
)

// Config is the contents of a configuration file.
type Config struct {
	Target   TargetConfig        `yaml:"target"`
	Database DBConfig            `yaml:"database"`
	Influx   export.InfluxConfig `yaml:"influx"`
	GCS      GCSConfig           `yaml:"gcs"`
	Plot     PlotConfig          `yaml:"plot"`
}

// TargetConfig holds the comparison acceptance criteria, in percent.
type TargetConfig struct {
	MinDelta float64 `yaml:"minDelta"`
	BandLow  float64 `yaml:"bandLow"`
	BandHigh float64 `yaml:"bandHigh"`
}

// Target returns c as a checkpoint.Target.
func (c TargetConfig) Target() checkpoint.Target {
	return checkpoint.Target{MinDelta: c.MinDelta, Lo: c.BandLow, Hi: c.BandHigh}
}

// DBConfig locates the checkpoint database.
type DBConfig struct {
	// Driver is "sqlite3" or "mysql".
	Driver string `yaml:"driver"`
	// DSN is the data source name passed to the driver. It is
	// empty if no database is configured.
	DSN string `yaml:"dsn"`
}

// GCSConfig configures access to Google Cloud Storage.
type GCSConfig struct {
	// CredentialsFile is a service account key file. If empty,
	// application default credentials are used.
	CredentialsFile string `yaml:"credentialsFile"`
}

// ClientOptions returns the storage client options for c.
func (c GCSConfig) ClientOptions() []option.ClientOption {
	if c.CredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(c.CredentialsFile)}
}

// PlotConfig controls chart output.
type PlotConfig struct {
	Dir string `yaml:"dir"`
	DPI int    `yaml:"dpi"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	def := checkpoint.DefaultTarget
	return &Config{
		Target:   TargetConfig{MinDelta: def.MinDelta, BandLow: def.Lo, BandHigh: def.Hi},
		Database: DBConfig{Driver: "sqlite3"},
		Plot:     PlotConfig{Dir: "results", DPI: 300},
	}
}

// Load reads the configuration file at path on top of the defaults.
// If path is empty, Load returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := vcfmt.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads a configuration from r on top of the defaults.
// Unknown keys are an error.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Target.BandLow > c.Target.BandHigh {
		return fmt.Errorf("target band [%v, %v] is empty", c.Target.BandLow, c.Target.BandHigh)
	}
	switch c.Database.Driver {
	case "sqlite3", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Plot.DPI <= 0 {
		return errors.New("plot dpi must be positive")
	}
	if c.Influx.URL != "" && (c.Influx.Org == "" || c.Influx.Bucket == "") {
		return errors.New("influx url requires org and bucket")
	}
	return nil
}
