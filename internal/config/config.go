// Package config defines process configuration and how it is loaded.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// WorkerCount sets the number of batch workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory batch queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize bounds the set of remembered batch files. Zero is unbounded.
	DedupeSize int `koanf:"dedupe_size"`

	// Stages is the default comma separated stage list, e.g. "best,round".
	Stages string `koanf:"stages"`

	// MaxBodyBytes caps POST /transform request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// InPlace makes batch runs overwrite their input files.
	InPlace bool `koanf:"in_place"`

	// OutputSuffix is inserted before the extension of batch outputs.
	OutputSuffix string `koanf:"output_suffix"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		Addr:         ":9080",
		WorkerCount:  runtime.NumCPU(),
		QueueSize:    1024,
		DedupeSize:   0,
		Stages:       "best,round",
		MaxBodyBytes: 32 << 20,
		InPlace:      false,
		OutputSuffix: ".out",
	}
}
