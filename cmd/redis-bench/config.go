package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// benchConfig is the resolved benchmark configuration.
type benchConfig struct {
	Servers     []string
	Duration    time.Duration
	Concurrency int
	PoolSize    int32
	ValueSize   int
	KeySpace    int
	SetRatio    float64
	UsePipeline bool
	PipelineLen int
}

func defaultConfig() benchConfig {
	return benchConfig{
		Servers:     []string{"localhost:6379"},
		Duration:    10 * time.Second,
		Concurrency: 8,
		PoolSize:    16,
		ValueSize:   64,
		KeySpace:    10000,
		SetRatio:    0.2,
		PipelineLen: 10,
	}
}

type fileConfig struct {
	Servers     []string `toml:"servers"`
	Duration    string   `toml:"duration"`
	Concurrency int      `toml:"concurrency"`
	PoolSize    int32    `toml:"pool_size"`
	ValueSize   int      `toml:"value_size"`
	KeySpace    int      `toml:"key_space"`
	SetRatio    float64  `toml:"set_ratio"`
	UsePipeline bool     `toml:"use_pipeline"`
	PipelineLen int      `toml:"pipeline_len"`
}

// loadConfig overlays a TOML file onto the defaults. Only keys present in
// the file override.
func loadConfig(path string) (benchConfig, error) {
	cfg := defaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return benchConfig{}, fmt.Errorf("load bench config: %w", err)
	}

	if meta.IsDefined("servers") && len(raw.Servers) > 0 {
		cfg.Servers = normalizeServers(raw.Servers)
	}

	if meta.IsDefined("duration") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Duration))
		if err != nil {
			return benchConfig{}, fmt.Errorf("parse duration: %w", err)
		}
		cfg.Duration = d
	}

	if meta.IsDefined("concurrency") && raw.Concurrency > 0 {
		cfg.Concurrency = raw.Concurrency
	}

	if meta.IsDefined("pool_size") && raw.PoolSize > 0 {
		cfg.PoolSize = raw.PoolSize
	}

	if meta.IsDefined("value_size") && raw.ValueSize > 0 {
		cfg.ValueSize = raw.ValueSize
	}

	if meta.IsDefined("key_space") && raw.KeySpace > 0 {
		cfg.KeySpace = raw.KeySpace
	}

	if meta.IsDefined("set_ratio") && raw.SetRatio >= 0 && raw.SetRatio <= 1 {
		cfg.SetRatio = raw.SetRatio
	}

	if meta.IsDefined("use_pipeline") {
		cfg.UsePipeline = raw.UsePipeline
	}

	if meta.IsDefined("pipeline_len") && raw.PipelineLen > 0 {
		cfg.PipelineLen = raw.PipelineLen
	}

	return cfg, nil
}

func normalizeServers(servers []string) []string {
	out := make([]string, 0, len(servers))
	for _, s := range servers {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
