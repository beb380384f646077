package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/pior/redis"
)

type counters struct {
	ops       atomic.Int64
	errors    atomic.Int64
	latencyNs atomic.Int64
}

func main() {
	configPath := flag.String("config", "", "Path to TOML config file")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Str("app", "redis-bench").Logger()

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = loadConfig(*configPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid config")
		}
	}

	logger.Info().
		Strs("servers", cfg.Servers).
		Dur("duration", cfg.Duration).
		Int("concurrency", cfg.Concurrency).
		Int("value_size", cfg.ValueSize).
		Float64("set_ratio", cfg.SetRatio).
		Bool("pipeline", cfg.UsePipeline).
		Msg("starting benchmark")

	client, err := redis.NewClient(redis.NewStaticServers(cfg.Servers...), redis.Config{
		MaxSize: cfg.PoolSize,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create client")
	}
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("servers unreachable")
	}

	value := strings.Repeat("x", cfg.ValueSize)
	runCtx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var c counters
	var wg sync.WaitGroup
	start := time.Now()

	for worker := 0; worker < cfg.Concurrency; worker++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			if cfg.UsePipeline {
				runPipelineWorker(runCtx, client, cfg, value, seed, &c)
			} else {
				runWorker(runCtx, client, cfg, value, seed, &c)
			}
		}(int64(worker))
	}

	wg.Wait()
	elapsed := time.Since(start)

	ops := c.ops.Load()
	failures := c.errors.Load()
	avgLatency := time.Duration(0)
	if ops > 0 {
		avgLatency = time.Duration(c.latencyNs.Load() / ops)
	}

	logger.Info().
		Int64("ops", ops).
		Int64("errors", failures).
		Float64("ops_per_sec", float64(ops)/elapsed.Seconds()).
		Dur("avg_latency", avgLatency).
		Msg("benchmark finished")

	stats := client.Stats()
	logger.Info().
		Uint64("reads", stats.Reads).
		Uint64("read_hits", stats.ReadHits).
		Uint64("writes", stats.Writes).
		Uint64("errors", stats.Errors).
		Msg("client stats")

	for _, ps := range client.AllPoolStats() {
		logger.Info().
			Str("server", ps.Addr).
			Int32("total_conns", ps.PoolStats.TotalConns).
			Uint64("acquires", ps.PoolStats.AcquireCount).
			Uint64("acquire_waits", ps.PoolStats.AcquireWaitCount).
			Msg("pool stats")
	}
}

func runWorker(ctx context.Context, client *redis.Client, cfg benchConfig, value string, seed int64, c *counters) {
	rng := rand.New(rand.NewSource(seed))

	for ctx.Err() == nil {
		key := "bench:" + strconv.Itoa(rng.Intn(cfg.KeySpace))
		start := time.Now()

		var err error
		if rng.Float64() < cfg.SetRatio {
			_, err = client.Set(ctx, key, value, nil)
		} else {
			_, err = client.Get(ctx, key)
		}

		c.latencyNs.Add(time.Since(start).Nanoseconds())
		c.ops.Add(1)
		if err != nil && ctx.Err() == nil {
			c.errors.Add(1)
		}
	}
}

func runPipelineWorker(ctx context.Context, client *redis.Client, cfg benchConfig, value string, seed int64, c *counters) {
	rng := rand.New(rand.NewSource(seed))

	for ctx.Err() == nil {
		pipe := redis.NewPipeline(client)
		for i := 0; i < cfg.PipelineLen; i++ {
			key := "bench:" + strconv.Itoa(rng.Intn(cfg.KeySpace))
			if rng.Float64() < cfg.SetRatio {
				pipe.QueueSet(key, value)
			} else {
				pipe.QueueGet(key)
			}
		}

		start := time.Now()
		replies, err := pipe.Exec(ctx)
		c.latencyNs.Add(time.Since(start).Nanoseconds())
		c.ops.Add(int64(cfg.PipelineLen))

		if err != nil {
			if ctx.Err() == nil {
				c.errors.Add(int64(cfg.PipelineLen))
			}
			continue
		}
		for _, reply := range replies {
			if reply.HasError() {
				c.errors.Add(1)
			}
		}
	}
}
