package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags(nil)
	require.NoError(t, err)
	require.Equal(t, 4096, cfg.keys)
	require.Equal(t, 5000, cfg.rounds)
	require.Equal(t, 0, cfg.workers)
	require.Equal(t, 64, cfg.validateEvery)
	require.Equal(t, "none", cfg.exporter)
	require.Equal(t, 10*time.Second, cfg.interval)
	require.False(t, cfg.plainText)

	cfg, err = parseFlags([]string{
		"-keys", "10", "-rounds", "20", "-workers", "3", "-seed", "5",
		"-metrics", "console", "-metrics-interval", "1s", "-log-level", "warn", "-plain",
	})
	require.NoError(t, err)
	require.Equal(t, cmdConfig{
		exporter:      "console",
		metricsAddr:   ":9464",
		level:         "warn",
		interval:      time.Second,
		seed:          5,
		keys:          10,
		rounds:        20,
		workers:       3,
		validateEvery: 64,
		plainText:     true,
	}, cfg)

	_, err = parseFlags([]string{"-keys", "many"})
	require.Error(t, err)
	_, err = parseFlags([]string{"extra"})
	require.Error(t, err)
}

func TestLevelOption(t *testing.T) {
	for _, name := range []string{"debug", " INFO ", "Warn", "error"} {
		require.NotNil(t, levelOption(name), name)
	}
	require.Nil(t, levelOption(""))
	require.Nil(t, levelOption("trace"))
}

func TestRun(t *testing.T) {
	cfg := cmdConfig{
		exporter:      "none",
		level:         "error",
		seed:          11,
		keys:          32,
		rounds:        50,
		workers:       2,
		validateEvery: 8,
	}
	require.Equal(t, 0, run(cfg))

	cfg.exporter = "graphite"
	require.Equal(t, 1, run(cfg))

	cfg.exporter = "none"
	cfg.keys = 0
	require.Equal(t, 1, run(cfg))
}
