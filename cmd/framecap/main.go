// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command framecap renders a demo scene into a timestamped directory of
// sequentially numbered PNG frames. Configuration is read from an
// optional framecap.yaml plus FRAMECAP_* environment variables.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/gogpu/framecap"
	_ "github.com/gogpu/framecap/backend/wgpu"
	"github.com/gogpu/framecap/filter"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "framecap:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	framecap.SetLogger(logger)

	ft, err := filter.Parse(cfg.Filter)
	if err != nil {
		return err
	}

	capCfg := framecap.Config{
		Width:      float64(cfg.Width),
		Height:     float64(cfg.Height),
		Scale:      cfg.Scale,
		FPS:        cfg.FPS,
		Duration:   cfg.Duration,
		FrameCount: cfg.FrameCount,
		Filter:     ft,
		OutputDir:  cfg.OutputDir,
	}

	var opts []framecap.Option
	if cfg.Backend != "" {
		opts = append(opts, framecap.WithBackend(cfg.Backend))
	}
	if cfg.Workers > 0 {
		opts = append(opts, framecap.WithWorkers(cfg.Workers))
	}
	if cfg.StartTime != 0 {
		opts = append(opts, framecap.WithStartTime(cfg.StartTime))
	}

	scene := newDemoScene(float64(cfg.Width), float64(cfg.Height))
	pipe, err := framecap.New(capCfg, scene, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go reportProgress(pipe, done)

	result, err := pipe.Run(ctx)
	close(done)
	if result != nil {
		fmt.Printf("captured %d frames (%d saved, %d failed) to %s\n",
			result.TotalFrames, result.FramesSaved, result.FramesFailed, result.Dir)
		fmt.Printf("render %s, drain %s\n", result.RenderDuration, result.DrainDuration)
	}
	return err
}

// reportProgress prints a progress line twice a second until the
// capture finishes.
func reportProgress(pipe *framecap.Pipeline, done <-chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			snap := pipe.Progress()
			if !snap.Running {
				continue
			}
			fmt.Printf("\rframe %d/%d (%.0f%%) %s",
				snap.CurrentFrame, snap.TotalFrames, snap.Fraction*100, snap.Message)
		}
	}
}

// cliConfig holds the command's settings, resolved from defaults, the
// optional config file, and environment variables in that order.
type cliConfig struct {
	Width      int
	Height     int
	Scale      float64
	FPS        float64
	Duration   float64
	FrameCount int
	Filter     string
	OutputDir  string
	Backend    string
	Workers    int
	StartTime  float64
	Verbose    bool
}

func loadConfig() (*cliConfig, error) {
	viper.SetConfigName("framecap")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("framecap")
	viper.AutomaticEnv()

	viper.SetDefault("width", 390)
	viper.SetDefault("height", 844)
	viper.SetDefault("scale", 2.0)
	viper.SetDefault("fps", 60.0)
	viper.SetDefault("duration", 12.0)
	viper.SetDefault("frame_count", 0)
	viper.SetDefault("filter", "none")
	viper.SetDefault("out", "./captures")
	viper.SetDefault("backend", "")
	viper.SetDefault("workers", 0)
	viper.SetDefault("start_time", 0.0)
	viper.SetDefault("verbose", false)

	// Config file is optional.
	_ = viper.ReadInConfig()

	return &cliConfig{
		Width:      viper.GetInt("width"),
		Height:     viper.GetInt("height"),
		Scale:      viper.GetFloat64("scale"),
		FPS:        viper.GetFloat64("fps"),
		Duration:   viper.GetFloat64("duration"),
		FrameCount: viper.GetInt("frame_count"),
		Filter:     viper.GetString("filter"),
		OutputDir:  viper.GetString("out"),
		Backend:    viper.GetString("backend"),
		Workers:    viper.GetInt("workers"),
		StartTime:  viper.GetFloat64("start_time"),
		Verbose:    viper.GetBool("verbose"),
	}, nil
}
