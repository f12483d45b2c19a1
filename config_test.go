// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framecap

import (
	"errors"
	"testing"

	"github.com/gogpu/framecap/filter"
)

func validConfig() Config {
	return Config{
		Width:    390,
		Height:   844,
		Scale:    2,
		FPS:      60,
		Duration: 12,
		Filter:   filter.None,
	}
}

func TestConfigPixelSize(t *testing.T) {
	tests := []struct {
		scale float64
		wantW int
		wantH int
	}{
		{1, 390, 844},
		{2, 780, 1688},
		{3, 1170, 2532},
	}
	for _, tt := range tests {
		cfg := validConfig()
		cfg.Scale = tt.scale
		if got := cfg.PixelWidth(); got != tt.wantW {
			t.Errorf("scale %v: PixelWidth = %d, want %d", tt.scale, got, tt.wantW)
		}
		if got := cfg.PixelHeight(); got != tt.wantH {
			t.Errorf("scale %v: PixelHeight = %d, want %d", tt.scale, got, tt.wantH)
		}
	}
}

func TestConfigPixelSizeTruncates(t *testing.T) {
	cfg := Config{Width: 100.7, Height: 50.3, Scale: 1.5}
	if got := cfg.PixelWidth(); got != 151 {
		t.Errorf("PixelWidth = %d, want 151", got)
	}
	if got := cfg.PixelHeight(); got != 75 {
		t.Errorf("PixelHeight = %d, want 75", got)
	}
}

func TestConfigTotalFrames(t *testing.T) {
	tests := []struct {
		fps      float64
		duration float64
		count    int
		want     int
	}{
		{60, 12, 0, 720},
		{30, 1, 0, 30},
		{24, 0.5, 0, 12},
		{60, 0.0166, 0, 0}, // less than one frame rounds down
		{60, 12, 100, 100}, // explicit count overrides duration
	}
	for _, tt := range tests {
		cfg := Config{FPS: tt.fps, Duration: tt.duration, FrameCount: tt.count}
		if got := cfg.TotalFrames(); got != tt.want {
			t.Errorf("fps=%v dur=%v count=%d: TotalFrames = %d, want %d",
				tt.fps, tt.duration, tt.count, got, tt.want)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"valid", func(*Config) {}, nil},
		{"zero width", func(c *Config) { c.Width = 0 }, ErrInvalidSize},
		{"negative height", func(c *Config) { c.Height = -1 }, ErrInvalidSize},
		{"scale below one", func(c *Config) { c.Scale = 0.5 }, ErrInvalidScale},
		{"zero fps", func(c *Config) { c.FPS = 0 }, ErrInvalidFPS},
		{"no duration or count", func(c *Config) { c.Duration = 0 }, ErrInvalidDuration},
		{"sub-frame duration", func(c *Config) { c.Duration = 0.001 }, ErrNoFrames},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestConfigFrameCountSatisfiesValidate(t *testing.T) {
	cfg := validConfig()
	cfg.Duration = 0
	cfg.FrameCount = 10
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with FrameCount = %v, want nil", err)
	}
}
