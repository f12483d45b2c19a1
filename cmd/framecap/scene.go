// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"math"
	"os"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/gogpu/framecap"
)

// palette is a set of scene colors the demo cycles through.
type palette struct {
	bg, poly, orbit, ring gg.RGBA
}

var palettes = []palette{
	{
		bg:    gg.RGBA{R: 0.07, G: 0.07, B: 0.10, A: 1},
		poly:  gg.RGBA{R: 0.95, G: 0.55, B: 0.15, A: 1},
		orbit: gg.RGBA{R: 0.25, G: 0.65, B: 0.95, A: 1},
		ring:  gg.RGBA{R: 0.85, G: 0.85, B: 0.90, A: 0.6},
	},
	{
		bg:    gg.RGBA{R: 0.05, G: 0.09, B: 0.07, A: 1},
		poly:  gg.RGBA{R: 0.30, G: 0.90, B: 0.55, A: 1},
		orbit: gg.RGBA{R: 0.95, G: 0.35, B: 0.55, A: 1},
		ring:  gg.RGBA{R: 0.80, G: 0.95, B: 0.85, A: 0.6},
	},
}

// demoScene is a deterministic animation: a rotating hexagon, three
// orbiting circles and a pulsing ring. All motion derives from
// simulation time, so identical clocks reproduce identical frames.
type demoScene struct {
	width  float64
	height float64

	t0      float64
	started bool
	elapsed float64

	speed   float64
	palette palette
	label   string

	face text.Face

	schedule *framecap.Schedule
}

func newDemoScene(width, height float64) *demoScene {
	s := &demoScene{
		width:    width,
		height:   height,
		speed:    1,
		palette:  palettes[0],
		label:    "framecap demo",
		schedule: &framecap.Schedule{},
	}
	if path := findSystemFont(); path != "" {
		if source, err := text.NewFontSourceFromFile(path); err == nil {
			s.face = source.Face(18)
		}
	}
	s.schedule.Add(framecap.Command{
		At:  4,
		Tag: "palette-swap",
		Do:  func(float64) { s.palette = palettes[1] },
	})
	s.schedule.Add(framecap.Command{
		At:  8,
		Tag: "speed-boost",
		Do:  func(float64) { s.speed = 1.8 },
	})
	return s
}

func (s *demoScene) Advance(t float64) {
	if !s.started {
		s.t0 = t
		s.started = true
	}
	s.elapsed = t - s.t0
	s.schedule.RunDue(s.elapsed)
}

func (s *demoScene) Draw(dc *gg.Context) {
	cx := s.width / 2
	cy := s.height / 2
	t := s.elapsed * s.speed

	dc.SetRGBA(s.palette.bg.R, s.palette.bg.G, s.palette.bg.B, s.palette.bg.A)
	dc.DrawRectangle(0, 0, s.width, s.height)
	dc.Fill()

	// Rotating hexagon.
	dc.SetRGBA(s.palette.poly.R, s.palette.poly.G, s.palette.poly.B, s.palette.poly.A)
	dc.DrawRegularPolygon(6, cx, cy, s.width*0.22, t*0.8)
	dc.Fill()

	// Orbiting circles, phase-shifted thirds.
	orbitR := s.width * 0.35
	for i := 0; i < 3; i++ {
		phase := t*1.4 + float64(i)*2*math.Pi/3
		x := cx + orbitR*math.Cos(phase)
		y := cy + orbitR*math.Sin(phase)
		dc.SetRGBA(s.palette.orbit.R, s.palette.orbit.G, s.palette.orbit.B, s.palette.orbit.A)
		dc.DrawCircle(x, y, s.width*0.05)
		dc.Fill()
	}

	// Pulsing ring.
	pulse := 1 + 0.12*math.Sin(t*3)
	dc.SetRGBA(s.palette.ring.R, s.palette.ring.G, s.palette.ring.B, s.palette.ring.A)
	dc.SetLineWidth(3)
	dc.DrawCircle(cx, cy, s.width*0.30*pulse)
	dc.Stroke()

	// Label, drawn only when a usable system font was found.
	if s.face != nil {
		dc.SetFont(s.face)
		dc.SetRGBA(s.palette.ring.R, s.palette.ring.G, s.palette.ring.B, 0.9)
		dc.DrawStringAnchored(s.label, cx, s.height-24, 0.5, 0.5)
	}
}

// findSystemFont returns the path to a TTF font, or "" when none of the
// usual locations has one. TTC collections are not supported.
func findSystemFont() string {
	candidates := []string{
		"C:\\Windows\\Fonts\\arial.ttf",
		"C:\\Windows\\Fonts\\segoeui.ttf",
		"/System/Library/Fonts/Supplemental/Arial.ttf",
		"/System/Library/Fonts/Monaco.ttf",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/TTF/DejaVuSans.ttf",
		"/usr/share/fonts/liberation/LiberationSans-Regular.ttf",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
