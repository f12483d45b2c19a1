// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framecap

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/framecap/filter"
	"github.com/gogpu/framecap/persist"
)

func testConfig(dir string) Config {
	return Config{
		Width:      16,
		Height:     16,
		Scale:      1,
		FPS:        30,
		FrameCount: 5,
		Filter:     filter.None,
		OutputDir:  dir,
	}
}

func TestPipelineRun(t *testing.T) {
	dir := t.TempDir()
	p, err := New(testConfig(dir), &testScene{},
		WithBackend("software"), WithStartTime(100))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.State() != StateIdle {
		t.Errorf("initial state = %v, want idle", p.State())
	}

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if p.State() != StateComplete {
		t.Errorf("final state = %v, want complete", p.State())
	}
	if result.TotalFrames != 5 || result.FramesSaved != 5 || result.FramesFailed != 0 {
		t.Errorf("result = %+v, want 5 rendered, 5 saved, 0 failed", result)
	}
	if result.RunID == "" {
		t.Error("result has empty run ID")
	}

	for i := 0; i < 5; i++ {
		path := filepath.Join(result.Dir, fmt.Sprintf("frame_%05d.png", i))
		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("frame %d missing: %v", i, err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("frame %d not decodable: %v", i, err)
		}
		if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
			t.Errorf("frame %d size = %dx%d, want 16x16", i, b.Dx(), b.Dy())
		}
	}
}

func TestPipelineRunDirInsideOutputDir(t *testing.T) {
	dir := t.TempDir()
	p, _ := New(testConfig(dir), &testScene{}, WithBackend("software"))
	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	rel, err := filepath.Rel(dir, result.Dir)
	if err != nil || filepath.Dir(rel) != "." {
		t.Errorf("run dir %q not directly inside %q", result.Dir, dir)
	}
}

func TestPipelineDeterministicRuns(t *testing.T) {
	runOnce := func() map[string][]byte {
		dir := t.TempDir()
		p, _ := New(testConfig(dir), &testScene{},
			WithBackend("software"), WithStartTime(100))
		result, err := p.Run(context.Background())
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		frames := make(map[string][]byte)
		for i := 0; i < result.TotalFrames; i++ {
			name := fmt.Sprintf("frame_%05d.png", i)
			data, err := os.ReadFile(filepath.Join(result.Dir, name))
			if err != nil {
				t.Fatalf("read %s: %v", name, err)
			}
			frames[name] = data
		}
		return frames
	}

	a := runOnce()
	b := runOnce()
	if len(a) != len(b) {
		t.Fatalf("frame counts differ: %d vs %d", len(a), len(b))
	}
	for name, dataA := range a {
		if !equalPix(dataA, b[name]) {
			t.Errorf("%s differs between identical runs", name)
		}
	}
}

func TestPipelineRunOnce(t *testing.T) {
	p, _ := New(testConfig(t.TempDir()), &testScene{}, WithBackend("software"))
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if _, err := p.Run(context.Background()); !errors.Is(err, ErrPipelineBusy) {
		t.Errorf("second Run = %v, want ErrPipelineBusy", err)
	}
}

func TestPipelineNilScene(t *testing.T) {
	if _, err := New(testConfig(t.TempDir()), nil); !errors.Is(err, ErrNilScene) {
		t.Errorf("New(nil scene) = %v, want ErrNilScene", err)
	}
}

func TestPipelineInvalidConfig(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.FPS = 0
	p, _ := New(cfg, &testScene{}, WithBackend("software"))

	_, err := p.Run(context.Background())
	if !errors.Is(err, ErrInvalidFPS) {
		t.Errorf("Run = %v, want ErrInvalidFPS", err)
	}
	if p.State() != StateFailed {
		t.Errorf("state = %v, want failed", p.State())
	}
}

// cancellingScene cancels its context after a fixed number of advances.
type cancellingScene struct {
	testScene
	cancelAfter int
	cancel      context.CancelFunc
}

func (s *cancellingScene) Advance(t float64) {
	s.testScene.Advance(t)
	if len(s.advances) == s.cancelAfter {
		s.cancel()
	}
}

func TestPipelineCancellationBetweenFrames(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	scene := &cancellingScene{cancelAfter: 3, cancel: cancel}

	cfg := testConfig(t.TempDir())
	cfg.FrameCount = 20
	p, _ := New(cfg, scene, WithBackend("software"), WithStartTime(100))

	result, err := p.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	if result == nil {
		t.Fatal("cancelled run returned nil result")
	}
	if result.TotalFrames >= 20 {
		t.Errorf("rendered %d frames, want fewer than 20", result.TotalFrames)
	}
	if result.TotalFrames < 3 {
		t.Errorf("rendered %d frames, want at least 3", result.TotalFrames)
	}
	// Frames rendered before cancellation still drained to disk.
	if result.FramesSaved != result.TotalFrames {
		t.Errorf("saved %d of %d rendered frames", result.FramesSaved, result.TotalFrames)
	}
	// A cancelled run must not present itself as a completed one.
	if p.State() != StateCancelled {
		t.Errorf("state = %v, want cancelled", p.State())
	}
	if msg := p.Progress().Message; msg != "cancelled" {
		t.Errorf("progress message = %q, want cancelled", msg)
	}
}

func TestPipelineCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, _ := New(testConfig(t.TempDir()), &testScene{}, WithBackend("software"))
	result, err := p.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	if result.TotalFrames != 0 {
		t.Errorf("rendered %d frames on pre-cancelled context, want 0", result.TotalFrames)
	}
	if p.State() != StateCancelled {
		t.Errorf("state = %v, want cancelled", p.State())
	}
}

func TestPipelineProgressReachesTotal(t *testing.T) {
	p, _ := New(testConfig(t.TempDir()), &testScene{}, WithBackend("software"))
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	snap := p.Progress()
	if snap.Running {
		t.Error("progress still running after Run returned")
	}
	if snap.CurrentFrame != snap.TotalFrames {
		t.Errorf("progress %d/%d, want full", snap.CurrentFrame, snap.TotalFrames)
	}
}

func TestPipelineWithInjectedRenderer(t *testing.T) {
	r, err := newSoftwareRenderer(RendererOptions{
		PixelWidth: 16, PixelHeight: 16, Scale: 1, Filter: filter.None,
	})
	if err != nil {
		t.Fatalf("newSoftwareRenderer: %v", err)
	}

	p, _ := New(testConfig(t.TempDir()), &testScene{}, WithRenderer(r))
	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.FramesSaved != 5 {
		t.Errorf("saved = %d, want 5", result.FramesSaved)
	}
}

// failingRenderer fails every submit, standing in for a lost device.
type failingRenderer struct {
	fakeRenderer
}

func (f *failingRenderer) Submit(FrameRequest, Scene) (*Completion, error) {
	return nil, errors.New("device lost")
}

func TestPipelineRenderFailureIsFatal(t *testing.T) {
	p, _ := New(testConfig(t.TempDir()), &testScene{},
		WithRenderer(&failingRenderer{}))

	_, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("Run with failing renderer succeeded")
	}
	if p.State() != StateFailed {
		t.Errorf("state = %v, want failed", p.State())
	}
}

// asyncFailRenderer resolves the first frame's completion with an error.
type asyncFailRenderer struct {
	fakeRenderer
}

func (f *asyncFailRenderer) Submit(FrameRequest, Scene) (*Completion, error) {
	c := NewCompletion()
	c.Fail(errors.New("fence timeout"))
	return c, nil
}

func TestPipelineCompletionFailureIsFatal(t *testing.T) {
	p, _ := New(testConfig(t.TempDir()), &testScene{},
		WithRenderer(&asyncFailRenderer{}))

	_, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("Run with failing completion succeeded")
	}
	if p.State() != StateFailed {
		t.Errorf("state = %v, want failed", p.State())
	}
}

func TestPipelineSaveFailureIsNonFatal(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.FrameCount = 8

	p, err := New(cfg, &testScene{}, WithBackend("software"), WithStartTime(100))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.persistOpts = []persist.Option{
		persist.WithWriteFunc(func(path string, data []byte) error {
			if strings.HasSuffix(path, "frame_00003.png") {
				return errors.New("disk full")
			}
			return os.WriteFile(path, data, 0o644)
		}),
	}

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if p.State() != StateComplete {
		t.Errorf("state = %v, want complete", p.State())
	}
	if result.FramesSaved != 7 || result.FramesFailed != 1 {
		t.Errorf("saved/failed = %d/%d, want 7/1", result.FramesSaved, result.FramesFailed)
	}
	for i := 0; i < 8; i++ {
		path := filepath.Join(result.Dir, fmt.Sprintf("frame_%05d.png", i))
		_, statErr := os.Stat(path)
		if i == 3 {
			if statErr == nil {
				t.Error("frame 3 present on disk despite failed write")
			}
			continue
		}
		if statErr != nil {
			t.Errorf("frame %d missing: %v", i, statErr)
		}
	}
}

func TestPipelineAdvanceTimesFollowClock(t *testing.T) {
	scene := &testScene{}
	p, _ := New(testConfig(t.TempDir()), scene,
		WithBackend("software"), WithStartTime(100))

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(scene.advances) != 5 {
		t.Fatalf("scene advanced %d times, want 5", len(scene.advances))
	}
	for i, got := range scene.advances {
		want := 100 + float64(i)/30
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("advance %d at t=%v, want %v", i, got, want)
		}
	}
}

func TestPipelineRenderDurationExcludesPreparing(t *testing.T) {
	// A deliberately slow backend factory: construction happens in the
	// preparing phase and must not be billed to the render loop.
	RegisterBackend("test-slow-setup", 2, func(opts RendererOptions) (Renderer, error) {
		time.Sleep(80 * time.Millisecond)
		return newSoftwareRenderer(opts)
	}, func() bool { return true })

	p, _ := New(testConfig(t.TempDir()), &testScene{},
		WithBackend("test-slow-setup"), WithStartTime(100))

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.RenderDuration >= 80*time.Millisecond {
		t.Errorf("RenderDuration = %v includes renderer construction time", result.RenderDuration)
	}
}
