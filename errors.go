package framecap

import "errors"

// Pipeline and renderer errors.
var (
	// ErrNoBackends is returned when no render backend is available.
	ErrNoBackends = errors.New("framecap: no render backends available")

	// ErrUnknownBackend is returned when a named backend is not registered.
	ErrUnknownBackend = errors.New("framecap: unknown render backend")

	// ErrBackendUnavailable is returned when a named backend exists but
	// reports itself unavailable on this system.
	ErrBackendUnavailable = errors.New("framecap: render backend unavailable")

	// ErrFrameInFlight is returned by Submit when the previous frame's
	// completion has not been observed yet. The pipeline submits strictly
	// one frame at a time; hitting this error indicates a caller bug.
	ErrFrameInFlight = errors.New("framecap: previous frame still in flight")

	// ErrNoFramePending is returned by Readback when no completed frame
	// is available. Readback must only be called after the completion of
	// the corresponding Submit has resolved.
	ErrNoFramePending = errors.New("framecap: no completed frame to read back")

	// ErrRendererDestroyed is returned when operating on a destroyed renderer.
	ErrRendererDestroyed = errors.New("framecap: renderer destroyed")

	// ErrPipelineBusy is returned by Run if the pipeline is already running
	// or has already completed. A Pipeline drives exactly one run.
	ErrPipelineBusy = errors.New("framecap: pipeline already used")

	// ErrNilScene is returned by New when no scene is provided.
	ErrNilScene = errors.New("framecap: scene is nil")
)

// Config validation errors.
var (
	ErrInvalidSize     = errors.New("framecap: logical width and height must be positive")
	ErrInvalidScale    = errors.New("framecap: scale factor must be >= 1")
	ErrInvalidFPS      = errors.New("framecap: frame rate must be positive")
	ErrInvalidDuration = errors.New("framecap: duration must be positive")
	ErrNoFrames        = errors.New("framecap: configuration yields zero frames")
)
