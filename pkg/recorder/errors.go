package recorder

import (
	"errors"
	"fmt"
)

var (
	// ErrCancelled is reported by the terminal callback when finalization
	// completed but no output file is available, typically because the
	// recording was stopped before any frame was admitted.
	ErrCancelled = errors.New("recorder: recording cancelled, no output produced")

	// ErrNoOutputFile is reported when no output path was ever configured
	// for the run. It wraps ErrCancelled so both terminal failure shapes
	// satisfy errors.Is(err, ErrCancelled).
	ErrNoOutputFile = fmt.Errorf("%w: no output file configured", ErrCancelled)

	// ErrAlreadyRecording is returned by Start while a recording is active.
	ErrAlreadyRecording = errors.New("recorder: recording already in progress")

	// ErrPoolExhausted is returned by BufferPool.Acquire when every pooled
	// buffer is in use.
	ErrPoolExhausted = errors.New("recorder: pixel buffer pool exhausted")

	// ErrPoolClosed is returned by BufferPool.Acquire after Close.
	ErrPoolClosed = errors.New("recorder: pixel buffer pool closed")
)
