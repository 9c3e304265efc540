package recorder

import (
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/user/viewcast/pkg/ports"
)

// encodingState tracks the write/finish lifecycle of an EncodingSession.
type encodingState int

const (
	stateIdle encodingState = iota
	stateActive
	stateFinalizing
	stateFinished
)

// jobQueueSize bounds the serial worker's inbox. The scheduler produces at
// most one frame per tick, so the queue only fills when the worker stalls;
// overflow frames are dropped rather than blocking the tick handler.
const jobQueueSize = 64

// EncodingSession owns the encoder input, the pixel-buffer pool, and
// presentation-time bookkeeping for one recording run. All encoder
// interaction happens on a single serial worker goroutine, so admission
// control, buffer acquisition, and timestamp assignment are strictly ordered
// and never interleave.
//
// A session is single-use: a new recording run constructs a new one.
type EncodingSession struct {
	writer ports.MediaWriter
	logger ports.Logger

	path   string
	width  int
	height int
	fps    int

	jobs chan func()
	done chan struct{}

	mu        sync.Mutex
	finishing bool

	// Worker-only state below; never touched from other goroutines.
	state       encodingState
	session     ports.WriterSession
	pool        *BufferPool
	setupFailed bool
	startedAt   time.Time
	endedAt     time.Time

	frameCount atomic.Int64
}

// NewEncodingSession creates a session targeting the given output path,
// dimensions, and frame rate, and starts its serial worker. Dimensions come
// from the surface at recording start; a zero size is a defined invalid
// state in which no encoder is ever created and frames are silently dropped.
func NewEncodingSession(writer ports.MediaWriter, logger ports.Logger, path string, width, height, fps int) *EncodingSession {
	e := &EncodingSession{
		writer:    writer,
		logger:    logger.WithComponent("encoder"),
		path:      path,
		width:     width,
		height:    height,
		fps:       fps,
		jobs:      make(chan func(), jobQueueSize),
		done:      make(chan struct{}),
		startedAt: time.Now(),
	}
	go e.run()
	return e
}

func (e *EncodingSession) run() {
	defer close(e.done)
	for job := range e.jobs {
		job()
	}
}

// WriteFrame enqueues one raw image for asynchronous encoding and returns
// immediately. Frames enqueued after Finish, or while the worker inbox is
// full, are dropped.
func (e *EncodingSession) WriteFrame(img image.Image) {
	e.mu.Lock()
	if e.finishing {
		e.mu.Unlock()
		return
	}
	select {
	case e.jobs <- func() { e.writeFrame(img) }:
	default:
		e.logger.Debug("Dropping frame: worker queue full")
	}
	e.mu.Unlock()
}

// writeFrame runs on the serial worker.
func (e *EncodingSession) writeFrame(img image.Image) {
	if e.state == stateFinalizing || e.state == stateFinished {
		return
	}
	if e.setupFailed {
		return
	}

	// Lazy encoder setup on the first write attempt. Requires an output
	// path and a non-zero target size; until both are known frames are
	// dropped, not queued.
	if e.session == nil {
		if e.path == "" {
			e.logger.Debug("Dropping frame: no output path configured")
			return
		}
		if e.width <= 0 || e.height <= 0 {
			e.logger.Debug("Dropping frame: zero target size")
			return
		}
		session, err := e.writer.OpenSession(e.path, e.width, e.height, e.fps)
		if err != nil {
			e.logger.Error("Failed to open writer session: %s", err)
			e.setupFailed = true
			return
		}
		e.session = session
		e.pool = NewBufferPool(e.width, e.height, defaultPoolSize)
		e.state = stateActive
		e.logger.Debug("Writer session opened: %dx%d at %d fps", e.width, e.height, e.fps)
	}

	// Admission control: the encoder's readiness flag is the only
	// backpressure mechanism. Not ready means drop, not wait.
	if !e.session.ReadyForMoreData() {
		e.logger.Debug("Dropping frame: encoder not ready")
		return
	}

	buf, err := e.pool.Acquire()
	if err != nil {
		e.logger.Debug("Dropping frame: %s", err)
		return
	}

	renderFrame(buf, img)

	pts := ports.MediaTime{Value: e.frameCount.Load(), Timescale: int32(e.fps)}
	if err := e.session.WriteFrame(buf.rgba, pts); err != nil {
		e.logger.Warn("Failed to write frame at %.3fs: %s", pts.Seconds(), err)
		buf.Release()
		return
	}
	buf.Release()

	// The counter advances only on successful submission, keeping
	// presentation timestamps strictly increasing and gap-tolerant.
	e.frameCount.Add(1)
}

// Finish enqueues finalization behind all previously queued writes and
// returns immediately. Once the container is finalized (or when no encoder
// was ever created), onComplete is invoked exactly once from the worker with
// the terminal condition: nil on a valid output file, ErrNoOutputFile when
// no path was configured, ErrCancelled otherwise.
//
// A second Finish is a no-op; the worker exits after finalization.
func (e *EncodingSession) Finish(onComplete func(error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.finishing {
		return
	}
	e.finishing = true
	e.jobs <- func() { e.finish(onComplete) }
	close(e.jobs)
}

// finish runs on the serial worker, after every pending write has drained.
func (e *EncodingSession) finish(onComplete func(error)) {
	e.endedAt = time.Now()

	var terminal error
	switch {
	case e.session == nil:
		// No frame was ever admitted; this is a defined terminal state,
		// not an error in the run itself.
		if e.path == "" {
			terminal = ErrNoOutputFile
		} else {
			terminal = ErrCancelled
		}
	default:
		e.state = stateFinalizing
		e.session.MarkFinished()
		err := e.session.Finalize()
		e.session.Release()
		e.pool.Close()
		if err != nil {
			e.logger.Error("Finalization failed: %s", err)
			terminal = ErrCancelled
		} else {
			e.logger.Debug("Container finalized after %d frames in %s",
				e.frameCount.Load(), e.endedAt.Sub(e.startedAt).Round(time.Millisecond))
		}
	}

	e.state = stateFinished
	if onComplete != nil {
		onComplete(terminal)
	}
}

// FramesWritten returns the number of frames admitted so far.
func (e *EncodingSession) FramesWritten() int64 {
	return e.frameCount.Load()
}

// OutputPath returns the configured output location.
func (e *EncodingSession) OutputPath() string {
	return e.path
}

// Wait blocks until the worker has exited after Finish. Intended for tests
// and orderly shutdown.
func (e *EncodingSession) Wait() {
	<-e.done
}
