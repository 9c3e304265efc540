// Package recorder implements timer-driven capture of a live visual surface
// into a single-video-track container: a frame scheduler produces snapshots
// at a fixed cadence and an encoding session turns them into a monotonic,
// correctly-timestamped video stream with backpressure and a deterministic
// shutdown.
package recorder

import (
	"sync"
	"time"

	"github.com/user/viewcast/pkg/ports"
)

// defaultFPS is the frame rate used until the caller configures one.
const defaultFPS = 30

// StartOptions carries the per-run callbacks for RecordingSession.Start.
// All callbacks are optional and are delivered on the session's executor.
type StartOptions struct {
	// OnProgress receives one value per timer tick, computed by Progress.
	OnProgress func(progress float64)

	// OnResult receives the terminal outcome, exactly once per start/stop
	// cycle: the output path on success, or an error satisfying
	// errors.Is(err, ErrCancelled) when no valid file was produced.
	OnResult func(path string, err error)

	// Progress computes the per-tick progress value. Defaults to
	// PlaceholderProgress.
	Progress ProgressFunc
}

// RecordingSession is the user-facing recording handle. It can run many
// recordings sequentially; each Start creates a fresh encoding session and
// scheduler, and at most one of each is active at a time.
type RecordingSession struct {
	writer    ports.MediaWriter
	logger    ports.Logger
	callbacks Executor
	owned     *SerialExecutor

	mu         sync.Mutex
	outputPath string
	fps        int
	sched      *FrameScheduler
	startedAt  time.Time
}

// New creates a RecordingSession that delivers callbacks on its own serial
// executor. Call Close when done with the session.
func New(writer ports.MediaWriter, logger ports.Logger) *RecordingSession {
	exec := NewSerialExecutor()
	s := NewWithExecutor(writer, logger, exec)
	s.owned = exec
	return s
}

// NewWithExecutor creates a RecordingSession delivering callbacks on the
// given executor. The caller keeps ownership of the executor.
func NewWithExecutor(writer ports.MediaWriter, logger ports.Logger, callbacks Executor) *RecordingSession {
	return &RecordingSession{
		writer:    writer,
		logger:    logger,
		callbacks: callbacks,
		fps:       defaultFPS,
	}
}

// SetOutputPath sets the container output location. An empty path makes the
// next recording silently emit no frames and terminate as cancelled.
func (s *RecordingSession) SetOutputPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputPath = path
}

// OutputPath returns the configured output location.
func (s *RecordingSession) OutputPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outputPath
}

// SetFramesPerSecond sets the target frame rate. It takes effect on the next
// encoder setup, i.e. the next Start; a recording already in progress keeps
// its tick interval and never rescales submitted timestamps. Non-positive
// values are ignored.
func (s *RecordingSession) SetFramesPerSecond(fps int) {
	if fps <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fps = fps
}

// FramesPerSecond returns the target frame rate.
func (s *RecordingSession) FramesPerSecond() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fps
}

// Recording reports whether a recording is active, including the finishing
// window between Stop and the terminal callback.
func (s *RecordingSession) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched != nil
}

// Start begins recording the surface. The surface reference is weak: the
// session reads from it on each tick but does not manage its lifetime, and a
// detached surface degrades cadence rather than failing the run.
//
// Start returns ErrAlreadyRecording while a previous run is active or still
// finishing. The encoder output size is derived from the surface's current
// bounds; the previous run's encoder is never reused.
func (s *RecordingSession) Start(surface ports.Surface, opts StartOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched != nil {
		return ErrAlreadyRecording
	}

	s.startedAt = time.Now()
	width, height := surface.Bounds()

	enc := NewEncodingSession(s.writer, s.logger, s.outputPath, width, height, s.fps)

	// The terminal callback also returns the session to idle, making a
	// fresh Start legal after completion.
	onResult := func(path string, err error) {
		s.mu.Lock()
		s.sched = nil
		s.mu.Unlock()
		if opts.OnResult != nil {
			opts.OnResult(path, err)
		}
	}

	s.sched = newFrameScheduler(surface, enc, s.logger, s.callbacks,
		TickInterval(s.fps), opts.Progress, opts.OnProgress, onResult)
	s.sched.Start()

	s.logger.Debug("Recording started: %dx%d at %d fps", width, height, s.fps)
	return nil
}

// Stop ends the active recording, if any. Idempotent from any state. The
// timer is cancelled immediately; finalization drains queued frame writes
// and then fires the terminal callback.
func (s *RecordingSession) Stop() {
	s.mu.Lock()
	sched := s.sched
	s.mu.Unlock()
	if sched == nil {
		return
	}
	sched.Stop()
}

// StartedAt returns the wall-clock time the current or most recent recording
// began. Metadata only; pacing is driven purely by the frame counter.
func (s *RecordingSession) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// Close releases the session's own callback executor, draining pending
// callbacks. Sessions created with NewWithExecutor need no Close.
func (s *RecordingSession) Close() {
	if s.owned != nil {
		s.owned.Close()
	}
}
