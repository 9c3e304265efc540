package recorder

import (
	"context"
	"sync"
	"time"

	"github.com/user/viewcast/pkg/ports"
)

// ProgressFunc maps elapsed recording time to a progress value reported on
// every tick.
type ProgressFunc func(elapsed time.Duration) float64

// PlaceholderProgress always reports zero. It is the default policy,
// matching sources whose own progress is a stub; callers that know the
// target duration can supply a real fraction instead.
func PlaceholderProgress(time.Duration) float64 { return 0 }

// TickInterval derives the frame timer period from a frame rate as 1000/fps
// milliseconds, truncated to an integer. The truncation loses precision for
// non-divisor rates (60 fps runs at a 16ms period, 62.5 fps actual cadence);
// that cadence is a preserved accuracy gap, not a target to fix. Rates
// outside [1, 1000] clamp to the nearest bound.
func TickInterval(fps int) time.Duration {
	if fps < 1 {
		fps = 1
	}
	ms := 1000 / fps
	if ms < 1 {
		ms = 1
	}
	return time.Duration(ms) * time.Millisecond
}

// FrameScheduler owns the repeating frame timer for one recording run. Each
// tick rasterizes the surface and forwards the snapshot to the encoding
// session; stopping the scheduler is what drives session finalization.
type FrameScheduler struct {
	surface  ports.Surface
	enc      *EncodingSession
	logger   ports.Logger
	interval time.Duration

	callbacks  Executor
	progress   ProgressFunc
	onProgress func(float64)
	onResult   func(path string, err error)

	ctx    context.Context
	cancel context.CancelFunc

	startedAt time.Time
	stopOnce  sync.Once
	stopped   chan struct{}
}

// newFrameScheduler wires a scheduler to an encoding session. The terminal
// result callback is delivered on the callbacks executor, never from the
// encoding worker.
func newFrameScheduler(surface ports.Surface, enc *EncodingSession, logger ports.Logger, callbacks Executor, interval time.Duration, progress ProgressFunc, onProgress func(float64), onResult func(string, error)) *FrameScheduler {
	if progress == nil {
		progress = PlaceholderProgress
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &FrameScheduler{
		surface:    surface,
		enc:        enc,
		logger:     logger.WithComponent("scheduler"),
		interval:   interval,
		callbacks:  callbacks,
		progress:   progress,
		onProgress: onProgress,
		onResult:   onResult,
		ctx:        ctx,
		cancel:     cancel,
		startedAt:  time.Now(),
		stopped:    make(chan struct{}),
	}
}

// Start begins the repeating timer.
func (s *FrameScheduler) Start() {
	s.logger.Debug("Frame timer started: %s interval", s.interval)
	go s.run()
}

func (s *FrameScheduler) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopped:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick performs one capture cycle: report progress, rasterize, enqueue the
// snapshot for encoding. Capture problems make the tick a no-op; the next
// tick simply resumes.
func (s *FrameScheduler) tick() {
	if s.onProgress != nil {
		v := s.progress(time.Since(s.startedAt))
		cb := s.onProgress
		s.callbacks.Async(func() { cb(v) })
	}

	if !s.surface.Attached() {
		return
	}

	img, err := s.surface.Rasterize(s.ctx)
	if err != nil {
		s.logger.Debug("Rasterization failed, skipping tick: %s", err)
		return
	}
	if img == nil {
		return
	}

	// Enqueue only; the encoder interaction runs later on its own worker.
	s.enc.WriteFrame(img)
}

// Stop cancels the timer and drives encoding-session finalization. It is
// idempotent and safe from any state; no tick fires after it returns, though
// a tick already in flight completes. The terminal callback fires exactly
// once per start/stop cycle, after all previously queued frame writes have
// been processed.
func (s *FrameScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopped)
		s.cancel()
		s.logger.Debug("Frame timer stopped, finalizing")

		path := s.enc.OutputPath()
		s.enc.Finish(func(err error) {
			s.callbacks.Async(func() {
				if s.onResult == nil {
					return
				}
				if err != nil {
					s.onResult("", err)
					return
				}
				s.onResult(path, nil)
			})
		})
	})
}
