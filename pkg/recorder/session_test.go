package recorder

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/user/viewcast/pkg/adapters/logger"
	"github.com/user/viewcast/pkg/mocks"
	"github.com/user/viewcast/pkg/ports"
)

// resultRecorder collects terminal callbacks for verification.
type resultRecorder struct {
	mu    sync.Mutex
	paths []string
	errs  []error
	ch    chan struct{}
}

func newResultRecorder() *resultRecorder {
	return &resultRecorder{ch: make(chan struct{}, 8)}
}

func (r *resultRecorder) callback(path string, err error) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.errs = append(r.errs, err)
	r.mu.Unlock()
	r.ch <- struct{}{}
}

func (r *resultRecorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.ch:
	case <-time.After(5 * time.Second):
		t.Fatal("terminal callback never fired")
	}
}

func (r *resultRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

func (r *resultRecorder) last(t *testing.T) (string, error) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.errs) == 0 {
		t.Fatal("no terminal callback recorded")
	}
	return r.paths[len(r.paths)-1], r.errs[len(r.errs)-1]
}

func newTestSession(writer *mocks.MediaWriter) *RecordingSession {
	return New(writer, logger.NewNoop())
}

func TestRecordingSession_RecordsFrames(t *testing.T) {
	writer := &mocks.MediaWriter{}
	session := newTestSession(writer)
	defer session.Close()
	session.SetOutputPath("out.mp4")
	session.SetFramesPerSecond(200)

	surface := &mocks.Surface{}
	results := newResultRecorder()

	if err := session.Start(surface, StartOptions{OnResult: results.callback}); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Give the 5ms timer room to admit several frames.
	time.Sleep(100 * time.Millisecond)
	session.Stop()
	results.wait(t)

	path, err := results.last(t)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if path != "out.mp4" {
		t.Errorf("expected output path in result, got %q", path)
	}

	mock := writer.LastSession()
	if mock == nil {
		t.Fatal("expected a writer session")
	}
	n := mock.FrameCount()
	if n < 1 {
		t.Fatal("expected at least one admitted frame")
	}
	for i := 0; i < n; i++ {
		pts := mock.FrameAt(i).PTS
		if pts.Value != int64(i) || pts.Timescale != 200 {
			t.Fatalf("frame %d: expected pts %d/200, got %d/%d", i, i, pts.Value, pts.Timescale)
		}
	}
}

func TestRecordingSession_StopBeforeAnyFrame(t *testing.T) {
	writer := &mocks.MediaWriter{}
	session := newTestSession(writer)
	defer session.Close()
	session.SetOutputPath("out.mp4")
	session.SetFramesPerSecond(1) // 1000ms interval: no tick fires

	surface := &mocks.Surface{}
	results := newResultRecorder()

	if err := session.Start(surface, StartOptions{OnResult: results.callback}); err != nil {
		t.Fatalf("start: %v", err)
	}
	session.Stop()
	results.wait(t)

	_, err := results.last(t)
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("expected ErrCancelled, got %v", err)
	}

	// Exactly once: a second Stop must not produce another callback.
	session.Stop()
	time.Sleep(50 * time.Millisecond)
	if got := results.count(); got != 1 {
		t.Errorf("expected exactly one terminal callback, got %d", got)
	}
}

func TestRecordingSession_EmptyOutputPathNeverCreatesFile(t *testing.T) {
	writer := &mocks.MediaWriter{}
	session := newTestSession(writer)
	defer session.Close()
	session.SetFramesPerSecond(100)

	surface := &mocks.Surface{}
	results := newResultRecorder()

	if err := session.Start(surface, StartOptions{OnResult: results.callback}); err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(80 * time.Millisecond) // frames are produced and dropped
	session.Stop()
	results.wait(t)

	_, err := results.last(t)
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("expected a cancelled terminal state, got %v", err)
	}
	if writer.OpenCount() != 0 {
		t.Errorf("expected no container without an output path, got %d opens", writer.OpenCount())
	}
}

func TestRecordingSession_RejectsConcurrentStart(t *testing.T) {
	writer := &mocks.MediaWriter{}
	session := newTestSession(writer)
	defer session.Close()
	session.SetOutputPath("out.mp4")
	session.SetFramesPerSecond(100)

	surface := &mocks.Surface{}
	results := newResultRecorder()

	if err := session.Start(surface, StartOptions{OnResult: results.callback}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := session.Start(surface, StartOptions{}); !errors.Is(err, ErrAlreadyRecording) {
		t.Errorf("expected ErrAlreadyRecording, got %v", err)
	}
	if !session.Recording() {
		t.Error("expected session to report recording")
	}

	session.Stop()
	results.wait(t)
	if session.Recording() {
		t.Error("expected session idle after terminal callback")
	}
}

func TestRecordingSession_RestartResetsEncoderState(t *testing.T) {
	writer := &mocks.MediaWriter{}
	session := newTestSession(writer)
	defer session.Close()
	session.SetOutputPath("out.mp4")
	session.SetFramesPerSecond(200)

	surface := &mocks.Surface{}

	for run := 0; run < 2; run++ {
		results := newResultRecorder()
		if err := session.Start(surface, StartOptions{OnResult: results.callback}); err != nil {
			t.Fatalf("run %d start: %v", run, err)
		}
		time.Sleep(60 * time.Millisecond)
		session.Stop()
		results.wait(t)

		if _, err := results.last(t); err != nil {
			t.Fatalf("run %d: expected success, got %v", run, err)
		}
	}

	// Each run creates an independent encoder with a fresh counter.
	if got := writer.OpenCount(); got != 2 {
		t.Fatalf("expected 2 writer sessions, got %d", got)
	}
	for run, mock := range writer.Sessions {
		if mock.FrameCount() == 0 {
			t.Fatalf("run %d admitted no frames", run)
		}
		if pts := mock.FrameAt(0).PTS; pts.Value != 0 {
			t.Errorf("run %d: expected counter reset to zero, got first pts %d", run, pts.Value)
		}
	}
}

func TestRecordingSession_DetachedSurfaceSkipsTicks(t *testing.T) {
	writer := &mocks.MediaWriter{}
	session := newTestSession(writer)
	defer session.Close()
	session.SetOutputPath("out.mp4")
	session.SetFramesPerSecond(200)

	surface := &mocks.Surface{
		AttachedFunc: func() bool { return false },
	}
	results := newResultRecorder()

	if err := session.Start(surface, StartOptions{OnResult: results.callback}); err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(60 * time.Millisecond)
	session.Stop()
	results.wait(t)

	if surface.Rasterized() != 0 {
		t.Errorf("expected no rasterization of a detached surface, got %d", surface.Rasterized())
	}
	if _, err := results.last(t); !errors.Is(err, ErrCancelled) {
		t.Errorf("expected ErrCancelled with no admitted frames, got %v", err)
	}
}

func TestRecordingSession_RasterizationFailureDegradesCadence(t *testing.T) {
	writer := &mocks.MediaWriter{}
	session := newTestSession(writer)
	defer session.Close()
	session.SetOutputPath("out.mp4")
	session.SetFramesPerSecond(200)

	var calls atomic.Int32
	surface := &mocks.Surface{
		RasterizeFunc: func(ctx context.Context) (image.Image, error) {
			// Every other tick fails; the run must survive.
			if calls.Add(1)%2 == 0 {
				return nil, fmt.Errorf("surface torn down")
			}
			return image.NewRGBA(image.Rect(0, 0, 64, 48)), nil
		},
	}
	results := newResultRecorder()

	if err := session.Start(surface, StartOptions{OnResult: results.callback}); err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	session.Stop()
	results.wait(t)

	if _, err := results.last(t); err != nil {
		t.Fatalf("expected success despite per-tick failures, got %v", err)
	}
	mock := writer.LastSession()
	if mock == nil || mock.FrameCount() == 0 {
		t.Fatal("expected surviving ticks to admit frames")
	}
}

func TestRecordingSession_ProgressPolicy(t *testing.T) {
	writer := &mocks.MediaWriter{}
	session := newTestSession(writer)
	defer session.Close()
	session.SetOutputPath("out.mp4")
	session.SetFramesPerSecond(200)

	var mu sync.Mutex
	var values []float64
	results := newResultRecorder()

	err := session.Start(&mocks.Surface{}, StartOptions{
		Progress: func(elapsed time.Duration) float64 { return 0.5 },
		OnProgress: func(v float64) {
			mu.Lock()
			values = append(values, v)
			mu.Unlock()
		},
		OnResult: results.callback,
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(60 * time.Millisecond)
	session.Stop()
	results.wait(t)

	mu.Lock()
	defer mu.Unlock()
	if len(values) == 0 {
		t.Fatal("expected progress callbacks")
	}
	for _, v := range values {
		if v != 0.5 {
			t.Fatalf("expected configured progress value 0.5, got %f", v)
		}
	}
}

func TestRecordingSession_ResultAfterQueuedWritesDrain(t *testing.T) {
	var writes atomic.Int32
	var writesAtResult atomic.Int32

	writer := &mocks.MediaWriter{}
	slowSession := &mocks.WriterSession{
		WriteFrameFunc: func(frame *image.RGBA, pts ports.MediaTime) error {
			time.Sleep(5 * time.Millisecond)
			writes.Add(1)
			return nil
		},
	}
	writer.OpenSessionFunc = func(path string, width, height, fps int) (ports.WriterSession, error) {
		return slowSession, nil
	}

	session := newTestSession(writer)
	defer session.Close()
	session.SetOutputPath("out.mp4")
	session.SetFramesPerSecond(200)

	results := newResultRecorder()
	err := session.Start(&mocks.Surface{}, StartOptions{
		OnResult: func(path string, err error) {
			writesAtResult.Store(writes.Load())
			results.callback(path, err)
		},
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(80 * time.Millisecond)
	session.Stop()
	results.wait(t)

	// Every write queued before stop must be processed before the result.
	if writesAtResult.Load() != writes.Load() {
		t.Errorf("result fired before writes drained: %d at result, %d total",
			writesAtResult.Load(), writes.Load())
	}
	if slowSession.FrameCount() == 0 {
		t.Fatal("expected admitted frames")
	}
}

func TestRecordingSession_FPSChangeAppliesToNextRun(t *testing.T) {
	writer := &mocks.MediaWriter{}
	session := newTestSession(writer)
	defer session.Close()
	session.SetOutputPath("out.mp4")
	session.SetFramesPerSecond(100)

	if got := session.FramesPerSecond(); got != 100 {
		t.Fatalf("expected fps 100, got %d", got)
	}

	// Non-positive values are ignored.
	session.SetFramesPerSecond(0)
	session.SetFramesPerSecond(-3)
	if got := session.FramesPerSecond(); got != 100 {
		t.Errorf("expected fps unchanged at 100, got %d", got)
	}

	results := newResultRecorder()
	if err := session.Start(&mocks.Surface{}, StartOptions{OnResult: results.callback}); err != nil {
		t.Fatalf("start: %v", err)
	}
	session.SetFramesPerSecond(50) // effective next run
	time.Sleep(60 * time.Millisecond)
	session.Stop()
	results.wait(t)

	// The running encoder kept its setup rate.
	if writer.Opens[0].FPS != 100 {
		t.Errorf("expected running encoder at 100 fps, got %d", writer.Opens[0].FPS)
	}
}
