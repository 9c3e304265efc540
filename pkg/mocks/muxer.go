package mocks

import (
	"image"
	"sync"

	"github.com/user/viewcast/pkg/ports"
)

// MediaWriter is a mock implementation of ports.MediaWriter. By default it
// hands out WriterSessions that accept everything.
type MediaWriter struct {
	OpenSessionFunc func(path string, width, height, fps int) (ports.WriterSession, error)

	mu       sync.Mutex
	Sessions []*WriterSession
	Opens    []OpenSessionCall
}

// OpenSessionCall records a call to OpenSession.
type OpenSessionCall struct {
	Path   string
	Width  int
	Height int
	FPS    int
}

func (m *MediaWriter) OpenSession(path string, width, height, fps int) (ports.WriterSession, error) {
	m.mu.Lock()
	m.Opens = append(m.Opens, OpenSessionCall{Path: path, Width: width, Height: height, FPS: fps})
	m.mu.Unlock()

	if m.OpenSessionFunc != nil {
		return m.OpenSessionFunc(path, width, height, fps)
	}

	s := &WriterSession{}
	m.mu.Lock()
	m.Sessions = append(m.Sessions, s)
	m.mu.Unlock()
	return s, nil
}

// OpenCount returns the number of OpenSession calls so far.
func (m *MediaWriter) OpenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Opens)
}

// LastSession returns the most recently opened mock session, or nil.
func (m *MediaWriter) LastSession() *WriterSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sessions) == 0 {
		return nil
	}
	return m.Sessions[len(m.Sessions)-1]
}

// Ensure MediaWriter implements ports.MediaWriter
var _ ports.MediaWriter = (*MediaWriter)(nil)

// WriterSession is a mock implementation of ports.WriterSession that records
// submitted frames and lifecycle calls.
type WriterSession struct {
	ReadyFunc      func() bool
	WriteFrameFunc func(frame *image.RGBA, pts ports.MediaTime) error
	FinalizeFunc   func() error

	mu           sync.Mutex
	Frames       []FrameCall
	Finished     bool
	Finalized    bool
	ReleaseCalls int
}

// FrameCall records a call to WriteFrame.
type FrameCall struct {
	PTS    ports.MediaTime
	Width  int
	Height int
}

func (s *WriterSession) ReadyForMoreData() bool {
	if s.ReadyFunc != nil {
		return s.ReadyFunc()
	}
	return true
}

func (s *WriterSession) WriteFrame(frame *image.RGBA, pts ports.MediaTime) error {
	if s.WriteFrameFunc != nil {
		if err := s.WriteFrameFunc(frame, pts); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Frames = append(s.Frames, FrameCall{
		PTS:    pts,
		Width:  frame.Rect.Dx(),
		Height: frame.Rect.Dy(),
	})
	return nil
}

func (s *WriterSession) MarkFinished() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Finished = true
}

func (s *WriterSession) Finalize() error {
	s.mu.Lock()
	s.Finalized = true
	s.mu.Unlock()
	if s.FinalizeFunc != nil {
		return s.FinalizeFunc()
	}
	return nil
}

func (s *WriterSession) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ReleaseCalls++
}

// FrameCount returns the number of admitted frames.
func (s *WriterSession) FrameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Frames)
}

// FrameAt returns the i-th admitted frame call.
func (s *WriterSession) FrameAt(i int) FrameCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Frames[i]
}

// Ensure WriterSession implements ports.WriterSession
var _ ports.WriterSession = (*WriterSession)(nil)
