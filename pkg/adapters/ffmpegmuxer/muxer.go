// Package ffmpegmuxer implements the media writer capability on an external
// ffmpeg process: raw RGBA frames are piped to libx264 and the resulting
// H.264 elementary stream is muxed into a fragmented MP4 with mp4ff.
package ffmpegmuxer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/user/viewcast/pkg/ports"
)

// frameBacklog is the number of frames the feeder pipeline may hold before
// the session reports not-ready. Small on purpose: readiness is the
// admission-control signal and a deep queue would defeat it.
const frameBacklog = 2

// Options configures encoding quality.
type Options struct {
	Quality    int    // x264 CRF 0-51 (lower is higher quality); 0 uses the default
	Bitrate    int    // Target bitrate in kbps; 0 leaves it to CRF
	FFmpegPath string // Explicit ffmpeg path; empty resolves via FindFFmpeg
}

// Writer implements ports.MediaWriter using ffmpeg.
type Writer struct {
	fs     ports.FileSystem
	logger ports.Logger
	opts   Options
}

// New creates a Writer. The finalized MP4 is written through fs.
func New(fs ports.FileSystem, logger ports.Logger, opts Options) *Writer {
	return &Writer{
		fs:     fs,
		logger: logger.WithComponent("ffmpeg"),
		opts:   opts,
	}
}

// OpenSession starts an ffmpeg process encoding to a temporary elementary
// stream. The container at path becomes valid only after Finalize.
func (w *Writer) OpenSession(path string, width, height, fps int) (ports.WriterSession, error) {
	ffmpegPath, err := FindFFmpeg(w.opts.FFmpegPath)
	if err != nil {
		return nil, err
	}

	tmpFile, err := os.CreateTemp("", "viewcast_*.h264")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tmpFile.Name()
	tmpFile.Close()

	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", fmt.Sprintf("%d", fps),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", "fast",
		"-pix_fmt", "yuv420p",
		// Access-unit delimiters let the muxer split frames; no B-frames
		// keeps decode order equal to presentation order.
		"-x264-params", "aud=1:bframes=0",
	}

	crf := w.opts.Quality
	if crf <= 0 || crf > 51 {
		crf = 23
	}
	args = append(args, "-crf", fmt.Sprintf("%d", crf))

	if w.opts.Bitrate > 0 {
		args = append(args, "-b:v", fmt.Sprintf("%dk", w.opts.Bitrate))
	}

	args = append(args, "-f", "h264", tempPath)

	cmd := exec.Command(ffmpegPath, args...)
	s := &session{
		writer:   w,
		path:     path,
		width:    width,
		height:   height,
		fps:      fps,
		cmd:      cmd,
		tempPath: tempPath,
		frames:   make(chan []byte, frameBacklog),
		feedDone: make(chan struct{}),
	}
	cmd.Stderr = &s.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		os.Remove(tempPath)
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	s.stdin = stdin

	w.logger.Debug("Starting ffmpeg: %s", ffmpegPath)
	if err := cmd.Start(); err != nil {
		os.Remove(tempPath)
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	go s.feed()
	return s, nil
}

// Ensure Writer implements ports.MediaWriter
var _ ports.MediaWriter = (*Writer)(nil)

// session is one container being written.
type session struct {
	writer *Writer

	path   string
	width  int
	height int
	fps    int

	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stderr   bytes.Buffer
	tempPath string

	frames   chan []byte
	feedDone chan struct{}

	mu         sync.Mutex
	feedErr    error
	finished   bool
	released   bool
	frameCount int
}

// feed streams queued frames into ffmpeg's stdin until the channel closes.
func (s *session) feed() {
	defer close(s.feedDone)
	for data := range s.frames {
		s.mu.Lock()
		failed := s.feedErr != nil
		s.mu.Unlock()
		if failed {
			continue
		}
		if _, err := s.stdin.Write(data); err != nil {
			s.mu.Lock()
			s.feedErr = err
			s.mu.Unlock()
		}
	}
}

// ReadyForMoreData reports whether another frame can be accepted without
// stalling the encoder pipeline.
func (s *session) ReadyForMoreData() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished || s.feedErr != nil {
		return false
	}
	return len(s.frames) < cap(s.frames)
}

// WriteFrame queues one RGBA frame. The pixel data is copied before
// WriteFrame returns, so the caller may reuse the buffer. The pts is implied
// by submission order: libx264 paces frames by the input frame rate.
func (s *session) WriteFrame(frame *image.RGBA, pts ports.MediaTime) error {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return ErrSessionFinished
	}
	if err := s.feedErr; err != nil {
		s.mu.Unlock()
		return fmt.Errorf("feed ffmpeg: %w", err)
	}
	s.frameCount++
	s.mu.Unlock()

	data := make([]byte, len(frame.Pix))
	copy(data, frame.Pix)
	s.frames <- data
	return nil
}

// MarkFinished signals end of input. Idempotent.
func (s *session) MarkFinished() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.finished = true
	close(s.frames)
}

// Finalize drains the feeder, waits for ffmpeg, muxes the elementary stream
// into an MP4, and writes it to the output path.
func (s *session) Finalize() error {
	s.MarkFinished()
	<-s.feedDone

	if err := s.stdin.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("close ffmpeg stdin: %w", err)
	}
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w\nstderr: %s", err, s.stderr.String())
	}

	s.mu.Lock()
	count := s.frameCount
	s.mu.Unlock()
	s.writer.logger.Debug("ffmpeg finished: %d frames", count)

	stream, err := os.ReadFile(s.tempPath)
	if err != nil {
		return fmt.Errorf("read elementary stream: %w", err)
	}
	os.Remove(s.tempPath)
	s.tempPath = ""

	mp4Data, err := buildMP4(stream, s.width, s.height, s.fps)
	if err != nil {
		return fmt.Errorf("mux mp4: %w", err)
	}
	if err := s.writer.fs.WriteFile(s.path, mp4Data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	s.writer.logger.Debug("Muxed MP4: %d bytes", len(mp4Data))
	return nil
}

// Release frees session resources. Safe after Finalize or after an error.
func (s *session) Release() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	s.mu.Unlock()

	s.MarkFinished()
	if s.cmd.Process != nil && (s.cmd.ProcessState == nil || !s.cmd.ProcessState.Exited()) {
		s.cmd.Process.Kill()
	}
	if s.tempPath != "" {
		os.Remove(s.tempPath)
	}
}

// Ensure session implements ports.WriterSession
var _ ports.WriterSession = (*session)(nil)
