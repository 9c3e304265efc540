package ffmpegmuxer

import "errors"

var (
	// ErrFFmpegNotFound is returned when no ffmpeg executable can be located.
	ErrFFmpegNotFound = errors.New("ffmpegmuxer: ffmpeg not found")

	// ErrSessionFinished is returned when frames are written after MarkFinished.
	ErrSessionFinished = errors.New("ffmpegmuxer: session already finished")

	// ErrNoFrames is returned when finalizing a session that encoded nothing.
	ErrNoFrames = errors.New("ffmpegmuxer: no frames to mux")
)
