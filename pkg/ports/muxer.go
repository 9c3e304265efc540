package ports

import (
	"image"
)

// MediaTime is a rational presentation timestamp: Value counts ticks of a
// clock running at Timescale ticks per second. Frame n of an f fps track is
// MediaTime{Value: n, Timescale: f}.
type MediaTime struct {
	Value     int64
	Timescale int32
}

// Seconds returns the timestamp as floating-point seconds.
func (t MediaTime) Seconds() float64 {
	if t.Timescale == 0 {
		return 0
	}
	return float64(t.Value) / float64(t.Timescale)
}

// MediaWriter abstracts the capability to create a single-video-track
// container at a file path, provided by the host media layer.
type MediaWriter interface {
	// OpenSession creates a container at path for a video track with the
	// given pixel dimensions and frame rate. The file only becomes valid
	// after the session's Finalize succeeds.
	OpenSession(path string, width, height, fps int) (WriterSession, error)
}

// WriterSession is one container being written. All methods are called from
// a single goroutine; implementations do not need internal synchronization
// beyond what their own background work requires.
type WriterSession interface {
	// ReadyForMoreData reports whether the encoder can accept another frame
	// right now. This is the admission-control signal: callers drop frames
	// while it is false.
	ReadyForMoreData() bool

	// WriteFrame submits one frame at the given presentation time. The frame
	// pixels are consumed before WriteFrame returns; the caller may reuse
	// the buffer afterwards.
	WriteFrame(frame *image.RGBA, pts MediaTime) error

	// MarkFinished signals that no more frames will be written.
	MarkFinished()

	// Finalize flushes encoder state and closes the container. It returns
	// only once the output file is valid and playable.
	Finalize() error

	// Release frees session resources. Safe to call after Finalize or after
	// an error; idempotent.
	Release()
}
