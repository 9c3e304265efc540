package recorder

import (
	"image"
	"sync"
)

// defaultPoolSize is the number of pixel buffers kept per encoding session.
// One pending frame plus headroom for the buffer being drawn and the one the
// encoder is still consuming.
const defaultPoolSize = 3

// PixelBuffer is a pooled, encoder-compatible frame buffer. Pixels are only
// addressable between Lock and Unlock; Release returns the buffer to its
// pool.
type PixelBuffer struct {
	rgba   *image.RGBA
	pool   *BufferPool
	locked bool
}

// Width returns the declared pixel width of the buffer.
func (b *PixelBuffer) Width() int { return b.rgba.Rect.Dx() }

// Height returns the declared pixel height of the buffer.
func (b *PixelBuffer) Height() int { return b.rgba.Rect.Dy() }

// Lock grants direct access to the buffer's pixel memory. Hold the lock only
// for the duration of drawing.
func (b *PixelBuffer) Lock() *image.RGBA {
	b.locked = true
	return b.rgba
}

// Unlock ends direct pixel access. Idempotent.
func (b *PixelBuffer) Unlock() {
	b.locked = false
}

// Release returns the buffer to its pool. The buffer must not be used after
// Release.
func (b *PixelBuffer) Release() {
	if b.pool != nil {
		b.pool.put(b)
	}
}

// BufferPool is a fixed-capacity allocator of PixelBuffers with identical
// dimensions. Its lifetime is bound to one encoder input: created together,
// released together. It is touched only from the encoding session's serial
// worker, so Acquire never blocks and never races.
type BufferPool struct {
	free chan *PixelBuffer

	mu     sync.Mutex
	closed bool
}

// NewBufferPool allocates a pool of size buffers of width x height pixels.
// A non-positive size falls back to defaultPoolSize.
func NewBufferPool(width, height, size int) *BufferPool {
	if size <= 0 {
		size = defaultPoolSize
	}
	p := &BufferPool{
		free: make(chan *PixelBuffer, size),
	}
	for i := 0; i < size; i++ {
		p.free <- &PixelBuffer{
			rgba: image.NewRGBA(image.Rect(0, 0, width, height)),
			pool: p,
		}
	}
	return p
}

// Acquire takes a free buffer from the pool without blocking. It returns
// ErrPoolExhausted when every buffer is in use and ErrPoolClosed after Close.
func (p *BufferPool) Acquire() (*PixelBuffer, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, ErrPoolClosed
	}

	select {
	case b := <-p.free:
		return b, nil
	default:
		return nil, ErrPoolExhausted
	}
}

// Close releases the pool. Buffers returned after Close are discarded.
func (p *BufferPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for {
		select {
		case <-p.free:
		default:
			return
		}
	}
}

func (p *BufferPool) put(b *PixelBuffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	b.locked = false
	select {
	case p.free <- b:
	default:
		// Double release; drop rather than grow the pool.
	}
}
