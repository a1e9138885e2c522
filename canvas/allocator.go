package canvas

import (
	"image"
	"sync"

	"github.com/jamesrr39/goutil/errorsx"
)

// Allocator hands out cleared canvases for render calls, and takes them back when the caller is done with them
type Allocator interface {
	Acquire(width, height int) (*Canvas, errorsx.Error)
	Release(c *Canvas)
}

// PoolAllocator reuses pixel buffers of the same size
type PoolAllocator struct {
	mu    sync.Mutex
	pools map[image.Point]*sync.Pool
}

var _ Allocator = &PoolAllocator{}

func NewPoolAllocator() *PoolAllocator {
	return &PoolAllocator{
		pools: make(map[image.Point]*sync.Pool),
	}
}

func (a *PoolAllocator) pool(width, height int) *sync.Pool {
	a.mu.Lock()
	defer a.mu.Unlock()

	size := image.Point{width, height}
	p, ok := a.pools[size]
	if !ok {
		p = &sync.Pool{
			New: func() interface{} {
				return New(width, height)
			},
		}
		a.pools[size] = p
	}
	return p
}

func (a *PoolAllocator) Acquire(width, height int) (*Canvas, errorsx.Error) {
	if width <= 0 || height <= 0 {
		return nil, errorsx.Errorf("invalid canvas size %dx%d", width, height)
	}

	cnv := a.pool(width, height).Get().(*Canvas)
	cnv.Clear()
	return cnv, nil
}

func (a *PoolAllocator) Release(c *Canvas) {
	if c == nil {
		return
	}
	a.pool(c.Width(), c.Height()).Put(c)
}
