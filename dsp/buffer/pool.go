package buffer

import "sync"

// Pool recycles float64 blocks of one fixed size to reduce GC pressure
// in capture loops.
type Pool struct {
	size int
	pool sync.Pool
}

// NewPool returns a Pool handing out blocks of blockSize samples.
func NewPool(blockSize int) (*Pool, error) {
	if blockSize <= 0 {
		return nil, ErrInvalidSize
	}

	p := &Pool{size: blockSize}
	p.pool.New = func() any {
		s := make([]float64, blockSize)
		return &s
	}

	return p, nil
}

// BlockSize returns the length of the blocks the pool hands out.
func (p *Pool) BlockSize() int {
	return p.size
}

// Get returns a block of BlockSize samples. Contents are unspecified;
// callers are expected to overwrite the whole block.
func (p *Pool) Get() []float64 {
	return *p.pool.Get().(*[]float64)
}

// Put returns a block to the pool for reuse. Blocks with a smaller
// capacity than the pool's size are discarded. The caller must not use
// the block after calling Put.
func (p *Pool) Put(b []float64) {
	if cap(b) < p.size {
		return
	}

	b = b[:p.size]
	p.pool.Put(&b)
}
