// Package abi converts between host-owned memory handles and owned Go byte
// slices. It is the only package that knows handles are addresses.
package abi

import (
	"sync"

	"github.com/reglet-dev/ukagaka-sdk/domain/entities"
	"github.com/reglet-dev/ukagaka-sdk/domain/errors"
)

// DefaultMaxTotalAllocations is the default cap on bytes held by a Heap.
const DefaultMaxTotalAllocations = 100 * 1024 * 1024 // 100 MB

// HeapOption configures a Heap.
type HeapOption func(*heapConfig)

type heapConfig struct {
	maxTotal int
}

// WithMaxTotalAllocations caps the bytes a Heap may hold at once.
// Zero or negative limits are ignored.
func WithMaxTotalAllocations(limit int) HeapOption {
	return func(c *heapConfig) {
		if limit > 0 {
			c.maxTotal = limit
		}
	}
}

// Heap is a tracked allocator that hands out Go-backed blocks as handles.
// It keeps a reference to every allocated slice so the GC cannot collect it,
// effectively pinning the memory until Free. Unlike a raw allocator it
// rejects unknown handles, which turns double frees into errors.
//
// Heap is the host allocator on wasip1 (the host reaches it through the
// allocate/deallocate exports) and the allocator used by tests.
type Heap struct {
	blocks         map[entities.Handle][]byte // handle -> slice reference
	cfg            heapConfig
	totalAllocated int
	mu             sync.Mutex
}

// NewHeap creates an empty Heap.
func NewHeap(opts ...HeapOption) *Heap {
	cfg := heapConfig{maxTotal: DefaultMaxTotalAllocations}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Heap{
		blocks: make(map[entities.Handle][]byte),
		cfg:    cfg,
	}
}

// Configure applies options to an existing Heap.
func (m *Heap) Configure(opts ...HeapOption) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, opt := range opts {
		opt(&m.cfg)
	}
}

// Alloc reserves size bytes. A zero size returns the null handle.
func (m *Heap) Alloc(size int) (entities.Handle, error) {
	if size < 0 {
		return 0, &errors.HandleError{Op: "allocate", Err: errors.ErrInvalidLength}
	}
	if size == 0 {
		return 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.totalAllocated+size > m.cfg.maxTotal {
		return 0, &errors.MemoryError{
			Requested: size,
			Current:   m.totalAllocated,
			Limit:     m.cfg.maxTotal,
		}
	}

	buf := make([]byte, size)
	h := addressOf(buf)

	m.blocks[h] = buf
	m.totalAllocated += size

	return h, nil
}

// Free releases a block. Freeing the null handle is a no-op; freeing an
// unknown or already freed handle returns errors.ErrUnknownHandle.
func (m *Heap) Free(h entities.Handle) error {
	if h.IsNull() {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	buf, ok := m.blocks[h]
	if !ok {
		return &errors.HandleError{Op: "release", Handle: uintptr(h), Err: errors.ErrUnknownHandle}
	}

	// Use the stored length for accounting, not anything the caller claims.
	delete(m.blocks, h)
	m.totalAllocated -= len(buf)
	if m.totalAllocated < 0 {
		m.totalAllocated = 0
	}
	return nil
}

// Read copies n bytes from the block at h.
func (m *Heap) Read(h entities.Handle, n int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	buf, err := m.block(h, n, "copy")
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, buf[:n])
	return out, nil
}

// Write copies data into the block at h.
func (m *Heap) Write(h entities.Handle, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	buf, err := m.block(h, len(data), "write")
	if err != nil {
		return err
	}
	copy(buf, data)
	return nil
}

// block returns the slice behind h if it holds at least n bytes.
// Must be called with m.mu held.
func (m *Heap) block(h entities.Handle, n int, op string) ([]byte, error) {
	if n < 0 {
		return nil, &errors.HandleError{Op: op, Handle: uintptr(h), Err: errors.ErrInvalidLength}
	}
	if h.IsNull() {
		if n == 0 {
			return nil, nil
		}
		return nil, &errors.HandleError{Op: op, Err: errors.ErrNullHandle}
	}
	buf, ok := m.blocks[h]
	if !ok {
		return nil, &errors.HandleError{Op: op, Handle: uintptr(h), Err: errors.ErrUnknownHandle}
	}
	if n > len(buf) {
		return nil, &errors.HandleError{Op: op, Handle: uintptr(h), Err: errors.ErrInvalidLength}
	}
	return buf, nil
}

// Stats returns the number of live blocks and the bytes they hold.
func (m *Heap) Stats() (count, totalBytes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blocks), m.totalAllocated
}

// FreeAll drops every tracked block and resets the allocation total.
// Handles issued before the call become unknown to the heap.
func (m *Heap) FreeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for h := range m.blocks {
		delete(m.blocks, h)
	}
	m.totalAllocated = 0
}

var defaultHeap = NewHeap()

// Default returns the process heap used by the wasip1 exports.
func Default() *Heap {
	return defaultHeap
}

// Configure applies options to the process heap.
func Configure(opts ...HeapOption) {
	defaultHeap.Configure(opts...)
}
