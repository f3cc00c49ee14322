// Package plugintest runs a Go plugin in-process behind a simulated host.
//
// The harness plays the host's part of the ABI: it allocates request
// handles, calls the entry points through plugin.Adapter, reads and frees
// response handles, and keeps count of every release so tests can check
// that each handle crossed the boundary exactly once.
package plugintest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/reglet-dev/ukagaka-sdk/application/plugin"
	"github.com/reglet-dev/ukagaka-sdk/domain/entities"
	"github.com/reglet-dev/ukagaka-sdk/internal/abi"
	"github.com/reglet-dev/ukagaka-sdk/textcodec"
)

// Harness is an in-process host for one plugin.
type Harness struct {
	adapter *plugin.Adapter
	process *plugin.Process
	memory  *countingMemory
}

// Option configures a Harness.
type Option func(*harnessConfig)

type harnessConfig struct {
	codepage uint32
	logger   *slog.Logger
	limit    int
}

// WithCodepage sets the codepage the legacy load entry point decodes with.
// Defaults to 65001 (UTF-8).
func WithCodepage(cp uint32) Option {
	return func(c *harnessConfig) {
		c.codepage = cp
	}
}

// WithLogger sets the logger handed to the adapter.
func WithLogger(l *slog.Logger) Option {
	return func(c *harnessConfig) {
		c.logger = l
	}
}

// WithMemoryLimit caps the bytes the simulated host heap may hold.
func WithMemoryLimit(bytes int) Option {
	return func(c *harnessConfig) {
		c.limit = bytes
	}
}

// New creates a harness for p.
func New(p plugin.Plugin, opts ...Option) *Harness {
	cfg := harnessConfig{codepage: textcodec.CodepageUTF8}
	for _, opt := range opts {
		opt(&cfg)
	}

	var heapOpts []abi.HeapOption
	if cfg.limit > 0 {
		heapOpts = append(heapOpts, abi.WithMaxTotalAllocations(cfg.limit))
	}
	mem := newCountingMemory(abi.NewHeap(heapOpts...))
	process := plugin.NewProcess()

	adapterOpts := []plugin.Option{
		plugin.WithHostMemory(mem),
		plugin.WithCodepageSource(textcodec.StaticCodepage(cfg.codepage)),
		plugin.WithProcess(process),
	}
	if cfg.logger != nil {
		adapterOpts = append(adapterOpts, plugin.WithLogger(cfg.logger))
	}

	return &Harness{
		adapter: plugin.NewAdapter(p, adapterOpts...),
		process: process,
		memory:  mem,
	}
}

// Adapter returns the adapter under test.
func (h *Harness) Adapter() *plugin.Adapter {
	return h.adapter
}

// Process returns the plugin's process context.
func (h *Harness) Process() *plugin.Process {
	return h.process
}

// ModulePath returns the registered module path, if any.
func (h *Harness) ModulePath() (string, bool) {
	return h.process.ModulePath()
}

// Resolution reports which load entry point initialized the plugin.
func (h *Harness) Resolution() entities.Resolution {
	return h.process.Resolution()
}

// Load calls the legacy load entry point with raw path bytes.
func (h *Harness) Load(_ context.Context, raw []byte) (bool, error) {
	handle, err := h.hostAlloc(raw)
	if err != nil {
		return false, err
	}
	ok := h.adapter.Load(handle, int32(len(raw)))
	return ok, h.checkReleased(handle, "load")
}

// LoadU calls the loadu entry point with a UTF-8 path.
func (h *Harness) LoadU(_ context.Context, path string) (bool, error) {
	handle, err := h.hostAlloc([]byte(path))
	if err != nil {
		return false, err
	}
	ok := h.adapter.LoadU(handle, int32(len(path)))
	return ok, h.checkReleased(handle, "loadu")
}

// Request sends payload and returns a copy of the response, freeing the
// response handle as the host would.
func (h *Harness) Request(_ context.Context, payload []byte) ([]byte, error) {
	handle, err := h.hostAlloc(payload)
	if err != nil {
		return nil, err
	}

	length := int32(len(payload))
	out := h.adapter.Request(handle, &length)
	if err := h.checkReleased(handle, "request"); err != nil {
		return nil, err
	}
	if out.IsNull() {
		if length != 0 {
			return nil, fmt.Errorf("request: null handle with length %d", length)
		}
		return nil, nil
	}

	resp, err := h.memory.Read(out, int(length))
	if err != nil {
		return nil, fmt.Errorf("request: read response: %w", err)
	}
	if err := h.memory.hostFree(out); err != nil {
		return nil, fmt.Errorf("request: free response: %w", err)
	}
	return resp, nil
}

// Unload calls the unload entry point.
func (h *Harness) Unload(context.Context) (bool, error) {
	return h.adapter.Unload(), nil
}

// Outstanding returns the number of host blocks not yet freed.
func (h *Harness) Outstanding() int {
	n, _ := h.memory.Stats()
	return n
}

func (h *Harness) hostAlloc(data []byte) (entities.Handle, error) {
	handle, err := h.memory.Alloc(len(data))
	if err != nil {
		return 0, err
	}
	if len(data) > 0 {
		if err := h.memory.Write(handle, data); err != nil {
			return 0, err
		}
	}
	return handle, nil
}

// checkReleased enforces the ownership contract: a handle given to an
// entry point is freed by the plugin side exactly once.
func (h *Harness) checkReleased(handle entities.Handle, entry string) error {
	if handle.IsNull() {
		return nil
	}
	if n := h.memory.releases(handle); n != 1 {
		return fmt.Errorf("%s: handle 0x%x released %d times, want 1", entry, uintptr(handle), n)
	}
	h.memory.forget(handle)
	return nil
}

// countingMemory counts frees made by the plugin side. Frees the harness
// makes as the host go through hostFree and are not counted.
type countingMemory struct {
	*abi.Heap
	mu    sync.Mutex
	frees map[entities.Handle]int
}

func newCountingMemory(heap *abi.Heap) *countingMemory {
	return &countingMemory{Heap: heap, frees: make(map[entities.Handle]int)}
}

func (m *countingMemory) Free(h entities.Handle) error {
	m.mu.Lock()
	m.frees[h]++
	m.mu.Unlock()
	return m.Heap.Free(h)
}

func (m *countingMemory) hostFree(h entities.Handle) error {
	return m.Heap.Free(h)
}

func (m *countingMemory) releases(h entities.Handle) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frees[h]
}

// forget drops the count for a handle whose address the heap may reuse.
func (m *countingMemory) forget(h entities.Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.frees, h)
}
