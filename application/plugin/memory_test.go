package plugin

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/ukagaka-sdk/domain/entities"
	"github.com/reglet-dev/ukagaka-sdk/internal/abi"
)

// trackingMemory records every Free so tests can check the release
// discipline of each entry point.
type trackingMemory struct {
	*abi.Heap
	mu    sync.Mutex
	frees map[entities.Handle]int
}

func newTrackingMemory() *trackingMemory {
	return &trackingMemory{Heap: abi.NewHeap(), frees: make(map[entities.Handle]int)}
}

func (m *trackingMemory) Free(h entities.Handle) error {
	m.mu.Lock()
	m.frees[h]++
	m.mu.Unlock()
	return m.Heap.Free(h)
}

func (m *trackingMemory) freed(h entities.Handle) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frees[h]
}

// hostAlloc plays the host: allocate a handle and fill it.
func (m *trackingMemory) hostAlloc(t *testing.T, data []byte) entities.Handle {
	t.Helper()
	h, err := m.Alloc(len(data))
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, m.Write(h, data))
	}
	return h
}

// recorder counts callback invocations.
type recorder struct {
	mu       sync.Mutex
	loads    []string
	requests [][]byte
	unloads  int

	loadResult   bool
	response     []byte
	unloadResult bool
}

func newRecorder() *recorder {
	return &recorder{loadResult: true, unloadResult: true}
}

func (r *recorder) Load(_ context.Context, modulePath string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads = append(r.loads, modulePath)
	return r.loadResult
}

func (r *recorder) Request(_ context.Context, req Request) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req.Bytes())
	return r.response
}

func (r *recorder) Unload(context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unloads++
	return r.unloadResult
}

func (r *recorder) loadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.loads)
}

// bufferLogger returns a logger writing text records to buf.
func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
