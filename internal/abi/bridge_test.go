package abi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/ukagaka-sdk/domain/entities"
	sdkerrors "github.com/reglet-dev/ukagaka-sdk/domain/errors"
)

// countingMemory records how often each handle is freed.
type countingMemory struct {
	*Heap
	frees map[entities.Handle]int
}

func newCountingMemory() *countingMemory {
	return &countingMemory{Heap: NewHeap(), frees: make(map[entities.Handle]int)}
}

func (m *countingMemory) Free(h entities.Handle) error {
	m.frees[h]++
	return m.Heap.Free(h)
}

// hostHandle simulates the host allocating and filling a request handle.
func hostHandle(t *testing.T, mem *Heap, data []byte) entities.Handle {
	t.Helper()
	h, err := mem.Alloc(len(data))
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, mem.Write(h, data))
	}
	return h
}

func TestBridge_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "ascii", data: []byte("SHIORI/3.0 200 OK\r\n\r\n")},
		{name: "binary with zeros", data: []byte{0x00, 0xff, 0x00, 0x7f}},
		{name: "single byte", data: []byte{0x41}},
		{name: "shift_jis bytes", data: []byte{0x82, 0xa0, 0x82, 0xa2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bridge := NewBridge(NewHeap())

			h, n, err := bridge.FromOwned(tt.data)
			require.NoError(t, err)
			assert.Equal(t, int32(len(tt.data)), n, "length is reported out-of-band and exact")

			buf, err := bridge.ToOwned(h, int(n))
			require.NoError(t, err)
			assert.Equal(t, tt.data, buf.Bytes(), "content must round-trip")
			assert.Equal(t, append(append([]byte{}, tt.data...), 0), buf.CString(), "ToOwned appends one NUL")
			assert.Equal(t, len(tt.data), buf.Len())

			require.NoError(t, bridge.Release(h))
		})
	}
}

func TestBridge_FromOwnedAddsNoTerminator(t *testing.T) {
	heap := NewHeap()
	bridge := NewBridge(heap)

	h, n, err := bridge.FromOwned([]byte{0x58, 0x59, 0x00})
	require.NoError(t, err)
	assert.Equal(t, int32(3), n)

	_, total := heap.Stats()
	assert.Equal(t, 3, total, "block is sized exactly to the data")

	got, err := heap.Read(h, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x58, 0x59, 0x00}, got)
}

func TestBridge_FromOwnedEmpty(t *testing.T) {
	bridge := NewBridge(NewHeap())

	h, n, err := bridge.FromOwned(nil)
	require.NoError(t, err)
	assert.Zero(t, h)
	assert.Zero(t, n)
}

func TestBridge_ToOwnedEmpty(t *testing.T) {
	bridge := NewBridge(NewHeap())

	buf, err := bridge.ToOwned(0, 0)
	require.NoError(t, err)
	assert.Empty(t, buf.Bytes())
	assert.Equal(t, []byte{0}, buf.CString())
}

func TestBridge_ToOwnedRejectsBadInput(t *testing.T) {
	bridge := NewBridge(NewHeap())

	_, err := bridge.ToOwned(0, 4)
	assert.True(t, errors.Is(err, sdkerrors.ErrNullHandle))

	_, err = bridge.ToOwned(0x1000, -1)
	assert.True(t, errors.Is(err, sdkerrors.ErrInvalidLength))
}

func TestBridge_ToOwnedDoesNotAlias(t *testing.T) {
	heap := NewHeap()
	bridge := NewBridge(heap)
	h := hostHandle(t, heap, []byte("abc"))

	buf, err := bridge.ToOwned(h, 3)
	require.NoError(t, err)
	require.NoError(t, heap.Write(h, []byte("xyz")))

	assert.Equal(t, "abc", buf.String(), "owned buffer must not alias host memory")
}

func TestBridge_TakeReleasesExactlyOnce(t *testing.T) {
	mem := newCountingMemory()
	bridge := NewBridge(mem)
	h := hostHandle(t, mem.Heap, []byte("request"))

	buf, err := bridge.Take(h, 7)
	require.NoError(t, err)
	assert.Equal(t, "request", buf.String())
	assert.Equal(t, 1, mem.frees[h])

	count, _ := mem.Stats()
	assert.Zero(t, count)
}

func TestBridge_TakeReleasesEvenWhenCopyFails(t *testing.T) {
	mem := newCountingMemory()
	bridge := NewBridge(mem)
	h := hostHandle(t, mem.Heap, []byte("abc"))

	_, err := bridge.Take(h, 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sdkerrors.ErrInvalidLength))
	assert.Equal(t, 1, mem.frees[h], "handle is released exactly once")
}

func TestBridge_DoubleReleaseIsReportedByHeap(t *testing.T) {
	heap := NewHeap()
	bridge := NewBridge(heap)
	h := hostHandle(t, heap, []byte("abc"))

	require.NoError(t, bridge.Release(h))
	assert.True(t, errors.Is(bridge.Release(h), sdkerrors.ErrUnknownHandle))
}
