package plugin

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/ukagaka-sdk/domain/entities"
	"github.com/reglet-dev/ukagaka-sdk/internal/abi"
	"github.com/reglet-dev/ukagaka-sdk/textcodec"
)

type countingLoad struct {
	calls  int
	paths  []string
	result bool
}

func (c *countingLoad) fn(_ context.Context, path string) (bool, error) {
	c.calls++
	c.paths = append(c.paths, path)
	return c.result, nil
}

func newTestNegotiator(cp uint32) (*Negotiator, *Process, *bytes.Buffer) {
	var logs bytes.Buffer
	logger := bufferLogger(&logs)
	process := NewProcess()
	decoder := textcodec.NewDecoder(textcodec.StaticCodepage(cp), textcodec.WithLogger(logger))
	return NewNegotiator(process, decoder, logger), process, &logs
}

func raw(b []byte) abi.OwnedBuffer {
	return abi.NewOwnedBuffer(b)
}

func TestNegotiator_LegacyDecodesWithCodepage(t *testing.T) {
	n, process, _ := newTestNegotiator(932)
	load := &countingLoad{result: true}

	// "C:\ゴースト" in Shift_JIS.
	sjis, err := textcodec.Encode(`C:\ゴースト`, 932)
	require.NoError(t, err)

	assert.True(t, n.Legacy(context.Background(), raw(sjis), load.fn))
	assert.Equal(t, []string{`C:\ゴースト`}, load.paths)

	path, ok := process.ModulePath()
	require.True(t, ok)
	assert.Equal(t, `C:\ゴースト`, path)

	_, cached := process.LoadOutcome()
	assert.False(t, cached, "legacy outcome is never cached")
	assert.Equal(t, entities.ResolvedBy(entities.LoadSourceLegacy, true), n.State())
}

func TestNegotiator_LegacyDecodeFailureSkipsCallback(t *testing.T) {
	n, process, logs := newTestNegotiator(932)
	load := &countingLoad{result: true}

	// 0x81 0x20 is not a valid Shift_JIS sequence.
	assert.False(t, n.Legacy(context.Background(), raw([]byte{0x81, 0x20}), load.fn))
	assert.Zero(t, load.calls)

	_, ok := process.ModulePath()
	assert.False(t, ok)
	assert.Contains(t, logs.String(), "failed to decode")
}

func TestNegotiator_LegacyUnsupportedCodepage(t *testing.T) {
	n, _, logs := newTestNegotiator(12345)
	load := &countingLoad{result: true}

	assert.False(t, n.Legacy(context.Background(), raw([]byte("C:\\p")), load.fn))
	assert.Zero(t, load.calls)
	assert.Contains(t, logs.String(), "unsupported OEM codepage")
}

func TestNegotiator_UnicodeRejectsInvalidUTF8(t *testing.T) {
	n, process, _ := newTestNegotiator(932)
	load := &countingLoad{result: true}

	assert.False(t, n.Unicode(context.Background(), raw([]byte{0x43, 0xff}), load.fn))
	assert.Zero(t, load.calls)

	_, cached := process.LoadOutcome()
	assert.False(t, cached, "nothing is cached when decoding fails")
	assert.Equal(t, entities.NotYetResolved, n.State())
}

func TestNegotiator_UnicodeDoesNotFallBackToCodepage(t *testing.T) {
	n, _, _ := newTestNegotiator(932)
	load := &countingLoad{result: true}

	sjis, err := textcodec.Encode("ゴースト", 932)
	require.NoError(t, err)
	assert.False(t, n.Unicode(context.Background(), raw(sjis), load.fn))
	assert.Zero(t, load.calls)
}

func TestNegotiator_Idempotent(t *testing.T) {
	for _, result := range []bool{true, false} {
		n, _, _ := newTestNegotiator(65001)
		load := &countingLoad{result: result}

		assert.Equal(t, result, n.Unicode(context.Background(), raw([]byte("/a")), load.fn))
		for range 3 {
			assert.Equal(t, result, n.Legacy(context.Background(), raw([]byte("/b")), load.fn))
		}
		assert.Equal(t, 1, load.calls)
	}
}

func TestNegotiator_LegacyThenUnicodeConflicts(t *testing.T) {
	n, process, logs := newTestNegotiator(65001)
	load := &countingLoad{result: true}

	assert.True(t, n.Legacy(context.Background(), raw([]byte("/first")), load.fn))
	assert.False(t, n.Unicode(context.Background(), raw([]byte("/second")), load.fn))
	assert.Equal(t, 1, load.calls)

	path, _ := process.ModulePath()
	assert.Equal(t, "/first", path, "first registration is kept")
	assert.Contains(t, logs.String(), "module_path already set")
}

func TestNegotiator_LegacyTwiceConflicts(t *testing.T) {
	n, _, _ := newTestNegotiator(65001)
	load := &countingLoad{result: true}

	assert.True(t, n.Legacy(context.Background(), raw([]byte("/a")), load.fn))
	assert.False(t, n.Legacy(context.Background(), raw([]byte("/a")), load.fn))
	assert.Equal(t, 1, load.calls)
}

func TestNegotiator_UnicodeCacheConflictReportsFailure(t *testing.T) {
	n, process, _ := newTestNegotiator(65001)
	require.NoError(t, process.CacheLoadOutcome(false))
	load := &countingLoad{result: true}

	assert.False(t, n.Unicode(context.Background(), raw([]byte("/a")), load.fn),
		"a cache conflict is a failure even though the callback succeeded")
	assert.Equal(t, 1, load.calls)

	outcome, _ := process.LoadOutcome()
	assert.False(t, outcome.Outcome, "existing cache entry is untouched")
}

func TestNegotiator_TrailingNULTrimmed(t *testing.T) {
	n, process, _ := newTestNegotiator(65001)
	load := &countingLoad{result: true}

	assert.True(t, n.Unicode(context.Background(), raw([]byte("/plug/\x00")), load.fn))
	path, _ := process.ModulePath()
	assert.Equal(t, "/plug/", path)
}
