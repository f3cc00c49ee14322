package plugintest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/ukagaka-sdk/application/plugin"
	"github.com/reglet-dev/ukagaka-sdk/domain/entities"
	"github.com/reglet-dev/ukagaka-sdk/host"
)

type counter struct {
	loads    int
	requests int
	path     string
}

func (c *counter) plugin(response []byte) plugin.Funcs {
	return plugin.Funcs{
		LoadFunc: func(_ context.Context, path string) bool {
			c.loads++
			c.path = path
			return true
		},
		RequestFunc: func(context.Context, plugin.Request) []byte {
			c.requests++
			return response
		},
	}
}

func TestHarness_EndToEnd(t *testing.T) {
	ctx := context.Background()
	c := &counter{}
	h := New(c.plugin([]byte{0x58, 0x59, 0x00}))

	ok, err := h.LoadU(ctx, `C:\plug\mod.dll`)
	require.NoError(t, err)
	assert.True(t, ok)

	path, ok := h.ModulePath()
	require.True(t, ok)
	assert.Equal(t, `C:\plug\mod.dll`, path)
	assert.Equal(t, entities.ResolvedBy(entities.LoadSourceUnicode, true), h.Resolution())

	ok, err = h.Load(ctx, []byte("D:\\other\\"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, c.loads, "load callback is not invoked again")

	resp, err := h.Request(ctx, []byte{0x41, 0x42})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x58, 0x59, 0x00}, resp)

	ok, err = h.Unload(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Zero(t, h.Outstanding(), "every block was freed by one side or the other")
}

func TestHarness_LegacyCodepage(t *testing.T) {
	c := &counter{}
	h := New(c.plugin(nil), WithCodepage(932))

	ok, err := h.Load(context.Background(), []byte{0x43, 0x3a, 0x5c, 0x83, 0x53, 0x81, 0x5b, 0x83, 0x58, 0x83, 0x67})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `C:\ゴースト`, c.path)
}

func TestHarness_EmptyResponse(t *testing.T) {
	h := New(plugin.Funcs{})

	resp, err := h.Request(context.Background(), []byte("x"))
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.Zero(t, h.Outstanding())
}

func TestHarness_MemoryLimit(t *testing.T) {
	h := New(plugin.Funcs{}, WithMemoryLimit(4))

	_, err := h.Request(context.Background(), []byte("too large"))
	assert.Error(t, err)
}

func TestHarness_RunsScenario(t *testing.T) {
	c := &counter{}
	h := New(c.plugin([]byte("SHIORI/3.0 204 No Content\r\n\r\n")))

	s, err := host.LoadScenario(strings.NewReader(`
name: in-process
steps:
  - call: loadu
    path: /ghost/plug/
    expect: {ok: true}
  - call: load
    path: /ghost/plug/
    expect: {ok: true}
  - call: request
    payload: "GET Version SHIORI/3.0\r\n\r\n"
    expect: {contains: "204"}
  - call: unload
    expect: {ok: true}
`))
	require.NoError(t, err)

	report, err := s.Run(context.Background(), h)
	require.NoError(t, err)
	assert.True(t, report.Passed(), "%+v", report.Steps)
	assert.Equal(t, 1, c.loads)
	assert.Equal(t, 1, c.requests)
}
