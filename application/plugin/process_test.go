package plugin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/ukagaka-sdk/domain/entities"
	sdkerrors "github.com/reglet-dev/ukagaka-sdk/domain/errors"
)

func TestProcess_ModulePathWriteOnce(t *testing.T) {
	p := NewProcess()

	_, ok := p.ModulePath()
	assert.False(t, ok)

	require.NoError(t, p.RegisterModulePath("/a"))
	err := p.RegisterModulePath("/b")

	var conflict *sdkerrors.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "module_path", conflict.Registry)
	assert.Equal(t, "/a", conflict.Existing)
	assert.Equal(t, "/b", conflict.Rejected)

	path, _ := p.ModulePath()
	assert.Equal(t, "/a", path)
}

func TestProcess_LoadOutcomeWriteOnce(t *testing.T) {
	p := NewProcess()
	assert.Equal(t, entities.NotYetResolved, p.Resolution())

	require.NoError(t, p.CacheLoadOutcome(true))
	assert.Error(t, p.CacheLoadOutcome(false))

	outcome, ok := p.LoadOutcome()
	require.True(t, ok)
	assert.True(t, outcome.Outcome)
	assert.Equal(t, entities.LoadSourceUnicode, outcome.Source)
}

func TestProcess_ResolutionPrefersCachedOutcome(t *testing.T) {
	p := NewProcess()
	p.markLegacy(false)
	assert.Equal(t, entities.ResolvedBy(entities.LoadSourceLegacy, false), p.Resolution())

	require.NoError(t, p.CacheLoadOutcome(true))
	assert.Equal(t, entities.ResolvedBy(entities.LoadSourceUnicode, true), p.Resolution())
}

func TestProcessFromContext(t *testing.T) {
	_, ok := ProcessFromContext(context.Background())
	assert.False(t, ok)

	_, ok = ModulePathFromContext(context.Background())
	assert.False(t, ok)

	p := NewProcess()
	require.NoError(t, p.RegisterModulePath("/x"))
	ctx := contextWithProcess(context.Background(), p)

	got, ok := ProcessFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, p, got)

	path, ok := ModulePathFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "/x", path)
}

func TestFuncs_Defaults(t *testing.T) {
	var f Funcs
	ctx := context.Background()
	assert.True(t, f.Load(ctx, "/p"))
	assert.Nil(t, f.Request(ctx, Request{}))
	assert.True(t, f.Unload(ctx))
}
