package host

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wippyai/wasm-runtime/wat"
)

// echoPlugin is a minimal guest: a bump allocator, deallocate that only
// counts, load/loadu that count calls and remember the path length, and a
// request that echoes its payload into a fresh block.
const echoPlugin = `
(module
	(memory (export "memory") 1)
	(global $bump (mut i32) (i32.const 1024))
	(global $frees (export "frees") (mut i32) (i32.const 0))
	(global $loads (export "loads") (mut i32) (i32.const 0))
	(global $pathlen (export "pathlen") (mut i32) (i32.const 0))

	(func $alloc (export "allocate") (param $size i32) (result i32)
		(local $ptr i32)
		global.get $bump
		local.set $ptr
		global.get $bump
		local.get $size
		i32.add
		global.set $bump
		local.get $ptr
	)

	(func (export "deallocate") (param $ptr i32) (param $size i32)
		global.get $frees
		i32.const 1
		i32.add
		global.set $frees
	)

	(func $load (export "load") (param $ptr i32) (param $len i32) (result i32)
		global.get $loads
		i32.const 1
		i32.add
		global.set $loads
		local.get $len
		global.set $pathlen
		i32.const 1
	)

	(func (export "loadu") (param $ptr i32) (param $len i32) (result i32)
		local.get $ptr
		local.get $len
		call $load
	)

	(func (export "request") (param $ptr i32) (param $lenp i32) (result i32)
		(local $len i32)
		(local $out i32)
		local.get $lenp
		i32.load
		local.set $len
		local.get $len
		call $alloc
		local.set $out
		local.get $out
		local.get $ptr
		local.get $len
		memory.copy
		local.get $out
	)

	(func (export "unload") (result i32)
		i32.const 1
	)
)`

// legacyOnlyPlugin has no loadu export.
const legacyOnlyPlugin = `
(module
	(memory (export "memory") 1)
	(func (export "allocate") (param i32) (result i32) i32.const 1024)
	(func (export "deallocate") (param i32 i32))
	(func (export "load") (param i32 i32) (result i32) i32.const 0)
	(func (export "request") (param i32 i32) (result i32) i32.const 0)
	(func (export "unload") (result i32) i32.const 1)
)`

func compileWAT(t *testing.T, src string) []byte {
	t.Helper()
	wasm, err := wat.Compile(src)
	require.NoError(t, err)
	return wasm
}

func loadFixture(t *testing.T, src string) (*Executor, *PluginInstance) {
	t.Helper()
	ctx := context.Background()

	e, err := NewExecutor(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close(ctx) })

	p, err := e.LoadPlugin(ctx, compileWAT(t, src))
	require.NoError(t, err)
	return e, p
}

func global(t *testing.T, p *PluginInstance, name string) uint32 {
	t.Helper()
	g := p.module.ExportedGlobal(name)
	require.NotNil(t, g, "global %s", name)
	return uint32(g.Get())
}
