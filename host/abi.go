package host

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrNoLoadU is returned by LoadU when the module does not export loadu.
var ErrNoLoadU = errors.New("module does not export loadu")

// Load calls the legacy load entry point with raw path bytes. Ownership of
// the handle passes to the plugin.
func (p *PluginInstance) Load(ctx context.Context, raw []byte) (bool, error) {
	return p.callLoad(ctx, "load", raw)
}

// LoadU calls the loadu entry point with a UTF-8 path.
func (p *PluginInstance) LoadU(ctx context.Context, path string) (bool, error) {
	if !p.HasExport("loadu") {
		return false, ErrNoLoadU
	}
	return p.callLoad(ctx, "loadu", []byte(path))
}

func (p *PluginInstance) callLoad(ctx context.Context, name string, raw []byte) (bool, error) {
	ptr, err := p.hostAlloc(ctx, raw)
	if err != nil {
		return false, err
	}
	results, err := p.module.ExportedFunction(name).Call(ctx, uint64(ptr), uint64(len(raw)))
	if err != nil {
		return false, fmt.Errorf("%s: %w", name, err)
	}
	return api32(results) != 0, nil
}

// Request sends payload and returns a copy of the response. The response
// handle is freed through deallocate, as a host must.
func (p *PluginInstance) Request(ctx context.Context, payload []byte) ([]byte, error) {
	ptr, err := p.hostAlloc(ctx, payload)
	if err != nil {
		return nil, err
	}

	var cell [4]byte
	binary.LittleEndian.PutUint32(cell[:], uint32(len(payload)))
	cellPtr, err := p.hostAlloc(ctx, cell[:])
	if err != nil {
		return nil, err
	}
	defer p.hostFree(ctx, cellPtr, 4)

	results, err := p.module.ExportedFunction("request").Call(ctx, uint64(ptr), uint64(cellPtr))
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	out := api32(results)

	n, ok := p.module.Memory().ReadUint32Le(cellPtr)
	if !ok {
		return nil, fmt.Errorf("request: length cell at 0x%x out of range", cellPtr)
	}
	if out == 0 || n == 0 {
		return nil, nil
	}

	view, ok := p.module.Memory().Read(out, n)
	if !ok {
		return nil, fmt.Errorf("request: response 0x%x+%d out of range", out, n)
	}
	resp := make([]byte, n)
	copy(resp, view)
	p.hostFree(ctx, out, n)
	return resp, nil
}

// Unload calls the unload entry point.
func (p *PluginInstance) Unload(ctx context.Context) (bool, error) {
	results, err := p.module.ExportedFunction("unload").Call(ctx)
	if err != nil {
		return false, fmt.Errorf("unload: %w", err)
	}
	return api32(results) != 0, nil
}

// hostAlloc allocates a guest block and fills it. Empty data is passed as
// the null handle.
func (p *PluginInstance) hostAlloc(ctx context.Context, data []byte) (uint32, error) {
	if len(data) == 0 {
		return 0, nil
	}
	results, err := p.module.ExportedFunction("allocate").Call(ctx, uint64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to allocate in guest: %w", err)
	}
	ptr := api32(results)
	if ptr == 0 {
		return 0, fmt.Errorf("guest refused to allocate %d bytes", len(data))
	}
	if !p.module.Memory().Write(ptr, data) {
		return 0, fmt.Errorf("failed to write %d bytes at 0x%x", len(data), ptr)
	}
	return ptr, nil
}

func (p *PluginInstance) hostFree(ctx context.Context, ptr, size uint32) {
	if ptr == 0 {
		return
	}
	if _, err := p.module.ExportedFunction("deallocate").Call(ctx, uint64(ptr), uint64(size)); err != nil {
		p.logger.Warn("host: deallocate failed", "ptr", ptr, "size", size, "error", err)
	}
}

func api32(results []uint64) uint32 {
	if len(results) == 0 {
		return 0
	}
	return uint32(results[0])
}
