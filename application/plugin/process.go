package plugin

import (
	"context"

	"github.com/reglet-dev/ukagaka-sdk/domain/entities"
	"github.com/reglet-dev/ukagaka-sdk/internal/writeonce"
)

// Process is the process-lifetime state shared by all entry points: the
// module path registry and the loadu outcome cache. Both are write-once;
// a second Set is reported as a *errors.ConflictError and leaves the first
// value in place.
type Process struct {
	path    *writeonce.Cell[string]
	outcome *writeonce.Cell[entities.Resolution]
	legacy  *writeonce.Cell[entities.Resolution]
}

// NewProcess creates an empty process context.
func NewProcess() *Process {
	return &Process{
		path:    writeonce.New[string]("module_path"),
		outcome: writeonce.New[entities.Resolution]("load_outcome"),
		legacy:  writeonce.New[entities.Resolution]("legacy_load"),
	}
}

// ModulePath returns the registered module path, if any.
func (p *Process) ModulePath() (string, bool) {
	return p.path.Get()
}

// RegisterModulePath stores the module path. It fails if a path is already set.
func (p *Process) RegisterModulePath(path string) error {
	return p.path.Set(path)
}

// LoadOutcome returns the cached loadu outcome, if loadu has completed.
func (p *Process) LoadOutcome() (entities.Resolution, bool) {
	return p.outcome.Get()
}

// CacheLoadOutcome records the loadu outcome. It fails if one is already cached.
func (p *Process) CacheLoadOutcome(ok bool) error {
	return p.outcome.Set(entities.ResolvedBy(entities.LoadSourceUnicode, ok))
}

// Resolution reports which load entry point committed first.
// A cached loadu outcome is authoritative. A legacy load is reported for
// diagnostics only; it never short-circuits later calls.
func (p *Process) Resolution() entities.Resolution {
	if r, ok := p.outcome.Get(); ok {
		return r
	}
	if r, ok := p.legacy.Get(); ok {
		return r
	}
	return entities.NotYetResolved
}

func (p *Process) markLegacy(ok bool) {
	// Only reachable once: a second legacy load fails path registration.
	_ = p.legacy.Set(entities.ResolvedBy(entities.LoadSourceLegacy, ok))
}

type processKey struct{}

// contextWithProcess returns a context carrying p.
func contextWithProcess(ctx context.Context, p *Process) context.Context {
	return context.WithValue(ctx, processKey{}, p)
}

// ProcessFromContext returns the process context the adapter passed to a
// callback.
func ProcessFromContext(ctx context.Context) (*Process, bool) {
	p, ok := ctx.Value(processKey{}).(*Process)
	return p, ok
}

// ModulePathFromContext returns the registered module path from a callback
// context. Request callbacks use it to locate files next to the plugin.
func ModulePathFromContext(ctx context.Context) (string, bool) {
	p, ok := ProcessFromContext(ctx)
	if !ok {
		return "", false
	}
	return p.ModulePath()
}
