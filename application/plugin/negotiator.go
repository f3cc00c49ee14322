package plugin

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/reglet-dev/ukagaka-sdk/domain/entities"
	"github.com/reglet-dev/ukagaka-sdk/internal/abi"
	"github.com/reglet-dev/ukagaka-sdk/textcodec"
)

// loadCallback runs the user's load logic. err is non-nil only when the
// callback panicked.
type loadCallback func(ctx context.Context, modulePath string) (bool, error)

// Negotiator reconciles the legacy load and the modern loadu entry points
// into one logical initialization.
//
// Hosts that know loadu call it exclusively, hosts that do not call only
// load. A host probing both must see the load callback run exactly once,
// with the first call's outcome authoritative; loadu caches its outcome
// for that reason and load consults the cache before doing anything else.
type Negotiator struct {
	process *Process
	decoder *textcodec.Decoder
	logger  *slog.Logger
}

// NewNegotiator creates a Negotiator over a process context.
func NewNegotiator(process *Process, decoder *textcodec.Decoder, logger *slog.Logger) *Negotiator {
	return &Negotiator{process: process, decoder: decoder, logger: logger}
}

// State returns the current negotiation state.
func (n *Negotiator) State() entities.Resolution {
	return n.process.Resolution()
}

// Legacy runs the load steps on a buffer already taken from the host.
// A cached loadu outcome is returned without invoking the callback. The
// legacy outcome itself is never cached.
func (n *Negotiator) Legacy(ctx context.Context, raw abi.OwnedBuffer, load loadCallback) bool {
	if cached, ok := n.process.LoadOutcome(); ok {
		n.logger.Debug("sdk: load short-circuited by loadu outcome", "outcome", cached.Outcome)
		return cached.Outcome
	}

	path, err := n.decoder.DecodeLegacy(modulePathBytes(raw))
	if err != nil {
		return false
	}

	if err := n.process.RegisterModulePath(path); err != nil {
		n.logger.Error("sdk: failed to register module path", "entry", "load", "error", err)
		return false
	}

	ok, err := load(ctx, path)
	if err != nil {
		n.logger.Error("sdk: load callback failed", "entry", "load", "error", err)
	}
	n.process.markLegacy(ok)
	return ok
}

// Unicode runs the loadu steps on a buffer already taken from the host.
// The outcome is cached whether or not the callback succeeded; if the cache
// is already set the call fails, since the cache must stay trustworthy for
// Legacy's short-circuit.
func (n *Negotiator) Unicode(ctx context.Context, raw abi.OwnedBuffer, load loadCallback) bool {
	path, err := n.decoder.DecodeUTF8(modulePathBytes(raw))
	if err != nil {
		return false
	}

	if err := n.process.RegisterModulePath(path); err != nil {
		n.logger.Error("sdk: failed to register module path", "entry", "loadu", "error", err)
		return false
	}

	ok, err := load(ctx, path)
	if err != nil {
		n.logger.Error("sdk: load callback failed", "entry", "loadu", "error", err)
	}

	if err := n.process.CacheLoadOutcome(ok); err != nil {
		n.logger.Error("sdk: failed to cache loadu outcome", "error", err)
		return false
	}
	return ok
}

// modulePathBytes returns the path content without trailing NUL bytes.
// Hosts commonly count the C-string terminator in the length.
func modulePathBytes(raw abi.OwnedBuffer) []byte {
	return bytes.TrimRight(raw.Bytes(), "\x00")
}
