// Package errutil helps tools built on the SDK report errors.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"

	"github.com/reglet-dev/ukagaka-sdk/domain/errors"
)

// LogError logs an error with structured context.
// oops errors contribute their code, hint and context; SDK domain errors
// contribute their type and code; anything else is logged as a string.
func LogError(logger *slog.Logger, msg string, err error) {
	attrs := []any{"error", err.Error()}

	if oopsErr, ok := oops.AsOops(err); ok {
		if code := oopsErr.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
		if hint := oopsErr.Hint(); hint != "" {
			attrs = append(attrs, "hint", hint)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
	}

	if detail := errors.ToErrorDetail(err); detail != nil && detail.Type != "internal" {
		attrs = append(attrs, "type", detail.Type)
		if detail.Code != "" {
			attrs = append(attrs, "detail_code", detail.Code)
		}
	}

	logger.Error(msg, attrs...)
}
