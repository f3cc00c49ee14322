package errutil

import (
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorCode fails t unless err is an oops error carrying code.
// It returns the oops error for further checks.
func AssertErrorCode(t testing.TB, err error, code string) oops.OopsError {
	t.Helper()
	oopsErr := requireOops(t, err)
	assert.Equal(t, code, oopsErr.Code(), "oops code of %v", err)
	return oopsErr
}

// AssertErrorContext fails t unless err carries key=value in its oops context.
func AssertErrorContext(t testing.TB, err error, key string, value any) {
	t.Helper()
	got, ok := requireOops(t, err).Context()[key]
	require.Truef(t, ok, "oops context of %v has no %q", err, key)
	assert.Equal(t, value, got)
}

func requireOops(t testing.TB, err error) oops.OopsError {
	t.Helper()
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.Truef(t, ok, "expected oops error, got %T: %v", err, err)
	return oopsErr
}
