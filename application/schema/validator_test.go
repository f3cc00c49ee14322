package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_ValidateYAML(t *testing.T) {
	v, err := ForType(probeDoc{})
	require.NoError(t, err)

	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name: "valid",
			doc:  "name: ok\nsteps:\n  - call: loadu\n    path: /p\n  - call: unload\n",
		},
		{
			name:    "unknown call",
			doc:     "steps:\n  - call: reload\n",
			wantErr: "schema validation failed",
		},
		{
			name:    "unknown field",
			doc:     "steps:\n  - call: load\n    pth: /p\n",
			wantErr: "schema validation failed",
		},
		{
			name:    "missing steps",
			doc:     "name: x\n",
			wantErr: "schema validation failed",
		},
		{
			name:    "empty steps",
			doc:     "steps: []\n",
			wantErr: "schema validation failed",
		},
		{
			name:    "empty document",
			doc:     "  \n",
			wantErr: "document is empty",
		},
		{
			name:    "bad yaml",
			doc:     "steps: [",
			wantErr: "invalid YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateYAML([]byte(tt.doc))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewValidator_InvalidSchema(t *testing.T) {
	_, err := NewValidator([]byte("{"))
	assert.Error(t, err)

	_, err = NewValidator([]byte(`{"type": 12}`))
	assert.Error(t, err)
}
