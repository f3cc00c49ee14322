package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()
	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"load", "request", "run", "config-schema", "scenario-schema"})
}

func TestConfigSchemaCmd(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config-schema"})
	require.NoError(t, cmd.Execute())

	var schema map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &schema))
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "plugin")
	assert.Contains(t, props, "module_path")
	assert.Equal(t, "ukagaka-probe config", schema["title"])
}

func TestScenarioSchemaCmd(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"scenario-schema"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "steps")
}

func TestRunCmd_MissingScenario(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", "does-not-exist.yaml"})
	assert.Error(t, cmd.Execute())
}
