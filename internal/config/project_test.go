package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectYAML = `project: infra
envFiles:
  - .env
state: {{ envOr "STATE_PATH" ".stackctl/state.json" }}
stacks:
  aws:
    config:
      account_id: "{{ envOr "AWS_ACCOUNT_ID" "" }}"
      sso_identity_store_id: d-9667059103
  vm-hcloud:
    config:
      network_ip_range: 10.0.0.0/16
      network_subnet_dmz_ip_range: 10.0.1.0/24
`

func writeProject(t *testing.T, envFile string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stackctl.yaml"), []byte(projectYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(envFile), 0o644))
	return filepath.Join(dir, "stackctl.yaml")
}

func TestLoad_RendersValuesFromEnvFiles(t *testing.T) {
	path := writeProject(t, "AWS_ACCOUNT_ID=123456789012\n")

	project, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "infra", project.Name)

	set := project.ConfigSet("aws")
	account, err := set.Require("account_id")
	require.NoError(t, err)
	assert.Equal(t, "123456789012", account)

	store, err := set.Require("sso_identity_store_id")
	require.NoError(t, err)
	assert.Equal(t, "d-9667059103", store)
}

func TestLoad_OverridesBeatFileValues(t *testing.T) {
	path := writeProject(t, "AWS_ACCOUNT_ID=123456789012\n")

	project, err := Load(path, Vars{"account_id": "999999999999"})
	require.NoError(t, err)

	account, err := project.ConfigSet("aws").Require("account_id")
	require.NoError(t, err)
	assert.Equal(t, "999999999999", account)
}

func TestLoad_EnvOrFallsBackToDefault(t *testing.T) {
	t.Setenv("AWS_ACCOUNT_ID", "")
	t.Setenv("STATE_PATH", "")
	path := writeProject(t, "")

	project, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, ".stackctl/state.json", project.StatePath())

	// Unset env and no env file: the key renders empty and Require fails.
	_, err = project.ConfigSet("aws").Require("account_id")
	assert.True(t, IsMissingConfiguration(err))
}

func TestLoad_UnknownStackGetsEmptySet(t *testing.T) {
	path := writeProject(t, "")

	project, err := Load(path, nil)
	require.NoError(t, err)

	_, err = project.ConfigSet("other").Require("anything")
	require.Error(t, err)

	var missing *MissingConfigurationError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "other", missing.Stack)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}
