package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	path := filepath.Join(dir, "fleet_recorder.cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	writeConfig(t, dir, `{}`)

	require.NoError(t, Load(dir))

	assert.Equal(t, "info", GetString("logLevel"))
	assert.Equal(t, "Patrol", GetString("defaultTag"))
	assert.Equal(t, "./fleetlogs", GetString("logsDir"))
	assert.Equal(t, "http://localhost:5000", GetString("api.serverUrl"))

	sc := GetStorageConfig()
	assert.Equal(t, "memory", sc.Type)
	assert.Equal(t, "./recordings", sc.Memory.OutputDir)
	assert.True(t, sc.Memory.CompressOutput)
	assert.Equal(t, 3*time.Minute, sc.SQLite.DumpInterval)

	oc := GetOTelConfig()
	assert.False(t, oc.Enabled)
	assert.Equal(t, "fleet-recorder", oc.ServiceName)
	assert.Equal(t, 5*time.Second, oc.BatchTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	writeConfig(t, dir, `{
		"logLevel": "debug",
		"reports": {"root": "/srv/reports"},
		"storage": {
			"type": "sqlite",
			"sqlite": {"dumpInterval": "30s", "dumpPath": "/tmp/fleet.db"}
		},
		"otel": {"enabled": true, "endpoint": "collector:4318"}
	}`)

	require.NoError(t, Load(dir))

	assert.Equal(t, "debug", GetString("logLevel"))
	assert.Equal(t, "/srv/reports", GetString("reports.root"))

	sc := GetStorageConfig()
	assert.Equal(t, "sqlite", sc.Type)
	assert.Equal(t, 30*time.Second, sc.SQLite.DumpInterval)
	assert.Equal(t, "/tmp/fleet.db", sc.SQLite.DumpPath)

	oc := GetOTelConfig()
	assert.True(t, oc.Enabled)
	assert.Equal(t, "collector:4318", oc.Endpoint)
}

func TestLoad_MissingFile(t *testing.T) {
	viper.Reset()
	err := Load(t.TempDir())
	assert.Error(t, err)
}
