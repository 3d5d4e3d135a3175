package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTOML(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "evmrpcctl.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadParsesRPCURLAndNamespace(t *testing.T) {
	path := writeTOML(t, `
rpc_url = "wss://node.example/ws"
metrics_namespace = "evmrpc"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "wss://node.example/ws", cfg.RPCURL)
	assert.Equal(t, "evmrpc", cfg.MetricsNamespace)
}

func TestWSConfigParsesDurationsAndLeavesUnsetAtZero(t *testing.T) {
	cfg := Config{WebSocket: WebSocketConfig{
		PingInterval:  "15s",
		MaxReconnects: 5,
	}}
	ws, err := cfg.WSConfig()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, ws.PingInterval)
	assert.Equal(t, time.Duration(0), ws.PingTimeout)
	assert.Equal(t, 5, ws.MaxReconnects)
}

func TestWSConfigRejectsInvalidDuration(t *testing.T) {
	cfg := Config{WebSocket: WebSocketConfig{PingInterval: "not-a-duration"}}
	_, err := cfg.WSConfig()
	assert.Error(t, err)
}

func TestPendingConfigFallsBackToDefaults(t *testing.T) {
	cfg := Config{}
	pc, err := cfg.PendingConfig()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), pc.Confirmations)
	assert.Equal(t, 10, pc.Retries)
}

func TestPendingConfigOverridesDefaults(t *testing.T) {
	cfg := Config{Pending: PendingConfig{
		Confirmations: 12,
		Retries:       3,
		RetryInterval: "2s",
	}}
	pc, err := cfg.PendingConfig()
	require.NoError(t, err)
	assert.Equal(t, uint64(12), pc.Confirmations)
	assert.Equal(t, 3, pc.Retries)
	assert.Equal(t, 2*time.Second, pc.RetryInterval)
}
