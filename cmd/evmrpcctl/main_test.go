package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func newTestContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("rpc-url", "", "")
	set.String("config", "", "")
	set.Uint64("confirmations", 0, "")
	require.NoError(t, set.Parse(args))
	return cli.NewContext(&cli.App{}, set, nil)
}

func TestParseBlockNumberOrTagAcceptsTags(t *testing.T) {
	for _, tag := range []string{"latest", "pending", "earliest", "safe", "finalized"} {
		b, err := parseBlockNumberOrTag(tag)
		require.NoError(t, err)
		assert.Equal(t, tag, b.Tag)
		assert.Nil(t, b.Number)
	}
}

func TestParseBlockNumberOrTagAcceptsHexNumber(t *testing.T) {
	b, err := parseBlockNumberOrTag("0x2a")
	require.NoError(t, err)
	require.NotNil(t, b.Number)
	assert.Equal(t, uint64(42), *b.Number)
}

func TestParseBlockNumberOrTagRejectsGarbage(t *testing.T) {
	_, err := parseBlockNumberOrTag("not-a-block")
	assert.Error(t, err)
}

func TestNewClientPicksTransportByScheme(t *testing.T) {
	cl, closeFn, err := newClient(context.Background(), "http://127.0.0.1:0")
	require.NoError(t, err)
	require.NotNil(t, cl)
	closeFn()
}

func TestResolveSettingsRequiresRPCURL(t *testing.T) {
	_, err := resolveSettings(newTestContext(t))
	assert.Error(t, err)
}

func TestResolveSettingsFlagTakesURLDirectly(t *testing.T) {
	s, err := resolveSettings(newTestContext(t, "-rpc-url", "http://node.example"))
	require.NoError(t, err)
	assert.Equal(t, "http://node.example", s.rpcURL)
	assert.Equal(t, uint64(1), s.pending.Confirmations)
}

func TestResolveSettingsFlagOverridesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.toml")
	require.NoError(t, os.WriteFile(path, []byte(`rpc_url = "http://from-file"`+"\n"), 0o600))

	s, err := resolveSettings(newTestContext(t, "-config", path, "-rpc-url", "http://from-flag"))
	require.NoError(t, err)
	assert.Equal(t, "http://from-flag", s.rpcURL)
}

func TestResolveSettingsReadsURLFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.toml")
	require.NoError(t, os.WriteFile(path, []byte(`rpc_url = "http://from-file"`+"\n"), 0o600))

	s, err := resolveSettings(newTestContext(t, "-config", path))
	require.NoError(t, err)
	assert.Equal(t, "http://from-file", s.rpcURL)
}
