// Package config loads the operator-facing settings for an evmrpc client
// from a TOML file: the RPC endpoint, WebSocket tuning, pending-inclusion
// retry tuning, and metrics namespace. One Config struct per component,
// matching the config-file pattern visible across the corpus's cmd/
// tools rather than flags-only configuration.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lattice-labs/evmrpc/pkg/pending"
	"github.com/lattice-labs/evmrpc/pkg/rpctransport"
)

// Config is the top-level shape loaded from a TOML file, e.g.:
//
//	rpc_url = "wss://node.example/ws"
//	metrics_namespace = "evmrpc"
//
//	[websocket]
//	ping_interval = "10s"
//	max_reconnects = 5
//
//	[pending]
//	confirmations = 6
//	retries = 30
type Config struct {
	RPCURL           string         `toml:"rpc_url"`
	MetricsNamespace string         `toml:"metrics_namespace"`
	WebSocket        WebSocketConfig `toml:"websocket"`
	Pending          PendingConfig   `toml:"pending"`
}

// WebSocketConfig mirrors rpctransport.WSConfig's tunable fields in
// TOML-friendly (string-duration) form.
type WebSocketConfig struct {
	PingInterval   string `toml:"ping_interval"`
	PingTimeout    string `toml:"ping_timeout"`
	ReconnectDelay string `toml:"reconnect_delay"`
	MaxReconnects  int    `toml:"max_reconnects"`
}

// PendingConfig mirrors pending.Config's tunable fields in TOML-friendly
// (string-duration) form.
type PendingConfig struct {
	Confirmations        uint64 `toml:"confirmations"`
	Retries              int    `toml:"retries"`
	RetryInterval        string `toml:"retry_interval"`
	ReceiptQueryInterval string `toml:"receipt_query_interval"`
}

// Load reads and parses a Config from a TOML file at path.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return &cfg, nil
}

// WSConfig converts the TOML-friendly WebSocketConfig into a
// rpctransport.WSConfig, parsing its duration strings. Zero-value fields
// left unset fall through to rpctransport's own defaults.
func (c Config) WSConfig() (rpctransport.WSConfig, error) {
	var out rpctransport.WSConfig
	var err error
	if out.PingInterval, err = parseDuration(c.WebSocket.PingInterval); err != nil {
		return out, fmt.Errorf("websocket.ping_interval: %w", err)
	}
	if out.PingTimeout, err = parseDuration(c.WebSocket.PingTimeout); err != nil {
		return out, fmt.Errorf("websocket.ping_timeout: %w", err)
	}
	if out.ReconnectDelay, err = parseDuration(c.WebSocket.ReconnectDelay); err != nil {
		return out, fmt.Errorf("websocket.reconnect_delay: %w", err)
	}
	out.MaxReconnects = c.WebSocket.MaxReconnects
	return out, nil
}

// PendingConfig converts the TOML-friendly PendingConfig into a
// pending.Config, parsing its duration strings and falling back to
// pending.DefaultConfig() for anything left zero.
func (c Config) PendingConfig() (pending.Config, error) {
	out := pending.DefaultConfig()
	if c.Pending.Confirmations > 0 {
		out.Confirmations = c.Pending.Confirmations
	}
	if c.Pending.Retries > 0 {
		out.Retries = c.Pending.Retries
	}
	if c.Pending.RetryInterval != "" {
		d, err := time.ParseDuration(c.Pending.RetryInterval)
		if err != nil {
			return out, fmt.Errorf("pending.retry_interval: %w", err)
		}
		out.RetryInterval = d
	}
	if c.Pending.ReceiptQueryInterval != "" {
		d, err := time.ParseDuration(c.Pending.ReceiptQueryInterval)
		if err != nil {
			return out, fmt.Errorf("pending.receipt_query_interval: %w", err)
		}
		out.ReceiptQueryInterval = d
	}
	return out, nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
