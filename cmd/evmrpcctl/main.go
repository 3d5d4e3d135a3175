// Command evmrpcctl is a thin operational front-end over the client
// package: one binary, one subcommand per JSON-RPC operation a human
// actually runs by hand against a node, mirroring the one-tool-per-task
// layout of the teacher's verify_roots/verify_proof/acct_verify_proof
// commands but collapsed into subcommands of a single urfave/cli app.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/lattice-labs/evmrpc/client"
	"github.com/lattice-labs/evmrpc/pkg/config"
	"github.com/lattice-labs/evmrpc/pkg/hexutil"
	"github.com/lattice-labs/evmrpc/pkg/pending"
	"github.com/lattice-labs/evmrpc/pkg/rpctransport"
	"github.com/lattice-labs/evmrpc/pkg/types"
)

var rpcURLFlag = &cli.StringFlag{
	Name:    "rpc-url",
	Aliases: []string{"u"},
	Usage:   "JSON-RPC endpoint (http(s):// or ws(s):// — overrides --config's rpc_url)",
	EnvVars: []string{"EVMRPCCTL_URL"},
}

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "path to a TOML config file (rpc_url, websocket, pending sections)",
	EnvVars: []string{"EVMRPCCTL_CONFIG"},
}

func main() {
	app := &cli.App{
		Name:  "evmrpcctl",
		Usage: "operational CLI for the evmrpc client",
		Commands: []*cli.Command{
			blockNumberCmd,
			callCmd,
			sendRawCmd,
			subscribeCmd,
			awaitInclusionCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error("evmrpcctl failed", "err", err)
		os.Exit(1)
	}
}

// settings is the merged result of --config (if any) and command-line
// flags, flags taking precedence over the file.
type settings struct {
	rpcURL  string
	ws      rpctransport.WSConfig
	pending pending.Config
}

// resolveSettings loads --config (when given) and overlays --rpc-url on
// top of its rpc_url field, the way flags are expected to win over a
// config file throughout this tool.
func resolveSettings(c *cli.Context) (settings, error) {
	out := settings{pending: pending.DefaultConfig()}

	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return out, err
		}
		out.rpcURL = cfg.RPCURL
		if out.ws, err = cfg.WSConfig(); err != nil {
			return out, err
		}
		if out.pending, err = cfg.PendingConfig(); err != nil {
			return out, err
		}
	}

	if url := c.String("rpc-url"); url != "" {
		out.rpcURL = url
	}
	if out.rpcURL == "" {
		return out, cli.Exit("--rpc-url or --config with rpc_url set is required", 1)
	}
	return out, nil
}

// newClient dials an HTTP or WebSocket transport depending on the URL
// scheme and wraps it in a *client.Client.
func newClient(ctx context.Context, rawURL string) (*client.Client, func(), error) {
	return newClientWithWS(ctx, rawURL, rpctransport.WSConfig{})
}

func newClientWithWS(ctx context.Context, rawURL string, wsCfg rpctransport.WSConfig) (*client.Client, func(), error) {
	switch {
	case len(rawURL) >= 3 && rawURL[:3] == "ws:", len(rawURL) >= 4 && rawURL[:4] == "wss:":
		ws, err := rpctransport.DialWS(ctx, rawURL, wsCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("dial websocket: %w", err)
		}
		return client.New(ws), func() { ws.Close() }, nil
	default:
		return client.New(rpctransport.NewHTTPTransport(rawURL)), func() {}, nil
	}
}

var blockNumberCmd = &cli.Command{
	Name:  "blocknumber",
	Usage: "print the latest block number",
	Flags: []cli.Flag{rpcURLFlag, configFlag},
	Action: func(c *cli.Context) error {
		s, err := resolveSettings(c)
		if err != nil {
			return err
		}
		cl, closeFn, err := newClientWithWS(c.Context, s.rpcURL, s.ws)
		if err != nil {
			return err
		}
		defer closeFn()

		n, err := cl.BlockNumber(c.Context)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}

var callCmd = &cli.Command{
	Name:  "call",
	Usage: "eth_call against a contract, printing the hex return data",
	Flags: []cli.Flag{
		rpcURLFlag,
		configFlag,
		&cli.StringFlag{Name: "to", Required: true, Usage: "contract address"},
		&cli.StringFlag{Name: "from", Usage: "caller address"},
		&cli.StringFlag{Name: "data", Usage: "calldata, 0x-prefixed"},
		&cli.StringFlag{Name: "block", Value: "latest", Usage: "block number or tag"},
	},
	Action: func(c *cli.Context) error {
		s, err := resolveSettings(c)
		if err != nil {
			return err
		}
		cl, closeFn, err := newClientWithWS(c.Context, s.rpcURL, s.ws)
		if err != nil {
			return err
		}
		defer closeFn()

		to, err := types.ParseAddress(c.String("to"))
		if err != nil {
			return fmt.Errorf("parse --to: %w", err)
		}
		msg := types.CallRequest{To: &to}
		if from := c.String("from"); from != "" {
			fromAddr, err := types.ParseAddress(from)
			if err != nil {
				return fmt.Errorf("parse --from: %w", err)
			}
			msg.From = &fromAddr
		}
		if data := c.String("data"); data != "" {
			b, err := hexutil.Decode(data)
			if err != nil {
				return fmt.Errorf("parse --data: %w", err)
			}
			msg.Data = b
		}

		block, err := parseBlockNumberOrTag(c.String("block"))
		if err != nil {
			return err
		}

		out, err := cl.CallContract(c.Context, msg, block)
		if err != nil {
			return err
		}
		fmt.Println(hexutil.Encode(out))
		return nil
	},
}

var sendRawCmd = &cli.Command{
	Name:      "send-raw",
	Usage:     "broadcast a signed, RLP-encoded transaction",
	ArgsUsage: "<0x-raw-tx>",
	Flags:     []cli.Flag{rpcURLFlag, configFlag},
	Action: func(c *cli.Context) error {
		if c.Args().Len() != 1 {
			return cli.Exit("expected exactly one argument: the raw signed transaction", 1)
		}
		raw, err := hexutil.Decode(c.Args().First())
		if err != nil {
			return fmt.Errorf("parse raw transaction: %w", err)
		}

		s, err := resolveSettings(c)
		if err != nil {
			return err
		}
		cl, closeFn, err := newClientWithWS(c.Context, s.rpcURL, s.ws)
		if err != nil {
			return err
		}
		defer closeFn()

		hash, err := cl.SendRawTransaction(c.Context, raw)
		if err != nil {
			return err
		}
		fmt.Println(hash.String())
		return nil
	},
}

var subscribeCmd = &cli.Command{
	Name:  "subscribe",
	Usage: "stream newHeads or logs over a WebSocket connection until interrupted",
	Flags: []cli.Flag{
		rpcURLFlag,
		configFlag,
		&cli.StringFlag{Name: "topic", Value: "newHeads", Usage: "newHeads or logs"},
	},
	Action: func(c *cli.Context) error {
		s, err := resolveSettings(c)
		if err != nil {
			return err
		}
		cl, closeFn, err := newClientWithWS(c.Context, s.rpcURL, s.ws)
		if err != nil {
			return err
		}
		defer closeFn()

		switch c.String("topic") {
		case "newHeads":
			sub, err := cl.SubscribeNewHeads(c.Context)
			if err != nil {
				return err
			}
			defer sub.Close()
			for {
				head, ok, err := sub.Take(c.Context)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				printJSON(head)
			}
		case "logs":
			sub, err := cl.SubscribeLogs(c.Context, client.FilterQuery{})
			if err != nil {
				return err
			}
			defer sub.Close()
			for {
				entry, ok, err := sub.Take(c.Context)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				printJSON(entry)
			}
		default:
			return cli.Exit("unknown --topic: want newHeads or logs", 1)
		}
	},
}

var awaitInclusionCmd = &cli.Command{
	Name:      "await-inclusion",
	Usage:     "poll for a transaction receipt and wait for confirmations",
	ArgsUsage: "<0x-tx-hash>",
	Flags: []cli.Flag{
		rpcURLFlag,
		configFlag,
		&cli.Uint64Flag{Name: "confirmations", Usage: "overrides --config's pending.confirmations"},
		&cli.DurationFlag{Name: "timeout", Value: 2 * time.Minute},
	},
	Action: func(c *cli.Context) error {
		if c.Args().Len() != 1 {
			return cli.Exit("expected exactly one argument: the transaction hash", 1)
		}
		txHash, err := types.ParseHash(c.Args().First())
		if err != nil {
			return fmt.Errorf("parse tx hash: %w", err)
		}

		s, err := resolveSettings(c)
		if err != nil {
			return err
		}
		cl, closeFn, err := newClientWithWS(c.Context, s.rpcURL, s.ws)
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
		defer cancel()

		cfg := s.pending
		if c.IsSet("confirmations") {
			cfg.Confirmations = c.Uint64("confirmations")
		}

		receipt, err := cl.AwaitInclusion(ctx, cfg, txHash)
		if err != nil {
			return err
		}
		printJSON(receipt)
		return nil
	},
}

func parseBlockNumberOrTag(s string) (types.BlockNumberOrTag, error) {
	switch s {
	case "latest", "pending", "earliest", "safe", "finalized":
		return types.BlockTag(s), nil
	default:
		n, err := hexutil.DecodeUint64(s)
		if err != nil {
			return types.BlockNumberOrTag{}, fmt.Errorf("parse --block %q: %w", s, err)
		}
		return types.BlockNumber(n), nil
	}
}

func printJSON(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "marshal:", err)
		return
	}
	fmt.Println(string(b))
}
