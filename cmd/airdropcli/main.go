package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/urfave/cli/v2"

	"github.com/ligun0805/sui-airdrop/internal/config"
	"github.com/ligun0805/sui-airdrop/internal/sui"
	"github.com/ligun0805/sui-airdrop/pkg/logger"
)

// appEnv is built once in Before and shared by all commands.
type appEnv struct {
	cfg *config.Settings
	log *logger.Logger
}

func main() {
	env := &appEnv{}
	app := &cli.App{
		Name:  "airdropcli",
		Usage: "Airdrop whitelisted Sui tokens to the recipients of a CSV file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env", Aliases: []string{"e"}, Usage: "path to a .env file"},
			&cli.StringFlag{Name: "network", Aliases: []string{"n"}, Usage: "mainnet, testnet, devnet or localnet"},
			&cli.StringFlag{Name: "rpc", Aliases: []string{"r"}, Usage: "fullnode JSON-RPC URL"},
			&cli.StringFlag{Name: "keystore", Aliases: []string{"k"}, Usage: "Sui CLI keystore file to take the key from"},
			&cli.IntFlag{Name: "key-index", Usage: "entry of the keystore file to use", Value: 0},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "development logging"},
		},
		Before: func(c *cli.Context) error {
			return env.load(c)
		},
		After: func(c *cli.Context) error {
			if env.log != nil {
				env.log.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			addressCommand(env),
			tokensCommand(env),
			validateCommand(env),
			runCommand(env),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := app.RunContext(ctx, os.Args)
	stop()
	if err != nil {
		sentry.CaptureException(err)
		sentry.Flush(2 * time.Second)
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	sentry.Flush(2 * time.Second)
}

func (e *appEnv) load(c *cli.Context) error {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(ctx, c.String("env"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Flags override the environment.
	if c.IsSet("network") {
		n, err := sui.ParseNetwork(c.String("network"))
		if err != nil {
			return err
		}
		if !c.IsSet("rpc") && cfg.RPCURL == cfg.SuiNetwork().FullnodeURL() {
			cfg.RPCURL = n.FullnodeURL()
		}
		cfg.Network = string(n)
	}
	if c.IsSet("rpc") {
		cfg.RPCURL = c.String("rpc")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}

	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if cfg.SentryDSN != "" {
		err = sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 1.0,
		})
		if err != nil {
			return fmt.Errorf("sentry.Init: %w", err)
		}
	}

	e.cfg, e.log = cfg, log
	return nil
}

func (e *appEnv) dial(ctx context.Context) (*sui.Client, error) {
	return sui.Dial(ctx, e.cfg.RPCURL, sui.Options{
		Timeout:  e.cfg.RPCTimeout,
		ReadRate: e.cfg.RPCReadRate,
		Logger:   e.log,
	})
}
