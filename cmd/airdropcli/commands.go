package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/ligun0805/sui-airdrop/internal/airdrop"
	"github.com/ligun0805/sui-airdrop/internal/pacer"
	"github.com/ligun0805/sui-airdrop/internal/recipients"
	"github.com/ligun0805/sui-airdrop/internal/report"
	"github.com/ligun0805/sui-airdrop/internal/sui"
	"github.com/ligun0805/sui-airdrop/internal/tokens"
	"github.com/ligun0805/sui-airdrop/internal/wallet"
)

const walletName = "Sui Keystore"

// keySource resolves the signing key: --keystore file, SUI_PRIVATE_KEY, or an interactive prompt.
func (e *appEnv) keySource(c *cli.Context) wallet.KeySource {
	return func(ctx context.Context) (*sui.Keypair, error) {
		if path := c.String("keystore"); path != "" {
			keys, err := wallet.LoadKeystoreFile(path)
			if err != nil {
				return nil, err
			}
			idx := c.Int("key-index")
			if idx < 0 || idx >= len(keys) {
				return nil, fmt.Errorf("keystore %s has %d ed25519 key(s), index %d out of range", path, len(keys), idx)
			}
			return keys[idx], nil
		}
		secret := e.cfg.PrivateKey
		if secret == "" {
			var err error
			if secret, err = readPassword("Enter Sui private key (hex seed or keystore base64): "); err != nil {
				return nil, err
			}
		}
		return sui.ParseKeypair(secret)
	}
}

func (e *appEnv) connect(c *cli.Context, node wallet.Node, approve wallet.Approver) (*wallet.Manager, wallet.Account, error) {
	ks := wallet.NewKeystore(walletName, e.keySource(c), node, wallet.KeystoreOptions{
		Approver:  approve,
		GasBudget: e.cfg.GasBudget,
		Logger:    e.log,
	})
	m := wallet.NewManager(e.log, ks)
	if err := m.Select(c.Context, walletName); err != nil {
		return nil, wallet.Account{}, err
	}
	acct, _ := m.Account()
	return m, acct, nil
}

func addressCommand(e *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "address",
		Usage: "print the address of the configured key",
		Action: func(c *cli.Context) error {
			kp, err := e.keySource(c)(c.Context)
			if err != nil {
				return err
			}
			fmt.Println(kp.Address())
			return nil
		},
	}
}

func tokensCommand(e *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "tokens",
		Usage: "list whitelisted token balances",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "owner", Usage: "address to inspect instead of the configured key"},
		},
		Action: func(c *cli.Context) error {
			client, err := e.dial(c.Context)
			if err != nil {
				return err
			}
			defer client.Close()

			owner := c.String("owner")
			if owner == "" {
				kp, err := e.keySource(c)(c.Context)
				if err != nil {
					return err
				}
				owner = kp.Address()
			}
			resolver := e.resolver(client)
			holdings, err := resolver.Resolve(c.Context, owner)
			if err != nil {
				return err
			}
			printHoldings(owner, resolver.Sorted(holdings))
			return nil
		},
	}
}

func (e *appEnv) resolver(client *sui.Client) *tokens.Resolver {
	r := tokens.NewResolver(client, nil, e.log)
	r.PageSize = e.cfg.CoinPageSize
	r.MaxPages = e.cfg.CoinMaxPages
	return r
}

func printHoldings(owner string, hs []*tokens.Holding) {
	fmt.Printf("Owner: %s\n", owner)
	if len(hs) == 0 {
		fmt.Println("No whitelisted tokens found in this wallet.")
		return
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tNAME\tDECIMALS\tCOINS\tBALANCE\tTYPE")
	for _, h := range hs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n", h.Token.Symbol, h.Token.Name, h.Token.Decimals, len(h.Coins), h.Display(), h.Token.Type)
	}
	_ = tw.Flush()
}

func validateCommand(e *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "check a recipients CSV without touching the chain",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "recipients CSV (suiWalletAddr,suiTokens)", Required: true},
		},
		Action: func(c *cli.Context) error {
			res, err := recipients.NewParser(e.log).ParseFile(c.String("input"))
			if err != nil && !errors.Is(err, recipients.ErrNotCSV) {
				return err
			}
			printParse(res)
			if len(res.Errors) > 0 {
				return cli.Exit(fmt.Sprintf("%d validation error(s)", len(res.Errors)), 2)
			}
			return nil
		},
	}
}

func printParse(res *recipients.Result) {
	fmt.Printf("Data rows: %d, recipients: %d, skipped: %d, rejected: %d\n",
		res.DataRows, len(res.Recipients), len(res.Skipped), res.Rejected)
	fmt.Printf("Total amount: %s\n", res.TotalAmount().String())
	for _, s := range res.Skipped {
		fmt.Printf("  skipped row %d: %s\n", s.Row, s.Reason)
	}
	for _, msg := range res.Errors {
		fmt.Printf("  • %s\n", msg)
	}
}

func runCommand(e *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "execute the airdrop",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "recipients CSV (suiWalletAddr,suiTokens)", Required: true},
			&cli.StringFlag{Name: "token", Aliases: []string{"t"}, Usage: "coin type or symbol to send", Required: true},
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "do not ask for confirmation"},
			&cli.IntFlag{Name: "batch-size", Usage: "recipients per transaction (overrides AIRDROP_BATCH_SIZE)"},
			&cli.StringFlag{Name: "strategy", Usage: "coin selection: merge or first-fit (overrides AIRDROP_COIN_STRATEGY)"},
			&cli.StringFlag{Name: "out-ok", Usage: "write successful transfers to this CSV"},
			&cli.StringFlag{Name: "out-bad", Usage: "write failed transfers to this CSV"},
			&cli.StringFlag{Name: "report", Usage: "write the execution report as JSON"},
		},
		Action: func(c *cli.Context) error {
			return e.run(c)
		},
	}
}

func (e *appEnv) run(c *cli.Context) error {
	ctx := c.Context
	res, err := recipients.NewParser(e.log).ParseFile(c.String("input"))
	if err != nil && !errors.Is(err, recipients.ErrNotCSV) {
		return err
	}
	printParse(res)
	if len(res.Recipients) == 0 {
		return errors.New("no valid recipients")
	}

	batchSize := e.cfg.BatchSize
	if c.IsSet("batch-size") {
		batchSize = c.Int("batch-size")
	}
	strategy := e.cfg.CoinStrategy
	if c.IsSet("strategy") {
		strategy = c.String("strategy")
	}
	st, err := airdrop.ParseStrategy(strategy)
	if err != nil {
		return err
	}

	client, err := e.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	// Decimals are only known after resolving; the approver reads them through the closure.
	var token tokens.Descriptor
	approve := wallet.AutoApprove
	if !c.Bool("yes") {
		approve = func(ctx context.Context, req wallet.ApprovalRequest) (bool, error) {
			return promptApprover(token.Decimals)(ctx, req)
		}
	}
	manager, acct, err := e.connect(c, client, approve)
	if err != nil {
		return err
	}
	defer manager.Disconnect()

	resolver := e.resolver(client)
	holdings, err := resolver.Resolve(ctx, acct.Address)
	if err != nil {
		return err
	}
	holding, err := tokens.Lookup(holdings, c.String("token"))
	if err != nil {
		printHoldings(acct.Address, resolver.Sorted(holdings))
		return err
	}
	token = holding.Token

	batches := len(airdrop.Partition(len(res.Recipients), batchSize))
	fmt.Printf("\nSender:     %s\n", acct.Address)
	fmt.Printf("Token:      %s (%s), balance %s in %d coin(s)\n", token.Symbol, token.Type, holding.Display(), len(holding.Coins))
	fmt.Printf("Recipients: %d, total %s %s, %d batch(es) of up to %d\n", len(res.Recipients), res.TotalAmount().String(), token.Symbol, batches, batchSize)
	fmt.Printf("Network:    %s (%s)\n", e.cfg.Network, e.cfg.RPCURL)
	if !c.Bool("yes") && !yes(readLine("Proceed? [y/N]: ")) {
		return errors.New("cancelled")
	}

	o := airdrop.New(manager, airdrop.Options{
		BatchSize: batchSize,
		Strategy:  st,
		Pacer:     pacer.NewAdaptive(e.cfg.BatchInterval, e.cfg.MaxBatchInterval, e.log),
		Network:   e.cfg.SuiNetwork(),
		Logger:    e.log,
		OnProgress: func(p airdrop.Progress) {
			fmt.Println(p.String())
		},
	})
	rep, runErr := o.Execute(ctx, airdrop.Request{
		Sender:     acct.Address,
		Token:      token,
		Coins:      holding.Coins,
		Recipients: res.Recipients,
	})

	fmt.Println()
	report.Table(os.Stdout, rep)
	fmt.Println(report.Summary(rep))
	if err := writeOutputs(c, rep); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if rep.Failed() > 0 {
		return cli.Exit(fmt.Sprintf("%d transfer(s) failed", rep.Failed()), 3)
	}
	return nil
}

func writeOutputs(c *cli.Context, rep *airdrop.Report) error {
	if p := c.String("out-ok"); p != "" {
		if err := writeFile(p, func(f *os.File) error { return report.WriteCSV(f, nil, rep) }); err != nil {
			return err
		}
	}
	if p := c.String("out-bad"); p != "" {
		if err := writeFile(p, func(f *os.File) error { return report.WriteCSV(nil, f, rep) }); err != nil {
			return err
		}
	}
	if p := c.String("report"); p != "" {
		if err := writeFile(p, func(f *os.File) error { return report.WriteJSON(f, rep) }); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
