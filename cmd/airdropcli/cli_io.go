package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/ligun0805/sui-airdrop/internal/sui"
	"github.com/ligun0805/sui-airdrop/internal/tokens"
	"github.com/ligun0805/sui-airdrop/internal/wallet"
)

var stdin = bufio.NewReader(os.Stdin)

func readLine(prompt string) string {
	fmt.Print(prompt)
	t, _ := stdin.ReadString('\n')
	return strings.TrimSpace(t)
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read private key: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func yes(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "y" || s == "yes"
}

// promptApprover asks on the terminal before every transaction, like a wallet popup would.
func promptApprover(decimals int) wallet.Approver {
	return func(ctx context.Context, req wallet.ApprovalRequest) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		fmt.Printf("\nSign transaction with %s (%s)\n", req.Wallet, sui.ShortAddress(req.Sender))
		fmt.Printf("  token:      %s\n", req.CoinType)
		fmt.Printf("  transfers:  %d, total %s\n", req.Recipients, tokens.FormatUnits(req.Total, decimals))
		fmt.Printf("  coins used: %d, gas budget %d MIST\n", req.InputCoins, req.GasBudget)
		return yes(readLine("Approve? [y/N]: ")), nil
	}
}
