package main

import (
	"context"
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ligun0805/sui-airdrop/internal/sui"
	"github.com/ligun0805/sui-airdrop/internal/tokens"
	"github.com/ligun0805/sui-airdrop/internal/wallet"
)

// buildWallets lists the key sources the user can connect: SUI_PRIVATE_KEY,
// every ed25519 entry of the Sui CLI keystore, and a pasted key.
func buildWallets(w fyne.Window) []wallet.Wallet {
	opts := wallet.KeystoreOptions{Approver: guiApprover(w), GasBudget: cfg.GasBudget, Logger: lg}
	var ws []wallet.Wallet
	if cfg.PrivateKey != "" {
		ws = append(ws, wallet.NewKeystore("Environment key", func(context.Context) (*sui.Keypair, error) {
			return sui.ParseKeypair(cfg.PrivateKey)
		}, client, opts))
	}
	if path := wallet.DefaultKeystorePath(); path != "" {
		if keys, err := wallet.LoadKeystoreFile(path); err == nil {
			for i, kp := range keys {
				name := fmt.Sprintf("Sui keystore #%d (%s)", i, sui.ShortAddress(kp.Address()))
				ws = append(ws, wallet.NewKeystore(name, wallet.StaticKey(kp), client, opts))
			}
		}
	}
	ws = append(ws, wallet.NewKeystore("Paste private key", pastedKey(w), client, opts))
	return ws
}

func pastedKey(w fyne.Window) wallet.KeySource {
	return func(ctx context.Context) (*sui.Keypair, error) {
		entry := widget.NewPasswordEntry()
		entry.SetPlaceHolder("hex seed or keystore base64")
		done := make(chan string, 1)
		dialog.ShowForm("Private key", "Connect", "Cancel",
			[]*widget.FormItem{widget.NewFormItem("Key", entry)},
			func(ok bool) {
				if ok {
					done <- entry.Text
				} else {
					done <- ""
				}
			}, w)
		select {
		case s := <-done:
			if s == "" {
				return nil, errors.New("no key entered")
			}
			return sui.ParseKeypair(s)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// guiApprover is the wallet popup: one confirm dialog per transaction unless auto-approve is on.
func guiApprover(w fyne.Window) wallet.Approver {
	return func(ctx context.Context, req wallet.ApprovalRequest) (bool, error) {
		if autoApprove != nil && autoApprove.Checked {
			return true, nil
		}
		dec := tokens.DefaultDecimals
		if selected != nil && selected.Token.Type == req.CoinType {
			dec = selected.Token.Decimals
		}
		msg := fmt.Sprintf("Sign a transaction from %s?\n\nToken: %s\nTransfers: %d\nTotal: %s\nCoins used: %d\nGas budget: %d MIST",
			req.Wallet, sui.CoinTypeName(req.CoinType), req.Recipients, tokens.FormatUnits(req.Total, dec), req.InputCoins, req.GasBudget)
		done := make(chan bool, 1)
		dialog.ShowConfirm("Approve transaction", msg, func(ok bool) { done <- ok }, w)
		select {
		case ok := <-done:
			return ok, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

func walletCard(w fyne.Window) fyne.CanvasObject {
	infos := manager.Wallets()
	var names []string
	for _, in := range infos {
		if in.Installed {
			names = append(names, in.Name)
		}
	}
	picker := widget.NewSelect(names, nil)
	if len(names) > 0 {
		picker.SetSelected(names[0])
	}
	statusLbl := widget.NewLabel("Status: " + string(manager.Status()))
	addrLbl := widget.NewLabel("")
	addrLbl.TextStyle = fyne.TextStyle{Monospace: true}
	addrLbl.Wrapping = fyne.TextWrapBreak

	var connectBtn, disconnectBtn *widget.Button
	connectBtn = widget.NewButton("Connect", func() {
		name := picker.Selected
		if name == "" {
			return
		}
		connectBtn.Disable()
		go func() {
			defer connectBtn.Enable()
			if err := manager.Select(context.Background(), name); err != nil {
				showErr(w, "connect wallet", err)
			}
		}()
	})
	disconnectBtn = widget.NewButton("Disconnect", func() {
		if err := manager.Disconnect(); err != nil {
			showErr(w, "disconnect", err)
		}
	})
	disconnectBtn.Disable()

	manager.OnStatusChange(func(s wallet.Status) {
		statusLbl.SetText("Status: " + string(s))
		acct, ok := manager.Account()
		if ok {
			addrLbl.SetText(acct.Address)
			disconnectBtn.Enable()
		} else {
			addrLbl.SetText("")
			disconnectBtn.Disable()
		}
		if refreshTokens != nil {
			refreshTokens()
		}
		if refreshExecute != nil {
			refreshExecute()
		}
	})

	return widget.NewCard("1. Connect wallet", fmt.Sprintf("%d wallet(s) available", len(names)), container.NewVBox(
		widget.NewForm(widget.NewFormItem("Wallet", picker)),
		container.NewGridWithColumns(2, connectBtn, disconnectBtn),
		statusLbl,
		addrLbl,
	))
}
