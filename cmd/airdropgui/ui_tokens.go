package main

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/ligun0805/sui-airdrop/internal/sui"
)

func tokenCard(w fyne.Window) fyne.CanvasObject {
	countLbl := widget.NewLabel(fmt.Sprintf("Whitelisted Tokens: %d", len(resolver.Whitelist())))
	stateLbl := widget.NewLabel("Connect a wallet to load balances")
	selLbl := widget.NewLabel("")
	selLbl.Wrapping = fyne.TextWrapBreak

	list := widget.NewList(
		func() int { return len(holdingList) },
		func() fyne.CanvasObject {
			return container.NewBorder(nil, nil, nil, widget.NewLabel("balance"), widget.NewLabel("symbol"))
		},
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i >= len(holdingList) {
				return
			}
			h := holdingList[i]
			row := o.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(h.Token.Symbol + "  " + h.Token.Name)
			row.Objects[1].(*widget.Label).SetText(h.Display())
		},
	)
	list.OnSelected = func(i widget.ListItemID) {
		if i >= len(holdingList) {
			return
		}
		selected = holdingList[i]
		selLbl.SetText(fmt.Sprintf("%s\n%s\n%d coin object(s), %d decimals",
			selected.Token.Symbol, selected.Token.Type, len(selected.Coins), selected.Token.Decimals))
		if refreshExecute != nil {
			refreshExecute()
		}
	}

	var refreshBtn *widget.Button
	refreshTokens = func() {
		acct, ok := manager.Account()
		holdingList = nil
		selected = nil
		list.UnselectAll()
		list.Refresh()
		selLbl.SetText("")
		if !ok {
			stateLbl.SetText("Connect a wallet to load balances")
			return
		}
		stateLbl.SetText("Loading balances for " + sui.ShortAddress(acct.Address) + "...")
		refreshBtn.Disable()
		go func() {
			defer refreshBtn.Enable()
			holdings, err := resolver.Resolve(context.Background(), acct.Address)
			if err != nil {
				stateLbl.SetText("Failed to load balances")
				showErr(w, "load balances", err)
				return
			}
			holdingList = resolver.Sorted(holdings)
			list.Refresh()
			if len(holdingList) == 0 {
				stateLbl.SetText("No whitelisted tokens in this wallet")
			} else {
				stateLbl.SetText(fmt.Sprintf("%d token(s) with a balance", len(holdingList)))
			}
			if refreshExecute != nil {
				refreshExecute()
			}
		}()
	}
	refreshBtn = widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), func() { refreshTokens() })

	scroll := container.NewVScroll(list)
	scroll.SetMinSize(fyne.NewSize(320, 180))
	return widget.NewCard("2. Select token", "", container.NewVBox(
		container.NewBorder(nil, nil, nil, refreshBtn, countLbl),
		stateLbl,
		scroll,
		selLbl,
	))
}
