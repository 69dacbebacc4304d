package main

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"

	"github.com/ligun0805/sui-airdrop/internal/config"
	"github.com/ligun0805/sui-airdrop/internal/sui"
	"github.com/ligun0805/sui-airdrop/internal/tokens"
	"github.com/ligun0805/sui-airdrop/internal/wallet"
	"github.com/ligun0805/sui-airdrop/pkg/logger"
)

func main() {
	hideConsoleWindow()

	_ = godotenv.Load()
	_ = godotenv.Overload(".env.local")

	ctx := context.Background()
	var err error
	cfg, err = config.Load(ctx, "")
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	lg, err = logger.NewLogger(cfg.Development)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer lg.Sync()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, TracesSampleRate: 1.0}); err != nil {
			lg.Errorw("sentry.Init", "err", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	client, err = sui.Dial(ctx, cfg.RPCURL, sui.Options{Timeout: cfg.RPCTimeout, ReadRate: cfg.RPCReadRate, Logger: lg})
	if err != nil {
		lg.Fatalf("dial %s: %v", cfg.RPCURL, err)
	}
	defer client.Close()
	resolver = tokens.NewResolver(client, nil, lg)
	resolver.PageSize = cfg.CoinPageSize
	resolver.MaxPages = cfg.CoinMaxPages

	a := app.New()
	curTheme := makeTheme("dark", false)
	a.Settings().SetTheme(curTheme)

	w := a.NewWindow("Sui Token Airdrop")
	w.SetOnClosed(func() {
		current.stop()
		if logWin != nil {
			logWin.Close()
			logWin = nil
		}
	})
	w.Resize(fyne.NewSize(1180, 780))

	manager = wallet.NewManager(lg, buildWallets(w)...)

	themeSelect := widget.NewSelect([]string{"Dark", "Light"}, func(s string) {
		mode := "dark"
		if s == "Light" {
			mode = "light"
		}
		curTheme = makeTheme(mode, curTheme.(*airdropTheme).compact)
		a.Settings().SetTheme(curTheme)
	})
	themeSelect.SetSelected("Dark")
	compactCheck := widget.NewCheck("Compact", func(b bool) {
		curTheme = makeTheme(curTheme.(*airdropTheme).mode, b)
		a.Settings().SetTheme(curTheme)
	})
	netLbl := widget.NewLabel(fmt.Sprintf("[net] %s · %s", cfg.Network, cfg.RPCURL))
	footer := container.NewPadded(container.NewBorder(nil, nil, nil, container.NewHBox(themeSelect, compactCheck), netLbl))

	left := container.NewVBox(walletCard(w), tokenCard(w))
	right := container.NewVSplit(recipientsCard(w), executeCard(a, w))
	right.SetOffset(0.42)
	split := container.NewHSplit(container.NewVScroll(left), right)
	split.SetOffset(0.38)

	bg := canvas.NewLinearGradient(color.NRGBA{12, 16, 24, 255}, color.NRGBA{20, 28, 40, 255}, 90)
	w.SetContent(container.NewStack(bg, container.NewBorder(nil, footer, nil, nil, split)))
	w.ShowAndRun()
}

// showErr reports err in a dialog and the log.
func showErr(w fyne.Window, what string, err error) {
	lg.Errorw(what, "err", err)
	dialog.ShowError(fmt.Errorf("%s: %w", what, err), w)
}
