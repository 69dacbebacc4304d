package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/ligun0805/sui-airdrop/internal/airdrop"
	"github.com/ligun0805/sui-airdrop/internal/pacer"
	"github.com/ligun0805/sui-airdrop/internal/report"
	"github.com/ligun0805/sui-airdrop/internal/sui"
)

var outMu sync.Mutex

func executeCard(a fyne.App, w fyne.Window) fyne.CanvasObject {
	strategySel := widget.NewSelect([]string{string(airdrop.StrategyMerge), string(airdrop.StrategyFirstFit)}, nil)
	strategySel.SetSelected(cfg.CoinStrategy)
	batchEntry := widget.NewEntry()
	batchEntry.SetText(fmt.Sprint(cfg.BatchSize))
	autoApprove = widget.NewCheck("Approve every batch without asking", nil)

	stateLbl := widget.NewLabel("State: " + string(airdrop.StateIdle))
	progressLbl := widget.NewLabel("")
	okLbl := widget.NewLabel("Succeeded: 0")
	badLbl := widget.NewLabel("Failed: 0")

	resultsTable = widget.NewTable(
		func() (int, int) {
			outMu.Lock()
			defer outMu.Unlock()
			return len(outcomes), 4
		},
		func() fyne.CanvasObject {
			return container.NewStack(widget.NewLabel(""), widget.NewHyperlink("", nil))
		},
		func(id widget.TableCellID, o fyne.CanvasObject) {
			outMu.Lock()
			if id.Row >= len(outcomes) {
				outMu.Unlock()
				return
			}
			oc := outcomes[id.Row]
			outMu.Unlock()
			cell := o.(*fyne.Container)
			lbl := cell.Objects[0].(*widget.Label)
			link := cell.Objects[1].(*widget.Hyperlink)
			lbl.Show()
			link.Hide()
			switch id.Col {
			case 0:
				lbl.SetText(sui.ShortAddress(oc.Recipient.Address))
			case 1:
				lbl.SetText(oc.Recipient.Amount)
			case 2:
				if oc.Succeeded {
					lbl.SetText("ok")
				} else {
					lbl.SetText("failed")
				}
			case 3:
				if oc.Succeeded && oc.Explorer != "" {
					if u, err := url.Parse(oc.Explorer); err == nil {
						lbl.Hide()
						link.SetText(sui.ShortAddress(oc.Digest))
						link.SetURL(u)
						link.Show()
						return
					}
				}
				lbl.SetText(oc.Error)
			}
		},
	)
	resultsTable.SetColumnWidth(0, 170)
	resultsTable.SetColumnWidth(1, 110)
	resultsTable.SetColumnWidth(2, 70)
	resultsTable.SetColumnWidth(3, 360)

	var runBtn, stopBtn, saveBtn *widget.Button
	refreshExecute = func() {
		_, connected := manager.Account()
		ready := connected && selected != nil && parsed != nil && parsed.OK() && !current.running()
		if ready {
			runBtn.Enable()
		} else {
			runBtn.Disable()
		}
	}

	runBtn = widget.NewButtonWithIcon("Execute Airdrop", theme.MediaPlayIcon(), func() {
		st, err := airdrop.ParseStrategy(strategySel.Selected)
		if err != nil {
			showErr(w, "strategy", err)
			return
		}
		var size int
		if _, err := fmt.Sscan(batchEntry.Text, &size); err != nil || size <= 0 {
			showErr(w, "batch size", errors.New("must be a positive integer"))
			return
		}
		acct, _ := manager.Account()
		holding, res := selected, parsed
		batches := len(airdrop.Partition(len(res.Recipients), size))
		msg := fmt.Sprintf("Send %s %s to %d recipient(s) in %d batch(es)?\n\nSender: %s\nBalance: %s",
			res.TotalAmount().String(), holding.Token.Symbol, len(res.Recipients), batches, acct.Address, holding.Display())
		dialog.ShowConfirm("Execute airdrop", msg, func(ok bool) {
			if !ok {
				return
			}
			ctx, started := current.start(context.Background())
			if !started {
				return
			}
			outMu.Lock()
			outcomes = nil
			outMu.Unlock()
			resultsTable.Refresh()
			okLbl.SetText("Succeeded: 0")
			badLbl.SetText("Failed: 0")
			saveBtn.Disable()

			runBtn.Disable()
			stopBtn.Enable()
			ensureLogWindow(a).Show()
			logProg.SetValue(0)
			appendLogLine(a, fmt.Sprintf("[run] %s · %d recipients · batch size %d · %s", holding.Token.Symbol, len(res.Recipients), size, st))

			var nOK, nBad int
			o := airdrop.New(manager, airdrop.Options{
				BatchSize: size,
				Strategy:  st,
				Pacer:     pacer.NewAdaptive(cfg.BatchInterval, cfg.MaxBatchInterval, lg),
				Network:   cfg.SuiNetwork(),
				Logger:    lg,
				OnState: func(s airdrop.State) {
					stateLbl.SetText("State: " + string(s))
					appendLogLine(a, "[state] "+string(s))
					telAdd(TelemetryItem{Time: time.Now().UTC().Format(time.RFC3339), Action: "state:" + string(s)})
				},
				OnProgress: func(p airdrop.Progress) {
					progressLbl.SetText(p.String())
					appendLogLine(a, p.String())
				},
				OnOutcome: func(oc airdrop.Outcome) {
					outMu.Lock()
					outcomes = append(outcomes, oc)
					done := len(outcomes)
					outMu.Unlock()
					if oc.Succeeded {
						nOK++
						appendLogLine(a, fmt.Sprintf("[ok] row %d %s %s", oc.Recipient.Row, oc.Recipient.Address, oc.Digest))
					} else {
						nBad++
						appendLogLine(a, fmt.Sprintf("[fail] row %d %s: %s", oc.Recipient.Row, oc.Recipient.Address, oc.Error))
					}
					okLbl.SetText(fmt.Sprintf("Succeeded: %d", nOK))
					badLbl.SetText(fmt.Sprintf("Failed: %d", nBad))
					logProg.SetValue(float64(done) / float64(len(res.Recipients)))
					logProgLbl.SetText(fmt.Sprintf("%d/%d", done, len(res.Recipients)))
					resultsTable.Refresh()
					telAdd(TelemetryItem{
						Time: time.Now().UTC().Format(time.RFC3339), Action: "transfer",
						Row: oc.Recipient.Row, Batch: oc.Batch, Address: oc.Recipient.Address,
						OK: oc.Succeeded, Digest: oc.Digest, Error: oc.Error,
					})
				},
			})

			go func() {
				rep, err := o.Execute(ctx, airdrop.Request{
					Sender:     acct.Address,
					Token:      holding.Token,
					Coins:      holding.Coins,
					Recipients: res.Recipients,
				})
				current.finish(rep)
				stopBtn.Disable()
				saveBtn.Enable()
				appendLogLine(a, report.Summary(rep))
				if err != nil {
					showErr(w, "airdrop", err)
				} else {
					a.SendNotification(&fyne.Notification{Title: "Airdrop finished", Content: report.Summary(rep)})
				}
				// balances changed
				if refreshTokens != nil {
					refreshTokens()
				}
				refreshExecute()
			}()
		}, w)
	})
	runBtn.Importance = widget.HighImportance
	runBtn.Disable()

	stopBtn = widget.NewButtonWithIcon("STOP", theme.MediaStopIcon(), func() {
		if current.stop() {
			appendLogLine(a, "[stop] cancelling after the current batch")
		}
	})
	stopBtn.Importance = widget.DangerImportance
	stopBtn.Disable()

	saveBtn = widget.NewButtonWithIcon("Save results", theme.DocumentSaveIcon(), func() {
		rep := current.last()
		if rep == nil {
			return
		}
		dir, err := saveReports(rep)
		if err != nil {
			showErr(w, "save results", err)
			return
		}
		saveTelemetryJSON()
		dialog.ShowInformation("Saved", "Results written to "+dir, w)
	})
	saveBtn.Disable()

	settings := widget.NewForm(
		widget.NewFormItem("Coin strategy", strategySel),
		widget.NewFormItem("Batch size", batchEntry),
	)
	controls := container.NewVBox(
		settings,
		autoApprove,
		container.NewGridWithColumns(3, runBtn, stopBtn, saveBtn),
		container.NewHBox(stateLbl, progressLbl),
		container.NewHBox(okLbl, badLbl),
	)
	return widget.NewCard("4. Execute", "", container.NewBorder(controls, nil, nil, nil, resultsTable))
}

// saveReports writes the success CSV, the failure CSV and the JSON report into outputDir.
func saveReports(rep *airdrop.Report) (string, error) {
	dir := outputDir()
	ts := time.Now().Format("20060102_150405")
	ok, err := os.Create(filepath.Join(dir, "airdrop_ok_"+ts+".csv"))
	if err != nil {
		return "", err
	}
	defer ok.Close()
	bad, err := os.Create(filepath.Join(dir, "airdrop_failed_"+ts+".csv"))
	if err != nil {
		return "", err
	}
	defer bad.Close()
	if err := report.WriteCSV(ok, bad, rep); err != nil {
		return "", err
	}
	js, err := os.Create(filepath.Join(dir, "airdrop_report_"+ts+".json"))
	if err != nil {
		return "", err
	}
	defer js.Close()
	if err := report.WriteJSON(js, rep); err != nil {
		return "", err
	}
	return dir, nil
}
