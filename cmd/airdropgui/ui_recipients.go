package main

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/ligun0805/sui-airdrop/internal/recipients"
	"github.com/ligun0805/sui-airdrop/internal/sui"
)

const previewRows = 10

func recipientsCard(w fyne.Window) fyne.CanvasObject {
	parser := recipients.NewParser(lg)

	fileLbl := widget.NewLabel("No file loaded")
	totalsLbl := widget.NewLabel("")
	errBox := widget.NewMultiLineEntry()
	errBox.Disable()
	errBox.Wrapping = fyne.TextWrapWord
	errBox.SetMinRowsVisible(4)

	preview := widget.NewTable(
		func() (int, int) {
			if parsed == nil {
				return 0, 3
			}
			return min(len(parsed.Recipients), previewRows), 3
		},
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.TableCellID, o fyne.CanvasObject) {
			lbl := o.(*widget.Label)
			if parsed == nil || id.Row >= len(parsed.Recipients) {
				lbl.SetText("")
				return
			}
			rc := parsed.Recipients[id.Row]
			switch id.Col {
			case 0:
				lbl.SetText(fmt.Sprint(rc.Row))
			case 1:
				lbl.SetText(sui.ShortAddress(rc.Address))
			case 2:
				lbl.SetText(rc.Amount)
			}
		},
	)
	preview.SetColumnWidth(0, 50)
	preview.SetColumnWidth(1, 220)
	preview.SetColumnWidth(2, 140)

	show := func(name string, res *recipients.Result) {
		parsed = res
		fileLbl.SetText(name)
		if res == nil {
			totalsLbl.SetText("")
			errBox.SetText("")
		} else {
			more := ""
			if n := len(res.Recipients) - previewRows; n > 0 {
				more = fmt.Sprintf(" (showing first %d, %d more)", previewRows, n)
			}
			totalsLbl.SetText(fmt.Sprintf("Valid recipients: %d · Skipped: %d · Errors: %d · Total amount: %s%s",
				len(res.Recipients), len(res.Skipped), len(res.Errors), res.TotalAmount().String(), more))
			errBox.SetText(strings.Join(res.Errors, "\n"))
		}
		preview.Refresh()
		if refreshExecute != nil {
			refreshExecute()
		}
	}

	importBtn := widget.NewButtonWithIcon("Import CSV", theme.FolderOpenIcon(), func() {
		fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil {
				showErr(w, "open file", err)
				return
			}
			if rc == nil {
				return
			}
			defer rc.Close()
			uri := rc.URI()
			res, err := parser.Load(uri.Name(), uri.MimeType(), rc)
			if err != nil {
				lg.Warnw("recipient file rejected", "file", uri.Name(), "err", err)
			}
			show(uri.Name(), res)
		}, w)
		fd.SetFilter(storage.NewExtensionFileFilter([]string{".csv", ".CSV"}))
		fd.Show()
	})
	clearBtn := widget.NewButtonWithIcon("Clear", theme.ContentClearIcon(), func() { show("No file loaded", nil) })

	head := container.NewBorder(nil, nil, nil, container.NewHBox(importBtn, clearBtn), fileLbl)
	hint := widget.NewLabel("Columns: " + recipients.AddressColumn + ", " + recipients.AmountColumn)
	return widget.NewCard("3. Recipients", "", container.NewBorder(
		container.NewVBox(head, hint, totalsLbl),
		errBox, nil, nil,
		preview,
	))
}
