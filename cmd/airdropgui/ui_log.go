package main

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// ensureLogWindow creates or returns the log window.
func ensureLogWindow(a fyne.App) fyne.Window {
	if logWin != nil {
		return logWin
	}
	logWin = a.NewWindow("Airdrop log")
	logWin.SetOnClosed(func() { logWin = nil })
	logProg = widget.NewProgressBar()
	logProgLbl = widget.NewLabel("")
	exportBtn := widget.NewButtonWithIcon("Export Telemetry JSON", theme.DocumentSaveIcon(), func() {
		saveTelemetryJSON()
	})
	top := container.NewBorder(nil, nil, nil, exportBtn, container.NewHBox(widget.NewLabel("Recipients:"), logProg, logProgLbl))
	bg := canvas.NewLinearGradient(color.NRGBA{12, 16, 24, 255}, color.NRGBA{20, 28, 40, 255}, 90)
	logBox = widget.NewMultiLineEntry()
	logBox.Disable()
	logBox.Wrapping = fyne.TextWrapWord
	logScroll = container.NewVScroll(logBox)
	logScroll.SetMinSize(fyne.NewSize(800, 180))
	logWin.SetContent(container.NewBorder(top, nil, nil, nil, container.NewStack(bg, logScroll)))
	logWin.Resize(fyne.NewSize(1000, 600))
	return logWin
}

// appendLogLine adds a timestamped line to the log window.
func appendLogLine(a fyne.App, s string) {
	w := ensureLogWindow(a)
	logBox.SetText(logBox.Text + time.Now().Format("15:04:05 ") + s + "\n")
	if logScroll != nil {
		logScroll.ScrollToBottom()
	}
	w.Canvas().Refresh(logBox)
}

// outputDir is log_data next to the executable.
func outputDir() string {
	exe, _ := os.Executable()
	dir := filepath.Join(filepath.Dir(exe), "log_data")
	_ = os.MkdirAll(dir, 0o755)
	return dir
}

// saveTelemetryJSON writes telemetry to a timestamped JSON file.
func saveTelemetryJSON() {
	ts := time.Now().Format("20060102_150405")
	path := filepath.Join(outputDir(), "telemetry_"+ts+".json")
	out := map[string]any{
		"generatedAt": time.Now().UTC().Format(time.RFC3339),
		"network":     cfg.Network,
		"telemetry":   telSnapshot(),
	}
	f, err := os.Create(path)
	if err != nil {
		fyne.CurrentApp().SendNotification(&fyne.Notification{Title: "Save error", Content: fmt.Sprintf("%v", err)})
		return
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
	fyne.CurrentApp().SendNotification(&fyne.Notification{Title: "Saved", Content: path})
}
