package main

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// airdropTheme tints the default themes with a Sui blue primary colour.
type airdropTheme struct {
	mode    string
	compact bool
}

func makeTheme(mode string, compact bool) fyne.Theme { return &airdropTheme{mode: mode, compact: compact} }

func (t *airdropTheme) base() fyne.Theme {
	if t.mode == "light" {
		return theme.LightTheme()
	}
	return theme.DarkTheme()
}

func (t *airdropTheme) Color(n fyne.ThemeColorName, v fyne.ThemeVariant) color.Color {
	dark := t.mode != "light"
	switch n {
	case theme.ColorNamePrimary, theme.ColorNameHyperlink:
		return color.NRGBA{77, 162, 255, 255}
	case theme.ColorNameSuccess:
		return color.NRGBA{46, 184, 114, 255}
	case theme.ColorNameForeground:
		if dark {
			return color.NRGBA{240, 240, 240, 255}
		}
		return color.NRGBA{0, 0, 0, 255}
	case theme.ColorNamePlaceHolder, theme.ColorNameDisabled:
		if dark {
			return color.NRGBA{200, 200, 200, 255}
		}
		return color.NRGBA{90, 90, 90, 255}
	}
	return t.base().Color(n, v)
}

func (t *airdropTheme) Font(style fyne.TextStyle) fyne.Resource { return t.base().Font(style) }
func (t *airdropTheme) Icon(n fyne.ThemeIconName) fyne.Resource { return t.base().Icon(n) }

func (t *airdropTheme) Size(n fyne.ThemeSizeName) float32 {
	s := t.base().Size(n)
	if !t.compact {
		return s
	}
	switch n {
	case theme.SizeNameText:
		return s * 0.95
	case theme.SizeNamePadding:
		return s * 0.85
	}
	return s
}
