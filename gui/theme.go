//go:build gui

package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"notewriter/panel"
)

type panelTheme struct{}

func (panelTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return color.RGBA{240, 240, 240, 255}
	case theme.ColorNameForeground:
		return color.RGBA{30, 30, 30, 255}
	}
	return theme.DefaultTheme().Color(name, theme.VariantLight)
}

func (panelTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (panelTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (panelTheme) Size(name fyne.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(name)
}

var statusColors = map[panel.Color]color.Color{
	panel.Green:  color.RGBA{46, 125, 50, 255},
	panel.Blue:   color.RGBA{25, 118, 210, 255},
	panel.Orange: color.RGBA{239, 108, 0, 255},
	panel.Red:    color.RGBA{211, 47, 47, 255},
}

func statusColor(c panel.Color) color.Color {
	if rgba, ok := statusColors[c]; ok {
		return rgba
	}
	return theme.DefaultTheme().Color(theme.ColorNameForeground, theme.VariantLight)
}
