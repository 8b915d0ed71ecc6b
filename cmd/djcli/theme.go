package main

import (
	"github.com/gdamore/tcell/v2"

	"github.com/osa030/djeve/internal/infra/prefs"
)

// palette holds the board colours of one theme.
type palette struct {
	Background tcell.Color
	Text       tcell.Color
	Accent     tcell.Color
	Muted      tcell.Color
}

var palettes = map[prefs.Theme]palette{
	prefs.ThemePurple: {
		Background: tcell.NewHexColor(0x1e1033),
		Text:       tcell.NewHexColor(0xf3e8ff),
		Accent:     tcell.NewHexColor(0xa855f7),
		Muted:      tcell.NewHexColor(0x7c6a91),
	},
	prefs.ThemeBlue: {
		Background: tcell.NewHexColor(0x0b1a33),
		Text:       tcell.NewHexColor(0xe0ecff),
		Accent:     tcell.NewHexColor(0x3b82f6),
		Muted:      tcell.NewHexColor(0x64748b),
	},
	prefs.ThemeGreen: {
		Background: tcell.NewHexColor(0x0d2818),
		Text:       tcell.NewHexColor(0xdcfce7),
		Accent:     tcell.NewHexColor(0x22c55e),
		Muted:      tcell.NewHexColor(0x5f7f6a),
	},
	prefs.ThemeDark: {
		Background: tcell.NewHexColor(0x111111),
		Text:       tcell.NewHexColor(0xe5e7eb),
		Accent:     tcell.NewHexColor(0x9ca3af),
		Muted:      tcell.NewHexColor(0x6b7280),
	},
	prefs.ThemeLight: {
		Background: tcell.NewHexColor(0xf9fafb),
		Text:       tcell.NewHexColor(0x111827),
		Accent:     tcell.NewHexColor(0x6d28d9),
		Muted:      tcell.NewHexColor(0x9ca3af),
	},
}

// paletteFor returns the palette of t, falling back to the default theme.
func paletteFor(t prefs.Theme) palette {
	if p, ok := palettes[t]; ok {
		return p
	}
	return palettes[prefs.DefaultTheme]
}
