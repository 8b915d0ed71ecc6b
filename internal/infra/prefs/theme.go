package prefs

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrUnknownTheme is returned for theme names outside Themes.
var ErrUnknownTheme = errors.New("unknown theme")

// Theme is a display theme name.
type Theme string

const (
	ThemePurple Theme = "purple"
	ThemeBlue   Theme = "blue"
	ThemeGreen  Theme = "green"
	ThemeDark   Theme = "dark"
	ThemeLight  Theme = "light"
)

// DefaultTheme is used when no valid preference is stored.
const DefaultTheme = ThemePurple

// Themes lists the supported themes in cycling order.
var Themes = []Theme{ThemePurple, ThemeBlue, ThemeGreen, ThemeDark, ThemeLight}

// ParseTheme parses a theme name, ignoring case and surrounding space.
func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", errors.Wrapf(ErrUnknownTheme, "%q (want one of %s)", s, themeNames())
	}
	return t, nil
}

// Valid reports whether t is a supported theme.
func (t Theme) Valid() bool {
	for _, known := range Themes {
		if t == known {
			return true
		}
	}
	return false
}

// Next returns the theme after t in Themes, wrapping around.
// Unknown themes advance from the default.
func (t Theme) Next() Theme {
	for i, known := range Themes {
		if t == known {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return DefaultTheme.Next()
}

func (t Theme) String() string {
	return string(t)
}

func themeNames() string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
