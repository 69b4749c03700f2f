// Package ui provides theme management for the application.
// Themes define the color palette used throughout the UI.
package ui

import "github.com/zhubert/parley/internal/ui/modals"

// Theme defines a complete color palette for the application.
type Theme struct {
	// Name is the display name of the theme
	Name string

	// Primary is the main accent color (used for focus, highlights, headers)
	Primary string
	// Secondary is the secondary accent color (used for assistant messages, info)
	Secondary string

	Bg         string // Main background
	BgSelected string // Selected item background (defaults to Primary if empty)

	Text        string
	TextMuted   string
	TextInverse string // Text on colored backgrounds

	User      string
	Assistant string
	Warning   string // Usage warnings, banners
	Error     string
	Success   string

	Border      string
	BorderFocus string // defaults to Primary if empty

	MarkdownHeading string
	MarkdownCode    string
	MarkdownLink    string

	// CodeStyle is the chroma style used for fenced code blocks.
	CodeStyle string
}

// GetBgSelected returns the selected background color, defaulting to Primary
func (t Theme) GetBgSelected() string {
	if t.BgSelected != "" {
		return t.BgSelected
	}
	return t.Primary
}

// GetBorderFocus returns the focused border color, defaulting to Primary
func (t Theme) GetBorderFocus() string {
	if t.BorderFocus != "" {
		return t.BorderFocus
	}
	return t.Primary
}

// ThemeName is a type for theme identifiers
type ThemeName string

const (
	ThemeDarkPurple ThemeName = "dark-purple"
	ThemeNord       ThemeName = "nord"
	ThemeDracula    ThemeName = "dracula"
	ThemeLight      ThemeName = "light"
)

// DefaultTheme is the default theme name
const DefaultTheme = ThemeDarkPurple

// BuiltinThemes contains all built-in themes
var BuiltinThemes = map[ThemeName]Theme{
	ThemeDarkPurple: {
		Name:            "Dark Purple",
		Primary:         "#7C3AED",
		Secondary:       "#06B6D4",
		Bg:              "#1F2937",
		Text:            "#F9FAFB",
		TextMuted:       "#9CA3AF",
		TextInverse:     "#1F2937",
		User:            "#A78BFA",
		Assistant:       "#22D3EE",
		Warning:         "#F59E0B",
		Error:           "#EF4444",
		Success:         "#10B981",
		Border:          "#374151",
		MarkdownHeading: "#C4B5FD",
		MarkdownCode:    "#67E8F9",
		MarkdownLink:    "#67E8F9",
		CodeStyle:       "monokai",
	},
	ThemeNord: {
		Name:            "Nord",
		Primary:         "#88C0D0",
		Secondary:       "#81A1C1",
		Bg:              "#2E3440",
		BgSelected:      "#4C566A",
		Text:            "#ECEFF4",
		TextMuted:       "#D8DEE9",
		TextInverse:     "#2E3440",
		User:            "#B48EAD",
		Assistant:       "#88C0D0",
		Warning:         "#EBCB8B",
		Error:           "#BF616A",
		Success:         "#A3BE8C",
		Border:          "#4C566A",
		MarkdownHeading: "#8FBCBB",
		MarkdownCode:    "#A3BE8C",
		MarkdownLink:    "#5E81AC",
		CodeStyle:       "nord",
	},
	ThemeDracula: {
		Name:            "Dracula",
		Primary:         "#BD93F9",
		Secondary:       "#8BE9FD",
		Bg:              "#282A36",
		BgSelected:      "#44475A",
		Text:            "#F8F8F2",
		TextMuted:       "#BFBFBF",
		TextInverse:     "#282A36",
		User:            "#FF79C6",
		Assistant:       "#8BE9FD",
		Warning:         "#FFB86C",
		Error:           "#FF5555",
		Success:         "#50FA7B",
		Border:          "#6272A4",
		MarkdownHeading: "#BD93F9",
		MarkdownCode:    "#50FA7B",
		MarkdownLink:    "#8BE9FD",
		CodeStyle:       "dracula",
	},
	ThemeLight: {
		Name:            "Light",
		Primary:         "#6D28D9",
		Secondary:       "#0891B2",
		Bg:              "#FFFFFF",
		BgSelected:      "#EDE9FE",
		Text:            "#111827",
		TextMuted:       "#4B5563",
		TextInverse:     "#FFFFFF",
		User:            "#7C3AED",
		Assistant:       "#0E7490",
		Warning:         "#B45309",
		Error:           "#DC2626",
		Success:         "#047857",
		Border:          "#D1D5DB",
		MarkdownHeading: "#5B21B6",
		MarkdownCode:    "#0F766E",
		MarkdownLink:    "#0891B2",
		CodeStyle:       "github",
	},
}

// ThemeNames returns a list of all available theme names in display order
func ThemeNames() []ThemeName {
	return []ThemeName{ThemeDarkPurple, ThemeNord, ThemeDracula, ThemeLight}
}

// GetTheme returns a theme by name, defaulting to DarkPurple if not found
func GetTheme(name ThemeName) Theme {
	if theme, ok := BuiltinThemes[name]; ok {
		return theme
	}
	return BuiltinThemes[DefaultTheme]
}

var currentTheme = BuiltinThemes[DefaultTheme]

// CurrentTheme returns the currently active theme
func CurrentTheme() Theme {
	return currentTheme
}

// SetTheme sets the active theme and regenerates all styles
func SetTheme(name ThemeName) {
	currentTheme = GetTheme(name)
	regenerateStyles()
}

// SetThemeByName sets the active theme by string name
func SetThemeByName(name string) {
	SetTheme(ThemeName(name))
}

// CurrentThemeName returns the name of the current theme
func CurrentThemeName() ThemeName {
	for name, theme := range BuiltinThemes {
		if theme.Name == currentTheme.Name {
			return name
		}
	}
	return DefaultTheme
}

// RefreshModalStyles pushes the current styles into the modals package.
func RefreshModalStyles() {
	modals.SetStyles(modals.Styles{
		Title:       ModalTitleStyle,
		Help:        ModalHelpStyle,
		Primary:     ColorPrimary,
		Secondary:   ColorSecondary,
		Text:        ColorText,
		TextMuted:   ColorTextMuted,
		TextInverse: ColorTextInverse,
		Warning:     ColorWarning,
		Success:     ColorSuccess,
		InputWidth:  ModalInputWidth,
		ModalWidth:  ModalWidth,
		Accent:      ColorAssistant,
	})
}
