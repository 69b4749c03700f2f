package modals

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Styles is the palette the parent ui package pushes into this package.
type Styles struct {
	Title lipgloss.Style
	Help  lipgloss.Style

	Primary     color.Color
	Secondary   color.Color
	Text        color.Color
	TextMuted   color.Color
	TextInverse color.Color
	Warning     color.Color
	Success     color.Color
	Accent      color.Color

	InputWidth int
	ModalWidth int
}

// Style variables - these will be set by the parent ui package via SetStyles
var (
	ModalTitleStyle lipgloss.Style
	ModalHelpStyle  lipgloss.Style

	ColorPrimary     color.Color
	ColorSecondary   color.Color
	ColorText        color.Color
	ColorTextMuted   color.Color
	ColorTextInverse color.Color
	ColorWarning     color.Color
	ColorSuccess     color.Color
	ColorAccent      color.Color

	ModalInputWidth = 50
	ModalWidth      = 60
)

// HelpModalMaxVisible is the list height of the help modal.
const HelpModalMaxVisible = 16

// SetStyles sets the style variables from the parent ui package.
// This must be called before rendering any modals.
func SetStyles(s Styles) {
	ModalTitleStyle = s.Title
	ModalHelpStyle = s.Help

	ColorPrimary = s.Primary
	ColorSecondary = s.Secondary
	ColorText = s.Text
	ColorTextMuted = s.TextMuted
	ColorTextInverse = s.TextInverse
	ColorWarning = s.Warning
	ColorSuccess = s.Success
	ColorAccent = s.Accent

	if s.InputWidth > 0 {
		ModalInputWidth = s.InputWidth
	}
	if s.ModalWidth > 0 {
		ModalWidth = s.ModalWidth
	}
}
