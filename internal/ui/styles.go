package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Color palette, set from the current theme by regenerateStyles.
var (
	ColorPrimary     color.Color
	ColorSecondary   color.Color
	ColorBorder      color.Color
	ColorBorderFocus color.Color
	ColorBg          color.Color
	ColorText        color.Color
	ColorTextMuted   color.Color
	ColorTextInverse color.Color
	ColorUser        color.Color
	ColorAssistant   color.Color
	ColorWarning     color.Color
	ColorError       color.Color
	ColorSuccess     color.Color
)

// Header styles
var (
	HeaderStyle      lipgloss.Style
	BadgeFreeStyle   lipgloss.Style
	BadgeProStyle    lipgloss.Style
	UsageFilledStyle lipgloss.Style
	UsageEmptyStyle  lipgloss.Style
	UsageWarnStyle   lipgloss.Style
)

// Footer styles
var (
	FooterStyle     lipgloss.Style
	FooterKeyStyle  lipgloss.Style
	FooterDescStyle lipgloss.Style
	FlashStyles     map[FlashType]lipgloss.Style
)

// Panel and sidebar styles
var (
	PanelStyle           lipgloss.Style
	PanelFocusedStyle    lipgloss.Style
	PanelTitleStyle      lipgloss.Style
	SidebarItemStyle     lipgloss.Style
	SidebarSelectedStyle lipgloss.Style
	SidebarActiveStyle   lipgloss.Style
	SidebarEmptyStyle    lipgloss.Style
)

// Chat styles
var (
	ChatUserStyle         lipgloss.Style
	ChatAssistantStyle    lipgloss.Style
	ChatErrorStyle        lipgloss.Style
	ChatMessageStyle      lipgloss.Style
	ChatTimestampStyle    lipgloss.Style
	ChatAttachmentStyle   lipgloss.Style
	ChatWaitingStyle      lipgloss.Style
	ChatInputStyle        lipgloss.Style
	ChatInputFocusedStyle lipgloss.Style
	StagedFileStyle       lipgloss.Style
	BannerStyle           lipgloss.Style
	JumpHintStyle         lipgloss.Style
)

// Markdown styles
var (
	MarkdownHeadingStyle    lipgloss.Style
	MarkdownBoldStyle       lipgloss.Style
	MarkdownItalicStyle     lipgloss.Style
	MarkdownInlineCodeStyle lipgloss.Style
	MarkdownLinkStyle       lipgloss.Style
	MarkdownListBulletStyle lipgloss.Style
	MarkdownCodeFenceStyle  lipgloss.Style
)

// Modal styles
var (
	ModalStyle       lipgloss.Style
	ModalTitleStyle  lipgloss.Style
	ModalHelpStyle   lipgloss.Style
	StatusErrorStyle lipgloss.Style
)

func init() {
	regenerateStyles()
}

// regenerateStyles updates all style variables based on the current theme
func regenerateStyles() {
	t := currentTheme

	ColorPrimary = lipgloss.Color(t.Primary)
	ColorSecondary = lipgloss.Color(t.Secondary)
	ColorBorder = lipgloss.Color(t.Border)
	ColorBorderFocus = lipgloss.Color(t.GetBorderFocus())
	ColorBg = lipgloss.Color(t.Bg)
	ColorText = lipgloss.Color(t.Text)
	ColorTextMuted = lipgloss.Color(t.TextMuted)
	ColorTextInverse = lipgloss.Color(t.TextInverse)
	ColorUser = lipgloss.Color(t.User)
	ColorAssistant = lipgloss.Color(t.Assistant)
	ColorWarning = lipgloss.Color(t.Warning)
	ColorError = lipgloss.Color(t.Error)
	ColorSuccess = lipgloss.Color(t.Success)

	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorText).Background(ColorPrimary)
	BadgeFreeStyle = lipgloss.NewStyle().Foreground(ColorTextInverse).Background(ColorTextMuted).Padding(0, 1)
	BadgeProStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorTextInverse).Background(ColorSuccess).Padding(0, 1)
	UsageFilledStyle = lipgloss.NewStyle().Foreground(ColorSecondary)
	UsageEmptyStyle = lipgloss.NewStyle().Foreground(ColorBorder)
	UsageWarnStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorWarning)

	FooterStyle = lipgloss.NewStyle().Foreground(ColorTextMuted).Padding(0, 1)
	FooterKeyStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorSecondary)
	FooterDescStyle = lipgloss.NewStyle().Foreground(ColorTextMuted)
	FlashStyles = map[FlashType]lipgloss.Style{
		FlashInfo:    lipgloss.NewStyle().Foreground(ColorSecondary),
		FlashSuccess: lipgloss.NewStyle().Foreground(ColorSuccess),
		FlashWarning: lipgloss.NewStyle().Foreground(ColorWarning),
		FlashError:   lipgloss.NewStyle().Bold(true).Foreground(ColorError),
	}

	PanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorBorder)
	PanelFocusedStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorBorderFocus)
	PanelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).Padding(0, 1)
	SidebarItemStyle = lipgloss.NewStyle().Padding(0, 1)
	SidebarSelectedStyle = lipgloss.NewStyle().
		Background(lipgloss.Color(t.GetBgSelected())).
		Foreground(ColorText).
		Bold(true).
		Padding(0, 1)
	SidebarActiveStyle = lipgloss.NewStyle().Foreground(ColorSecondary).Padding(0, 1)
	SidebarEmptyStyle = lipgloss.NewStyle().Foreground(ColorTextMuted).Italic(true).Padding(0, 1)

	ChatUserStyle = lipgloss.NewStyle().Foreground(ColorUser).Bold(true)
	ChatAssistantStyle = lipgloss.NewStyle().Foreground(ColorAssistant).Bold(true)
	ChatErrorStyle = lipgloss.NewStyle().Foreground(ColorError)
	ChatMessageStyle = lipgloss.NewStyle().Foreground(ColorText)
	ChatTimestampStyle = lipgloss.NewStyle().Foreground(ColorTextMuted)
	ChatAttachmentStyle = lipgloss.NewStyle().Foreground(ColorSecondary).Italic(true)
	ChatWaitingStyle = lipgloss.NewStyle().Foreground(ColorTextMuted).Italic(true)
	ChatInputStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorBorder).Padding(0, 1)
	ChatInputFocusedStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorBorderFocus).Padding(0, 1)
	StagedFileStyle = lipgloss.NewStyle().Foreground(ColorTextInverse).Background(ColorSecondary).Padding(0, 1).MarginRight(1)
	BannerStyle = lipgloss.NewStyle().Foreground(ColorTextInverse).Background(ColorError).Padding(0, 1)
	JumpHintStyle = lipgloss.NewStyle().Foreground(ColorTextInverse).Background(ColorPrimary).Padding(0, 1)

	MarkdownHeadingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.MarkdownHeading))
	MarkdownBoldStyle = lipgloss.NewStyle().Bold(true)
	MarkdownItalicStyle = lipgloss.NewStyle().Italic(true)
	MarkdownInlineCodeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(t.MarkdownCode))
	MarkdownLinkStyle = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color(t.MarkdownLink))
	MarkdownListBulletStyle = lipgloss.NewStyle().Foreground(ColorSecondary)
	MarkdownCodeFenceStyle = lipgloss.NewStyle().Foreground(ColorTextMuted)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2).
		Width(ModalWidth)
	ModalTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).MarginBottom(1)
	ModalHelpStyle = lipgloss.NewStyle().Foreground(ColorTextMuted).MarginTop(1)
	StatusErrorStyle = lipgloss.NewStyle().Foreground(ColorError)

	RefreshModalStyles()
}
