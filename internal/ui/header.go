package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/zhubert/parley/internal/api"
)

// Header represents the top header bar
type Header struct {
	width int
	user  *api.User
	title string
}

// NewHeader creates a new header
func NewHeader() *Header {
	return &Header{}
}

// SetWidth sets the header width
func (h *Header) SetWidth(width int) {
	h.width = width
}

// SetUser sets the signed-in user, or nil when signed out.
func (h *Header) SetUser(u *api.User) {
	h.user = u
}

// SetTitle sets the active conversation title.
func (h *Header) SetTitle(title string) {
	h.title = title
}

// UsageSummary describes a free user's message usage, e.g. "7/10 messages".
// warn is set once usage reaches UsageWarnPercent. Paid users have no summary.
func UsageSummary(u api.User) (summary string, warn bool) {
	if !u.IsFree() || u.MessageLimit <= 0 {
		return "", false
	}
	summary = fmt.Sprintf("%d/%d messages", u.MessageCount, u.MessageLimit)
	return summary, u.UsagePercent() >= UsageWarnPercent
}

// UsageBar renders usage as a fixed-width bar.
func UsageBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(percent / 100 * float64(width))
	filled = max(0, min(filled, width))
	return UsageFilledStyle.Render(strings.Repeat("█", filled)) +
		UsageEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// View renders the header
func (h *Header) View() string {
	left := h.renderGradient(" parley")
	if h.title != "" {
		left += HeaderStyle.Render(" · " + h.title)
	}

	var right []string
	if h.user != nil {
		name := h.user.Name
		if name == "" {
			name = h.user.Email
		}
		right = append(right, name)
		if h.user.IsFree() {
			right = append(right, BadgeFreeStyle.Render("FREE"))
			if summary, warn := UsageSummary(*h.user); summary != "" {
				right = append(right, UsageBar(h.user.UsagePercent(), UsageBarWidth), summary)
				if warn {
					right = append(right, UsageWarnStyle.Render("almost at limit"))
				}
			}
		} else {
			right = append(right, BadgeProStyle.Render(strings.ToUpper(h.user.Role)))
		}
	} else {
		right = append(right, "signed out")
	}
	rightText := strings.Join(right, " ") + " "

	pad := h.width - lipgloss.Width(left) - lipgloss.Width(rightText)
	if pad < 1 {
		left = ansi.Truncate(left, max(0, h.width-lipgloss.Width(rightText)-1), "…")
		pad = max(0, h.width-lipgloss.Width(left)-lipgloss.Width(rightText))
	}
	return left + strings.Repeat(" ", pad) + rightText
}

// parseHexColor parses a hex color string (e.g., "#7C3AED") into RGB components
func parseHexColor(hex string) (r, g, b int) {
	if len(hex) == 7 && hex[0] == '#' {
		fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b)
	}
	return
}

// renderGradient renders the title with a theme-aware gradient background
func (h *Header) renderGradient(content string) string {
	theme := CurrentTheme()
	startR, startG, startB := parseHexColor(theme.Primary)
	endR, endG, endB := parseHexColor(theme.Bg)
	textColor := lipgloss.Color(theme.Text)

	runes := []rune(content)
	var result strings.Builder
	for i, r := range runes {
		t := float64(i) / float64(len(runes))
		cr := int(float64(startR)*(1-t) + float64(endR)*t)
		cg := int(float64(startG)*(1-t) + float64(endG)*t)
		cb := int(float64(startB)*(1-t) + float64(endB)*t)

		style := lipgloss.NewStyle().
			Background(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", cr, cg, cb))).
			Foreground(textColor).
			Bold(true)
		result.WriteString(style.Render(string(r)))
	}
	return result.String()
}
