package ui

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/x/ansi"

	"github.com/zhubert/parley/internal/attach"
	"github.com/zhubert/parley/internal/chat"
)

// Compiled regex patterns for markdown parsing
var (
	boldPattern       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicPattern     = regexp.MustCompile(`(^|[^\w*])\*([^*\s][^*]*)\*`)
	inlineCodePattern = regexp.MustCompile("`([^`]+)`")
	linkPattern       = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	orderedItem       = regexp.MustCompile(`^(\d+)\.\s+(.*)$`)
	fencePattern      = regexp.MustCompile("(?s)```([\\w+-]*)\\n(.*?)```")
)

// highlightCode applies syntax highlighting to code using chroma
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(CurrentTheme().CodeStyle)
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

// renderInlineMarkdown applies inline formatting (bold, italic, code, links) to a line
func renderInlineMarkdown(line string) string {
	// Protect code spans from the other patterns.
	var spans []string
	line = inlineCodePattern.ReplaceAllStringFunc(line, func(match string) string {
		code := inlineCodePattern.FindStringSubmatch(match)[1]
		spans = append(spans, MarkdownInlineCodeStyle.Render(code))
		return fmt.Sprintf("\x00%d\x00", len(spans)-1)
	})

	line = boldPattern.ReplaceAllStringFunc(line, func(match string) string {
		return MarkdownBoldStyle.Render(boldPattern.FindStringSubmatch(match)[1])
	})
	line = italicPattern.ReplaceAllStringFunc(line, func(match string) string {
		parts := italicPattern.FindStringSubmatch(match)
		return parts[1] + MarkdownItalicStyle.Render(parts[2])
	})
	line = linkPattern.ReplaceAllStringFunc(line, func(match string) string {
		parts := linkPattern.FindStringSubmatch(match)
		return MarkdownLinkStyle.Render(parts[1]) + " (" + MarkdownLinkStyle.Render(parts[2]) + ")"
	})

	for i, span := range spans {
		line = strings.Replace(line, fmt.Sprintf("\x00%d\x00", i), span, 1)
	}
	return line
}

// wrapText wraps text to the specified width, handling ANSI escape codes
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	return ansi.Wrap(text, width, "")
}

// renderMarkdownLine renders a single line outside a code block
func renderMarkdownLine(line string, width int) string {
	trimmed := strings.TrimSpace(line)

	switch {
	case strings.HasPrefix(trimmed, "#"):
		heading := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		return MarkdownHeadingStyle.Render(heading)
	case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
		item := renderInlineMarkdown(trimmed[2:])
		return MarkdownListBulletStyle.Render("  • ") + wrapText(item, width-4)
	}
	if m := orderedItem.FindStringSubmatch(trimmed); m != nil {
		return MarkdownListBulletStyle.Render("  "+m[1]+". ") + wrapText(renderInlineMarkdown(m[2]), width-len(m[1])-4)
	}
	return wrapText(renderInlineMarkdown(line), width)
}

// RenderMarkdown renders assistant content for the terminal. Fenced code
// blocks are syntax highlighted; an unterminated fence (as seen mid-reveal)
// is highlighted up to the end of the text.
func RenderMarkdown(content string, width int) string {
	if width <= 0 {
		width = DefaultWrapWidth
	}

	var out []string
	var code []string
	var lang string
	inCode := false

	flush := func() {
		out = append(out, MarkdownCodeFenceStyle.Render("```"+lang))
		if len(code) > 0 {
			out = append(out, highlightCode(strings.Join(code, "\n"), lang))
		}
	}

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inCode {
				flush()
				out = append(out, MarkdownCodeFenceStyle.Render("```"))
				code, lang, inCode = nil, "", false
			} else {
				lang = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "```"))
				inCode = true
			}
			continue
		}
		if inCode {
			code = append(code, line)
			continue
		}
		out = append(out, renderMarkdownLine(line, width))
	}
	if inCode {
		flush()
	}
	return strings.Join(out, "\n")
}

// LastCodeBlock returns the body of the last fenced code block in content.
func LastCodeBlock(content string) (string, bool) {
	matches := fencePattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return "", false
	}
	return strings.TrimRight(matches[len(matches)-1][2], "\n"), true
}

// RenderMessage renders one history entry with its label line.
func RenderMessage(m chat.Message, width int) string {
	var b strings.Builder

	label := ChatAssistantStyle.Render("Assistant")
	if m.Role == chat.RoleUser {
		label = ChatUserStyle.Render("You")
	}
	b.WriteString(label)
	if !m.Timestamp.IsZero() {
		b.WriteString(ChatTimestampStyle.Render("  " + m.Timestamp.Local().Format("15:04")))
	}
	b.WriteString("\n")

	for _, f := range m.Files {
		icon := "📎"
		if f.IsImage() {
			icon = "🖼"
		}
		b.WriteString(ChatAttachmentStyle.Render(fmt.Sprintf("%s %s (%s)", icon, f.Name, attach.HumanSize(f.SizeBytes))))
		b.WriteString("\n")
	}

	switch {
	case m.IsError:
		b.WriteString(ChatErrorStyle.Render(wrapText(m.Content, width)))
	case m.Role == chat.RoleUser:
		b.WriteString(ChatMessageStyle.Render(wrapText(m.Content, width)))
	default:
		b.WriteString(RenderMarkdown(m.Content, width))
	}
	return b.String()
}
