package app

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/parley/internal/api"
	"github.com/zhubert/parley/internal/attach"
	perrors "github.com/zhubert/parley/internal/errors"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/ui"
)

// Footer flashes dismiss themselves. Every helper returns the tick that
// clears the message, so callers must hand the command back to the runtime.

// ShowFlash sets the footer message and starts its dismiss timer.
func (m *Model) ShowFlash(text string, flashType ui.FlashType) tea.Cmd {
	m.footer.SetFlash(text, flashType)
	return ui.FlashTick()
}

func (m *Model) ShowFlashError(text string) tea.Cmd { return m.ShowFlash(text, ui.FlashError) }
func (m *Model) ShowFlashWarning(text string) tea.Cmd { return m.ShowFlash(text, ui.FlashWarning) }
func (m *Model) ShowFlashInfo(text string) tea.Cmd { return m.ShowFlash(text, ui.FlashInfo) }
func (m *Model) ShowFlashSuccess(text string) tea.Cmd { return m.ShowFlash(text, ui.FlashSuccess) }

// flashSendError reports a send the session refused. Blank input is ignored
// without a message.
func (m *Model) flashSendError(err error) tea.Cmd {
	switch perrors.GetKind(err) {
	case perrors.KindBusy:
		return m.ShowFlashWarning("Wait for the current reply to finish")
	case perrors.KindInvalid:
		return nil
	default:
		return m.ShowFlashError("Send failed: " + api.Reason(err))
	}
}

// flashRejected reports attachments that were over the size limit.
func (m *Model) flashRejected(rejected []attach.Rejection) tea.Cmd {
	switch len(rejected) {
	case 0:
		return nil
	case 1:
		return m.ShowFlashError(rejected[0].Message())
	}
	names := make([]string, len(rejected))
	for i, r := range rejected {
		names[i] = r.Name
	}
	return m.ShowFlashError(fmt.Sprintf("%d files are over %s: %s",
		len(rejected), attach.HumanSize(attach.MaxFileSize), strings.Join(names, ", ")))
}

// saveConfigOrFlash saves the config and flashes on failure.
func (m *Model) saveConfigOrFlash() tea.Cmd {
	if !m.persistConfig {
		return nil
	}
	if err := m.config.Save(); err != nil {
		logger.WithComponent("app").Error("failed to save config", "error", err)
		return m.ShowFlashError("Failed to save config")
	}
	return nil
}
