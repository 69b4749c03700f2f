package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/zhubert/parley/internal/ui/modals"
)

func TestNewModal(t *testing.T) {
	modal := NewModal()

	if modal.IsVisible() {
		t.Error("New modal should not be visible")
	}
	if modal.View(80, 24) != "" {
		t.Error("Hidden modal should render nothing")
	}
}

func TestModal_ShowHide(t *testing.T) {
	modal := NewModal()
	modal.Show(modals.NewAttachState())

	if !modal.IsVisible() {
		t.Error("Modal should be visible after Show")
	}

	modal.SetError("boom")
	modal.Hide()

	if modal.IsVisible() {
		t.Error("Modal should not be visible after Hide")
	}
	if modal.GetError() != "" {
		t.Error("Hide should clear the error")
	}
}

func TestModal_ShowClearsError(t *testing.T) {
	modal := NewModal()
	modal.Show(modals.NewAttachState())
	modal.SetError("file not found")

	modal.Show(modals.NewLoginState("", ""))
	if modal.GetError() != "" {
		t.Errorf("Expected error cleared on Show, got %q", modal.GetError())
	}
}

func TestModal_View(t *testing.T) {
	modal := NewModal()
	modal.Show(modals.NewConfirmDeleteState("c1", "Groceries"))
	modal.SetError("Conversation not found")

	view := ansi.Strip(modal.View(100, 30))
	for _, want := range []string{"Delete Conversation?", "Groceries", "Conversation not found"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected %q in modal view", want)
		}
	}
}

func TestModal_StylesReachModals(t *testing.T) {
	SetTheme(ThemeNord)
	defer SetTheme(DefaultTheme)

	if modals.ModalWidth != ModalWidth {
		t.Errorf("Expected modal width %d, got %d", ModalWidth, modals.ModalWidth)
	}
	if modals.ColorPrimary != ColorPrimary {
		t.Error("Expected modal palette to follow the theme")
	}
}
