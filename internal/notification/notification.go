// Package notification provides cross-platform desktop notifications.
// It uses the beeep library to send notifications on macOS, Linux, and Windows.
package notification

import (
	"github.com/gen2brain/beeep"

	"github.com/zhubert/parley/internal/logger"
)

// AppName is the title of every notification.
const AppName = "parley"

// notifier sends one notification. Tests replace it to avoid real popups.
var notifier = beeep.Notify

// SetNotifier replaces the notification function.
func SetNotifier(fn func(title, message string, icon any) error) {
	notifier = fn
}

// ResetNotifier restores the beeep notifier.
func ResetNotifier() {
	notifier = beeep.Notify
}

// Send sends a desktop notification with the given title and message.
func Send(title, message string) error {
	log := logger.WithComponent("notification")
	log.Debug("sending notification", "title", title, "message", message)

	// Empty icon lets beeep use the platform default
	if err := notifier(title, message, ""); err != nil {
		log.Warn("failed to send notification", "error", err)
		return err
	}
	return nil
}

// ReplyReady tells the user an assistant reply has finished arriving.
func ReplyReady(conversationTitle string) error {
	if conversationTitle == "" {
		return Send(AppName, "Reply ready")
	}
	return Send(AppName, "Reply ready in "+conversationTitle)
}

// PaymentConfirmed tells the user their upgrade went through.
func PaymentConfirmed(planName string) error {
	if planName == "" {
		return Send(AppName, "Payment confirmed")
	}
	return Send(AppName, "Payment confirmed: welcome to "+planName)
}
