package app

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/parley/internal/logger"
)

// BrowserErrorMsg reports a failure to open a URL.
type BrowserErrorMsg struct {
	Error string
}

// browserCommand returns the command that opens url on goos.
func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

// openBrowser opens url with the platform's default handler.
var openBrowser = func(url string) tea.Cmd {
	return func() tea.Msg {
		log := logger.WithComponent("app")
		name, args := browserCommand(runtime.GOOS, url)
		log.Debug("opening browser", "os", runtime.GOOS, "command", name)

		output, err := exec.Command(name, args...).CombinedOutput()
		if err != nil {
			errMsg := fmt.Sprintf("Failed to open browser: %v", err)
			if len(output) > 0 {
				errMsg = fmt.Sprintf("Failed to open browser: %s", strings.TrimSpace(string(output)))
			}
			log.Warn("failed to open browser", "error", errMsg)
			return BrowserErrorMsg{Error: errMsg}
		}
		return nil
	}
}
