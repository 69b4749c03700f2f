// Package ui provides the terminal components of the parley chat client.
//
// The layout is a one-line header, a conversation sidebar beside the chat
// panel, and a one-line footer:
//
//	┌─────────────────────────────────────────────────────┐
//	│ Header: title, account, plan badge and usage bar    │
//	├─────────────┬───────────────────────────────────────┤
//	│  Sidebar    │  Chat transcript                      │
//	│  (1/4)      │  status line (banner, staged files)   │
//	│             │  input                                │
//	├─────────────┴───────────────────────────────────────┤
//	│ Footer: key bindings or a flash message             │
//	└─────────────────────────────────────────────────────┘
//
// All size calculations go through ViewContext. Styles are regenerated from
// the active Theme by SetTheme and pushed into the modals package.
//
// The chat panel does not decide when to scroll: it asks the session's
// scroll.Tracker on every render and reports user scrolls back to it.
package ui
