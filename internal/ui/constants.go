// Package ui provides constants for layout calculations and configuration.
package ui

// Layout constants for panel sizing
const (
	// HeaderHeight is the height of the header in lines
	HeaderHeight = 1

	// FooterHeight is the height of the footer in lines
	FooterHeight = 1

	// BorderSize is the total border width (1 on each side)
	BorderSize = 2

	// SidebarWidthRatio is the denominator for sidebar width (1/4 of total width)
	SidebarWidthRatio = 4
	MinSidebarWidth   = 20
	MaxSidebarWidth   = 40

	// TextareaHeight is the number of lines for the chat input textarea
	TextareaHeight = 3

	// TextareaBorderHeight is the border size around the textarea
	TextareaBorderHeight = 2

	// InputPaddingWidth is the horizontal padding inside the input area
	InputPaddingWidth = 2

	// InputTotalHeight is the total height of the input area (textarea + borders)
	InputTotalHeight = TextareaHeight + TextareaBorderHeight

	// DefaultWrapWidth is the default width for text wrapping when viewport width is unknown
	DefaultWrapWidth = 80

	MinTerminalWidth  = 60
	MinTerminalHeight = 15
)

// Usage display
const (
	// UsageBarWidth is the number of cells in the header usage bar
	UsageBarWidth = 10

	// UsageWarnPercent is the usage at which free users are warned
	UsageWarnPercent = 80
)

// Modal dimensions
const (
	ModalWidth          = 60
	ModalInputCharLimit = 256
	ModalInputWidth     = 50
)
