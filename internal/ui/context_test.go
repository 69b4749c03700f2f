package ui

import (
	"sync"
	"testing"
)

func TestViewContext_UpdateTerminalSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantW, wantH  int
		wantSidebar   int
	}{
		{"typical", 120, 40, 120, 40, 30},
		{"narrow keeps a readable sidebar", 64, 20, 64, 20, MinSidebarWidth},
		{"wide caps the sidebar", 240, 60, 240, 60, MaxSidebarWidth},
		{"clamped to minimum", 20, 5, MinTerminalWidth, MinTerminalHeight, MinSidebarWidth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := GetViewContext()
			ctx.UpdateTerminalSize(tt.width, tt.height)

			if ctx.TerminalWidth != tt.wantW || ctx.TerminalHeight != tt.wantH {
				t.Errorf("terminal = %dx%d, want %dx%d", ctx.TerminalWidth, ctx.TerminalHeight, tt.wantW, tt.wantH)
			}
			if ctx.SidebarWidth != tt.wantSidebar {
				t.Errorf("SidebarWidth = %d, want %d", ctx.SidebarWidth, tt.wantSidebar)
			}
			if ctx.SidebarWidth+ctx.ChatWidth != tt.wantW {
				t.Errorf("panels span %d columns, want %d", ctx.SidebarWidth+ctx.ChatWidth, tt.wantW)
			}
			if want := tt.wantH - HeaderHeight - FooterHeight; ctx.ContentHeight != want {
				t.Errorf("ContentHeight = %d, want %d", ctx.ContentHeight, want)
			}
		})
	}
}

func TestViewContext_InnerSize(t *testing.T) {
	ctx := GetViewContext()
	for _, n := range []int{BorderSize, 10, 40, 80} {
		if got := ctx.InnerWidth(n); got != n-BorderSize {
			t.Errorf("InnerWidth(%d) = %d", n, got)
		}
		if got := ctx.InnerHeight(n); got != n-BorderSize {
			t.Errorf("InnerHeight(%d) = %d", n, got)
		}
	}
}

func TestViewContext_ConcurrentResize(t *testing.T) {
	if GetViewContext() != GetViewContext() {
		t.Fatal("GetViewContext should return the same instance")
	}

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			GetViewContext().UpdateTerminalSize(80+n, 24+n)
		}(i)
	}
	wg.Wait()
}
