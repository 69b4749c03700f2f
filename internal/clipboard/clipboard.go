// Package clipboard reads pasted images and copies reply text through the
// system clipboard.
package clipboard

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"sync"

	"golang.design/x/clipboard"

	"github.com/zhubert/parley/internal/logger"
)

// System is the clipboard the package talks to.
type System interface {
	Init() error
	Read(format clipboard.Format) []byte
	Write(format clipboard.Format, data []byte)
}

type native struct{}

func (native) Init() error                          { return clipboard.Init() }
func (native) Read(format clipboard.Format) []byte { return clipboard.Read(format) }
func (native) Write(format clipboard.Format, data []byte) {
	clipboard.Write(format, data)
}

var (
	mu          sync.Mutex
	sys         System = native{}
	initialized bool
)

// SetSystem replaces the clipboard, e.g. with an in-memory one in tests, and
// returns a function that restores the previous one.
func SetSystem(s System) (restore func()) {
	mu.Lock()
	defer mu.Unlock()
	prev, prevInit := sys, initialized
	sys, initialized = s, false
	return func() {
		mu.Lock()
		defer mu.Unlock()
		sys, initialized = prev, prevInit
	}
}

// Init initializes the clipboard. Must be called before other functions.
// This is safe to call multiple times.
func Init() error {
	mu.Lock()
	defer mu.Unlock()
	return initLocked()
}

func initLocked() error {
	if initialized {
		return nil
	}
	if err := sys.Init(); err != nil {
		logger.WithComponent("clipboard").Warn("failed to initialize", "error", err)
		return fmt.Errorf("failed to initialize clipboard: %w", err)
	}
	initialized = true
	logger.WithComponent("clipboard").Debug("initialized")
	return nil
}

// ReadImage attempts to read an image from the clipboard.
// Returns nil if clipboard doesn't contain an image.
func ReadImage() (*ImageData, error) {
	mu.Lock()
	defer mu.Unlock()
	if err := initLocked(); err != nil {
		return nil, err
	}

	log := logger.WithComponent("clipboard")
	imgBytes := sys.Read(clipboard.FmtImage)
	if len(imgBytes) == 0 {
		log.Debug("no image data found")
		return nil, nil
	}

	img, format, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		log.Warn("failed to decode image", "error", err)
		return nil, fmt.Errorf("failed to decode clipboard image: %w", err)
	}

	bounds := img.Bounds()
	log.Debug("image decoded", "width", bounds.Dx(), "height", bounds.Dy(), "format", format)

	// Re-encode as PNG for consistent format
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}

	return &ImageData{
		Data:      pngBuf.Bytes(),
		MediaType: "image/png",
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
	}, nil
}

// ReadText reads text from the clipboard.
func ReadText() (string, error) {
	mu.Lock()
	defer mu.Unlock()
	if err := initLocked(); err != nil {
		return "", err
	}
	return string(sys.Read(clipboard.FmtText)), nil
}

// WriteText writes text to the clipboard.
func WriteText(text string) error {
	mu.Lock()
	defer mu.Unlock()
	if err := initLocked(); err != nil {
		return err
	}
	sys.Write(clipboard.FmtText, []byte(text))
	logger.WithComponent("clipboard").Debug("wrote text", "bytes", len(text))
	return nil
}
