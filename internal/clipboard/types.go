package clipboard

import (
	"fmt"
	"time"

	"github.com/zhubert/parley/internal/attach"
)

// MaxImageDimension is the maximum allowed width or height of a pasted image.
const MaxImageDimension = 8000

// ImageData represents clipboard image data
type ImageData struct {
	Data      []byte // PNG encoded image data
	MediaType string // always "image/png" since images are re-encoded
	Width     int
	Height    int
}

// Validate checks the image against the attachment limits.
func (img *ImageData) Validate() error {
	if int64(len(img.Data)) > attach.MaxFileSize {
		return fmt.Errorf("image too large: %s (max %s)",
			attach.HumanSize(int64(len(img.Data))), attach.HumanSize(attach.MaxFileSize))
	}

	if img.Width > MaxImageDimension || img.Height > MaxImageDimension {
		return fmt.Errorf("image dimensions too large: %dx%d (max %dx%d)",
			img.Width, img.Height, MaxImageDimension, MaxImageDimension)
	}

	return nil
}

// File turns the image into an attachment named after the paste time.
func (img *ImageData) File(at time.Time) attach.File {
	return attach.File{
		Name:     "pasted-" + at.Format("20060102-150405") + ".png",
		MimeType: img.MediaType,
		Size:     int64(len(img.Data)),
		Data:     img.Data,
	}
}
