// Package attach stages files for the next outgoing chat message.
//
// Files are validated when they are staged, not when they are sent: an
// oversized file never enters the stage, so the send path can forward every
// staged file to the transport without re-checking.
package attach

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	perrors "github.com/zhubert/parley/internal/errors"
	"github.com/zhubert/parley/internal/logger"
)

// MaxFileSize is the largest attachment the backend accepts (5 MiB).
const MaxFileSize int64 = 5 * 1024 * 1024

// File is a staged attachment. Data is forwarded to the transport and never
// kept in chat history.
type File struct {
	Name     string
	MimeType string
	Size     int64
	Data     []byte
}

// FileRef is the metadata of an attachment as recorded in chat history.
type FileRef struct {
	Name      string `json:"name"`
	MimeType  string `json:"type"`
	SizeBytes int64  `json:"size"`
}

// Ref returns the history metadata for the file.
func (f File) Ref() FileRef {
	return FileRef{Name: f.Name, MimeType: f.MimeType, SizeBytes: f.Size}
}

// IsImage reports whether the file is an image, for display purposes.
func (r FileRef) IsImage() bool {
	return strings.HasPrefix(r.MimeType, "image/")
}

// Rejection describes one file that was refused by Stage.
type Rejection struct {
	Name string
	Size int64
	Err  error
}

// Message returns the notice shown to the user for this rejection.
func (r Rejection) Message() string {
	return fmt.Sprintf("%s is too large (%s, max %s)", r.Name, HumanSize(r.Size), HumanSize(MaxFileSize))
}

// Stager holds the files queued for the next message.
type Stager struct {
	files []File
}

// NewStager creates an empty stager.
func NewStager() *Stager {
	return &Stager{}
}

// Stage accepts every file within MaxFileSize and returns one Rejection per
// file that was refused. Accepted files keep their batch order.
func (s *Stager) Stage(files ...File) []Rejection {
	log := logger.WithComponent("attach")

	var rejected []Rejection
	for _, f := range files {
		if f.Size > MaxFileSize {
			log.Info("attachment rejected", "name", f.Name, "size", f.Size)
			rejected = append(rejected, Rejection{
				Name: f.Name,
				Size: f.Size,
				Err:  perrors.AttachmentTooLarge(f.Name, f.Size, MaxFileSize),
			})
			continue
		}
		s.files = append(s.files, f)
		log.Debug("attachment staged", "name", f.Name, "size", f.Size, "mime", f.MimeType)
	}
	return rejected
}

// Unstage removes the file at index. The remaining files keep their order.
func (s *Stager) Unstage(index int) error {
	if index < 0 || index >= len(s.files) {
		return perrors.AttachmentIndex(index, len(s.files))
	}
	s.files = append(s.files[:index], s.files[index+1:]...)
	return nil
}

// Clear empties the stage.
func (s *Stager) Clear() {
	s.files = nil
}

// Len returns the number of staged files.
func (s *Stager) Len() int {
	return len(s.files)
}

// Files returns a copy of the staged files.
func (s *Stager) Files() []File {
	out := make([]File, len(s.files))
	copy(out, s.files)
	return out
}

// Refs returns history metadata for every staged file.
func (s *Stager) Refs() []FileRef {
	if len(s.files) == 0 {
		return nil
	}
	refs := make([]FileRef, len(s.files))
	for i, f := range s.files {
		refs[i] = f.Ref()
	}
	return refs
}

// Load reads a file from disk for staging. The size is checked before the
// content is read so an oversized file is reported without loading it; such a
// file is returned with nil Data and Stage will reject it.
func Load(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, perrors.E(perrors.Op("attach.Load"), perrors.KindIO, err)
	}
	if info.IsDir() {
		return File{}, perrors.E(perrors.Op("attach.Load"), perrors.KindInvalid, path+" is a directory")
	}

	f := File{Name: filepath.Base(path), Size: info.Size()}
	if f.Size > MaxFileSize {
		return f, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, perrors.E(perrors.Op("attach.Load"), perrors.KindIO, err)
	}
	f.Data = data
	f.MimeType = mimetype.Detect(data).String()
	return f, nil
}

// HumanSize formats a byte count for display (e.g. "1.0 MiB").
func HumanSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
