package attach

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	perrors "github.com/zhubert/parley/internal/errors"
)

const mib = 1024 * 1024

func file(name string, size int64) File {
	return File{Name: name, MimeType: "application/octet-stream", Size: size}
}

func names(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	return out
}

func TestStage_RejectsOversizedFile(t *testing.T) {
	s := NewStager()

	rejected := s.Stage(file("big.bin", 6*mib))

	if s.Len() != 0 {
		t.Errorf("staged %d files, want 0", s.Len())
	}
	if len(rejected) != 1 {
		t.Fatalf("got %d rejections, want 1", len(rejected))
	}
	if rejected[0].Name != "big.bin" {
		t.Errorf("rejection name = %q", rejected[0].Name)
	}
	if !perrors.Is(rejected[0].Err, perrors.KindInvalid) {
		t.Errorf("rejection should be a validation error, got %v", rejected[0].Err)
	}
	if !strings.Contains(rejected[0].Message(), "big.bin") {
		t.Errorf("message %q should name the file", rejected[0].Message())
	}
}

func TestStage_MixedBatchStagesValidFiles(t *testing.T) {
	s := NewStager()

	rejected := s.Stage(file("small.txt", 1*mib), file("big.bin", 6*mib))

	if s.Len() != 1 {
		t.Fatalf("staged %d files, want 1", s.Len())
	}
	if s.Files()[0].Name != "small.txt" {
		t.Errorf("staged %q, want small.txt", s.Files()[0].Name)
	}
	if len(rejected) != 1 || rejected[0].Name != "big.bin" {
		t.Errorf("rejections = %+v, want only big.bin", rejected)
	}
}

func TestStage_BoundaryIsInclusive(t *testing.T) {
	s := NewStager()

	if rejected := s.Stage(file("exact.bin", MaxFileSize)); len(rejected) != 0 {
		t.Errorf("file of exactly MaxFileSize should stage, got %v", rejected)
	}
	if rejected := s.Stage(file("over.bin", MaxFileSize+1)); len(rejected) != 1 {
		t.Errorf("file one byte over should be rejected")
	}
}

func TestUnstage(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		want    []string
		wantErr bool
	}{
		{"first", 0, []string{"b", "c"}, false},
		{"middle", 1, []string{"a", "c"}, false},
		{"last", 2, []string{"a", "b"}, false},
		{"negative", -1, []string{"a", "b", "c"}, true},
		{"out of range", 3, []string{"a", "b", "c"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStager()
			s.Stage(file("a", 1), file("b", 2), file("c", 3))

			err := s.Unstage(tt.index)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unstage(%d) error = %v, wantErr %v", tt.index, err, tt.wantErr)
			}
			got := names(s.Files())
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("remaining = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRefsAndClear(t *testing.T) {
	s := NewStager()
	if s.Refs() != nil {
		t.Error("empty stager should have nil refs")
	}

	s.Stage(File{Name: "cat.png", MimeType: "image/png", Size: 42, Data: []byte("x")})
	refs := s.Refs()
	if len(refs) != 1 {
		t.Fatalf("got %d refs", len(refs))
	}
	want := FileRef{Name: "cat.png", MimeType: "image/png", SizeBytes: 42}
	if refs[0] != want {
		t.Errorf("ref = %+v, want %+v", refs[0], want)
	}
	if !refs[0].IsImage() {
		t.Error("png should be an image")
	}

	s.Clear()
	if s.Len() != 0 {
		t.Error("Clear should empty the stage")
	}
}

func TestFiles_ReturnsCopy(t *testing.T) {
	s := NewStager()
	s.Stage(file("a", 1))

	files := s.Files()
	files[0].Name = "mutated"

	if s.Files()[0].Name != "a" {
		t.Error("Files() should return a copy")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	textPath := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(textPath, []byte("hello, world\n"), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := Load(textPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if f.Name != "notes.txt" || f.Size != 13 {
		t.Errorf("got name=%q size=%d", f.Name, f.Size)
	}
	if !strings.HasPrefix(f.MimeType, "text/plain") {
		t.Errorf("MimeType = %q, want text/plain", f.MimeType)
	}
	if string(f.Data) != "hello, world\n" {
		t.Errorf("Data = %q", f.Data)
	}
}

func TestLoad_PNGDetected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.bin")
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)
	if err := os.WriteFile(path, png, 0644); err != nil {
		t.Fatal(err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if f.MimeType != "image/png" {
		t.Errorf("MimeType = %q, want image/png", f.MimeType)
	}
}

func TestLoad_OversizedSkipsRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huge.bin")
	fh, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := fh.Truncate(MaxFileSize + 1); err != nil {
		t.Fatal(err)
	}
	fh.Close()

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if f.Data != nil {
		t.Error("oversized file content should not be read")
	}

	s := NewStager()
	if rejected := s.Stage(f); len(rejected) != 1 {
		t.Error("oversized loaded file should be rejected by Stage")
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing")); !perrors.Is(err, perrors.KindIO) {
		t.Errorf("missing file: expected KindIO, got %v", err)
	}
	if _, err := Load(dir); !perrors.Is(err, perrors.KindInvalid) {
		t.Errorf("directory: expected KindInvalid, got %v", err)
	}
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{-5, "0 B"},
		{1024, "1.0 KiB"},
		{5 * mib, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := HumanSize(tt.n); got != tt.want {
			t.Errorf("HumanSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
