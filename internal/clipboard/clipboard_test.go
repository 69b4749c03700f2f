package clipboard

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"golang.design/x/clipboard"

	"github.com/zhubert/parley/internal/attach"
)

type fakeSystem struct {
	initErr error
	inits   int
	data    map[clipboard.Format][]byte
}

func (f *fakeSystem) Init() error {
	f.inits++
	return f.initErr
}

func (f *fakeSystem) Read(format clipboard.Format) []byte {
	return f.data[format]
}

func (f *fakeSystem) Write(format clipboard.Format, data []byte) {
	f.data[format] = data
}

func useFake(t *testing.T, f *fakeSystem) {
	t.Helper()
	if f.data == nil {
		f.data = map[clipboard.Format][]byte{}
	}
	t.Cleanup(SetSystem(f))
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestWriteAndReadText(t *testing.T) {
	f := &fakeSystem{}
	useFake(t, f)

	if err := WriteText("fmt.Println(1)"); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	got, err := ReadText()
	if err != nil {
		t.Fatalf("ReadText: %v", err)
	}
	if got != "fmt.Println(1)" {
		t.Errorf("ReadText = %q", got)
	}
	if f.inits != 1 {
		t.Errorf("expected one init, got %d", f.inits)
	}
}

func TestInitFailure(t *testing.T) {
	useFake(t, &fakeSystem{initErr: errors.New("no display")})

	err := WriteText("x")
	if err == nil || !strings.Contains(err.Error(), "no display") {
		t.Errorf("expected init error, got %v", err)
	}
}

func TestReadImage(t *testing.T) {
	t.Run("empty clipboard", func(t *testing.T) {
		useFake(t, &fakeSystem{})
		img, err := ReadImage()
		if err != nil || img != nil {
			t.Errorf("expected (nil, nil), got (%v, %v)", img, err)
		}
	})

	t.Run("png", func(t *testing.T) {
		f := &fakeSystem{}
		useFake(t, f)
		f.data[clipboard.FmtImage] = pngBytes(t, 4, 3)

		img, err := ReadImage()
		if err != nil {
			t.Fatalf("ReadImage: %v", err)
		}
		if img.Width != 4 || img.Height != 3 || img.MediaType != "image/png" {
			t.Errorf("unexpected image %+v", img)
		}
		if err := img.Validate(); err != nil {
			t.Errorf("Validate: %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		f := &fakeSystem{}
		useFake(t, f)
		f.data[clipboard.FmtImage] = []byte("not an image")

		if _, err := ReadImage(); err == nil {
			t.Error("expected decode error")
		}
	})
}

func TestImageData_Validate(t *testing.T) {
	tests := []struct {
		name    string
		img     ImageData
		wantErr bool
	}{
		{"ok", ImageData{Data: make([]byte, 10), Width: 10, Height: 10}, false},
		{"too large", ImageData{Data: make([]byte, attach.MaxFileSize+1), Width: 10, Height: 10}, true},
		{"too wide", ImageData{Data: make([]byte, 10), Width: MaxImageDimension + 1, Height: 10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.img.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestImageData_File(t *testing.T) {
	img := &ImageData{Data: []byte("png"), MediaType: "image/png"}
	f := img.File(time.Date(2025, 3, 1, 14, 5, 9, 0, time.UTC))

	if f.Name != "pasted-20250301-140509.png" {
		t.Errorf("Name = %q", f.Name)
	}
	if f.Size != 3 || f.MimeType != "image/png" {
		t.Errorf("unexpected file %+v", f)
	}
}
