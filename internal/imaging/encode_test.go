package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatPNG, false},
		{"png", FormatPNG, false},
		{"PNG", FormatPNG, false},
		{" webp ", FormatWebP, false},
		{"jpeg", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSuggestFilename(t *testing.T) {
	tests := []struct {
		source string
		format Format
		want   string
	}{
		{"", FormatPNG, "edited-image.png"},
		{"", FormatWebP, "edited-image.webp"},
		{"/tmp/photos/cat.jpg", FormatPNG, "cat-edited.png"},
		{"portrait.png", FormatWebP, "portrait-edited.webp"},
		{"https://cdn.example.com/u/123/cutout.png?sig=abc", FormatPNG, "cutout-edited.png"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := SuggestFilename(tt.source, tt.format); got != tt.want {
				t.Errorf("SuggestFilename(%q) = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestExport_PNGIsLossless(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(0, 0, color.NRGBA{10, 20, 30, 255})
	src.SetNRGBA(1, 0, color.NRGBA{200, 100, 50, 128})

	res, err := Export(src, "", "cat.jpg")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if res.MimeType != "image/png" || res.Filename != "cat-edited.png" {
		t.Errorf("got mime %s filename %s", res.MimeType, res.Filename)
	}
	if res.Bytes != len(res.Data) || res.Width != 4 || res.Height != 4 {
		t.Errorf("unexpected metadata: %+v", res)
	}

	decoded, err := png.Decode(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatalf("png.Decode failed: %v", err)
	}
	for _, p := range []image.Point{{0, 0}, {1, 0}, {3, 3}} {
		want := src.NRGBAAt(p.X, p.Y)
		got := color.NRGBAModel.Convert(decoded.At(p.X, p.Y)).(color.NRGBA)
		if got != want {
			t.Errorf("pixel %v: got %v, want %v", p, got, want)
		}
	}
}

func TestExport_WebPIsLossless(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			src.SetNRGBA(x, y, color.NRGBA{uint8(x * 30), uint8(y * 30), 77, 255})
		}
	}

	res, err := Export(src, FormatWebP, "")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if res.MimeType != "image/webp" || res.Filename != "edited-image.webp" {
		t.Errorf("got mime %s filename %s", res.MimeType, res.Filename)
	}

	decoded, _, err := Decode(res.Data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			got := color.NRGBAModel.Convert(decoded.At(x, y)).(color.NRGBA)
			if got != src.NRGBAAt(x, y) {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, got, src.NRGBAAt(x, y))
			}
		}
	}
}

func TestEncodePreview(t *testing.T) {
	img := createPatternImage(100, 60)

	res, err := EncodePreview(img, 0.5)
	if err != nil {
		t.Fatalf("EncodePreview failed: %v", err)
	}
	if res.Width != 50 || res.Height != 30 || res.MimeType != "image/png" {
		t.Errorf("unexpected preview: %dx%d %s", res.Width, res.Height, res.MimeType)
	}

	data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("preview is not a PNG: %v", err)
	}
	if cfg.Width != 50 || cfg.Height != 30 {
		t.Errorf("encoded size: got %dx%d", cfg.Width, cfg.Height)
	}
}
