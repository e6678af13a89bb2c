package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Format is an export encoding. Both formats are lossless and keep alpha.
type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// ParseFormat accepts "png", "webp" (any case) and "" for the PNG default.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	}
	return "", fmt.Errorf("unsupported export format %q (want png or webp)", s)
}

// MimeType returns the format's media type.
func (f Format) MimeType() string {
	if f == FormatWebP {
		return "image/webp"
	}
	return "image/png"
}

// Extension returns the file extension without the leading dot.
func (f Format) Extension() string {
	if f == FormatWebP {
		return "webp"
	}
	return "png"
}

// Encode writes img in the given format.
func Encode(img image.Image, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatWebP:
		if err := webp.Encode(&buf, img, &webp.Options{Lossless: true, Exact: true}); err != nil {
			return nil, fmt.Errorf("failed to encode webp: %w", err)
		}
	case FormatPNG, "":
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, fmt.Errorf("failed to encode png: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	return buf.Bytes(), nil
}

// ExportResult is an encoded image ready to hand to a persistence sink.
type ExportResult struct {
	Data     []byte `json:"-"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Bytes    int    `json:"bytes"`
}

// Export encodes img and suggests a filename derived from sourceName.
func Export(img image.Image, format Format, sourceName string) (*ExportResult, error) {
	if format == "" {
		format = FormatPNG
	}
	data, err := Encode(img, format)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &ExportResult{
		Data:     data,
		Filename: SuggestFilename(sourceName, format),
		MimeType: format.MimeType(),
		Width:    b.Dx(),
		Height:   b.Dy(),
		Bytes:    len(data),
	}, nil
}

// SuggestFilename returns "<base>-edited.<ext>" for a named source and
// "edited-image.<ext>" otherwise. URLs and paths are reduced to their last
// element with the extension removed.
func SuggestFilename(sourceName string, format Format) string {
	name := sourceName
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	switch name {
	case "", ".", "/":
		return "edited-image." + format.Extension()
	}
	return name + "-edited." + format.Extension()
}

// EncodedImage is a base64 PNG suitable for an MCP text result.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePreview scales img by factor (see Scale) and base64-encodes it as PNG.
func EncodePreview(img image.Image, factor float64) (*EncodedImage, error) {
	scaled := Scale(img, factor)
	data, err := Encode(scaled, FormatPNG)
	if err != nil {
		return nil, err
	}
	b := scaled.Bounds()
	return &EncodedImage{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    FormatPNG.MimeType(),
	}, nil
}
