package main

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	maxImageEdge = 1024
	jpegQuality  = 85
)

// allowedImageExts is the set of accepted upload extensions (lower case, no dot).
var allowedImageExts = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
}

var errUnsupportedImage = errors.New("unsupported image")

// allowedImageFile reports whether filename carries an accepted extension.
func allowedImageFile(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	return allowedImageExts[ext]
}

// processedImage is an upload after decoding, downscaling and re-encoding.
type processedImage struct {
	JPEG   []byte
	Width  int
	Height int
}

// Base64 returns the JPEG bytes for embedding in a JSON response.
func (p processedImage) Base64() string {
	return base64.StdEncoding.EncodeToString(p.JPEG)
}

// processImage decodes a PNG or JPEG, shrinks it to fit within
// maxImageEdge×maxImageEdge keeping its aspect ratio, flattens any
// transparency onto white and re-encodes it as JPEG. Images already inside
// the bound keep their size.
func processImage(data []byte) (processedImage, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return processedImage{}, fmt.Errorf("%w: %v", errUnsupportedImage, err)
	}

	b := src.Bounds()
	w, h := thumbnailSize(b.Dx(), b.Dy(), maxImageEdge)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return processedImage{}, fmt.Errorf("encode jpeg: %w", err)
	}
	return processedImage{JPEG: buf.Bytes(), Width: w, Height: h}, nil
}

// thumbnailSize scales (w, h) down so neither side exceeds edge. Sides never
// drop below 1 pixel and images are never enlarged.
func thumbnailSize(w, h, edge int) (int, int) {
	if w <= edge && h <= edge {
		return w, h
	}
	if w >= h {
		return edge, max(1, h*edge/w)
	}
	return max(1, w*edge/h), edge
}
