package image

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"strings"
)

// renderSyntheticPNG produces a deterministic placeholder illustration for the
// prompt. It stands in for the Images API when no key is configured, keeping
// the rest of the pipeline (progress log, data URLs, file persistence)
// exercised end-to-end.
func renderSyntheticPNG(prompt, size string) ([]byte, error) {
	width, height := parseSize(size)
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	seed := sha256.Sum256([]byte(prompt))
	base := colorFromSeed(seed, 0)
	accent := colorFromSeed(seed, 3)
	draw.Draw(img, img.Bounds(), &image.Uniform{base}, image.Point{}, draw.Src)

	stripeHeight := maxInt(16, height/12)
	for y := 0; y < height; y += stripeHeight * 2 {
		stripe := image.Rect(0, y, width, minInt(height, y+stripeHeight))
		draw.Draw(img, stripe, &image.Uniform{accent}, image.Point{}, draw.Over)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("image: encode synthetic asset: %w", err)
	}
	return buf.Bytes(), nil
}

func parseSize(size string) (int, int) {
	parts := strings.SplitN(strings.TrimSpace(size), "x", 2)
	if len(parts) == 2 {
		w, werr := strconv.Atoi(parts[0])
		h, herr := strconv.Atoi(parts[1])
		if werr == nil && herr == nil && w > 0 && h > 0 {
			return w, h
		}
	}
	return 1024, 1024
}

func colorFromSeed(seed [32]byte, offset int) color.RGBA {
	return color.RGBA{
		R: 128 + seed[offset]/2,
		G: 128 + seed[offset+1]/2,
		B: 128 + seed[offset+2]/2,
		A: 255,
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
