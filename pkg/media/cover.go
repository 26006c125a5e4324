// Package media renders the newsletter's cover image and inline charts.
// Nothing in the reference corpus imports a graphics or chart library, so
// both renderers here are deliberately stdlib-only (image/draw, image/png)
// — see DESIGN.md for why no third-party alternative was wired instead.
package media

import (
	"bytes"
	"context"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"image/png"
)

// ImageProvider generates a cover image for a run's main topic. The
// pipeline prefers an external provider (if configured) and falls back to
// GradientCoverProvider when none is available or the call fails.
type ImageProvider interface {
	GenerateCover(ctx context.Context, mainTopic string) ([]byte, error)
}

// GradientCoverProvider renders a deterministic, topic-seeded gradient PNG
// with no external dependency. Used as the default ImageProvider and as
// the fallback when a configured external provider errors.
type GradientCoverProvider struct {
	Width, Height int
}

// NewGradientCoverProvider returns a provider sized for a typical
// newsletter banner.
func NewGradientCoverProvider() *GradientCoverProvider {
	return &GradientCoverProvider{Width: 1200, Height: 400}
}

func (p *GradientCoverProvider) GenerateCover(ctx context.Context, mainTopic string) ([]byte, error) {
	w, h := p.Width, p.Height
	if w <= 0 {
		w = 1200
	}
	if h <= 0 {
		h = 400
	}

	seed := fnv.New32a()
	_, _ = seed.Write([]byte(mainTopic))
	hue := float64(seed.Sum32()%360) / 360.0

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	startR, startG, startB := hsvToRGB(hue, 0.55, 0.35)
	endR, endG, endB := hsvToRGB(hue+0.12, 0.75, 0.85)

	for y := 0; y < h; y++ {
		t := float64(y) / float64(h)
		r := lerp(startR, endR, t)
		g := lerp(startG, endG, t)
		b := lerp(startB, endB, t)
		draw.Draw(img, image.Rect(0, y, w, y+1), &image.Uniform{C: color.RGBA{R: r, G: g, B: b, A: 255}}, image.Point{}, draw.Src)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

// hsvToRGB converts an (h, s, v) triple in [0,1] to 8-bit RGB. Kept local
// rather than imported since the stdlib has no color-space conversion and
// this is the only place the conversion is needed.
func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}
	return uint8(r * 255), uint8(g * 255), uint8(b * 255)
}
