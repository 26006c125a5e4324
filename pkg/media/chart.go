package media

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sort"
)

var barFill = color.RGBA{R: 0x2f, G: 0x6f, B: 0xed, A: 0xff}
var axisColor = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
var bgColor = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// RenderBarChart draws a simple horizontal bar chart, one bar per entry in
// data, sorted descending by value. Used for things like per-topic article
// counts or average relevance scores.
func RenderBarChart(data map[string]float64, width, height int) ([]byte, error) {
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 400
	}

	type entry struct {
		label string
		value float64
	}
	entries := make([]entry, 0, len(data))
	maxVal := 0.0
	for k, v := range data {
		entries = append(entries, entry{label: k, value: v})
		if v > maxVal {
			maxVal = v
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].value > entries[j].value })
	if maxVal == 0 {
		maxVal = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bgColor}, image.Point{}, draw.Src)

	margin := 20
	barAreaWidth := width - 2*margin
	if len(entries) == 0 {
		return encodePNG(img)
	}
	barHeight := (height - 2*margin) / len(entries)
	if barHeight < 1 {
		barHeight = 1
	}

	for i, e := range entries {
		barLen := int(float64(barAreaWidth) * (e.value / maxVal))
		y0 := margin + i*barHeight
		y1 := y0 + barHeight - 4
		if y1 <= y0 {
			y1 = y0 + 1
		}
		rect := image.Rect(margin, y0, margin+barLen, y1)
		draw.Draw(img, rect, &image.Uniform{C: barFill}, image.Point{}, draw.Src)
	}

	// baseline axis
	draw.Draw(img, image.Rect(margin, margin, margin+1, height-margin), &image.Uniform{C: axisColor}, image.Point{}, draw.Src)

	return encodePNG(img)
}

// RenderGauge draws a simple filled-arc-free gauge as a horizontal
// progress bar in [0,1], used for the run's overall average quality score.
func RenderGauge(value float64, width, height int) ([]byte, error) {
	if width <= 0 {
		width = 600
	}
	if height <= 0 {
		height = 120
	}
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bgColor}, image.Point{}, draw.Src)

	margin := 20
	trackRect := image.Rect(margin, height/2-15, width-margin, height/2+15)
	draw.Draw(img, trackRect, &image.Uniform{C: color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}}, image.Point{}, draw.Src)

	filledWidth := int(float64(trackRect.Dx()) * value)
	fillRect := image.Rect(margin, height/2-15, margin+filledWidth, height/2+15)
	draw.Draw(img, fillRect, &image.Uniform{C: gaugeColor(value)}, image.Point{}, draw.Src)

	return encodePNG(img)
}

// RenderDashboard composites a distribution bar chart and a quality gauge
// into a single stacked image: distribution on top two-thirds, gauge
// underneath. Used for the run's single "dashboard" chart, an at-a-glance
// summary alongside the two standalone charts it's built from.
func RenderDashboard(distribution map[string]float64, qualityScore float64, width, height int) ([]byte, error) {
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 500
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bgColor}, image.Point{}, draw.Src)

	barHeight := height * 2 / 3
	barPanel, err := RenderBarChart(distribution, width, barHeight)
	if err != nil {
		return nil, err
	}
	if err := overlayPNG(img, barPanel, 0, 0); err != nil {
		return nil, err
	}

	gaugePanel, err := RenderGauge(qualityScore, width, height-barHeight)
	if err != nil {
		return nil, err
	}
	if err := overlayPNG(img, gaugePanel, 0, barHeight); err != nil {
		return nil, err
	}

	draw.Draw(img, image.Rect(0, barHeight, width, barHeight+1), &image.Uniform{C: axisColor}, image.Point{}, draw.Src)

	return encodePNG(img)
}

func overlayPNG(dst *image.RGBA, pngData []byte, x, y int) error {
	src, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return err
	}
	draw.Draw(dst, src.Bounds().Add(image.Pt(x, y)), src, image.Point{}, draw.Src)
	return nil
}

func gaugeColor(value float64) color.RGBA {
	switch {
	case value >= 0.7:
		return color.RGBA{R: 0x2e, G: 0xa0, B: 0x4a, A: 0xff}
	case value >= 0.4:
		return color.RGBA{R: 0xd9, G: 0x9a, B: 0x1b, A: 0xff}
	default:
		return color.RGBA{R: 0xd1, G: 0x3b, B: 0x3b, A: 0xff}
	}
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
