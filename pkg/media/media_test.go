package media

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradientCoverProviderProducesValidPNG(t *testing.T) {
	p := NewGradientCoverProvider()
	data, err := p.GenerateCover(context.Background(), "AI in Oncology")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1200, img.Bounds().Dx())
	assert.Equal(t, 400, img.Bounds().Dy())
}

func TestGradientCoverProviderIsDeterministic(t *testing.T) {
	p := NewGradientCoverProvider()
	a, err := p.GenerateCover(context.Background(), "Same Topic")
	require.NoError(t, err)
	b, err := p.GenerateCover(context.Background(), "Same Topic")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderBarChartProducesValidPNG(t *testing.T) {
	data, err := RenderBarChart(map[string]float64{"a": 3, "b": 7, "c": 1}, 0, 0)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}

func TestRenderGaugeClampsValue(t *testing.T) {
	data, err := RenderGauge(1.5, 0, 0)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}
