package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/gekko3d/kartfx/spa"
	"github.com/gekko3d/kartfx/spa/spatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func TestUpscaleIsNearestNeighbour(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	src.SetRGBA(1, 0, color.RGBA{0, 0, 255, 255})

	out := upscale(src, 3)
	require.Equal(t, image.Rect(0, 0, 6, 3), out.Bounds())
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, out.At(2, 2))
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, out.At(3, 0))

	assert.Same(t, src, upscale(src, 1))
}

func TestEncodeFormats(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	src.SetRGBA(1, 1, color.RGBA{0, 255, 0, 255})

	var buf bytes.Buffer
	require.NoError(t, encode(&buf, src, "png"))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	r, g, _, _ := decoded.At(1, 1).RGBA()
	assert.Zero(t, r)
	assert.Equal(t, uint32(0xffff), g)

	buf.Reset()
	require.NoError(t, encode(&buf, src, "bmp"))
	decoded, err = bmp.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 8, decoded.Bounds().Dx())
}

func TestPrintSummary(t *testing.T) {
	def := spatest.NewDef(spa.FlagGravity|spa.FlagAttached).U8(spatest.OffFrequency, 2).Bytes()
	data := spatest.File{
		Defs: [][]byte{def},
		Texs: [][]byte{spatest.Tex{Format: spa.FormatA3I5, Pixels: make([]byte, 64)}.Bytes()},
	}.Bytes()
	res, err := spa.Decode(data)
	require.NoError(t, err)

	var out strings.Builder
	printSummary(&out, "fx.spa", res, false)
	s := out.String()
	assert.Contains(t, s, `version "12_1", 1 definitions, 1 textures`)
	assert.Contains(t, s, "freq=2")
	assert.Contains(t, s, "[gravity,attached]")
	assert.Contains(t, s, "texture   0: a3i5 8x8")
}
