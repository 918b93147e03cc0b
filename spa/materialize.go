package spa

import (
	"encoding/binary"
	"image"
	"image/color"
)

// UnpackRGB555 expands a 15-bit color (red in the low bits) to 8 bits per channel.
func UnpackRGB555(c uint16) (r, g, b uint8) {
	return expand5(c & 0x1f), expand5((c >> 5) & 0x1f), expand5((c >> 10) & 0x1f)
}

func expand5(v uint16) uint8 {
	return uint8(v<<3 | v>>2)
}

// premultiplied builds an image.RGBA pixel, which stores alpha-premultiplied color.
func premultiplied(r, g, b, a uint8) color.RGBA {
	return color.RGBA{
		R: uint8(uint16(r) * uint16(a) / 255),
		G: uint8(uint16(g) * uint16(a) / 255),
		B: uint8(uint16(b) * uint16(a) / 255),
		A: a,
	}
}

// Materialize decodes a texture record into an RGBA image. It does not cache;
// use Resource.Texture for the memoized path.
//
// FormatNone and unrecognised formats produce a blank, fully transparent
// image rather than an error. FormatCompressed returns *UnsupportedFeatureError.
// Records larger than MaxTextureSize on either axis, or carrying fewer pixel
// bytes than their dimensions require, return *FormatError before anything
// is allocated.
func Materialize(rec *TextureRecord) (*image.RGBA, error) {
	if rec.Format == FormatCompressed {
		return nil, &UnsupportedFeatureError{Feature: "compressed 4x4 texture format"}
	}
	w, h := rec.Width, rec.Height
	if w <= 0 || h <= 0 || w > MaxTextureSize || h > MaxTextureSize {
		return nil, formatErrorf(0, "texture size %dx%d outside 1..%d", w, h, MaxTextureSize)
	}
	if need := w * h * bitsPerPixel(rec.Format) / 8; need > len(rec.Pixels) {
		return nil, formatErrorf(0, "%s texture %dx%d needs %d pixel bytes, has %d",
			rec.Format, w, h, need, len(rec.Pixels))
	}
	src := image.NewRGBA(image.Rect(0, 0, w, h))

	switch rec.Format {
	case FormatPalette4:
		decodeIndexed(src, rec, 2)
	case FormatPalette16:
		decodeIndexed(src, rec, 4)
	case FormatPalette256:
		decodeIndexed(src, rec, 8)
	case FormatA3I5:
		decodeAlphaIndexed(src, rec, 5)
	case FormatA5I3:
		decodeAlphaIndexed(src, rec, 3)
	case FormatDirect:
		decodeDirect(src, rec)
	default:
		// Blank.
	}

	if !rec.FlipS && !rec.FlipT {
		return src, nil
	}
	return mirrorTile(src, rec.FlipS, rec.FlipT), nil
}

// bitsPerPixel returns 0 for formats that carry no pixel data.
func bitsPerPixel(f TextureFormat) int {
	switch f {
	case FormatPalette4:
		return 2
	case FormatPalette16:
		return 4
	case FormatPalette256, FormatA3I5, FormatA5I3:
		return 8
	case FormatDirect:
		return 16
	}
	return 0
}

func paletteColor(rec *TextureRecord, idx int) (r, g, b uint8, ok bool) {
	off := idx * 2
	if off+2 > len(rec.Palette) {
		return 0, 0, 0, false
	}
	r, g, b = UnpackRGB555(binary.LittleEndian.Uint16(rec.Palette[off:]))
	return r, g, b, true
}

// decodeIndexed handles the 2/4/8 bits-per-pixel palette formats. Indices are
// packed low bits first within each byte.
func decodeIndexed(dst *image.RGBA, rec *TextureRecord, bpp int) {
	perByte := 8 / bpp
	mask := 1<<uint(bpp) - 1
	n := rec.Width * rec.Height
	for i := 0; i < n; i++ {
		bi := i / perByte
		if bi >= len(rec.Pixels) {
			return
		}
		idx := int(rec.Pixels[bi]>>(uint(i%perByte)*uint(bpp))) & mask
		if idx == 0 && rec.Color0Transparent {
			continue
		}
		r, g, b, ok := paletteColor(rec, idx)
		if !ok {
			continue
		}
		dst.SetRGBA(i%rec.Width, i/rec.Width, color.RGBA{R: r, G: g, B: b, A: 0xff})
	}
}

// decodeAlphaIndexed handles A3I5 and A5I3: one byte per pixel, palette index
// in the low indexBits and alpha in the rest.
func decodeAlphaIndexed(dst *image.RGBA, rec *TextureRecord, indexBits uint) {
	alphaBits := 8 - indexBits
	alphaMax := uint16(1)<<alphaBits - 1
	n := rec.Width * rec.Height
	for i := 0; i < n && i < len(rec.Pixels); i++ {
		v := rec.Pixels[i]
		idx := int(v & (1<<indexBits - 1))
		a := uint8(uint16(v>>indexBits) * 255 / alphaMax)
		if a == 0 {
			continue
		}
		r, g, b, ok := paletteColor(rec, idx)
		if !ok {
			continue
		}
		dst.SetRGBA(i%rec.Width, i/rec.Width, premultiplied(r, g, b, a))
	}
}

func decodeDirect(dst *image.RGBA, rec *TextureRecord) {
	n := rec.Width * rec.Height
	for i := 0; i < n && i*2+2 <= len(rec.Pixels); i++ {
		word := binary.LittleEndian.Uint16(rec.Pixels[i*2:])
		if word&0x8000 == 0 {
			continue
		}
		r, g, b := UnpackRGB555(word)
		dst.SetRGBA(i%rec.Width, i/rec.Width, premultiplied(r, g, b, 0xff))
	}
}

// mirrorTile doubles the flipped axes, copying src into the first half and
// its mirror image into the second, like mirrored-repeat texture wrapping.
func mirrorTile(src *image.RGBA, flipS, flipT bool) *image.RGBA {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dw, dh := w, h
	if flipS {
		dw *= 2
	}
	if flipT {
		dh *= 2
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < dh; y++ {
		sy := y
		if sy >= h {
			sy = 2*h - 1 - y
		}
		for x := 0; x < dw; x++ {
			sx := x
			if sx >= w {
				sx = 2*w - 1 - x
			}
			dst.SetRGBA(x, y, src.RGBAAt(sx, sy))
		}
	}
	return dst
}
