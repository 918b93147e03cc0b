package spa

// TextureHeaderSize is the size of a texture record header.
const TextureHeaderSize = 0x20

// TextureSignature starts every texture record.
const TextureSignature = " TPS"

// MaxTextureSize is the largest width or height Materialize accepts
// (size exponent 7).
const MaxTextureSize = 1024

// Pixel encodings.
type TextureFormat uint8

const (
	FormatNone       TextureFormat = 0
	FormatA3I5       TextureFormat = 1
	FormatPalette4   TextureFormat = 2
	FormatPalette16  TextureFormat = 3
	FormatPalette256 TextureFormat = 4
	FormatCompressed TextureFormat = 5
	FormatA5I3       TextureFormat = 6
	FormatDirect     TextureFormat = 7
)

func (f TextureFormat) String() string {
	switch f {
	case FormatNone:
		return "none"
	case FormatA3I5:
		return "a3i5"
	case FormatPalette4:
		return "palette4"
	case FormatPalette16:
		return "palette16"
	case FormatPalette256:
		return "palette256"
	case FormatCompressed:
		return "compressed4x4"
	case FormatA5I3:
		return "a5i3"
	case FormatDirect:
		return "direct"
	}
	return "unknown"
}

// TextureRecord is one embedded texture: raw pixel and palette bytes plus the
// parameters needed to materialize them.
type TextureRecord struct {
	Format            TextureFormat
	Width             int
	Height            int
	RepeatS           bool
	RepeatT           bool
	FlipS             bool
	FlipT             bool
	Color0Transparent bool

	Params   uint32 // raw parameter word
	Pixels   []byte
	Palette  []byte
	Reserved [3]uint32
}

func (r *TextureRecord) EncodedSize() int {
	return TextureHeaderSize + len(r.Pixels) + len(r.Palette)
}

func readTexture(c *cursor) *TextureRecord {
	start := c.off
	if sig := c.tag(); c.err == nil && sig != TextureSignature {
		c.err = formatErrorf(start, "texture signature: expected %q, found %q", TextureSignature, sig)
	}
	params := c.u32()
	pixelLen := c.u32()
	c.u32() // palette offset, always header+pixelLen
	paletteLen := c.u32()
	r := &TextureRecord{
		Params:            params,
		Format:            TextureFormat(params & 0xf),
		Width:             8 << ((params >> 4) & 0xf),
		Height:            8 << ((params >> 8) & 0xf),
		RepeatS:           params&(1<<12) != 0,
		RepeatT:           params&(1<<13) != 0,
		FlipS:             params&(1<<14) != 0,
		FlipT:             params&(1<<15) != 0,
		Color0Transparent: params&(1<<16) != 0,
	}
	for i := range r.Reserved {
		r.Reserved[i] = c.u32()
	}
	r.Pixels = c.bytes(int(pixelLen))
	r.Palette = c.bytes(int(paletteLen))
	return r
}
