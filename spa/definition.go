package spa

import "github.com/go-gl/mathgl/mgl32"

// DefinitionHeaderSize is the size of the fixed part of an emitter record.
const DefinitionHeaderSize = 0x54

// Emitter flag bits.
const (
	FlagSpreadMask    uint32 = 0x0000000f
	FlagBillboardMask uint32 = 0x000000f0

	FlagScaleAnim   uint32 = 0x00000100
	FlagColorAnim   uint32 = 0x00000200
	FlagOpacityAnim uint32 = 0x00000400
	FlagTextureAnim uint32 = 0x00000800
	FlagOpaqueA     uint32 = 0x00001000
	FlagOpaqueB     uint32 = 0x00002000
	FlagRandomDir   uint32 = 0x00004000
	FlagAttached    uint32 = 0x00008000
	FlagGravity     uint32 = 0x01000000
	FlagOpaqueC     uint32 = 0x02000000
	FlagOpaqueD     uint32 = 0x04000000
	FlagOpaqueE     uint32 = 0x08000000
)

// Spread shapes (flags & FlagSpreadMask).
const (
	SpreadNone   = 0
	SpreadPlanar = 2
)

// Billboard modes ((flags & FlagBillboardMask) >> 4).
const (
	BillboardCamera   = 0
	BillboardSpark    = 1
	BillboardYaw      = 2
	BillboardSparkYaw = 3
)

// optionalBlock describes one flag-gated trailing sub-record. The table order
// is the on-disk order.
type optionalBlock struct {
	flag uint32
	size int
}

var optionalBlocks = [...]optionalBlock{
	{FlagScaleAnim, 12},
	{FlagColorAnim, 12},
	{FlagOpacityAnim, 8},
	{FlagTextureAnim, 12},
	{FlagOpaqueA, 20},
	{FlagOpaqueB, 8},
	{FlagGravity, 8},
	{FlagOpaqueC, 8},
	{FlagOpaqueD, 16},
	{FlagOpaqueE, 16},
}

// BlockOrder returns the optional-block flags in on-disk order.
func BlockOrder() []uint32 {
	out := make([]uint32, len(optionalBlocks))
	for i, b := range optionalBlocks {
		out[i] = b.flag
	}
	return out
}

// DefinitionSize returns the on-disk length of a record with the given flags.
func DefinitionSize(flags uint32) int {
	n := DefinitionHeaderSize
	for _, b := range optionalBlocks {
		if flags&b.flag != 0 {
			n += b.size
		}
	}
	return n
}

// EmitterDefinition is a read-only template describing how and when an
// emitter spawns particles.
type EmitterDefinition struct {
	Flags          uint32
	Position       mgl32.Vec3
	ParticleChance float32
	AreaSpread     float32
	Direction      mgl32.Vec3
	Color          uint16 // RGB555
	RandomXZ       float32
	Velocity       float32
	Size           float32
	Aspect         float32
	Delay          uint16

	// Binary angles, 65536 per turn.
	RotVelFrom int16
	RotVelTo   int16

	ScaleCenter mgl32.Vec2
	Lifetime    uint16 // emitter lifetime in ticks, 0 = unbounded
	Duration    uint16 // base particle duration in ticks

	VarScale     float32
	VarDuration  float32
	VarReserved1 uint8
	VarReserved2 uint8

	Frequency         uint8
	Opacity           uint8 // 0..31
	VerticalIntensity uint8
	TextureID         uint8

	Unknown1   uint32
	Unknown2   uint32
	ScaleDelta mgl32.Vec2
	Reserved   uint32

	ScaleAnim   *ScaleAnim
	ColorAnim   *ColorAnim
	OpacityAnim *OpacityAnim
	TextureAnim *TextureAnim
	Gravity     *mgl32.Vec3

	// Blocks with unknown semantics, kept verbatim.
	OpaqueA []byte
	OpaqueB []byte
	OpaqueC []byte
	OpaqueD []byte
	OpaqueE []byte
}

// ScaleAnim ramps a particle from zero to From over [0, RampEnd), holds
// until HoldEnd, then blends From to To for the rest of its life.
type ScaleAnim struct {
	From       float32
	To         float32
	RampEnd    float32
	HoldEnd    float32
	BlendFlags uint16
	BlendParam uint32
}

// ColorAnim blends From to To starting at Start of the particle's life.
// If Midpoint is past Start the blend completes at Midpoint.
type ColorAnim struct {
	From     uint16
	To       uint16
	Start    float32
	Midpoint float32
	Mode     uint16
	Reserved uint32
}

// OpacityAnim fades alpha to zero after FadeStart.
type OpacityAnim struct {
	Intensity float32
	Random    float32
	FadeStart float32
	Blend     uint8
	Reserved  uint16
}

// TextureAnimMapLifetime spreads the frame list over the particle's life
// instead of stepping one frame per tick.
const TextureAnimMapLifetime = 0x01

type TextureAnim struct {
	Frames     [8]uint8
	FrameCount uint8
	Mode       uint8
	Reserved   uint16
}

// Spread returns the emission shape subfield.
func (d *EmitterDefinition) Spread() int { return int(d.Flags & FlagSpreadMask) }

// Billboard returns the orientation mode subfield.
func (d *EmitterDefinition) Billboard() int { return int(d.Flags&FlagBillboardMask) >> 4 }

func (d *EmitterDefinition) Attached() bool { return d.Flags&FlagAttached != 0 }

func (d *EmitterDefinition) RandomDirection() bool { return d.Flags&FlagRandomDir != 0 }

// VerticalScale is the per-tick multiplier applied to vertical displacement.
func (d *EmitterDefinition) VerticalScale() float32 {
	return 1 + float32(d.VerticalIntensity)/32
}

// BaseAlpha converts the 5-bit opacity to 0..1.
func (d *EmitterDefinition) BaseAlpha() float32 {
	return float32(d.Opacity&0x1f) / 31
}

// EncodedSize returns the number of bytes this record occupies on disk.
func (d *EmitterDefinition) EncodedSize() int { return DefinitionSize(d.Flags) }

func readDefinition(c *cursor) *EmitterDefinition {
	d := &EmitterDefinition{}
	d.Flags = c.u32()
	d.Position = c.vec3fx32()
	d.ParticleChance = c.fx32()
	d.AreaSpread = c.fx32()
	d.Direction = c.vec3fx16()
	d.Color = c.u16()
	d.RandomXZ = c.fx32()
	d.Velocity = c.fx32()
	d.Size = c.fx32()
	d.Aspect = c.ufx16()
	d.Delay = c.u16()
	d.RotVelFrom = c.i16()
	d.RotVelTo = c.i16()
	d.ScaleCenter = mgl32.Vec2{c.fx16(), c.fx16()}
	d.Lifetime = c.u16()
	d.Duration = c.u16()
	d.VarScale = c.frac8()
	d.VarDuration = c.frac8()
	d.VarReserved1 = c.u8()
	d.VarReserved2 = c.u8()
	d.Frequency = c.u8()
	d.Opacity = c.u8()
	d.VerticalIntensity = c.u8()
	d.TextureID = c.u8()
	d.Unknown1 = c.u32()
	d.Unknown2 = c.u32()
	d.ScaleDelta = mgl32.Vec2{c.fx16(), c.fx16()}
	d.Reserved = c.u32()

	// Same order as optionalBlocks.
	if d.Flags&FlagScaleAnim != 0 {
		d.ScaleAnim = &ScaleAnim{
			From:       c.ufx16(),
			To:         c.ufx16(),
			RampEnd:    c.frac8(),
			HoldEnd:    c.frac8(),
			BlendFlags: c.u16(),
			BlendParam: c.u32(),
		}
	}
	if d.Flags&FlagColorAnim != 0 {
		d.ColorAnim = &ColorAnim{
			From:     c.u16(),
			To:       c.u16(),
			Start:    c.frac8(),
			Midpoint: c.frac8(),
			Mode:     c.u16(),
			Reserved: c.u32(),
		}
	}
	if d.Flags&FlagOpacityAnim != 0 {
		d.OpacityAnim = &OpacityAnim{
			Intensity: c.ufx16(),
			Random:    c.ufx16(),
			FadeStart: c.frac8(),
			Blend:     c.u8(),
			Reserved:  c.u16(),
		}
	}
	if d.Flags&FlagTextureAnim != 0 {
		ta := &TextureAnim{}
		for i := range ta.Frames {
			ta.Frames[i] = c.u8()
		}
		ta.FrameCount = c.u8()
		ta.Mode = c.u8()
		ta.Reserved = c.u16()
		d.TextureAnim = ta
	}
	if d.Flags&FlagOpaqueA != 0 {
		d.OpaqueA = c.bytes(20)
	}
	if d.Flags&FlagOpaqueB != 0 {
		d.OpaqueB = c.bytes(8)
	}
	if d.Flags&FlagGravity != 0 {
		g := c.vec3fx16()
		c.u16() // padding
		d.Gravity = &g
	}
	if d.Flags&FlagOpaqueC != 0 {
		d.OpaqueC = c.bytes(8)
	}
	if d.Flags&FlagOpaqueD != 0 {
		d.OpaqueD = c.bytes(16)
	}
	if d.Flags&FlagOpaqueE != 0 {
		d.OpaqueE = c.bytes(16)
	}
	return d
}
