// Package spatest builds synthetic effect files for tests.
package spatest

import (
	"encoding/binary"

	"github.com/gekko3d/kartfx/spa"
)

// Field offsets inside an emitter definition header.
const (
	OffFlags       = 0x00
	OffPosition    = 0x04
	OffChance      = 0x10
	OffAreaSpread  = 0x14
	OffDirection   = 0x18
	OffColor       = 0x1E
	OffRandomXZ    = 0x20
	OffVelocity    = 0x24
	OffSize        = 0x28
	OffAspect      = 0x2C
	OffDelay       = 0x2E
	OffRotVelFrom  = 0x30
	OffRotVelTo    = 0x32
	OffScaleCenter = 0x34
	OffLifetime    = 0x38
	OffDuration    = 0x3A
	OffVarScale    = 0x3C
	OffVarDuration = 0x3D
	OffFrequency   = 0x40
	OffOpacity     = 0x41
	OffVertical    = 0x42
	OffTextureID   = 0x43
	OffUnknown1    = 0x44
	OffUnknown2    = 0x48
	OffScaleDelta  = 0x4C
	OffReserved    = 0x50
)

const fx12 = 4096

// File is a whole effect resource.
type File struct {
	Version string // defaults to spa.SupportedVersion
	Defs    [][]byte
	Texs    [][]byte
}

func (f File) Bytes() []byte {
	version := f.Version
	if version == "" {
		version = spa.SupportedVersion
	}
	var defBlock, texBlock []byte
	for _, d := range f.Defs {
		defBlock = append(defBlock, d...)
	}
	for _, t := range f.Texs {
		texBlock = append(texBlock, t...)
	}

	hdr := make([]byte, spa.HeaderSize)
	copy(hdr[0:], spa.Signature)
	copy(hdr[4:], version)
	binary.LittleEndian.PutUint16(hdr[0x08:], uint16(len(f.Defs)))
	binary.LittleEndian.PutUint16(hdr[0x0A:], uint16(len(f.Texs)))
	binary.LittleEndian.PutUint32(hdr[0x10:], uint32(len(defBlock)))
	binary.LittleEndian.PutUint32(hdr[0x14:], uint32(len(texBlock)))
	binary.LittleEndian.PutUint32(hdr[0x18:], uint32(spa.HeaderSize+len(defBlock)))

	out := append(hdr, defBlock...)
	return append(out, texBlock...)
}

// Def lays out one emitter definition. A block is appended for every
// optional flag that is set, pre-filled with 0xA0, 0xA1, ...
type Def struct {
	hdr  []byte
	tail map[uint32][]byte
}

func NewDef(flags uint32) *Def {
	d := &Def{hdr: make([]byte, spa.DefinitionHeaderSize), tail: map[uint32][]byte{}}
	binary.LittleEndian.PutUint32(d.hdr, flags)
	for _, f := range spa.BlockOrder() {
		if flags&f == 0 {
			continue
		}
		blk := make([]byte, spa.DefinitionSize(f)-spa.DefinitionHeaderSize)
		for i := range blk {
			blk[i] = byte(0xA0 + i)
		}
		d.tail[f] = blk
	}
	return d
}

func (d *Def) U8(off int, v uint8) *Def {
	d.hdr[off] = v
	return d
}

func (d *Def) U16(off int, v uint16) *Def {
	binary.LittleEndian.PutUint16(d.hdr[off:], v)
	return d
}

func (d *Def) U32(off int, v uint32) *Def {
	binary.LittleEndian.PutUint32(d.hdr[off:], v)
	return d
}

// Fx32 stores v as 20.12 fixed point in 32 bits.
func (d *Def) Fx32(off int, v float32) *Def { return d.U32(off, uint32(int32(v*fx12))) }

// Fx16 stores v as 4.12 fixed point in 16 bits.
func (d *Def) Fx16(off int, v float32) *Def { return d.U16(off, uint16(int16(v*fx12))) }

func (d *Def) Vec3Fx32(off int, x, y, z float32) *Def {
	return d.Fx32(off, x).Fx32(off+4, y).Fx32(off+8, z)
}

func (d *Def) Vec3Fx16(off int, x, y, z float32) *Def {
	return d.Fx16(off, x).Fx16(off+2, y).Fx16(off+4, z)
}

// Block overwrites the start of the optional block for flag.
func (d *Def) Block(flag uint32, data []byte) *Def {
	copy(d.tail[flag], data)
	return d
}

func (d *Def) Bytes() []byte {
	out := append([]byte(nil), d.hdr...)
	for _, f := range spa.BlockOrder() {
		if blk, ok := d.tail[f]; ok {
			out = append(out, blk...)
		}
	}
	return out
}

// Tex is one texture record.
type Tex struct {
	Format   spa.TextureFormat
	WExp     uint32
	HExp     uint32
	Flags    uint32 // bits 12..16 of the params word
	Pixels   []byte
	Palette  []byte
	BadMagic bool
}

const (
	TexRepeatS           = 1 << 12
	TexRepeatT           = 1 << 13
	TexFlipS             = 1 << 14
	TexFlipT             = 1 << 15
	TexColor0Transparent = 1 << 16
)

func (t Tex) Bytes() []byte {
	hdr := make([]byte, spa.TextureHeaderSize)
	if t.BadMagic {
		copy(hdr, "XXXX")
	} else {
		copy(hdr, spa.TextureSignature)
	}
	params := uint32(t.Format) | t.WExp<<4 | t.HExp<<8 | t.Flags
	binary.LittleEndian.PutUint32(hdr[0x04:], params)
	binary.LittleEndian.PutUint32(hdr[0x08:], uint32(len(t.Pixels)))
	binary.LittleEndian.PutUint32(hdr[0x0C:], uint32(spa.TextureHeaderSize+len(t.Pixels)))
	binary.LittleEndian.PutUint32(hdr[0x10:], uint32(len(t.Palette)))
	out := append(hdr, t.Pixels...)
	return append(out, t.Palette...)
}

func RGB555(r, g, b uint8) uint16 {
	return uint16(r>>3) | uint16(g>>3)<<5 | uint16(b>>3)<<10
}

func Palette(colors ...uint16) []byte {
	out := make([]byte, len(colors)*2)
	for i, c := range colors {
		binary.LittleEndian.PutUint16(out[i*2:], c)
	}
	return out
}
