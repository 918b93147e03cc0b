package spa

import (
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"
)

// fx12 is the 20.12 fixed point scale used throughout the format.
const fx12 = 4096

// cursor is a bounds-checked little-endian reader over a byte slice.
// The first out-of-range access latches err; later reads return zero.
type cursor struct {
	data []byte
	off  int
	err  error
}

func (c *cursor) need(n int) bool {
	if c.err != nil {
		return false
	}
	if n < 0 || c.off+n > len(c.data) {
		c.err = formatErrorf(c.off, "unexpected end of data (need %d bytes, have %d)", n, len(c.data)-c.off)
		return false
	}
	return true
}

func (c *cursor) bytes(n int) []byte {
	if !c.need(n) {
		return nil
	}
	out := make([]byte, n)
	copy(out, c.data[c.off:c.off+n])
	c.off += n
	return out
}

func (c *cursor) tag() string {
	if !c.need(4) {
		return ""
	}
	s := string(c.data[c.off : c.off+4])
	c.off += 4
	return s
}

func (c *cursor) u8() uint8 {
	if !c.need(1) {
		return 0
	}
	v := c.data[c.off]
	c.off++
	return v
}

func (c *cursor) u16() uint16 {
	if !c.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(c.data[c.off:])
	c.off += 2
	return v
}

func (c *cursor) i16() int16 { return int16(c.u16()) }

func (c *cursor) u32() uint32 {
	if !c.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(c.data[c.off:])
	c.off += 4
	return v
}

func (c *cursor) i32() int32 { return int32(c.u32()) }

func (c *cursor) fx32() float32  { return float32(c.i32()) / fx12 }
func (c *cursor) fx16() float32  { return float32(c.i16()) / fx12 }
func (c *cursor) ufx16() float32 { return float32(c.u16()) / fx12 }

// frac8 reads a byte holding a 0..1 fraction in 1/255 steps.
func (c *cursor) frac8() float32 { return float32(c.u8()) / 255 }

func (c *cursor) vec3fx32() mgl32.Vec3 {
	return mgl32.Vec3{c.fx32(), c.fx32(), c.fx32()}
}

func (c *cursor) vec3fx16() mgl32.Vec3 {
	return mgl32.Vec3{c.fx16(), c.fx16(), c.fx16()}
}
