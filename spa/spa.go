// Package spa decodes particle effect resources: a header, a packed array of
// flag-gated emitter definitions and a list of embedded textures.
package spa

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"sync"
)

const (
	Signature = " APS"
	// SupportedVersion is the only particle-record schema this package parses.
	SupportedVersion = "12_1"

	HeaderSize = 0x20
)

// Resource is an immutable decoded effect file. It is safe for concurrent use.
type Resource struct {
	version     string
	definitions []*EmitterDefinition
	textures    []*TextureRecord

	// One slot per texture; materialized on first use.
	cache []textureSlot
}

type textureSlot struct {
	once sync.Once
	img  *image.RGBA
	err  error
}

// NewResource assembles a resource from already-decoded parts, as if read
// from a file with SupportedVersion.
func NewResource(defs []*EmitterDefinition, textures []*TextureRecord) *Resource {
	return &Resource{
		version:     SupportedVersion,
		definitions: defs,
		textures:    textures,
		cache:       make([]textureSlot, len(textures)),
	}
}

// LoadFile reads and decodes an effect file from disk.
func LoadFile(filename string) (*Resource, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func DecodeReader(r io.Reader) (*Resource, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	return Decode(buf.Bytes())
}

// Decode parses an effect resource. Emitter definitions are only parsed for
// SupportedVersion; other versions still yield their textures.
func Decode(data []byte) (*Resource, error) {
	c := &cursor{data: data}

	sig := c.tag()
	if c.err != nil {
		return nil, c.err
	}
	if sig != Signature {
		return nil, formatErrorf(0, "signature: expected %q, found %q", Signature, sig)
	}

	res := &Resource{version: c.tag()}
	defCount := int(c.u16())
	texCount := int(c.u16())
	c.u32() // reserved
	c.u32() // definition block size
	c.u32() // texture block size
	texOffset := int(c.u32())
	c.u32() // reserved
	if c.err != nil {
		return nil, c.err
	}

	if res.version == SupportedVersion {
		res.definitions = make([]*EmitterDefinition, 0, defCount)
		for i := 0; i < defCount; i++ {
			start := c.off
			d := readDefinition(c)
			if c.err != nil {
				return nil, fmt.Errorf("emitter %d: %w", i, c.err)
			}
			if got, want := c.off-start, DefinitionSize(d.Flags); got != want {
				return nil, formatErrorf(start, "emitter %d: consumed %d bytes, flags imply %d", i, got, want)
			}
			res.definitions = append(res.definitions, d)
		}
	}

	c.off = texOffset
	res.textures = make([]*TextureRecord, 0, texCount)
	for i := 0; i < texCount; i++ {
		t := readTexture(c)
		if c.err != nil {
			return nil, fmt.Errorf("texture %d: %w", i, c.err)
		}
		res.textures = append(res.textures, t)
	}
	res.cache = make([]textureSlot, len(res.textures))

	return res, nil
}

func (r *Resource) Version() string { return r.version }

func (r *Resource) VersionSupported() bool { return r.version == SupportedVersion }

// VersionErr returns ErrVersionMismatch when emitter definitions were skipped.
func (r *Resource) VersionErr() error {
	if r.VersionSupported() {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrVersionMismatch, r.version)
}

func (r *Resource) NumDefinitions() int { return len(r.definitions) }

// Definition returns the emitter definition with the given id, or nil.
func (r *Resource) Definition(id int) *EmitterDefinition {
	if id < 0 || id >= len(r.definitions) {
		return nil
	}
	return r.definitions[id]
}

func (r *Resource) Definitions() []*EmitterDefinition { return r.definitions }

func (r *Resource) NumTextures() int { return len(r.textures) }

// TextureRecord returns the raw texture record with the given id, or nil.
func (r *Resource) TextureRecord(id int) *TextureRecord {
	if id < 0 || id >= len(r.textures) {
		return nil
	}
	return r.textures[id]
}

// Texture materializes the texture with the given id. The result, including
// any error, is computed once and shared by every caller.
func (r *Resource) Texture(id int) (*image.RGBA, error) {
	if id < 0 || id >= len(r.textures) {
		return nil, fmt.Errorf("%w: id %d of %d", ErrTextureNotFound, id, len(r.textures))
	}
	slot := &r.cache[id]
	slot.once.Do(func() {
		slot.img, slot.err = Materialize(r.textures[id])
	})
	return slot.img, slot.err
}
