// Package particles runs emitter instances and the particles they spawn.
// Everything here is stepped once per simulation tick by the owning scene and
// is not safe for concurrent mutation.
package particles

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// UnitScale converts definition units to world units. It is also the
	// render-space to world-space scale applied to particle quads.
	UnitScale float32 = 16

	// InheritedVelocity is the fraction of the target's velocity given to
	// particles that are not attached.
	InheritedVelocity float32 = 0.5

	// NumPriorities is the depth of an emitter's priority stack.
	NumPriorities = 4
)

// Target is the entity an emitter is bound to.
type Target interface {
	Position() mgl32.Vec3
	// Velocity in world units per tick.
	Velocity() mgl32.Vec3
	// Transform returns the target's object-to-world matrix, if it has one.
	Transform() (mgl32.Mat4, bool)
}

// Attachment is a non-owning handle to a moving frame. ok is false once the
// frame no longer exists.
type Attachment interface {
	AttachmentTransform() (m mgl32.Mat4, ok bool)
}

// Scene owns the particle and emitter collections.
type Scene interface {
	AddParticle(p *Particle)
	RemoveParticle(p *Particle)
	RemoveEmitter(e *Emitter)
	CameraPosition() mgl32.Vec3
}

// QuadMesh is the fixed geometry every particle is drawn with.
type QuadMesh struct {
	Positions [4]mgl32.Vec3
	UVs       [4]mgl32.Vec2
	Indices   [6]uint16
}

// Quad is a unit quad centred on the origin in the XY plane.
var Quad = &QuadMesh{
	Positions: [4]mgl32.Vec3{{-0.5, -0.5, 0}, {0.5, -0.5, 0}, {0.5, 0.5, 0}, {-0.5, 0.5, 0}},
	UVs:       [4]mgl32.Vec2{{0, 1}, {1, 1}, {1, 0}, {0, 0}},
	Indices:   [6]uint16{0, 1, 2, 0, 2, 3},
}

// Renderer draws one textured quad. tex is nil when no texture is bound.
type Renderer interface {
	DrawQuad(mesh *QuadMesh, pose mgl32.Mat4, color mgl32.Vec4, tex *image.RGBA)
}

// targetFrame adapts a Target that is not itself an Attachment. It always
// reports the frame as alive.
type targetFrame struct {
	target Target
}

func (f targetFrame) AttachmentTransform() (mgl32.Mat4, bool) {
	if m, ok := f.target.Transform(); ok {
		return m, true
	}
	p := f.target.Position()
	return mgl32.Translate3D(p.X(), p.Y(), p.Z()), true
}

func attachmentFor(t Target) Attachment {
	if a, ok := t.(Attachment); ok {
		return a
	}
	return targetFrame{target: t}
}
