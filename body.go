package kartfx

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Body is a moving object effects can be bound to, such as a kart or an
// item.
type Body struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	// Velocity in world units per tick.
	Velocity mgl32.Vec3
}

func NewBody(position mgl32.Vec3) *Body {
	return &Body{
		Position: position,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (b *Body) ObjectToWorld() mgl32.Mat4 {
	// M = T * R * S
	translate := mgl32.Translate3D(b.Position.X(), b.Position.Y(), b.Position.Z())
	rotate := b.Rotation.Mat4()
	scale := mgl32.Scale3D(b.Scale.X(), b.Scale.Y(), b.Scale.Z())

	return translate.Mul4(rotate).Mul4(scale)
}

// Integrate moves the body by one tick of its velocity.
func (b *Body) Integrate() {
	b.Position = b.Position.Add(b.Velocity)
}

// BodyHandle is a weak reference to a body in a World. It goes stale when the
// body is removed, even if the slot is reused.
type BodyHandle struct {
	index      uint32
	generation uint32
}

func (h BodyHandle) IsZero() bool { return h == BodyHandle{} }

// bodyRef resolves a handle against its world on every call. It satisfies
// both particles.Target and particles.Attachment.
type bodyRef struct {
	world  *World
	handle BodyHandle
}

func (r bodyRef) body() *Body { return r.world.Body(r.handle) }

func (r bodyRef) Position() mgl32.Vec3 {
	if b := r.body(); b != nil {
		return b.Position
	}
	return mgl32.Vec3{}
}

func (r bodyRef) Velocity() mgl32.Vec3 {
	if b := r.body(); b != nil {
		return b.Velocity
	}
	return mgl32.Vec3{}
}

func (r bodyRef) Transform() (mgl32.Mat4, bool) {
	if b := r.body(); b != nil {
		return b.ObjectToWorld(), true
	}
	return mgl32.Ident4(), false
}

func (r bodyRef) AttachmentTransform() (mgl32.Mat4, bool) {
	return r.Transform()
}
