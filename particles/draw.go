package particles

import (
	"github.com/gekko3d/kartfx/spa"
	"github.com/go-gl/mathgl/mgl32"
)

// DrawCommand is everything a renderer needs for one particle quad.
type DrawCommand struct {
	Pose      mgl32.Mat4
	Color     mgl32.Vec4
	TextureID int
	Resource  *spa.Resource
}

// WorldPosition returns the particle's current world-space position,
// resolving the attachment if there is one.
func (p *Particle) WorldPosition() mgl32.Vec3 {
	pos, _, _ := p.worldState()
	return pos
}

// worldState returns world position, world velocity (world units per tick)
// and world spawn point. It reads the attachment live and falls back to the
// last frame seen during Update if the attachment is gone.
func (p *Particle) worldState() (pos, vel, spawn mgl32.Vec3) {
	if p.attach == nil {
		return p.pos, p.vel.Mul(UnitScale), p.spawnPos
	}
	m := p.lastFrame
	if live, ok := p.attach.AttachmentTransform(); ok {
		m = live
	}
	pos = m.Mul4x1(p.pos.Vec4(1)).Vec3()
	spawn = m.Mul4x1(p.spawnPos.Vec4(1)).Vec3()
	vel = m.Mat3().Mul3x1(p.vel.Mul(UnitScale))
	return pos, vel, spawn
}

// Draw computes the particle's pose and color as seen from camera. It does
// not modify the particle.
func (p *Particle) Draw(camera mgl32.Vec3) DrawCommand {
	pos, vel, spawn := p.worldState()
	def := p.def

	var basis mgl32.Mat4
	switch def.Billboard() {
	case spa.BillboardSpark:
		basis = sparkBasis(pos, vel, spawn, camera)
	case spa.BillboardYaw:
		basis = mgl32.HomogRotate3DY(p.angle)
	case spa.BillboardSparkYaw:
		basis = sparkBasis(pos, vel, spawn, camera).Mul4(mgl32.HomogRotate3DY(p.angle))
	default:
		basis = cameraBasis(pos, camera).Mul4(mgl32.HomogRotate3DZ(p.angle))
	}

	s := scaleAt(def.ScaleAnim, p.lifeFraction())
	sx := s * p.size.X() * UnitScale
	sy := s * p.size.Y() * UnitScale

	pose := mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()).
		Mul4(basis).
		Mul4(mgl32.Translate3D(def.ScaleDelta.X()*UnitScale, def.ScaleDelta.Y()*UnitScale, 0)).
		Mul4(mgl32.Scale3D(sx, sy, 1)).
		Mul4(mgl32.Translate3D(-def.ScaleCenter.X(), -def.ScaleCenter.Y(), 0))

	return DrawCommand{
		Pose:      pose,
		Color:     p.color,
		TextureID: p.frame,
		Resource:  p.res,
	}
}

// scaleAt evaluates the scale curve: zero to From over [0, RampEnd), From
// until HoldEnd, then From to To over the remainder.
func scaleAt(sa *spa.ScaleAnim, frac float32) float32 {
	if sa == nil {
		return 1
	}
	if frac < sa.RampEnd {
		return sa.From * frac / sa.RampEnd
	}
	start := sa.RampEnd
	if sa.HoldEnd > start {
		start = sa.HoldEnd
	}
	if frac < start || start >= 1 {
		return sa.From
	}
	t := mgl32.Clamp((frac-start)/(1-start), 0, 1)
	return sa.From + (sa.To-sa.From)*t
}

// cameraBasis faces the quad's +Z toward the camera with +Y kept as close to
// world up as possible.
func cameraBasis(pos, camera mgl32.Vec3) mgl32.Mat4 {
	fwd := camera.Sub(pos)
	if fwd.Len() < 1e-6 {
		return mgl32.Ident4()
	}
	fwd = fwd.Normalize()
	up := mgl32.Vec3{0, 1, 0}
	right := up.Cross(fwd)
	if right.Len() < 1e-6 {
		right = mgl32.Vec3{1, 0, 0}
	}
	right = right.Normalize()
	up = fwd.Cross(right)
	return basisFromAxes(right, up, fwd)
}

// sparkBasis stretches the quad's +Y along the particle's motion since
// spawn, turned to face the camera around that axis.
func sparkBasis(pos, vel, spawn, camera mgl32.Vec3) mgl32.Mat4 {
	axis := pos.Sub(spawn)
	if axis.Len() < 1e-6 {
		axis = vel
	}
	view := camera.Sub(pos)
	if axis.Len() < 1e-6 || view.Len() < 1e-6 {
		return cameraBasis(pos, camera)
	}
	axis = axis.Normalize()
	x := axis.Cross(view.Normalize())
	if x.Len() < 1e-6 {
		return cameraBasis(pos, camera)
	}
	x = x.Normalize()
	z := x.Cross(axis)
	return basisFromAxes(x, axis, z)
}

func basisFromAxes(x, y, z mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Mat4FromCols(x.Vec4(0), y.Vec4(0), z.Vec4(0), mgl32.Vec4{0, 0, 0, 1})
}
