package particles

import (
	"math"

	"github.com/gekko3d/kartfx/spa"
	"github.com/go-gl/mathgl/mgl32"
)

// binaryAngle is one unit of the 65536-per-turn angle encoding, in radians.
const binaryAngle = 2 * math.Pi / 65536

// spawn creates one particle from def and hands it to the scene.
func (e *Emitter) spawn(def *spa.EmitterDefinition) {
	local := e.Offset.Add(def.Position).Add(e.spreadVector(def)).Mul(UnitScale)
	dir := def.Direction

	p := &Particle{
		res:   e.res,
		def:   def,
		scene: e.scene,
		frame: int(def.TextureID),
	}

	if def.Attached() {
		p.attach = attachmentFor(e.target)
		p.lastFrame, _ = p.attach.AttachmentTransform()
		p.pos = local
	} else {
		if m, ok := e.target.Transform(); ok {
			p.pos = m.Mul4x1(local.Vec4(1)).Vec3()
			dir = rotationOnly(m).Mul3x1(dir)
		} else {
			p.pos = e.target.Position().Add(local)
		}
		p.vel = e.target.Velocity().Mul(InheritedVelocity / UnitScale)
	}
	p.spawnPos = p.pos

	p.vel = p.vel.Add(dir.Mul(def.Velocity))
	p.vel = p.vel.Add(mgl32.Vec3{
		(e.random()*2 - 1) * def.RandomXZ,
		0,
		(e.random()*2 - 1) * def.RandomXZ,
	})

	p.angVel = e.rotationVelocity(def)
	if def.RandomDirection() {
		p.angle = e.random() * 2 * math.Pi
	}

	dur := float32(def.Duration) * (1 + (e.random()*2-1)*def.VarDuration)
	p.duration = int(dur + 0.5)
	if p.duration < 1 {
		p.duration = 1
	}

	scale := 1 + (e.random()*2-1)*def.VarScale
	if scale < 0 {
		scale = 0
	}
	aspect := def.Aspect
	if aspect == 0 {
		aspect = 1
	}
	p.size = mgl32.Vec2{def.Size * scale, def.Size * scale * aspect}

	p.baseColor = colorVec(def.Color)
	p.alphaScale = 1
	if oa := def.OpacityAnim; oa != nil && oa.Random > 0 {
		p.alphaScale = 1 - e.random()*mgl32.Clamp(oa.Random, 0, 1)
	}
	p.animate()

	e.scene.AddParticle(p)
}

// rotationVelocity returns the angular velocity in radians per tick.
//
// The legacy spread scales the random term by the span twice, in binary-angle
// units, so the drawn range is [from, from+span*span] rather than [from, to].
func (e *Emitter) rotationVelocity(def *spa.EmitterDefinition) float32 {
	from := float32(def.RotVelFrom)
	span := float32(def.RotVelTo) - float32(def.RotVelFrom)
	if e.CorrectRotationSpread {
		return (from + e.random()*span) * binaryAngle
	}
	return (from + e.random()*span*span) * binaryAngle
}

// spreadVector returns the random spawn offset for def's emission shape, in
// definition units.
func (e *Emitter) spreadVector(def *spa.EmitterDefinition) mgl32.Vec3 {
	switch def.Spread() {
	case spa.SpreadNone:
		return mgl32.Vec3{}
	case spa.SpreadPlanar:
		theta := float64(e.random()) * 2 * math.Pi
		mag := e.random() * def.AreaSpread
		return mgl32.Vec3{float32(math.Cos(theta)) * mag, 0, float32(math.Sin(theta)) * mag}
	default:
		return e.randomUnit().Mul(e.random() * def.AreaSpread)
	}
}

func (e *Emitter) randomUnit() mgl32.Vec3 {
	for i := 0; i < 8; i++ {
		v := mgl32.Vec3{e.random()*2 - 1, e.random()*2 - 1, e.random()*2 - 1}
		if l := v.Len(); l > 1e-4 {
			return v.Mul(1 / l)
		}
	}
	return mgl32.Vec3{0, 1, 0}
}

// rotationOnly strips translation and scale from m.
func rotationOnly(m mgl32.Mat4) mgl32.Mat3 {
	r := m.Mat3()
	for c := 0; c < 3; c++ {
		col := r.Col(c)
		if l := col.Len(); l > 1e-6 {
			r.SetCol(c, col.Mul(1/l))
		}
	}
	return r
}
