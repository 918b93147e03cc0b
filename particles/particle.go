package particles

import (
	"github.com/gekko3d/kartfx/spa"
	"github.com/go-gl/mathgl/mgl32"
)

// Particle is one spawned element. After spawn it only depends on its
// definition, the scene and, if attached, its attachment handle.
type Particle struct {
	res   *spa.Resource
	def   *spa.EmitterDefinition
	scene Scene

	// Attached particles keep pos/vel in the attachment's local space.
	attach    Attachment
	lastFrame mgl32.Mat4

	pos      mgl32.Vec3
	vel      mgl32.Vec3 // definition units per tick
	spawnPos mgl32.Vec3

	angle  float32
	angVel float32

	age      int
	duration int

	size       mgl32.Vec2
	baseColor  mgl32.Vec3
	alphaScale float32
	color      mgl32.Vec4
	frame      int

	expired bool
}

// Update advances the particle one tick. When its age reaches its duration
// it asks the scene to remove it and ignores further updates.
func (p *Particle) Update() {
	if p.expired {
		return
	}
	if p.attach != nil {
		if m, ok := p.attach.AttachmentTransform(); ok {
			p.lastFrame = m
		}
	}

	step := p.vel.Mul(UnitScale)
	step[1] *= p.def.VerticalScale()
	p.pos = p.pos.Add(step)
	if g := p.def.Gravity; g != nil {
		p.vel = p.vel.Add(*g)
	}
	p.angle += p.angVel

	p.age++
	if p.age >= p.duration {
		p.expired = true
		p.scene.RemoveParticle(p)
		return
	}
	p.animate()
}

// animate recomputes color, opacity and texture frame for the current age.
func (p *Particle) animate() {
	frac := p.lifeFraction()
	def := p.def

	rgb := p.baseColor
	if ca := def.ColorAnim; ca != nil {
		rgb = colorAnimAt(ca, frac)
	}
	alpha := def.BaseAlpha() * p.alphaScale
	if oa := def.OpacityAnim; oa != nil && frac > oa.FadeStart {
		if oa.FadeStart >= 1 {
			alpha = 0
		} else {
			alpha *= 1 - (frac-oa.FadeStart)/(1-oa.FadeStart)
		}
	}
	p.color = rgb.Vec4(mgl32.Clamp(alpha, 0, 1))

	if ta := def.TextureAnim; ta != nil {
		n := int(ta.FrameCount)
		if n > len(ta.Frames) {
			n = len(ta.Frames)
		}
		if n > 0 {
			var i int
			if ta.Mode&spa.TextureAnimMapLifetime != 0 {
				i = int(frac * float32(n))
				if i >= n {
					i = n - 1
				}
			} else {
				i = p.age % n
			}
			p.frame = int(ta.Frames[i])
		}
	}
}

func (p *Particle) lifeFraction() float32 {
	if p.duration <= 0 {
		return 1
	}
	return float32(p.age) / float32(p.duration)
}

func colorAnimAt(ca *spa.ColorAnim, frac float32) mgl32.Vec3 {
	from, to := colorVec(ca.From), colorVec(ca.To)
	if frac <= ca.Start {
		return from
	}
	end := float32(1)
	if ca.Midpoint > ca.Start {
		end = ca.Midpoint
	}
	t := mgl32.Clamp((frac-ca.Start)/(end-ca.Start), 0, 1)
	return from.Add(to.Sub(from).Mul(t))
}

// colorVec converts RGB555 to 0..1 floats.
func colorVec(c uint16) mgl32.Vec3 {
	r, g, b := spa.UnpackRGB555(c)
	return mgl32.Vec3{float32(r) / 255, float32(g) / 255, float32(b) / 255}
}

func (p *Particle) Expired() bool { return p.expired }
func (p *Particle) Age() int { return p.age }
func (p *Particle) Duration() int { return p.duration }
func (p *Particle) Velocity() mgl32.Vec3 { return p.vel }
func (p *Particle) Angle() float32 { return p.angle }
func (p *Particle) AngularVelocity() float32 { return p.angVel }
func (p *Particle) Color() mgl32.Vec4 { return p.color }
func (p *Particle) Frame() int { return p.frame }
func (p *Particle) Size() mgl32.Vec2 { return p.size }
func (p *Particle) Definition() *spa.EmitterDefinition { return p.def }
func (p *Particle) Resource() *spa.Resource { return p.res }
func (p *Particle) Attached() bool { return p.attach != nil }

// Position returns the particle's position in the space it is simulated in:
// world space, or the attachment's local space for attached particles.
func (p *Particle) Position() mgl32.Vec3 { return p.pos }
