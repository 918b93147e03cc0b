package particles

import (
	"math/rand"

	"github.com/gekko3d/kartfx/spa"
	"github.com/go-gl/mathgl/mgl32"
)

// testScene is a minimal Scene that steps emitters before particles, like
// the real host does.
type testScene struct {
	particles       []*Particle
	removed         []*Particle
	removedEmitters []*Emitter
	camera          mgl32.Vec3
}

func (s *testScene) AddParticle(p *Particle)    { s.particles = append(s.particles, p) }
func (s *testScene) RemoveParticle(p *Particle) { s.removed = append(s.removed, p) }
func (s *testScene) RemoveEmitter(e *Emitter)   { s.removedEmitters = append(s.removedEmitters, e) }
func (s *testScene) CameraPosition() mgl32.Vec3 { return s.camera }

func (s *testScene) tick(emitters ...*Emitter) {
	existing := len(s.particles)
	for _, e := range emitters {
		e.Update()
	}
	for _, p := range s.particles[:existing] {
		p.Update()
	}
	live := s.particles[:0]
	for _, p := range s.particles {
		if !p.Expired() {
			live = append(live, p)
		}
	}
	s.particles = live
}

type testTarget struct {
	pos, vel mgl32.Vec3
	m        mgl32.Mat4
	hasM     bool
}

func (t *testTarget) Position() mgl32.Vec3 { return t.pos }
func (t *testTarget) Velocity() mgl32.Vec3 { return t.vel }
func (t *testTarget) Transform() (mgl32.Mat4, bool) {
	return t.m, t.hasM
}

// testFrame is a target that can disappear.
type testFrame struct {
	testTarget
	gone bool
}

func (f *testFrame) AttachmentTransform() (mgl32.Mat4, bool) {
	if f.gone {
		return mgl32.Mat4{}, false
	}
	return mgl32.Translate3D(f.pos.X(), f.pos.Y(), f.pos.Z()), true
}

// halfSource makes every Float32 draw return exactly 0.5.
type halfSource struct{}

func (halfSource) Int63() int64 { return 1 << 62 }
func (halfSource) Seed(int64)   {}

func halfRand() *rand.Rand { return rand.New(halfSource{}) }

// basicDef spawns one particle per tick forever with no jitter.
func basicDef() *spa.EmitterDefinition {
	return &spa.EmitterDefinition{
		ParticleChance: 1,
		Frequency:      1,
		Duration:       5,
		Size:           1,
		Aspect:         1,
		Opacity:        31,
		Color:          0x7fff,
	}
}

func resourceOf(defs ...*spa.EmitterDefinition) *spa.Resource {
	return spa.NewResource(defs, nil)
}

func newTestEmitter(res *spa.Resource, target Target, scene Scene, id int) *Emitter {
	e, err := NewEmitter(res, target, scene, id)
	if err != nil {
		panic(err)
	}
	e.SetRand(halfRand())
	return e
}
