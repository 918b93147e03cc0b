package kartfx

import (
	"errors"
	"image"
	"time"

	"github.com/gekko3d/kartfx/particles"
	"github.com/gekko3d/kartfx/spa"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrStaleHandle = errors.New("kartfx: stale body handle")

type bodySlot struct {
	body       *Body
	generation uint32
}

type emitterEntry struct {
	emitter *particles.Emitter
	body    BodyHandle
}

type textureKey struct {
	res *spa.Resource
	id  int
}

// World is a self-contained effect scene: bodies that emitters are bound to,
// the emitters and the particles they spawn. It is stepped from one
// goroutine.
type World struct {
	cfg    Config
	logger Logger
	clock  *TickClock

	slots []bodySlot
	free  []uint32
	live  int

	emitters  []emitterEntry
	particles []*particles.Particle

	removedParticles map[*particles.Particle]struct{}
	removedEmitters  map[*particles.Emitter]struct{}

	camera        mgl32.Vec3
	missingLogged map[textureKey]struct{}
	dropped       uint64
}

var _ particles.Scene = (*World)(nil)

func NewWorld(cfg Config, logger Logger) *World {
	return &World{
		cfg:              cfg,
		logger:           orNop(logger),
		clock:            NewTickClock(cfg),
		removedParticles: make(map[*particles.Particle]struct{}),
		removedEmitters:  make(map[*particles.Emitter]struct{}),
		missingLogged:    make(map[textureKey]struct{}),
	}
}

// SpawnBody adds b to the world and returns a handle to it.
func (w *World) SpawnBody(b *Body) BodyHandle {
	var idx uint32
	if n := len(w.free); n > 0 {
		idx = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		w.slots = append(w.slots, bodySlot{})
		idx = uint32(len(w.slots) - 1)
	}
	s := &w.slots[idx]
	s.generation++
	s.body = b
	w.live++
	return BodyHandle{index: idx, generation: s.generation}
}

// Body returns the body for h, or nil if h is stale.
func (w *World) Body(h BodyHandle) *Body {
	if h.generation == 0 || int(h.index) >= len(w.slots) {
		return nil
	}
	s := &w.slots[h.index]
	if s.generation != h.generation || s.body == nil {
		return nil
	}
	return s.body
}

// RemoveBody frees h's slot and drops every emitter bound to it. Particles
// attached to the body stay alive at its last observed transform.
func (w *World) RemoveBody(h BodyHandle) {
	if w.Body(h) == nil {
		return
	}
	s := &w.slots[h.index]
	s.body = nil
	w.free = append(w.free, h.index)
	w.live--

	kept := w.emitters[:0]
	for _, e := range w.emitters {
		if e.body != h {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(w.emitters); i++ {
		w.emitters[i] = emitterEntry{}
	}
	w.emitters = kept
}

// Target returns a particles.Target view of h that re-resolves the handle on
// every call.
func (w *World) Target(h BodyHandle) particles.Target {
	return bodyRef{world: w, handle: h}
}

// AddEmitter binds a new emitter for definition id of res to the body h.
func (w *World) AddEmitter(res *spa.Resource, h BodyHandle, id int) (*particles.Emitter, error) {
	if w.Body(h) == nil {
		return nil, ErrStaleHandle
	}
	e, err := particles.NewEmitter(res, w.Target(h), w, id)
	if err != nil {
		return nil, err
	}
	e.CorrectRotationSpread = w.cfg.CorrectRotationSpread
	w.emitters = append(w.emitters, emitterEntry{emitter: e, body: h})
	return e, nil
}

func (w *World) AddParticle(p *particles.Particle) {
	if w.cfg.MaxParticles > 0 && len(w.particles) >= w.cfg.MaxParticles {
		if w.dropped == 0 {
			w.logger.Debugf("particle cap %d reached, dropping spawns", w.cfg.MaxParticles)
		}
		w.dropped++
		return
	}
	w.particles = append(w.particles, p)
}

func (w *World) RemoveParticle(p *particles.Particle) {
	w.removedParticles[p] = struct{}{}
}

func (w *World) RemoveEmitter(e *particles.Emitter) {
	w.removedEmitters[e] = struct{}{}
}

func (w *World) CameraPosition() mgl32.Vec3 { return w.camera }

func (w *World) SetCamera(pos mgl32.Vec3) { w.camera = pos }

// Tick runs one simulation step. Emitters update first; particles they spawn
// this tick are not updated until the next one.
func (w *World) Tick() {
	existing := len(w.particles)
	for _, e := range w.emitters {
		e.emitter.Update()
	}
	for _, p := range w.particles[:existing] {
		p.Update()
	}
	w.compact()
}

// Advance runs however many ticks dt makes due and returns that count.
func (w *World) Advance(dt time.Duration) int {
	n := w.clock.Advance(dt)
	for i := 0; i < n; i++ {
		w.Tick()
	}
	return n
}

func (w *World) compact() {
	if len(w.removedEmitters) > 0 {
		kept := w.emitters[:0]
		for _, e := range w.emitters {
			if _, gone := w.removedEmitters[e.emitter]; !gone {
				kept = append(kept, e)
			}
		}
		w.logger.Debugf("removed %d finished emitters", len(w.emitters)-len(kept))
		for i := len(kept); i < len(w.emitters); i++ {
			w.emitters[i] = emitterEntry{}
		}
		w.emitters = kept
		clear(w.removedEmitters)
	}

	if len(w.removedParticles) > 0 {
		kept := w.particles[:0]
		for _, p := range w.particles {
			if _, gone := w.removedParticles[p]; !gone {
				kept = append(kept, p)
			}
		}
		for i := len(kept); i < len(w.particles); i++ {
			w.particles[i] = nil
		}
		w.particles = kept
		clear(w.removedParticles)
	}
}

// Draw submits every live particle to r as a textured quad.
func (w *World) Draw(r particles.Renderer) {
	for _, p := range w.particles {
		cmd := p.Draw(w.camera)
		r.DrawQuad(particles.Quad, cmd.Pose, cmd.Color, w.texture(cmd.Resource, cmd.TextureID))
	}
}

// texture returns nil for textures that are missing or cannot be
// materialized, logging each one once.
func (w *World) texture(res *spa.Resource, id int) *image.RGBA {
	img, err := res.Texture(id)
	if err == nil {
		return img
	}
	key := textureKey{res: res, id: id}
	if _, seen := w.missingLogged[key]; !seen {
		w.missingLogged[key] = struct{}{}
		w.logger.Debugf("texture %d: %v; drawing untextured", id, err)
	}
	return nil
}

func (w *World) Particles() []*particles.Particle { return w.particles }

func (w *World) Emitters() []*particles.Emitter {
	out := make([]*particles.Emitter, len(w.emitters))
	for i, e := range w.emitters {
		out[i] = e.emitter
	}
	return out
}

func (w *World) ParticleCount() int { return len(w.particles) }
func (w *World) EmitterCount() int { return len(w.emitters) }
func (w *World) BodyCount() int { return w.live }

// Dropped counts spawns refused because of the particle cap.
func (w *World) Dropped() uint64 { return w.dropped }

func (w *World) Clock() *TickClock { return w.clock }
