package particles

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/gekko3d/kartfx/spa"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrInvalidPriority   = errors.New("particles: priority out of range")
	ErrUnknownDefinition = errors.New("particles: unknown emitter definition")
)

// Emitter is a live emitter bound to one target. It holds up to
// NumPriorities definition ids; the highest populated slot that was most
// recently set or fallen back to is active.
type Emitter struct {
	// Offset is added to every spawn position, in definition units.
	Offset mgl32.Vec3
	// Persistent emitters fall back down the priority stack when the active
	// definition's lifetime runs out instead of dying.
	Persistent bool
	// CorrectRotationSpread draws angular velocity uniformly from
	// [RotVelFrom, RotVelTo]. When false the legacy spread is used.
	CorrectRotationSpread bool

	res    *spa.Resource
	target Target
	scene  Scene
	rng    *rand.Rand

	slots   [NumPriorities]int
	current int // active priority, -1 when idle

	accum   float32
	elapsed int
	dead    bool
	paused  bool
}

// NewEmitter creates an emitter for target. A non-negative id becomes active
// at priority 0 and must name a definition in res, or ErrUnknownDefinition is
// returned. A negative id starts the emitter idle.
func NewEmitter(res *spa.Resource, target Target, scene Scene, id int) (*Emitter, error) {
	e := &Emitter{
		res:     res,
		target:  target,
		scene:   scene,
		current: -1,
		dead:    true,
	}
	for i := range e.slots {
		e.slots[i] = -1
	}
	if id >= 0 {
		if err := e.SetEmitter(id, 0); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// SetRand sets the random source used for spawn jitter. nil selects the
// process-global source.
func (e *Emitter) SetRand(r *rand.Rand) { e.rng = r }

func (e *Emitter) random() float32 {
	if e.rng != nil {
		return e.rng.Float32()
	}
	return rand.Float32()
}

// SetEmitter stores id at priority. If nothing of higher priority is active
// the definition becomes active immediately and its counters restart.
func (e *Emitter) SetEmitter(id, priority int) error {
	if priority < 0 || priority >= NumPriorities {
		return fmt.Errorf("%w: %d", ErrInvalidPriority, priority)
	}
	if e.res.Definition(id) == nil {
		return fmt.Errorf("%w: %d", ErrUnknownDefinition, id)
	}
	e.slots[priority] = id
	if e.current <= priority {
		e.activate(priority)
	}
	return nil
}

// ClearEmitter empties the slot at priority. Clearing the active slot falls
// back to the next populated slot below it, or idles the emitter.
func (e *Emitter) ClearEmitter(priority int) {
	if priority < 0 || priority >= NumPriorities {
		return
	}
	e.slots[priority] = -1
	if priority != e.current {
		return
	}
	for p := priority - 1; p >= 0; p-- {
		if e.slots[p] >= 0 {
			e.activate(p)
			return
		}
	}
	e.current = -1
	e.dead = true
}

func (e *Emitter) activate(priority int) {
	e.current = priority
	e.elapsed = 0
	e.accum = 0
	e.dead = false
}

// Update advances the emitter one tick, spawning particles into the scene.
func (e *Emitter) Update() {
	if e.current < 0 || e.dead || e.paused {
		return
	}
	def := e.res.Definition(e.slots[e.current])
	if def == nil {
		return
	}

	freq := int(def.Frequency)
	if freq < 1 {
		freq = 1
	}
	if e.elapsed >= int(def.Delay) && e.elapsed%freq == 0 {
		e.accum += def.ParticleChance
		for e.accum >= 1 {
			e.accum--
			e.spawn(def)
		}
	}
	e.elapsed++

	if def.Lifetime > 0 && e.elapsed == int(def.Lifetime) {
		if !e.Persistent {
			e.dead = true
			e.scene.RemoveEmitter(e)
			return
		}
		e.ClearEmitter(e.current)
	}
}

// ActiveID returns the active definition id, or -1 when idle.
func (e *Emitter) ActiveID() int {
	if e.current < 0 {
		return -1
	}
	return e.slots[e.current]
}

// ActivePriority returns the active slot, or -1 when idle.
func (e *Emitter) ActivePriority() int { return e.current }

// Definition returns the active definition, or nil when idle.
func (e *Emitter) Definition() *spa.EmitterDefinition {
	if e.current < 0 {
		return nil
	}
	return e.res.Definition(e.slots[e.current])
}

// Slot returns the id stored at priority, or -1.
func (e *Emitter) Slot(priority int) int {
	if priority < 0 || priority >= NumPriorities {
		return -1
	}
	return e.slots[priority]
}

func (e *Emitter) Elapsed() int { return e.elapsed }
func (e *Emitter) Dead() bool { return e.dead }
func (e *Emitter) Paused() bool { return e.paused }
func (e *Emitter) SetPaused(paused bool) { e.paused = paused }
func (e *Emitter) Target() Target { return e.target }
func (e *Emitter) Resource() *spa.Resource { return e.res }
