package kartfx

import (
	"image"
	"testing"
	"time"

	"github.com/gekko3d/kartfx/particles"
	"github.com/gekko3d/kartfx/spa"
	"github.com/gekko3d/kartfx/spa/spatest"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// oneShotEffect is a single definition that spawns one particle on its first
// tick and then dies. Particles live five ticks.
func oneShotEffect(flags uint32) []byte {
	def := spatest.NewDef(flags).
		Fx32(spatest.OffChance, 1).
		Fx32(spatest.OffSize, 1).
		U8(spatest.OffFrequency, 1).
		U8(spatest.OffOpacity, 31).
		U16(spatest.OffLifetime, 1).
		U16(spatest.OffDuration, 5).
		U16(spatest.OffColor, 0x7fff)
	tex := spatest.Tex{Format: spa.FormatPalette4, Pixels: make([]byte, 16), Palette: spatest.Palette(0x7fff)}
	return spatest.File{Defs: [][]byte{def.Bytes()}, Texs: [][]byte{tex.Bytes()}}.Bytes()
}

func loadEffect(t *testing.T, data []byte) *spa.Resource {
	t.Helper()
	assets := NewEffectAssets(nil)
	id, err := assets.LoadEffectBytes("test.spa", data)
	require.NoError(t, err)
	res, ok := assets.Effect(id)
	require.True(t, ok)
	return res
}

type recordingRenderer struct {
	poses []mgl32.Mat4
	texs  []*image.RGBA
}

func (r *recordingRenderer) DrawQuad(mesh *particles.QuadMesh, pose mgl32.Mat4, color mgl32.Vec4, tex *image.RGBA) {
	r.poses = append(r.poses, pose)
	r.texs = append(r.texs, tex)
}

func TestWorld_OneShotLifecycle(t *testing.T) {
	res := loadEffect(t, oneShotEffect(0))
	w := NewWorld(DefaultConfig(), nil)
	kart := w.SpawnBody(NewBody(mgl32.Vec3{}))

	_, err := w.AddEmitter(res, kart, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, w.EmitterCount())

	w.Tick()
	require.Equal(t, 1, w.ParticleCount())
	assert.Equal(t, 0, w.Particles()[0].Age())
	assert.Equal(t, 0, w.EmitterCount(), "lifetime 1 emitter is gone after its first tick")

	for i := 0; i < 4; i++ {
		w.Tick()
	}
	require.Equal(t, 1, w.ParticleCount())
	assert.Equal(t, 4, w.Particles()[0].Age())

	w.Tick()
	assert.Equal(t, 0, w.ParticleCount())
}

func TestWorld_AddEmitterErrors(t *testing.T) {
	res := loadEffect(t, oneShotEffect(0))
	w := NewWorld(DefaultConfig(), nil)

	_, err := w.AddEmitter(res, BodyHandle{}, 0)
	assert.ErrorIs(t, err, ErrStaleHandle)

	h := w.SpawnBody(NewBody(mgl32.Vec3{}))
	_, err = w.AddEmitter(res, h, 3)
	assert.ErrorIs(t, err, particles.ErrUnknownDefinition)
	assert.Zero(t, w.EmitterCount())

	e, err := w.AddEmitter(res, h, -1)
	require.NoError(t, err)
	assert.Equal(t, -1, e.ActiveID())
}

func TestWorld_HandlesAreGenerational(t *testing.T) {
	w := NewWorld(DefaultConfig(), nil)
	a := w.SpawnBody(NewBody(mgl32.Vec3{1, 0, 0}))
	w.RemoveBody(a)
	assert.Nil(t, w.Body(a))
	assert.Equal(t, 0, w.BodyCount())

	b := w.SpawnBody(NewBody(mgl32.Vec3{2, 0, 0}))
	assert.Equal(t, a.index, b.index, "slot is reused")
	assert.Nil(t, w.Body(a))
	require.NotNil(t, w.Body(b))
	assert.Equal(t, float32(2), w.Body(b).Position.X())

	w.RemoveBody(a) // stale, no effect
	assert.NotNil(t, w.Body(b))
	assert.Equal(t, 1, w.BodyCount())
}

func TestWorld_RemoveBodyDropsEmittersAndDetachesParticles(t *testing.T) {
	data := spatest.NewDef(spa.FlagAttached).
		Fx32(spatest.OffChance, 1).
		U8(spatest.OffFrequency, 1).
		U16(spatest.OffDuration, 50).
		Bytes()
	res := loadEffect(t, spatest.File{Defs: [][]byte{data}}.Bytes())
	w := NewWorld(DefaultConfig(), nil)

	kart := NewBody(mgl32.Vec3{10, 0, 0})
	h := w.SpawnBody(kart)
	other := w.SpawnBody(NewBody(mgl32.Vec3{}))
	_, err := w.AddEmitter(res, h, 0)
	require.NoError(t, err)
	_, err = w.AddEmitter(res, other, 0)
	require.NoError(t, err)

	w.Tick()
	require.Equal(t, 2, w.ParticleCount())
	p := w.Particles()[0]
	assert.InDeltaSlice(t, []float32{10, 0, 0}, vec3s(p.WorldPosition()), 1e-4)

	kart.Position = mgl32.Vec3{20, 0, 0}
	w.Tick()
	assert.InDeltaSlice(t, []float32{20, 0, 0}, vec3s(p.WorldPosition()), 1e-4)

	w.RemoveBody(h)
	assert.Equal(t, 1, w.EmitterCount())
	kart.Position = mgl32.Vec3{99, 0, 0}

	w.Tick()
	assert.False(t, p.Expired())
	assert.InDeltaSlice(t, []float32{20, 0, 0}, vec3s(p.WorldPosition()), 1e-4)
}

func TestWorld_ParticleCap(t *testing.T) {
	data := spatest.NewDef(0).
		Fx32(spatest.OffChance, 3).
		U8(spatest.OffFrequency, 1).
		U16(spatest.OffDuration, 100).
		Bytes()
	res := loadEffect(t, spatest.File{Defs: [][]byte{data}}.Bytes())

	cfg := DefaultConfig()
	cfg.MaxParticles = 4
	w := NewWorld(cfg, nil)
	_, err := w.AddEmitter(res, w.SpawnBody(NewBody(mgl32.Vec3{})), 0)
	require.NoError(t, err)

	w.Tick()
	w.Tick()
	assert.Equal(t, 4, w.ParticleCount())
	assert.Equal(t, uint64(2), w.Dropped())
}

func TestWorld_AdvanceRunsDueTicks(t *testing.T) {
	res := loadEffect(t, oneShotEffect(0))
	w := NewWorld(DefaultConfig(), nil)
	_, err := w.AddEmitter(res, w.SpawnBody(NewBody(mgl32.Vec3{})), 0)
	require.NoError(t, err)

	step := DefaultConfig().TickDuration()
	assert.Equal(t, 0, w.Advance(step/2))
	assert.Equal(t, 0, w.ParticleCount())
	assert.Equal(t, 1, w.Advance(step/2))
	assert.Equal(t, 1, w.ParticleCount())
	assert.Equal(t, 5, w.Advance(time.Second), "catch-up is capped")
	assert.Equal(t, 0, w.ParticleCount())
}

func TestWorld_DrawResolvesTextures(t *testing.T) {
	res := loadEffect(t, oneShotEffect(0))
	w := NewWorld(DefaultConfig(), nil)
	w.SetCamera(mgl32.Vec3{0, 0, 100})
	assert.Equal(t, mgl32.Vec3{0, 0, 100}, w.CameraPosition())

	_, err := w.AddEmitter(res, w.SpawnBody(NewBody(mgl32.Vec3{})), 0)
	require.NoError(t, err)
	w.Tick()

	r := &recordingRenderer{}
	w.Draw(r)
	require.Len(t, r.texs, 1)
	require.NotNil(t, r.texs[0])
	assert.Equal(t, 8, r.texs[0].Bounds().Dx())

	noTex := loadEffect(t, spatest.File{Defs: [][]byte{
		spatest.NewDef(0).Fx32(spatest.OffChance, 1).U8(spatest.OffFrequency, 1).U16(spatest.OffDuration, 5).Bytes(),
	}}.Bytes())
	_, err = w.AddEmitter(noTex, w.SpawnBody(NewBody(mgl32.Vec3{})), 0)
	require.NoError(t, err)
	w.Tick()

	r = &recordingRenderer{}
	w.Draw(r)
	require.Len(t, r.texs, 2)
	assert.NotNil(t, r.texs[0])
	assert.Nil(t, r.texs[1])
	assert.Len(t, w.missingLogged, 1)
}

func TestWorld_MovingBodyTransformsSpawns(t *testing.T) {
	data := spatest.NewDef(0).
		Fx32(spatest.OffChance, 1).
		U8(spatest.OffFrequency, 1).
		U16(spatest.OffDuration, 50).
		Vec3Fx32(spatest.OffPosition, 1, 0, 0).
		Bytes()
	res := loadEffect(t, spatest.File{Defs: [][]byte{data}}.Bytes())
	w := NewWorld(DefaultConfig(), nil)

	kart := NewBody(mgl32.Vec3{0, 0, 0})
	kart.Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	kart.Velocity = mgl32.Vec3{32, 0, 0}
	_, err := w.AddEmitter(res, w.SpawnBody(kart), 0)
	require.NoError(t, err)

	w.Tick()
	p := w.Particles()[0]
	assert.InDeltaSlice(t, []float32{0, 0, -particles.UnitScale}, vec3s(p.Position()), 1e-3)
	assert.InDeltaSlice(t, []float32{1, 0, 0}, vec3s(p.Velocity()), 1e-4)

	kart.Integrate()
	assert.Equal(t, mgl32.Vec3{32, 0, 0}, kart.Position)
}

// vec3s returns v as a slice; method results are not addressable, so they cannot be sliced directly.
func vec3s(v mgl32.Vec3) []float32 { return v[:] }
