package kartfx

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/gekko3d/kartfx/spa"
	"github.com/google/uuid"
)

type AssetId string

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

type effectAsset struct {
	name string
	res  *spa.Resource
}

// EffectAssets owns decoded effect resources, keyed by AssetId.
type EffectAssets struct {
	mu      sync.RWMutex
	effects map[AssetId]effectAsset
	logger  Logger
}

func NewEffectAssets(logger Logger) *EffectAssets {
	return &EffectAssets{
		effects: make(map[AssetId]effectAsset),
		logger:  orNop(logger),
	}
}

// LoadEffect decodes the effect file at filename.
func (a *EffectAssets) LoadEffect(filename string) (AssetId, error) {
	res, err := spa.LoadFile(filename)
	if err != nil {
		a.logger.Errorf("load effect %s: %v", filename, err)
		return "", fmt.Errorf("load effect %s: %w", filename, err)
	}
	return a.add(filepath.Base(filename), res), nil
}

// LoadEffectBytes decodes an in-memory effect resource.
func (a *EffectAssets) LoadEffectBytes(name string, data []byte) (AssetId, error) {
	res, err := spa.Decode(data)
	if err != nil {
		a.logger.Errorf("load effect %s: %v", name, err)
		return "", fmt.Errorf("load effect %s: %w", name, err)
	}
	return a.add(name, res), nil
}

func (a *EffectAssets) add(name string, res *spa.Resource) AssetId {
	if err := res.VersionErr(); err != nil {
		a.logger.Warnf("effect %s: %v; emitter definitions skipped", name, err)
	}
	id := makeAssetId()
	a.mu.Lock()
	a.effects[id] = effectAsset{name: name, res: res}
	a.mu.Unlock()
	a.logger.Debugf("effect %s loaded as %s: %d definitions, %d textures",
		name, id, res.NumDefinitions(), res.NumTextures())
	return id
}

func (a *EffectAssets) Effect(id AssetId) (*spa.Resource, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	e, ok := a.effects[id]
	return e.res, ok
}

// Name returns the name the effect was loaded under.
func (a *EffectAssets) Name(id AssetId) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.effects[id].name
}

// Unload forgets the effect. Emitters and particles already holding the
// resource keep working.
func (a *EffectAssets) Unload(id AssetId) {
	a.mu.Lock()
	delete(a.effects, id)
	a.mu.Unlock()
}

func (a *EffectAssets) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.effects)
}
