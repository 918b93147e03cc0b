package kartfx

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/kartfx/spa"
	"github.com/gekko3d/kartfx/spa/spatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectAssets_LoadAndUnload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boost.spa")
	require.NoError(t, os.WriteFile(path, oneShotEffect(0), 0o644))

	assets := NewEffectAssets(NewNopLogger())
	id, err := assets.LoadEffect(path)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, "boost.spa", assets.Name(id))

	res, ok := assets.Effect(id)
	require.True(t, ok)
	assert.Equal(t, 1, res.NumDefinitions())

	other, err := assets.LoadEffect(path)
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
	assert.Equal(t, 2, assets.Len())

	assets.Unload(id)
	_, ok = assets.Effect(id)
	assert.False(t, ok)
	assert.Equal(t, 1, assets.Len())
}

func TestEffectAssets_Errors(t *testing.T) {
	assets := NewEffectAssets(nil)
	_, err := assets.LoadEffect(filepath.Join(t.TempDir(), "missing.spa"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = assets.LoadEffectBytes("junk", []byte("nope"))
	var fe *spa.FormatError
	assert.ErrorAs(t, err, &fe)
	assert.Zero(t, assets.Len())
}

func TestEffectAssets_WarnsOnVersionMismatch(t *testing.T) {
	var out, errOut bytes.Buffer
	assets := NewEffectAssets(NewWriterLogger(&out, &errOut, "", false))

	data := spatest.File{
		Version: "11_0",
		Texs:    [][]byte{spatest.Tex{Format: spa.FormatPalette4, Pixels: make([]byte, 16)}.Bytes()},
	}.Bytes()
	id, err := assets.LoadEffectBytes("old.spa", data)
	require.NoError(t, err)
	assert.Contains(t, errOut.String(), "WARN: effect old.spa")

	res, _ := assets.Effect(id)
	assert.False(t, res.VersionSupported())
	assert.Zero(t, res.NumDefinitions())
	assert.Equal(t, 1, res.NumTextures())
}
