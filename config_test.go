package kartfx

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fx.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tick_rate: 30\nmax_particles: 10\ndebug: true\ncorrect_rotation_spread: true\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.TickRate)
	assert.Equal(t, 10, cfg.MaxParticles)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.CorrectRotationSpread)
	assert.Equal(t, DefaultConfig().MaxCatchUpTicks, cfg.MaxCatchUpTicks)
	assert.Equal(t, "kartfx", cfg.LogPrefix)
}

func TestParseConfig_Rejects(t *testing.T) {
	for _, src := range []string{
		"tick_rate: 0",
		"max_catch_up_ticks: 0",
		"max_particles: -1",
		"tick_rate: [",
	} {
		_, err := ParseConfig([]byte(src))
		assert.Error(t, err, src)
	}
}

func TestTickClock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TickRate = 10
	cfg.MaxCatchUpTicks = 3
	c := NewTickClock(cfg)

	assert.Equal(t, 0, c.Advance(50*time.Millisecond))
	assert.InDelta(t, 0.5, c.Alpha(), 1e-6)
	assert.Equal(t, 1, c.Advance(60*time.Millisecond))
	assert.InDelta(t, 0.1, c.Alpha(), 1e-6)
	assert.Equal(t, 3, c.Advance(time.Second))
	assert.Zero(t, c.Alpha())
	assert.Equal(t, 0, c.Advance(-time.Second))
	assert.Equal(t, uint64(4), c.Ticks())
}

func TestDefaultLogger(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWriterLogger(&out, &errOut, "fx", false)

	l.Debugf("hidden %d", 1)
	l.Infof("hello %s", "world")
	l.Warnf("careful")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[fx] INFO: hello world")
	assert.Contains(t, errOut.String(), "[fx] WARN: careful")

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("shown")
	assert.True(t, strings.Contains(out.String(), "DEBUG: shown"))

	nop := orNop(nil)
	assert.False(t, nop.DebugEnabled())
	nop.Errorf("nothing")
}
