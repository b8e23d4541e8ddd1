package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
learning_rate: 0.5
epsilon_decay: 0.99
play_delay: 250ms
maze:
  size: 5
  goal_x: 3
  goal_y: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.LearningRate)
	assert.Equal(t, 0.99, cfg.EpsilonDecay)
	assert.Equal(t, 0.9, cfg.DiscountFactor)
	assert.Equal(t, 1e-8, cfg.EpsilonFloor)
	assert.Equal(t, 250*time.Millisecond, cfg.PlayDelay)
	assert.Equal(t, MazeConfig{Size: 5, GoalX: 3, GoalY: 2}, cfg.Maze)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"decay one":      "epsilon_decay: 1\n",
		"zero rate":      "learning_rate: 0\n",
		"negative floor": "epsilon_floor: -1\n",
		"unknown field":  "epsilon_rate: 0.5\n",
		"bad level":      "log_level: loud\n",
		"empty maze":     "maze:\n  size: 0\n",
		"redis no addr":  "redis:\n  load: true\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
