package policies

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/maze-rl/types"
)

func testConfig() EpsilonGreedyConfig {
	return EpsilonGreedyConfig{
		States:         4,
		Actions:        3,
		LearningRate:   0.1,
		DiscountFactor: 0.9,
		InitialEpsilon: 1,
		DecayRate:      0.9,
		Floor:          1e-8,
		Seed:           7,
	}
}

func newPolicy(t *testing.T, config EpsilonGreedyConfig) *EpsilonGreedy {
	t.Helper()
	p, err := NewEpsilonGreedy(config)
	require.NoError(t, err)
	return p
}

func TestEpsilonGreedyValidation(t *testing.T) {
	mutations := map[string]func(*EpsilonGreedyConfig){
		"zero states":   func(c *EpsilonGreedyConfig) { c.States = 0 },
		"zero actions":  func(c *EpsilonGreedyConfig) { c.Actions = 0 },
		"decay one":     func(c *EpsilonGreedyConfig) { c.DecayRate = 1 },
		"decay zero":    func(c *EpsilonGreedyConfig) { c.DecayRate = 0 },
		"epsilon above": func(c *EpsilonGreedyConfig) { c.InitialEpsilon = 1.1 },
		"bad floor":     func(c *EpsilonGreedyConfig) { c.Floor = -1 },
		"bad rate":      func(c *EpsilonGreedyConfig) { c.LearningRate = 0 },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			config := testConfig()
			mutate(&config)
			_, err := NewEpsilonGreedy(config)
			assert.Error(t, err)
		})
	}
}

func TestDecayReachesFloor(t *testing.T) {
	p := newPolicy(t, testConfig())
	assert.False(t, p.Exploiting())

	prev := p.Epsilon()
	steps := 0
	for !p.Exploiting() {
		p.Decay()
		steps++
		require.Less(t, p.Epsilon(), prev)
		prev = p.Epsilon()
		require.Less(t, steps, 1000, "epsilon never reached the floor")
	}
	assert.LessOrEqual(t, p.Epsilon(), 1e-8)
	// 0.9^175 is the first power below 1e-8
	assert.Equal(t, 175, steps)
}

func TestNextActionInRange(t *testing.T) {
	for _, epsilon := range []float64{1, 0.5, 0} {
		p := newPolicy(t, testConfig())
		p.SetEpsilon(epsilon)
		for s := 0; s < 4; s++ {
			for i := 0; i < 200; i++ {
				a, err := p.NextAction(types.State(s))
				require.NoError(t, err)
				require.GreaterOrEqual(t, int(a), 0)
				require.Less(t, int(a), 3)
			}
		}
	}
}

func TestNextActionExploresAllActions(t *testing.T) {
	p := newPolicy(t, testConfig())
	seen := make(map[types.Action]bool)
	for i := 0; i < 300; i++ {
		a, err := p.NextAction(0)
		require.NoError(t, err)
		seen[a] = true
	}
	assert.Len(t, seen, 3)
}

func TestNextActionGreedyWithoutExploration(t *testing.T) {
	p := newPolicy(t, testConfig())
	p.SetEpsilon(0)
	require.NoError(t, p.Table().Set(2, 1, 4))
	require.NoError(t, p.Table().Set(2, 2, 4))
	for i := 0; i < 50; i++ {
		a, err := p.NextAction(2)
		require.NoError(t, err)
		assert.Equal(t, types.Action(1), a)
	}
}

func TestNextActionRejectsBadState(t *testing.T) {
	p := newPolicy(t, testConfig())
	_, err := p.NextAction(4)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = p.NextAction(-1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestUpdateUsesNextStateMax(t *testing.T) {
	p := newPolicy(t, testConfig())
	require.NoError(t, p.Table().Set(3, 0, 2))
	require.NoError(t, p.Table().Set(3, 2, 10))

	require.NoError(t, p.Update(1, 1, 5, 3))
	v, err := p.Table().Get(1, 1)
	require.NoError(t, err)
	// 0.1 * (5 + 0.9*10)
	assert.InDelta(t, 1.4, v, 1e-12)

	assert.ErrorIs(t, p.Update(1, 1, 5, 9), ErrOutOfRange)
}

func TestLoadForcesEpsilonToZero(t *testing.T) {
	trained := newPolicy(t, testConfig())
	require.NoError(t, trained.Table().Set(0, 2, 3))
	var buf bytes.Buffer
	require.NoError(t, trained.Save(&buf))

	p := newPolicy(t, testConfig())
	require.Equal(t, 1.0, p.Epsilon())
	require.NoError(t, p.Load(&buf))
	assert.Equal(t, 0.0, p.Epsilon())
	assert.True(t, p.Exploiting())

	a, err := p.NextAction(0)
	require.NoError(t, err)
	assert.Equal(t, types.Action(2), a)
}

func TestFailedLoadKeepsEpsilon(t *testing.T) {
	p := newPolicy(t, testConfig())
	err := p.Load(strings.NewReader("1,2,3,\n"))
	require.ErrorIs(t, err, ErrMalformedTable)
	assert.Equal(t, 1.0, p.Epsilon())
}

func TestRandomPolicy(t *testing.T) {
	_, err := NewRandomPolicy(0, 2, 1)
	require.ErrorIs(t, err, ErrInvalidDimensions)

	p, err := NewRandomPolicy(3, 2, 1)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		p.Decay()
		a, err := p.NextAction(types.State(i % 3))
		require.NoError(t, err)
		require.Contains(t, []types.Action{0, 1}, a)
	}
	assert.False(t, p.Exploiting())
	_, err = p.NextAction(3)
	assert.ErrorIs(t, err, types.ErrStateOutOfRange)
}
