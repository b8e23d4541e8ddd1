package policies

import (
	"fmt"
	"io"
	"time"

	"github.com/zeu5/maze-rl/types"
	"golang.org/x/exp/rand"
)

type EpsilonGreedyConfig struct {
	States         int
	Actions        int
	LearningRate   float64
	DiscountFactor float64
	// InitialEpsilon is the exploration rate of a fresh table
	InitialEpsilon float64
	// DecayRate multiplies epsilon on every termination check
	DecayRate float64
	// Floor below which the session stops training
	Floor float64
	// Seed of the random source, 0 picks one from the clock
	Seed int64
}

// EpsilonGreedy is a Q-learning policy: with probability epsilon it
// explores uniformly, otherwise it takes the best known action.
type EpsilonGreedy struct {
	qTable  *QTable
	bellman *Bellman
	epsilon float64
	decay   float64
	floor   float64
	rand    *rand.Rand
}

var _ types.Policy = &EpsilonGreedy{}

func NewEpsilonGreedy(config EpsilonGreedyConfig) (*EpsilonGreedy, error) {
	if config.InitialEpsilon < 0 || config.InitialEpsilon > 1 {
		return nil, fmt.Errorf("initial epsilon %v not in [0, 1]", config.InitialEpsilon)
	}
	if config.DecayRate <= 0 || config.DecayRate >= 1 {
		return nil, fmt.Errorf("decay rate %v not in (0, 1)", config.DecayRate)
	}
	if config.Floor < 0 || config.Floor >= 1 {
		return nil, fmt.Errorf("epsilon floor %v not in [0, 1)", config.Floor)
	}
	table, err := NewQTable(config.States, config.Actions)
	if err != nil {
		return nil, err
	}
	bellman, err := NewBellman(config.LearningRate, config.DiscountFactor)
	if err != nil {
		return nil, err
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &EpsilonGreedy{
		qTable:  table,
		bellman: bellman,
		epsilon: config.InitialEpsilon,
		decay:   config.DecayRate,
		floor:   config.Floor,
		rand:    rand.New(rand.NewSource(uint64(seed))),
	}, nil
}

func (e *EpsilonGreedy) NumStates() int {
	return e.qTable.NumStates()
}

func (e *EpsilonGreedy) NumActions() int {
	return e.qTable.NumActions()
}

func (e *EpsilonGreedy) Table() *QTable {
	return e.qTable
}

func (e *EpsilonGreedy) Epsilon() float64 {
	return e.epsilon
}

func (e *EpsilonGreedy) SetEpsilon(epsilon float64) {
	e.epsilon = epsilon
}

func (e *EpsilonGreedy) Decay() {
	e.epsilon *= e.decay
}

func (e *EpsilonGreedy) Exploiting() bool {
	return !(e.epsilon > e.floor)
}

func (e *EpsilonGreedy) NextAction(state types.State) (types.Action, error) {
	if err := e.qTable.checkState(state); err != nil {
		return 0, err
	}
	if e.rand.Float64() < e.epsilon {
		return types.Action(e.rand.Intn(e.qTable.NumActions())), nil
	}
	return e.qTable.BestAction(state)
}

func (e *EpsilonGreedy) Update(state types.State, action types.Action, reward types.Reward, nextState types.State) error {
	qMax, err := e.qTable.Max(nextState)
	if err != nil {
		return err
	}
	return e.bellman.Apply(e.qTable, state, action, reward, qMax)
}

// Load reads a serialized table into the policy. A loaded table is
// taken as trained, so exploration drops to zero.
func (e *EpsilonGreedy) Load(r io.Reader) error {
	if _, err := e.qTable.ReadFrom(r); err != nil {
		return err
	}
	e.epsilon = 0
	return nil
}

// Save writes the table in the format read by Load
func (e *EpsilonGreedy) Save(w io.Writer) error {
	_, err := e.qTable.WriteTo(w)
	return err
}
