package policies

import (
	"time"

	"github.com/zeu5/maze-rl/types"
	"golang.org/x/exp/rand"
)

// RandomPolicy picks actions uniformly and never learns.
// It is a baseline, bound the run with AgentConfig.MaxEpisodes.
type RandomPolicy struct {
	nStates  int
	nActions int
	rand     *rand.Rand
}

var _ types.Policy = &RandomPolicy{}

func NewRandomPolicy(nStates, nActions int, seed int64) (*RandomPolicy, error) {
	if nStates <= 0 || nActions <= 0 {
		return nil, ErrInvalidDimensions
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomPolicy{
		nStates:  nStates,
		nActions: nActions,
		rand:     rand.New(rand.NewSource(uint64(seed))),
	}, nil
}

func (r *RandomPolicy) NumStates() int {
	return r.nStates
}

func (r *RandomPolicy) NumActions() int {
	return r.nActions
}

func (r *RandomPolicy) NextAction(state types.State) (types.Action, error) {
	if err := types.CheckState(r, state); err != nil {
		return 0, err
	}
	return types.Action(r.rand.Intn(r.nActions)), nil
}

func (r *RandomPolicy) Update(_ types.State, _ types.Action, _ types.Reward, _ types.State) error {
	return nil
}

func (r *RandomPolicy) Decay() {}

func (r *RandomPolicy) Epsilon() float64 {
	return 1
}

func (r *RandomPolicy) Exploiting() bool {
	return false
}
