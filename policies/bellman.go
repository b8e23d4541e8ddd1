package policies

import (
	"fmt"

	"github.com/zeu5/maze-rl/types"
)

// Bellman is the Q-learning update rule
//
//	Q(S,a) <- Q(S,a) + alpha * (R + gamma * Qmax - Q(S,a))
//
// with a fixed learning rate alpha and discount factor gamma.
type Bellman struct {
	alpha float64
	gamma float64
}

func NewBellman(alpha, gamma float64) (*Bellman, error) {
	if alpha <= 0 || alpha > 1 {
		return nil, fmt.Errorf("learning rate %v not in (0, 1]", alpha)
	}
	if gamma < 0 || gamma > 1 {
		return nil, fmt.Errorf("discount factor %v not in [0, 1]", gamma)
	}
	return &Bellman{alpha: alpha, gamma: gamma}, nil
}

// Apply writes the updated value of (state, action) into the table
func (b *Bellman) Apply(table *QTable, state types.State, action types.Action, reward types.Reward, qMax float64) error {
	cur, err := table.Get(state, action)
	if err != nil {
		return err
	}
	return table.Set(state, action, cur+b.alpha*(float64(reward)+b.gamma*qMax-cur))
}
