// Package chain is a deterministic corridor environment. The player
// starts at state 0, Advance moves one state forward and Stay loops in
// place. Reaching the last state ends the episode.
package chain

import (
	"fmt"

	"github.com/zeu5/maze-rl/types"
)

const (
	Advance types.Action = iota
	Stay
)

const (
	RewardAdvance types.Reward = 10
	RewardStay    types.Reward = -1
)

type Chain struct {
	length int
	cur    types.State
	reward types.Reward
}

var _ types.Environment = &Chain{}
var _ types.Space = &Chain{}

// NewChain with length states, the last one terminal
func NewChain(length int) (*Chain, error) {
	if length < 2 {
		return nil, fmt.Errorf("chain needs at least 2 states, got %d", length)
	}
	return &Chain{length: length}, nil
}

func (c *Chain) NumStates() int {
	return c.length
}

func (c *Chain) NumActions() int {
	return 2
}

func (c *Chain) Reset() error {
	c.cur = 0
	c.reward = 0
	return nil
}

func (c *Chain) IsTerminal() bool {
	return int(c.cur) == c.length-1
}

func (c *Chain) Apply(a types.Action) error {
	switch a {
	case Advance:
		c.cur++
		if int(c.cur) == c.length-1 {
			c.reward = RewardAdvance
		} else {
			c.reward = 0
		}
	case Stay:
		c.reward = RewardStay
	default:
		return fmt.Errorf("%w: %d", types.ErrActionOutOfRange, a)
	}
	return nil
}

func (c *Chain) ObserveState() types.State {
	return c.cur
}

func (c *Chain) ObserveReward() types.Reward {
	return c.reward
}
