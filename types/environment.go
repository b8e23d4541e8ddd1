package types

import (
	"errors"
	"fmt"
)

var (
	ErrStateOutOfRange  = errors.New("state out of range")
	ErrActionOutOfRange = errors.New("action out of range")
)

// Environment is the episodic system the agent drives.
// Implementations own all of their state; the agent only
// goes through these methods.
type Environment interface {
	// Reset places the environment in its initial configuration
	Reset() error
	// IsTerminal is true once the current episode is over
	IsTerminal() bool
	// Apply mutates the environment with the action
	Apply(Action) error
	// ObserveState encodes the current configuration
	ObserveState() State
	// ObserveReward for the most recent transition
	ObserveReward() Reward
}

// State identifier in [0, NumStates)
type State int

// Action identifier in [0, NumActions)
type Action int

// Reward signal of a single transition
type Reward int16

// Space describes the dimensions of an environment
type Space interface {
	NumStates() int
	NumActions() int
}

// CheckState fails if s is outside the space
func CheckState(space Space, s State) error {
	if s < 0 || int(s) >= space.NumStates() {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrStateOutOfRange, s, space.NumStates())
	}
	return nil
}

// CheckAction fails if a is outside the space
func CheckAction(space Space, a Action) error {
	if a < 0 || int(a) >= space.NumActions() {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrActionOutOfRange, a, space.NumActions())
	}
	return nil
}
