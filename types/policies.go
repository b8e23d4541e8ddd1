package types

// Policy chooses actions and learns from transitions.
// It owns the exploration rate of the session.
type Policy interface {
	Space
	// NextAction picks an action for the state
	NextAction(State) (Action, error)
	// Update learns from the transition (state, action, reward, nextState)
	Update(State, Action, Reward, State) error
	// Decay advances the exploration schedule by one termination check
	Decay()
	// Epsilon is the current exploration rate
	Epsilon() float64
	// Exploiting is true once the policy has left training
	Exploiting() bool
}
