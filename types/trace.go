package types

// Trace of an episode as (state, action, reward, nextState) steps
type Trace struct {
	states     []State
	actions    []Action
	rewards    []Reward
	nextStates []State
}

func NewTrace() *Trace {
	return &Trace{
		states:     make([]State, 0),
		actions:    make([]Action, 0),
		rewards:    make([]Reward, 0),
		nextStates: make([]State, 0),
	}
}

func (t *Trace) Append(state State, action Action, reward Reward, nextState State) {
	t.states = append(t.states, state)
	t.actions = append(t.actions, action)
	t.rewards = append(t.rewards, reward)
	t.nextStates = append(t.nextStates, nextState)
}

func (t *Trace) Len() int {
	return len(t.states)
}

// Return is the undiscounted sum of rewards
func (t *Trace) Return() int {
	total := 0
	for _, r := range t.rewards {
		total += int(r)
	}
	return total
}
