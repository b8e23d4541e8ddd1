package types

// Mode of a training session
type Mode int

const (
	ModeTraining Mode = iota
	ModeExploitation
)

func (m Mode) String() string {
	switch m {
	case ModeTraining:
		return "training"
	case ModeExploitation:
		return "exploitation"
	}
	return "unknown"
}

// StepInfo is passed to observers after every learning step
type StepInfo struct {
	Episode   int
	Step      int
	Mode      Mode
	State     State
	Action    Action
	Reward    Reward
	NextState State
	Epsilon   float64
}

// EpisodeSummary is passed to observers when an episode ends
type EpisodeSummary struct {
	Episode int
	Mode    Mode
	Steps   int
	Return  int
	// Terminal is false when the episode was cut by the horizon
	Terminal bool
	Epsilon  float64
	Trace    *Trace
}

// Observer watches the agent, for drawing, logging or recording.
// A returned error halts the run.
type Observer interface {
	OnStep(StepInfo) error
	OnEpisodeEnd(EpisodeSummary) error
}

// ObserverFuncs adapts plain functions to an Observer, nil funcs are skipped
type ObserverFuncs struct {
	Step       func(StepInfo) error
	EpisodeEnd func(EpisodeSummary) error
}

var _ Observer = ObserverFuncs{}

func (o ObserverFuncs) OnStep(s StepInfo) error {
	if o.Step == nil {
		return nil
	}
	return o.Step(s)
}

func (o ObserverFuncs) OnEpisodeEnd(e EpisodeSummary) error {
	if o.EpisodeEnd == nil {
		return nil
	}
	return o.EpisodeEnd(e)
}
