package types

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

type AgentConfig struct {
	Environment Environment
	Policy      Policy
	// Horizon bounds the steps of an episode, 0 means until terminal
	Horizon int
	// MaxEpisodes bounds the training episodes, 0 means until the policy exploits
	MaxEpisodes int
	Observers   []Observer
	Logger      log.Logger
}

// RL Agent configured with the corresponding
// policy and environment
type Agent struct {
	config      *AgentConfig
	policy      Policy
	environment Environment
	logger      log.Logger

	episode int
	mode    Mode
}

// Instantiates a new Agent
func NewAgent(config *AgentConfig) (*Agent, error) {
	if config.Environment == nil {
		return nil, errors.New("agent: environment is required")
	}
	if config.Policy == nil {
		return nil, errors.New("agent: policy is required")
	}
	if config.Horizon < 0 || config.MaxEpisodes < 0 {
		return nil, errors.New("agent: horizon and max episodes must be non-negative")
	}
	logger := config.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Agent{
		config:      config,
		policy:      config.Policy,
		environment: config.Environment,
		logger:      logger,
		mode:        ModeTraining,
	}, nil
}

// Episodes run so far
func (a *Agent) Episodes() int {
	return a.episode
}

func (a *Agent) Mode() Mode {
	return a.mode
}

// Run trains until the policy stops exploring, then plays one
// exploitation episode and returns. Cancelling ctx stops the run
// between two steps and returns ctx.Err().
func (a *Agent) Run(ctx context.Context) error {
	if err := a.reset(); err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if a.policy.Exploiting() {
			a.mode = ModeExploitation
			level.Info(a.logger).Log("msg", "entering exploitation", "episode", a.episode, "epsilon", a.policy.Epsilon())
			if err := a.reset(); err != nil {
				return err
			}
			if err := a.runEpisode(ctx); err != nil {
				return err
			}
			if err := a.reset(); err != nil {
				return err
			}
			level.Info(a.logger).Log("msg", "run finished", "episodes", a.episode)
			return nil
		}
		if a.config.MaxEpisodes > 0 && a.episode >= a.config.MaxEpisodes {
			level.Info(a.logger).Log("msg", "episode budget exhausted", "episodes", a.episode, "epsilon", a.policy.Epsilon())
			return nil
		}
		if err := a.runEpisode(ctx); err != nil {
			return err
		}
		if err := a.reset(); err != nil {
			return err
		}
	}
}

func (a *Agent) reset() error {
	if err := a.environment.Reset(); err != nil {
		return fmt.Errorf("reset environment: %w", err)
	}
	return nil
}

// the termination check also advances the exploration decay
func (a *Agent) isTerminal() bool {
	a.policy.Decay()
	return a.environment.IsTerminal()
}

func (a *Agent) observeState() (State, error) {
	s := a.environment.ObserveState()
	if err := CheckState(a.policy, s); err != nil {
		return 0, fmt.Errorf("episode %d: environment: %w", a.episode, err)
	}
	return s, nil
}

// run a single episode from the current environment configuration
func (a *Agent) runEpisode(ctx context.Context) error {
	state, err := a.observeState()
	if err != nil {
		return err
	}
	trace := NewTrace()
	terminal := false

	for step := 0; ; step++ {
		if a.isTerminal() {
			terminal = true
			break
		}
		if a.config.Horizon > 0 && step >= a.config.Horizon {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		action, err := a.policy.NextAction(state)
		if err != nil {
			return fmt.Errorf("episode %d step %d: next action: %w", a.episode, step, err)
		}
		if err := CheckAction(a.policy, action); err != nil {
			return fmt.Errorf("episode %d step %d: policy: %w", a.episode, step, err)
		}
		if err := a.environment.Apply(action); err != nil {
			return fmt.Errorf("episode %d step %d: apply action %d: %w", a.episode, step, action, err)
		}
		nextState, err := a.observeState()
		if err != nil {
			return err
		}
		reward := a.environment.ObserveReward()
		if err := a.policy.Update(state, action, reward, nextState); err != nil {
			return fmt.Errorf("episode %d step %d: update: %w", a.episode, step, err)
		}
		trace.Append(state, action, reward, nextState)

		info := StepInfo{
			Episode:   a.episode,
			Step:      step,
			Mode:      a.mode,
			State:     state,
			Action:    action,
			Reward:    reward,
			NextState: nextState,
			Epsilon:   a.policy.Epsilon(),
		}
		for _, o := range a.config.Observers {
			if err := o.OnStep(info); err != nil {
				return fmt.Errorf("episode %d step %d: observer: %w", a.episode, step, err)
			}
		}
		state = nextState
	}

	summary := EpisodeSummary{
		Episode:  a.episode,
		Mode:     a.mode,
		Steps:    trace.Len(),
		Return:   trace.Return(),
		Terminal: terminal,
		Epsilon:  a.policy.Epsilon(),
		Trace:    trace,
	}
	level.Debug(a.logger).Log("msg", "episode done", "episode", a.episode, "mode", a.mode, "steps", summary.Steps, "return", summary.Return, "epsilon", summary.Epsilon)
	for _, o := range a.config.Observers {
		if err := o.OnEpisodeEnd(summary); err != nil {
			return fmt.Errorf("episode %d: observer: %w", a.episode, err)
		}
	}
	a.episode++
	return nil
}
