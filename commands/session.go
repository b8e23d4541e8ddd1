package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/zeu5/maze-rl/analysis"
	"github.com/zeu5/maze-rl/config"
	"github.com/zeu5/maze-rl/grid"
	"github.com/zeu5/maze-rl/history"
	"github.com/zeu5/maze-rl/policies"
	"github.com/zeu5/maze-rl/render"
	"github.com/zeu5/maze-rl/server"
	"github.com/zeu5/maze-rl/store"
	"github.com/zeu5/maze-rl/types"
)

const progressEvery = 1000

// session wires a maze, a policy and the observers of one run
type session struct {
	cfg    *config.Config
	logger log.Logger
	name   string

	env       types.Environment
	maze      *grid.Maze
	policy    types.Policy
	greedy    *policies.EpsilonGreedy
	store     store.Store
	collector *analysis.Collector
	visits    *grid.VisitCounter
	history   *history.Store
	recorder  *history.Recorder
	observers []types.Observer

	closers []func() error
}

func newMazeSession(cfg *config.Config, logger log.Logger, random bool) (*session, error) {
	maze, err := grid.NewMaze(
		cfg.Maze.Size,
		grid.Position{X: cfg.Maze.StartX, Y: cfg.Maze.StartY},
		grid.Position{X: cfg.Maze.GoalX, Y: cfg.Maze.GoalY},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	s := &session{
		cfg:       cfg,
		logger:    logger,
		name:      "maze",
		env:       maze,
		maze:      maze,
		collector: analysis.NewCollector(),
		visits:    grid.NewVisitCounter(maze),
	}

	if random {
		if cfg.MaxEpisodes == 0 {
			return nil, fmt.Errorf("%w: the random baseline needs max_episodes", config.ErrInvalidConfig)
		}
		s.name = "maze-random"
		s.policy, err = policies.NewRandomPolicy(maze.NumStates(), maze.NumActions(), cfg.Seed)
		if err != nil {
			return nil, err
		}
	} else {
		s.greedy, err = newGreedy(cfg, maze)
		if err != nil {
			return nil, err
		}
		s.policy = s.greedy
		if err := s.setupStore(); err != nil {
			return nil, err
		}
	}

	s.observers = append(s.observers, s.collector, s.visits, s.progress())
	if cfg.Render {
		s.observers = append(s.observers, render.NewTerminal(maze, render.Config{
			TrainEvery: renderEvery,
			Delay:      cfg.PlayDelay,
			Colors:     true,
		}))
	}
	return s, nil
}

func newGreedy(cfg *config.Config, space types.Space) (*policies.EpsilonGreedy, error) {
	return policies.NewEpsilonGreedy(policies.EpsilonGreedyConfig{
		States:         space.NumStates(),
		Actions:        space.NumActions(),
		LearningRate:   cfg.LearningRate,
		DiscountFactor: cfg.DiscountFactor,
		InitialEpsilon: cfg.InitialEpsilon,
		DecayRate:      cfg.EpsilonDecay,
		Floor:          cfg.EpsilonFloor,
		Seed:           cfg.Seed,
	})
}

// setupStore picks where the table is saved and loads a trained one if asked
func (s *session) setupStore() error {
	ctx := context.Background()
	if s.cfg.Redis.Addr != "" {
		redisStore := store.NewRedisStore(s.cfg.Redis.Addr, s.cfg.Redis.Key)
		s.closers = append(s.closers, redisStore.Close)
		s.store = redisStore
		if s.cfg.Redis.Load {
			if err := redisStore.Load(ctx, s.greedy.Load); err != nil {
				return err
			}
			level.Info(s.logger).Log("msg", "loaded table", "from", redisStore)
		}
	} else if s.cfg.TablePath != "" {
		s.store = store.NewFileStore(s.cfg.TablePath)
	}

	if s.cfg.LoadPath != "" {
		from := store.NewFileStore(s.cfg.LoadPath)
		if err := from.Load(ctx, s.greedy.Load); err != nil {
			return err
		}
		level.Info(s.logger).Log("msg", "loaded table", "from", from)
	}
	return nil
}

func (s *session) progress() types.Observer {
	return types.ObserverFuncs{
		EpisodeEnd: func(e types.EpisodeSummary) error {
			if e.Episode%progressEvery == 0 && e.Mode == types.ModeTraining {
				level.Info(s.logger).Log("msg", "training", "episode", e.Episode, "epsilon", e.Epsilon,
					"last", s.collector.Summarize(progressEvery))
			}
			return nil
		},
	}
}

func (s *session) close() {
	for _, c := range s.closers {
		if err := c(); err != nil {
			level.Warn(s.logger).Log("msg", "close failed", "err", err)
		}
	}
}

func (s *session) startHistory() (string, error) {
	if s.cfg.HistoryPath == "" {
		return "", nil
	}
	h, err := history.NewStore(s.cfg.HistoryPath)
	if err != nil {
		return "", err
	}
	s.closers = append(s.closers, h.Close)
	s.history = h

	configYAML, err := s.cfg.YAML()
	if err != nil {
		return "", err
	}
	runID, err := h.StartRun(s.name, string(configYAML))
	if err != nil {
		return "", err
	}
	s.recorder = history.NewRecorder(h, runID)
	s.observers = append(s.observers, s.recorder)
	return runID, nil
}

// run trains until the policy exploits, the episode budget is spent
// or the process is interrupted. The table is saved unless the run failed.
func (s *session) run(ctx context.Context, out io.Writer) error {
	defer s.close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runID, err := s.startHistory()
	if err != nil {
		return err
	}
	if s.cfg.Listen != "" && s.greedy != nil {
		srv := server.NewServer(ctx, s.cfg.Listen, runID, s.greedy.Table(), cancel, s.logger)
		if err := srv.Start(); err != nil {
			if s.history != nil {
				s.history.FinishRun(runID, history.StatusFailed)
			}
			return err
		}
		s.observers = append(s.observers, srv)
		level.Info(s.logger).Log("msg", "serving status", "addr", srv.Addr)
	}

	agent, err := types.NewAgent(&types.AgentConfig{
		Environment: s.env,
		Policy:      s.policy,
		Horizon:     s.cfg.Horizon,
		MaxEpisodes: s.cfg.MaxEpisodes,
		Observers:   s.observers,
		Logger:      log.With(s.logger, "run", runID),
	})
	if err != nil {
		return err
	}

	level.Info(s.logger).Log("msg", "starting", "env", s.name, "run", runID, "epsilon", s.policy.Epsilon())
	runErr := agent.Run(ctx)
	status := history.StatusCompleted
	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled):
		level.Info(s.logger).Log("msg", "stopped", "episodes", agent.Episodes())
		status = history.StatusStopped
		runErr = nil
	default:
		status = history.StatusFailed
	}

	if s.recorder != nil {
		if err := s.recorder.Flush(); err != nil && runErr == nil {
			runErr = err
		}
		if err := s.history.FinishRun(runID, status); err != nil && runErr == nil {
			runErr = err
		}
	}
	if status == history.StatusFailed {
		return runErr
	}

	if s.greedy != nil && s.store != nil {
		if err := s.store.Save(context.Background(), s.greedy.Table()); err != nil {
			return err
		}
		level.Info(s.logger).Log("msg", "saved table", "to", s.store)
	}
	if s.cfg.PlotsDir != "" {
		if err := s.writePlots(); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "%s\n", s.collector.Summarize(0))
	if last, ok := s.collector.Exploitation(); ok {
		fmt.Fprintf(out, "exploitation episode: %d steps, return %d, terminal: %v\n",
			last.Steps, last.Return, last.Terminal)
	}
	return runErr
}

func (s *session) writePlots() error {
	if err := s.collector.Plot(s.cfg.PlotsDir); err != nil {
		return err
	}
	if err := s.collector.Report(filepath.Join(s.cfg.PlotsDir, "report.html")); err != nil {
		return err
	}
	return s.visits.Save(filepath.Join(s.cfg.PlotsDir, "visits.json"), filepath.Join(s.cfg.PlotsDir, "visits.png"))
}
