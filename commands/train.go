package commands

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/zeu5/maze-rl/config"
)

var (
	episodes       int
	horizon        int
	tablePath      string
	loadPath       string
	redisAddr      string
	redisKey       string
	redisLoad      bool
	historyPath    string
	plotsDir       string
	listen         string
	renderBoard    bool
	renderEvery    int
	playDelay      time.Duration
	learningRate   float64
	discountFactor float64
	epsilonDecay   float64
	epsilonFloor   float64
	randomPolicy   bool
	cpuprofile     string
	memprofile     string
)

func TrainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a Q-table on the maze until exploration runs out",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyTrainFlags(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}

			stopProfiling, err := startProfiling(cpuprofile)
			if err != nil {
				return err
			}
			defer stopProfiling()

			s, err := newMazeSession(cfg, logger, randomPolicy)
			if err != nil {
				return err
			}
			if err := s.run(cmd.Context(), cmd.OutOrStdout()); err != nil {
				return err
			}
			return writeMemProfile(memprofile)
		},
	}
	flags := cmd.Flags()
	flags.IntVarP(&episodes, "episodes", "e", 0, "Upper bound on training episodes, 0 trains until epsilon reaches the floor")
	flags.IntVar(&horizon, "horizon", 0, "Upper bound on the steps of an episode, 0 for unbounded")
	flags.StringVarP(&tablePath, "table", "t", "", "File the trained table is written to")
	flags.StringVarP(&loadPath, "load", "l", "", "Table to start from, skips training")
	flags.StringVar(&redisAddr, "redis-addr", "", "Redis server holding the table instead of a file")
	flags.StringVar(&redisKey, "redis-key", "", "Redis key of the table")
	flags.BoolVar(&redisLoad, "redis-load", false, "Start from the table saved in redis")
	flags.StringVar(&historyPath, "history", "", "SQLite database recording runs and episodes")
	flags.StringVarP(&plotsDir, "plots", "p", "", "Directory for plots and the HTML report")
	flags.StringVar(&listen, "listen", "", "Address of the status server, e.g. :8080")
	flags.BoolVarP(&renderBoard, "render", "r", false, "Draw the board in the terminal")
	flags.IntVar(&renderEvery, "render-every", 0, "Draw every n-th training episode, 0 draws only the exploitation episode")
	flags.DurationVar(&playDelay, "play-delay", 0, "Pause between drawn exploitation steps")
	flags.Float64Var(&learningRate, "learning-rate", 0, "Learning rate alpha")
	flags.Float64Var(&discountFactor, "discount", 0, "Discount factor gamma")
	flags.Float64Var(&epsilonDecay, "decay", 0, "Multiplicative epsilon decay")
	flags.Float64Var(&epsilonFloor, "floor", 0, "Epsilon below which the policy exploits")
	flags.BoolVar(&randomPolicy, "random", false, "Run the uniform random baseline, needs --episodes")
	flags.StringVar(&cpuprofile, "cpuprofile", "", "Write a CPU profile to this file")
	flags.StringVar(&memprofile, "memprofile", "", "Write a heap profile to this file")
	return cmd
}

// applyTrainFlags overrides the config with the flags that were set
func applyTrainFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("episodes") {
		cfg.MaxEpisodes = episodes
	}
	if flags.Changed("horizon") {
		cfg.Horizon = horizon
	}
	if flags.Changed("table") {
		cfg.TablePath = tablePath
	}
	if flags.Changed("load") {
		cfg.LoadPath = loadPath
	}
	if flags.Changed("redis-addr") {
		cfg.Redis.Addr = redisAddr
	}
	if flags.Changed("redis-key") {
		cfg.Redis.Key = redisKey
	}
	if flags.Changed("redis-load") {
		cfg.Redis.Load = redisLoad
	}
	if flags.Changed("history") {
		cfg.HistoryPath = historyPath
	}
	if flags.Changed("plots") {
		cfg.PlotsDir = plotsDir
	}
	if flags.Changed("listen") {
		cfg.Listen = listen
	}
	if flags.Changed("render") {
		cfg.Render = renderBoard
	}
	if flags.Changed("play-delay") {
		cfg.PlayDelay = playDelay
	}
	if flags.Changed("learning-rate") {
		cfg.LearningRate = learningRate
	}
	if flags.Changed("discount") {
		cfg.DiscountFactor = discountFactor
	}
	if flags.Changed("decay") {
		cfg.EpsilonDecay = epsilonDecay
	}
	if flags.Changed("floor") {
		cfg.EpsilonFloor = epsilonFloor
	}
}
