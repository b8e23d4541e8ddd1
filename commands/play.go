package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeu5/maze-rl/config"
)

func PlayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play one greedy episode with a trained table and draw it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyTrainFlags(cmd, cfg)
			if cfg.LoadPath == "" && !cfg.Redis.Load {
				return fmt.Errorf("%w: play needs a table, set --load or --redis-load", config.ErrInvalidConfig)
			}
			cfg.Render = true
			cfg.PlotsDir = ""
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}

			s, err := newMazeSession(cfg, logger, false)
			if err != nil {
				return err
			}
			// the played table is not written back
			s.store = nil
			return s.run(cmd.Context(), cmd.OutOrStdout())
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&loadPath, "load", "l", "", "Trained table to play with")
	flags.StringVar(&redisAddr, "redis-addr", "", "Redis server holding the table")
	flags.StringVar(&redisKey, "redis-key", "", "Redis key of the table")
	flags.BoolVar(&redisLoad, "redis-load", false, "Play with the table saved in redis")
	flags.DurationVar(&playDelay, "play-delay", 0, "Pause between drawn steps")
	flags.IntVar(&horizon, "horizon", 0, "Upper bound on the steps of the episode")
	return cmd
}
