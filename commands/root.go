package commands

import (
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"github.com/zeu5/maze-rl/config"
)

var (
	configPath string
	logLevel   string
	seed       int64
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "maze-rl",
		Short:         "Tabular Q-learning on a grid maze",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCommand.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file, defaults are used when empty")
	rootCommand.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCommand.PersistentFlags().Int64Var(&seed, "seed", 0, "Seed of the exploration, 0 picks one from the clock")
	// adding the subcommands here
	rootCommand.AddCommand(TrainCommand())
	rootCommand.AddCommand(PlayCommand())
	rootCommand.AddCommand(InspectCommand())
	rootCommand.AddCommand(ChainCommand())
	return rootCommand
}

// loadConfig reads the config file and applies the root flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	return cfg, nil
}

func newLogger(name string) (log.Logger, error) {
	var allow level.Option
	switch name {
	case "debug":
		allow = level.AllowDebug()
	case "info":
		allow = level.AllowInfo()
	case "warn":
		allow = level.AllowWarn()
	case "error":
		allow = level.AllowError()
	default:
		return nil, fmt.Errorf("%w: log level %q", config.ErrInvalidConfig, name)
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, allow)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
	return logger, nil
}
