package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

var ErrInvalidConfig = errors.New("invalid config")

type MazeConfig struct {
	Size   int `yaml:"size"`
	StartX int `yaml:"start_x"`
	StartY int `yaml:"start_y"`
	GoalX  int `yaml:"goal_x"`
	GoalY  int `yaml:"goal_y"`
}

// RedisConfig moves the table through redis instead of files when Addr is set
type RedisConfig struct {
	Addr string `yaml:"addr"`
	Key  string `yaml:"key"`
	// Load starts from the table saved under Key
	Load bool `yaml:"load"`
}

// Config of a training session
type Config struct {
	LearningRate   float64 `yaml:"learning_rate"`
	DiscountFactor float64 `yaml:"discount_factor"`
	InitialEpsilon float64 `yaml:"initial_epsilon"`
	EpsilonDecay   float64 `yaml:"epsilon_decay"`
	EpsilonFloor   float64 `yaml:"epsilon_floor"`
	Seed           int64   `yaml:"seed"`

	// Horizon bounds the steps of an episode, 0 means unbounded
	Horizon int `yaml:"horizon"`
	// MaxEpisodes bounds training, 0 means until epsilon reaches the floor
	MaxEpisodes int `yaml:"max_episodes"`

	Maze MazeConfig `yaml:"maze"`

	// TablePath is where the trained table is written, empty to skip
	TablePath string `yaml:"table"`
	// LoadPath is a table to start from, loading switches to exploitation
	LoadPath string      `yaml:"load"`
	Redis    RedisConfig `yaml:"redis"`

	HistoryPath string        `yaml:"history"`
	PlotsDir    string        `yaml:"plots"`
	Listen      string        `yaml:"listen"`
	Render      bool          `yaml:"render"`
	PlayDelay   time.Duration `yaml:"play_delay"`
	LogLevel    string        `yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		LearningRate:   0.1,
		DiscountFactor: 0.9,
		InitialEpsilon: 1.0,
		EpsilonDecay:   0.9999,
		EpsilonFloor:   1e-8,
		Maze: MazeConfig{
			Size:  8,
			GoalX: 4,
			GoalY: 6,
		},
		TablePath: "qtable.csv",
		Redis: RedisConfig{
			Key: "maze-rl:qtable",
		},
		PlayDelay: time.Second,
		LogLevel:  "info",
	}
}

// Load reads a YAML file over the defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return invalid("learning_rate %v not in (0, 1]", c.LearningRate)
	}
	if c.DiscountFactor < 0 || c.DiscountFactor > 1 {
		return invalid("discount_factor %v not in [0, 1]", c.DiscountFactor)
	}
	if c.InitialEpsilon < 0 || c.InitialEpsilon > 1 {
		return invalid("initial_epsilon %v not in [0, 1]", c.InitialEpsilon)
	}
	if c.EpsilonDecay <= 0 || c.EpsilonDecay >= 1 {
		return invalid("epsilon_decay %v not in (0, 1)", c.EpsilonDecay)
	}
	if c.EpsilonFloor < 0 || c.EpsilonFloor >= 1 {
		return invalid("epsilon_floor %v not in [0, 1)", c.EpsilonFloor)
	}
	if c.Horizon < 0 {
		return invalid("horizon %d is negative", c.Horizon)
	}
	if c.MaxEpisodes < 0 {
		return invalid("max_episodes %d is negative", c.MaxEpisodes)
	}
	if c.Maze.Size <= 0 {
		return invalid("maze size %d must be positive", c.Maze.Size)
	}
	if c.Redis.Addr != "" && c.Redis.Key == "" {
		return invalid("redis key is empty")
	}
	if c.Redis.Load && c.Redis.Addr == "" {
		return invalid("redis load needs an addr")
	}
	if c.PlayDelay < 0 {
		return invalid("play_delay %v is negative", c.PlayDelay)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log_level %q", c.LogLevel)
	}
	return nil
}

func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
