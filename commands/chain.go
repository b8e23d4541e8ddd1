package commands

import (
	"fmt"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"github.com/zeu5/maze-rl/analysis"
	"github.com/zeu5/maze-rl/chain"
	"github.com/zeu5/maze-rl/types"
)

var chainLength int

// ChainCommand trains on a corridor where the best policy is known,
// always advance, and checks the table agrees.
func ChainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Train on a corridor and check the greedy policy always advances",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyTrainFlags(cmd, cfg)
			if !cmd.Flags().Changed("horizon") && cfg.Horizon == 0 {
				cfg.Horizon = horizon
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}

			env, err := chain.NewChain(chainLength)
			if err != nil {
				return err
			}
			policy, err := newGreedy(cfg, env)
			if err != nil {
				return err
			}
			collector := analysis.NewCollector()
			agent, err := types.NewAgent(&types.AgentConfig{
				Environment: env,
				Policy:      policy,
				Horizon:     cfg.Horizon,
				MaxEpisodes: cfg.MaxEpisodes,
				Observers:   []types.Observer{collector},
				Logger:      logger,
			})
			if err != nil {
				return err
			}
			if err := agent.Run(cmd.Context()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", collector.Summarize(0))
			converged := true
			for s := 0; s < chainLength-1; s++ {
				best, err := policy.Table().BestAction(types.State(s))
				if err != nil {
					return err
				}
				if best != chain.Advance {
					converged = false
					level.Warn(logger).Log("msg", "greedy action does not advance", "state", s)
				}
			}
			fmt.Fprintf(out, "converged: %v\n%s", converged, policy.Table())
			return nil
		},
	}
	cmd.Flags().IntVar(&chainLength, "length", 5, "Number of states in the corridor")
	cmd.Flags().IntVarP(&episodes, "episodes", "e", 0, "Upper bound on training episodes")
	cmd.Flags().IntVar(&horizon, "horizon", 100, "Upper bound on the steps of an episode")
	cmd.Flags().Float64Var(&epsilonDecay, "decay", 0, "Multiplicative epsilon decay")
	cmd.Flags().Float64Var(&epsilonFloor, "floor", 0, "Epsilon below which the policy exploits")
	return cmd
}
