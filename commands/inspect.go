package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeu5/maze-rl/grid"
	"github.com/zeu5/maze-rl/history"
	"github.com/zeu5/maze-rl/policies"
	"github.com/zeu5/maze-rl/store"
	"github.com/zeu5/maze-rl/types"
)

var showEpisodes bool

func InspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print a saved table or the recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyTrainFlags(cmd, cfg)
			out := cmd.OutOrStdout()

			// an explicit table source wins over a configured history
			tableFlag := cmd.Flags().Changed("load") || cmd.Flags().Changed("redis-addr")
			if cfg.HistoryPath != "" && !tableFlag {
				return printRuns(out, cfg.HistoryPath, showEpisodes)
			}

			table, err := policies.NewQTable(grid.NumStates, len(grid.AllMovements))
			if err != nil {
				return err
			}
			var from store.Store
			if cfg.Redis.Addr != "" {
				redisStore := store.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Key)
				defer redisStore.Close()
				from = redisStore
			} else {
				path := cfg.LoadPath
				if path == "" {
					path = cfg.TablePath
				}
				from = store.NewFileStore(path)
			}
			err = from.Load(context.Background(), func(r io.Reader) error {
				_, err := table.ReadFrom(r)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "table from %s\n", from)
			return printTable(out, table)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&loadPath, "load", "l", "", "Table file to print")
	flags.StringVar(&redisAddr, "redis-addr", "", "Redis server holding the table")
	flags.StringVar(&redisKey, "redis-key", "", "Redis key of the table")
	flags.StringVar(&historyPath, "history", "", "List the runs of this SQLite database instead")
	flags.BoolVar(&showEpisodes, "episodes", false, "With --history, also print the last episodes of every run")
	return cmd
}

func printTable(out io.Writer, table *policies.QTable) error {
	fmt.Fprintf(out, "%-6s", "state")
	for _, a := range grid.AllMovements {
		fmt.Fprintf(out, "%12s", grid.MovementName(a))
	}
	fmt.Fprintf(out, "  best\n")
	for s := 0; s < table.NumStates(); s++ {
		state := types.State(s)
		row, err := table.Row(state)
		if err != nil {
			return err
		}
		best, err := table.BestAction(state)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-6s", grid.StateName(state))
		for _, v := range row {
			fmt.Fprintf(out, "%12.4f", v)
		}
		fmt.Fprintf(out, "  %s\n", grid.MovementName(best))
	}
	return nil
}

const lastEpisodes = 5

func printRuns(out io.Writer, dbPath string, episodes bool) error {
	h, err := history.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer h.Close()

	runs, err := h.Runs()
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Fprintf(out, "%s  %-12s %-10s started %s", r.RunID, r.Environment, r.Status, r.StartedAt.Format("2006-01-02 15:04:05"))
		if !r.FinishedAt.IsZero() {
			fmt.Fprintf(out, "  took %s", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
		}
		fmt.Fprintln(out)
		if !episodes {
			continue
		}
		records, err := h.Episodes(r.RunID)
		if err != nil {
			return err
		}
		if len(records) > lastEpisodes {
			records = records[len(records)-lastEpisodes:]
		}
		for _, e := range records {
			fmt.Fprintf(out, "    episode %d %s: %d steps, return %d, terminal %v, epsilon %g\n",
				e.Episode, e.Mode, e.Steps, e.Return, e.Terminal, e.Epsilon)
		}
	}
	return nil
}
