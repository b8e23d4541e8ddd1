package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/maze-rl/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := GetRootCommand()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(append(args, "--log-level", "error"))
	err := root.Execute()
	return out.String(), err
}

func TestTrainThenInspect(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "qtable.csv")
	db := filepath.Join(dir, "history.db")
	plots := filepath.Join(dir, "plots")
	require.NoError(t, os.MkdirAll(plots, 0755))

	out, err := execute(t, "train",
		"--seed", "7",
		"--decay", "0.99",
		"--floor", "0.001",
		"--horizon", "100",
		"--table", table,
		"--history", db,
		"--plots", plots,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "exploitation episode")
	assert.FileExists(t, table)
	assert.FileExists(t, filepath.Join(plots, "report.html"))
	assert.FileExists(t, filepath.Join(plots, "visits.png"))

	out, err = execute(t, "inspect", "--load", table)
	require.NoError(t, err)
	assert.Contains(t, out, "Right")
	assert.Contains(t, out, "-D-R")

	out, err = execute(t, "inspect", "--history", db, "--episodes")
	require.NoError(t, err)
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "exploitation")
}

func TestPlayNeedsTable(t *testing.T) {
	_, err := execute(t, "play")
	require.Error(t, err)
}

func TestRandomNeedsEpisodes(t *testing.T) {
	_, err := execute(t, "train", "--random", "--table", "")
	require.Error(t, err)

	out, err := execute(t, "train", "--random", "--episodes", "20", "--horizon", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "episodes")
}

func TestChain(t *testing.T) {
	out, err := execute(t, "chain", "--length", "3", "--decay", "0.99", "--floor", "0.001", "--seed", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "converged:")
}

func TestPlayRedisLoadNeedsAddr(t *testing.T) {
	_, err := execute(t, "play", "--redis-load")
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestInspectLoadWinsOverConfiguredHistory(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "qtable.csv")
	row := "0.000000,0.000000,0.000000,0.000000,1.000000,\n"
	require.NoError(t, os.WriteFile(table, []byte(strings.Repeat(row, 16)), 0644))
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("history: "+filepath.Join(dir, "history.db")+"\n"), 0644))

	out, err := execute(t, "inspect", "-c", cfgPath, "--load", table)
	require.NoError(t, err)
	assert.Contains(t, out, "table from file://"+table)
	assert.Contains(t, out, "Right")
}
