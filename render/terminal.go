package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gosuri/uilive"
	"github.com/logrusorgru/aurora"
	"github.com/zeu5/maze-rl/grid"
	"github.com/zeu5/maze-rl/types"
)

type Config struct {
	// TrainEvery draws one training episode out of TrainEvery, 0 draws none
	TrainEvery int
	// Delay between two frames of the exploitation episode
	Delay  time.Duration
	Colors bool
	Out    io.Writer
}

// Terminal draws the maze in place on a terminal after every step
type Terminal struct {
	maze   *grid.Maze
	config Config
	writer *uilive.Writer
	au     aurora.Aurora
	sleep  func(time.Duration)
}

var _ types.Observer = &Terminal{}

func NewTerminal(maze *grid.Maze, config Config) *Terminal {
	writer := uilive.New()
	if config.Out != nil {
		writer.Out = config.Out
	} else {
		writer.Out = os.Stdout
	}
	return &Terminal{
		maze:   maze,
		config: config,
		writer: writer,
		au:     aurora.NewAurora(config.Colors),
		sleep:  time.Sleep,
	}
}

func (t *Terminal) draws(episode int, mode types.Mode) bool {
	if mode == types.ModeExploitation {
		return true
	}
	return t.config.TrainEvery > 0 && episode%t.config.TrainEvery == 0
}

func (t *Terminal) OnStep(s types.StepInfo) error {
	if !t.draws(s.Episode, s.Mode) {
		return nil
	}
	fmt.Fprintf(t.writer, "episode %d step %d [%s] epsilon %.3g\n", s.Episode, s.Step, s.Mode, s.Epsilon)
	fmt.Fprintf(t.writer, "state %s action %s reward %d\n", grid.StateName(s.State), grid.MovementName(s.Action), s.Reward)
	fmt.Fprint(t.writer, t.Board())
	if err := t.writer.Flush(); err != nil {
		return err
	}
	if s.Mode == types.ModeExploitation && t.config.Delay > 0 {
		t.sleep(t.config.Delay)
	}
	return nil
}

func (t *Terminal) OnEpisodeEnd(e types.EpisodeSummary) error {
	if !t.draws(e.Episode, e.Mode) {
		return nil
	}
	outcome := "truncated"
	if e.Terminal {
		if t.maze.CurPos.Eq(t.maze.Goal) {
			outcome = t.au.Green("goal").String()
		} else {
			outcome = t.au.Red("off the board").String()
		}
	}
	fmt.Fprintf(t.writer, "episode %d finished: %s after %d steps, return %d\n", e.Episode, outcome, e.Steps, e.Return)
	return t.writer.Flush()
}

// Board renders the maze, one character per cell
func (t *Terminal) Board() string {
	var b strings.Builder
	for y := 0; y < t.maze.Size; y++ {
		for x := 0; x < t.maze.Size; x++ {
			pos := grid.Position{X: x, Y: y}
			switch {
			case pos.Eq(t.maze.CurPos):
				b.WriteString(t.au.Blue("P").Bold().String())
			case pos.Eq(t.maze.Goal):
				b.WriteString(t.au.Green("G").String())
			default:
				b.WriteString(t.au.Red(".").String())
			}
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	return b.String()
}
