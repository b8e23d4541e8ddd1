package grid

import (
	"encoding/json"
	"os"

	"github.com/zeu5/maze-rl/types"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// GridDataSet counts how often each cell of the board was visited
type GridDataSet struct {
	Visits map[int]map[int]int
	Height int
	Width  int
}

var _ plotter.GridXYZ = &GridDataSet{}

func (g *GridDataSet) Dims() (int, int) {
	return g.Width, g.Height
}

func (g *GridDataSet) Z(c, r int) float64 {
	// rows are drawn bottom up, the board is indexed top down
	return float64(g.Visits[g.Height-1-r][c])
}

func (g *GridDataSet) X(c int) float64 {
	return float64(c)
}

func (g *GridDataSet) Y(r int) float64 {
	return float64(r)
}

func (g *GridDataSet) Min() float64 {
	return 0.0
}

func (g *GridDataSet) Max() float64 {
	max := 0
	for _, vals := range g.Visits {
		for _, count := range vals {
			if count > max {
				max = count
			}
		}
	}
	return float64(max)
}

// VisitCounter observes a maze and records the cells the player
// steps on. Positions off the board are not counted.
type VisitCounter struct {
	maze    *Maze
	dataSet *GridDataSet
}

var _ types.Observer = &VisitCounter{}

func NewVisitCounter(maze *Maze) *VisitCounter {
	return &VisitCounter{
		maze: maze,
		dataSet: &GridDataSet{
			Visits: make(map[int]map[int]int),
			Height: maze.Size,
			Width:  maze.Size,
		},
	}
}

func (v *VisitCounter) OnStep(_ types.StepInfo) error {
	pos := v.maze.CurPos
	if !v.maze.inside(pos) {
		return nil
	}
	if _, ok := v.dataSet.Visits[pos.Y]; !ok {
		v.dataSet.Visits[pos.Y] = make(map[int]int)
	}
	v.dataSet.Visits[pos.Y][pos.X] += 1
	return nil
}

func (v *VisitCounter) OnEpisodeEnd(_ types.EpisodeSummary) error {
	return nil
}

func (v *VisitCounter) DataSet() *GridDataSet {
	return v.dataSet
}

// Save writes the visit counts as JSON and a heat map next to it
func (v *VisitCounter) Save(jsonPath, pngPath string) error {
	bs, err := json.Marshal(v.dataSet)
	if err != nil {
		return err
	}
	if err := os.WriteFile(jsonPath, bs, 0644); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = "Visits"
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y (from the bottom)"
	p.Add(plotter.NewHeatMap(v.dataSet, palette.Heat(20, 1)))
	return p.Save(6*vg.Inch, 6*vg.Inch, pngPath)
}
