package analysis

import (
	"fmt"

	"github.com/zeu5/maze-rl/types"
)

// Collector keeps the per episode numbers of a run
type Collector struct {
	Steps    []int
	Returns  []int
	Epsilons []float64
	Terminal []bool

	exploitation *types.EpisodeSummary
}

var _ types.Observer = &Collector{}

func NewCollector() *Collector {
	return &Collector{
		Steps:    make([]int, 0),
		Returns:  make([]int, 0),
		Epsilons: make([]float64, 0),
		Terminal: make([]bool, 0),
	}
}

func (c *Collector) OnStep(_ types.StepInfo) error {
	return nil
}

func (c *Collector) OnEpisodeEnd(e types.EpisodeSummary) error {
	c.Steps = append(c.Steps, e.Steps)
	c.Returns = append(c.Returns, e.Return)
	c.Epsilons = append(c.Epsilons, e.Epsilon)
	c.Terminal = append(c.Terminal, e.Terminal)
	if e.Mode == types.ModeExploitation {
		last := e
		last.Trace = nil
		c.exploitation = &last
	}
	return nil
}

func (c *Collector) Episodes() int {
	return len(c.Steps)
}

// Exploitation is the summary of the final greedy episode, if it ran
func (c *Collector) Exploitation() (types.EpisodeSummary, bool) {
	if c.exploitation == nil {
		return types.EpisodeSummary{}, false
	}
	return *c.exploitation, true
}

type Summary struct {
	Episodes    int
	TotalSteps  int
	MeanSteps   float64
	MeanReturn  float64
	Truncated   int
	LastEpsilon float64
}

// Summarize the last window episodes, all of them if window <= 0
func (c *Collector) Summarize(window int) Summary {
	n := len(c.Steps)
	from := 0
	if window > 0 && window < n {
		from = n - window
	}
	s := Summary{Episodes: n}
	for i := from; i < n; i++ {
		s.TotalSteps += c.Steps[i]
		s.MeanReturn += float64(c.Returns[i])
		if !c.Terminal[i] {
			s.Truncated++
		}
	}
	if count := n - from; count > 0 {
		s.MeanSteps = float64(s.TotalSteps) / float64(count)
		s.MeanReturn /= float64(count)
		s.LastEpsilon = c.Epsilons[n-1]
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("episodes: %d, mean steps: %.2f, mean return: %.2f, truncated: %d, epsilon: %.3g",
		s.Episodes, s.MeanSteps, s.MeanReturn, s.Truncated, s.LastEpsilon)
}

// bucketize averages values into at most buckets points
func bucketize(values []float64, buckets int) ([]float64, []float64) {
	if len(values) == 0 {
		return nil, nil
	}
	size := 1
	if buckets > 0 && len(values) > buckets {
		size = (len(values) + buckets - 1) / buckets
	}
	xs := make([]float64, 0, len(values)/size+1)
	ys := make([]float64, 0, len(values)/size+1)
	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			end = len(values)
		}
		sum := 0.0
		for _, v := range values[start:end] {
			sum += v
		}
		xs = append(xs, float64(start))
		ys = append(ys, sum/float64(end-start))
	}
	return xs, ys
}

func intsToFloats(in []int) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
