package analysis

import (
	"fmt"
	"os"
	"path"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/zeu5/maze-rl/util"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const plotPoints = 500

type series struct {
	name   string
	yLabel string
	values []float64
}

func (c *Collector) series() []series {
	return []series{
		{name: "steps", yLabel: "Steps per episode", values: intsToFloats(c.Steps)},
		{name: "return", yLabel: "Return per episode", values: intsToFloats(c.Returns)},
		{name: "epsilon", yLabel: "Epsilon", values: c.Epsilons},
	}
}

// Plot saves one PNG per series in plotPath
func (c *Collector) Plot(plotPath string) error {
	if err := util.EnsureDir(plotPath); err != nil {
		return err
	}
	for i, s := range c.series() {
		xs, ys := bucketize(s.values, plotPoints)
		if len(xs) == 0 {
			continue
		}
		p := plot.New()
		p.Title.Text = s.yLabel
		p.X.Label.Text = "Episode"
		p.Y.Label.Text = s.yLabel
		points := make(plotter.XYs, len(xs))
		for j := range xs {
			points[j] = plotter.XY{X: xs[j], Y: ys[j]}
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			return fmt.Errorf("plot %s: %w", s.name, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		if err := p.Save(8*vg.Inch, 4*vg.Inch, path.Join(plotPath, s.name+".png")); err != nil {
			return fmt.Errorf("plot %s: %w", s.name, err)
		}
	}
	return nil
}

// Report renders all the series in a single HTML page
func (c *Collector) Report(reportPath string) error {
	page := components.NewPage()
	for _, s := range c.series() {
		xs, ys := bucketize(s.values, plotPoints)
		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: s.yLabel}),
			charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
		)
		xAxis := make([]string, len(xs))
		items := make([]opts.LineData, len(ys))
		for i := range xs {
			xAxis[i] = fmt.Sprintf("%d", int(xs[i]))
			items[i] = opts.LineData{Value: ys[i]}
		}
		line.SetXAxis(xAxis).AddSeries(s.name, items)
		page.AddCharts(line)
	}

	if err := util.EnsureDir(path.Dir(reportPath)); err != nil {
		return err
	}
	f, err := os.Create(reportPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return page.Render(f)
}
