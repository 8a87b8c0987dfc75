// Package plot renders the channel curves as an interactive HTML page.
package plot

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/RMahshie/sparamgen/internal/numeric"
	"github.com/RMahshie/sparamgen/pkg/models"
)

const (
	// XMargin and YMargin pad the default view around the curves
	XMargin = 1000.0
	YMargin = 10.0

	colorSpec        = "#ef4444"
	colorMeasurement = "#2563eb"
	chartWidth       = "1100px"
	chartHeight      = "420px"
)

// Limits is the default view of one channel
type Limits struct {
	XMin, XMax float64
	YMin, YMax float64
}

// ChannelLimits spans the spec and measurement curves of ch, padded by the margins
func ChannelLimits(ch *models.ResponseChannel) Limits {
	xs := append(append([]float64{}, ch.Spec.Frequencies...), ch.Measurement.Frequencies...)
	ys := append(append([]float64{}, ch.Spec.Values...), ch.Measurement.Values...)
	xlo, xhi := numeric.MinMax(xs)
	ylo, yhi := numeric.MinMax(ys)
	return Limits{
		XMin: xlo - XMargin,
		XMax: xhi + XMargin,
		YMin: math.Floor(ylo - YMargin),
		YMax: math.Ceil(yhi + YMargin),
	}
}

// ChannelChart builds the line chart of one channel: the spec as straight
// segments, the measurement smoothed
func ChannelChart(ch *models.ResponseChannel) *charts.Line {
	lim := ChannelLimits(ch)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: ch.Name, Subtitle: ch.Unit}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside", XAxisIndex: []int{0}}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "value",
			Name: "MHz",
			Min:  lim.XMin,
			Max:  lim.XMax,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
			Name: ch.Unit,
			Min:  lim.YMin,
			Max:  lim.YMax,
		}),
	)

	line.AddSeries("Specification", points(ch.Spec),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorSpec, Width: 2}),
	)
	if ch.HasMeasurement() {
		line.AddSeries("Measurement", points(ch.Measurement.Curve),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false), Smooth: opts.Bool(true)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: colorMeasurement, Width: 2}),
		)
	}
	return line
}

func points(c models.Curve) []opts.LineData {
	data := make([]opts.LineData, c.Len())
	for i := range c.Frequencies {
		data[i] = opts.LineData{Value: []interface{}{c.Frequencies[i], c.Values[i]}}
	}
	return data
}

// RenderChannels writes one chart per non-empty channel as a single HTML page
func RenderChannels(w io.Writer, title string, data *models.NumericalData) error {
	page := components.NewPage()
	page.PageTitle = title
	page.SetLayout(components.PageFlexLayout)

	for _, ch := range data.Channels() {
		if ch.Spec.Empty() && !ch.HasMeasurement() {
			continue
		}
		page.AddCharts(ChannelChart(ch))
	}
	if len(page.Charts) == 0 {
		return fmt.Errorf("no channel curves to plot")
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	return nil
}
