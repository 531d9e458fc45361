package server

import (
	"math"

	"importacao/internal/model"
)

// Chart 柱状图几何（SVG 坐标，原点在左上角）
type Chart struct {
	Title  string
	Width  int
	Height int

	PlotX, PlotY          int
	PlotWidth, PlotHeight int

	Bars  []Bar
	Ticks []Tick
	Empty bool
}

// Bar 一根柱子
type Bar struct {
	Label  string
	Count  int
	Color  string
	X, Y   float64
	Width  float64
	Height float64
	// 标签位置（柱子中心）
	LabelX float64
	LabelY float64
	ValueY float64
}

// Tick 纵轴刻度
type Tick struct {
	Value int
	Y     float64
}

const (
	chartWidth   = 720
	chartHeight  = 380
	marginLeft   = 56
	marginRight  = 16
	marginTop    = 48
	marginBottom = 72
	barFill      = 0.6
)

// BuildChart 根据汇总计算柱状图几何
func BuildChart(title string, summary []model.SummaryEntry) Chart {
	c := Chart{
		Title:      title,
		Width:      chartWidth,
		Height:     chartHeight,
		PlotX:      marginLeft,
		PlotY:      marginTop,
		PlotWidth:  chartWidth - marginLeft - marginRight,
		PlotHeight: chartHeight - marginTop - marginBottom,
		Bars:       []Bar{},
		Empty:      len(summary) == 0,
	}

	maxCount := 0
	for _, s := range summary {
		if s.Count > maxCount {
			maxCount = s.Count
		}
	}
	step := tickStep(maxCount)
	axisMax := step * int(math.Ceil(float64(maxCount)/float64(step)))
	if axisMax == 0 {
		axisMax = step
	}

	base := float64(c.PlotY + c.PlotHeight)
	for v := 0; v <= axisMax; v += step {
		c.Ticks = append(c.Ticks, Tick{
			Value: v,
			Y:     base - float64(v)/float64(axisMax)*float64(c.PlotHeight),
		})
	}

	if len(summary) == 0 {
		return c
	}
	slot := float64(c.PlotWidth) / float64(len(summary))
	for i, s := range summary {
		h := float64(s.Count) / float64(axisMax) * float64(c.PlotHeight)
		w := slot * barFill
		x := float64(c.PlotX) + slot*float64(i) + (slot-w)/2
		c.Bars = append(c.Bars, Bar{
			Label:  s.Label,
			Count:  s.Count,
			Color:  "#" + model.ColorHex(s.Color),
			X:      x,
			Y:      base - h,
			Width:  w,
			Height: h,
			LabelX: x + w/2,
			LabelY: base + 20,
			ValueY: base - h - 6,
		})
	}
	return c
}

// tickStep 1/2/5 × 10^n，约 5 个刻度
func tickStep(maxCount int) int {
	if maxCount <= 5 {
		return 1
	}
	raw := float64(maxCount) / 5
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5, 10} {
		if m*mag >= raw {
			return int(m * mag)
		}
	}
	return int(10 * mag)
}
