// Package charts renders the dashboard's two figures as PNG images: the
// monthly income-vs-expense bars and the expense-by-category donut.
package charts

import (
	"bytes"

	"github.com/wcharczuk/go-chart/v2"

	"wallet/internal/core"
	"wallet/internal/report"
)

// Generator renders report aggregates into chart images.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// MonthlyBars renders one bar per (month, type) pair, income in green and
// expense in red, months ascending. Returns nil bytes when there is nothing
// to draw.
func (g *Generator) MonthlyBars(series []report.MonthlyPoint) ([]byte, error) {
	if len(series) == 0 {
		return nil, nil
	}

	bars := make([]chart.Value, 0, len(series))
	for _, p := range series {
		color := chart.ColorRed
		label := string(p.Month) + " out"
		if p.Type == core.Income {
			color = chart.ColorGreen
			label = string(p.Month) + " in"
		}
		bars = append(bars, chart.Value{
			Value: p.Total.Float(),
			Label: label,
			Style: chart.Style{
				FillColor:   color,
				StrokeColor: color,
			},
		})
	}

	graph := chart.BarChart{
		Title:    "Income vs Expense",
		Width:    900,
		Height:   450,
		BarWidth: 40,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
			FillColor: chart.ColorWhite,
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// CategoryDonut renders the expense breakdown as a donut. Returns nil bytes
// when there are no expenses to draw.
func (g *Generator) CategoryDonut(breakdown []report.CategoryTotal) ([]byte, error) {
	if len(breakdown) == 0 {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(breakdown))
	for _, c := range breakdown {
		if c.Total.Cents <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: c.Total.Float(),
			Label: c.Name,
		})
	}
	if len(values) == 0 {
		return nil, nil
	}

	donut := chart.DonutChart{
		Title:  "Spending by Category",
		Width:  512,
		Height: 512,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    30,
				Left:   30,
				Right:  30,
				Bottom: 30,
			},
			FillColor: chart.ColorWhite,
		},
		Values: values,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := donut.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
