package http

import (
	"fmt"
	"html/template"
	"math"
	"time"

	"expensetracker/internal/analytics"
	"expensetracker/internal/core"
)

// Pie colours, assigned to categories in first-seen order.
var pieColors = []string{"#1976d2", "#9c27b0", "#ff9800", "#4caf50", "#f44336", "#607d8b"}

const (
	pieCenter = 100.0
	pieRadius = 90.0

	trendWidth   = 600.0
	trendHeight  = 200.0
	trendPadding = 24.0
)

type pieSlice struct {
	Category string
	Total    core.Amount
	Percent  float64
	Color    string
	// Path is an SVG arc path; Full marks a single category drawn as a
	// whole circle.
	Path string
	Full bool
}

// pieSlices lays category totals out clockwise from twelve o'clock.
// Categories summing to zero take no space.
func pieSlices(totals []core.CategoryTotal) []pieSlice {
	var grand float64
	for _, t := range totals {
		grand += t.Total.Float64()
	}
	if grand <= 0 {
		return nil
	}

	out := make([]pieSlice, 0, len(totals))
	angle := -math.Pi / 2
	for i, t := range totals {
		v := t.Total.Float64()
		if v <= 0 {
			continue
		}
		frac := v / grand
		s := pieSlice{
			Category: t.Category,
			Total:    t.Total,
			Percent:  frac * 100,
			Color:    pieColors[i%len(pieColors)],
		}
		if frac >= 0.9999 {
			s.Full = true
			out = append(out, s)
			continue
		}
		end := angle + frac*2*math.Pi
		large := 0
		if frac > 0.5 {
			large = 1
		}
		x0, y0 := pieCenter+pieRadius*math.Cos(angle), pieCenter+pieRadius*math.Sin(angle)
		x1, y1 := pieCenter+pieRadius*math.Cos(end), pieCenter+pieRadius*math.Sin(end)
		s.Path = fmt.Sprintf("M %.0f %.0f L %.2f %.2f A %.0f %.0f 0 %d 1 %.2f %.2f Z",
			pieCenter, pieCenter, x0, y0, pieRadius, pieRadius, large, x1, y1)
		angle = end
		out = append(out, s)
	}
	return out
}

type trendDot struct {
	X, Y   float64
	Date   string
	Amount core.Amount
}

type trendChart struct {
	Width, Height float64
	Points        string
	Dots          []trendDot
	Max           core.Amount
}

// newTrendChart scales the daily series into the chart's view box, dates
// evenly spaced left to right.
func newTrendChart(points []analytics.TrendPoint) trendChart {
	chart := trendChart{Width: trendWidth, Height: trendHeight}
	if len(points) == 0 {
		return chart
	}

	var max float64
	for _, p := range points {
		if v := p.Amount.Float64(); v > max {
			max = v
			chart.Max = p.Amount
		}
	}

	innerW := trendWidth - 2*trendPadding
	innerH := trendHeight - 2*trendPadding
	for i, p := range points {
		x := trendWidth / 2
		if len(points) > 1 {
			x = trendPadding + float64(i)*innerW/float64(len(points)-1)
		}
		y := trendHeight - trendPadding
		if max > 0 {
			y -= p.Amount.Float64() / max * innerH
		}
		chart.Dots = append(chart.Dots, trendDot{X: x, Y: y, Date: p.Date, Amount: p.Amount})
		if i > 0 {
			chart.Points += " "
		}
		chart.Points += fmt.Sprintf("%.1f,%.1f", x, y)
	}
	return chart
}

type option struct {
	Value, Label string
}

// monthOptions is the month filter select, "All" first.
func monthOptions() []option {
	out := []option{{Value: "", Label: "All months"}}
	for m := time.January; m <= time.December; m++ {
		out = append(out, option{Value: fmt.Sprintf("%02d", int(m)), Label: m.String()})
	}
	return out
}

var templateFuncs = template.FuncMap{
	"money":  func(a core.Amount) string { return a.Format() },
	"amount": func(a core.Amount) string { return a.String() },
	"pct":    func(f float64) string { return fmt.Sprintf("%.1f%%", f) },
	"monthName": func(m int) string {
		if m < 1 || m > 12 {
			return ""
		}
		return time.Month(m).String()
	},
	"plural":        pluralS,
	"knownCategory": core.IsKnownCategory,
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.Format("15:04:05")
	},
}
