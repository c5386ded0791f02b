package http

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/analytics"
	"expensetracker/internal/core"
)

func TestPieSlices(t *testing.T) {
	slices := pieSlices([]core.CategoryTotal{
		{Category: "Food", Total: core.NewAmount(75)},
		{Category: "Bills", Total: core.NewAmount(0)},
		{Category: "Transport", Total: core.NewAmount(25)},
	})
	require.Len(t, slices, 2, "zero totals take no slice")

	assert.Equal(t, "Food", slices[0].Category)
	assert.InDelta(t, 75, slices[0].Percent, 1e-9)
	assert.Contains(t, slices[0].Path, "A 90 90 0 1 1", "more than half uses the large arc")
	assert.True(t, strings.HasPrefix(slices[0].Path, "M 100 100 L 100.00 10.00"), slices[0].Path)

	assert.Equal(t, "Transport", slices[1].Category)
	assert.Contains(t, slices[1].Path, "A 90 90 0 0 1")
	assert.Equal(t, pieColors[2], slices[1].Color, "colour follows the category position")
}

func TestPieSlicesSingleCategoryIsFullCircle(t *testing.T) {
	slices := pieSlices([]core.CategoryTotal{{Category: "Food", Total: core.NewAmount(10)}})
	require.Len(t, slices, 1)
	assert.True(t, slices[0].Full)
	assert.Empty(t, slices[0].Path)
}

func TestPieSlicesEmpty(t *testing.T) {
	assert.Nil(t, pieSlices(nil))
	assert.Nil(t, pieSlices([]core.CategoryTotal{{Category: "Food"}}))
}

func TestTrendChart(t *testing.T) {
	chart := newTrendChart([]analytics.TrendPoint{
		{Date: "2024-03-01", Amount: core.NewAmount(50)},
		{Date: "2024-03-02", Amount: core.NewAmount(100)},
	})
	require.Len(t, chart.Dots, 2)
	assert.Equal(t, "24.0,100.0 576.0,24.0", chart.Points)
	assert.Equal(t, "100.00", chart.Max.String())
}

func TestTrendChartSinglePointIsCentred(t *testing.T) {
	chart := newTrendChart([]analytics.TrendPoint{{Date: "2024-03-01", Amount: core.NewAmount(0)}})
	require.Len(t, chart.Dots, 1)
	assert.Equal(t, trendWidth/2, chart.Dots[0].X)
	assert.Equal(t, trendHeight-trendPadding, chart.Dots[0].Y)
}

func TestMonthOptions(t *testing.T) {
	opts := monthOptions()
	require.Len(t, opts, 13)
	assert.Equal(t, option{Value: "03", Label: "March"}, opts[3])
}
