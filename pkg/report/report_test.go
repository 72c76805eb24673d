package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jarvis-ai-be/pkg/assistant/classifier"
)

func classifierForTest(t *testing.T) *classifier.Classifier {
	t.Helper()
	return classifier.MustNew()
}

func TestMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{12.5, "12.50"},
		{1234.567, "1,234.57"},
		{1000000, "1,000,000.00"},
		{-98765.4, "-98,765.40"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, money(tt.in))
	}
}

func TestGrowth(t *testing.T) {
	tests := []struct {
		name      string
		cur, prev float64
		want      float64
	}{
		{"up", 110, 100, 10},
		{"down", 80, 100, -20},
		{"from zero", 50, 0, 100},
		{"to negative from zero", -50, 0, -100},
		{"flat zero", 0, 0, 0},
		{"loss shrinking", -50, -100, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, growth(tt.cur, tt.prev), 1e-9)
		})
	}
}

func TestNoData(t *testing.T) {
	sec := NoData("Sales Data:", "sales", testPeriod())
	assert.Equal(t, "Sales Data:\nNo sales data found for the period 2025-06-01 to 2025-06-30.", sec.String())
	assert.Zero(t, sec.Metric(MetricRevenue))
}
