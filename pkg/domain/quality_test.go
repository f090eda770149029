package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		xp   int
		want Quality
	}{
		{xp: 100, want: QualityGood},
		{xp: 15, want: QualityGood},
		{xp: 14, want: QualityRisky},
		{xp: 1, want: QualityRisky},
		{xp: 0, want: QualityBad},
		{xp: -10, want: QualityBad},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Evaluate(tt.xp), "xp=%d", tt.xp)
	}

	assert.True(t, Evaluate(0).IsBad())
	assert.False(t, Evaluate(1).IsBad())
}

func TestRate(t *testing.T) {
	assert.Equal(t, PerformanceExcellent, Rate(100))
	assert.Equal(t, PerformanceGood, Rate(99))
	assert.Equal(t, PerformanceGood, Rate(50))
	assert.Equal(t, PerformanceAverage, Rate(49))
	assert.Equal(t, PerformanceAverage, Rate(0))
	assert.Equal(t, PerformancePoor, Rate(-1))
}
