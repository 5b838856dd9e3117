package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]Cell{{Value: 10}, {Value: 20}, {Value: 30}, {Value: 40}})

	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 10, s.Min, 0)
	assert.InDelta(t, 40, s.Max, 0)
	assert.InDelta(t, 25, s.Mean, 1e-9)
	assert.InDelta(t, 12.909944, s.StdDev, 1e-6)
}

func TestSummarize_Edges(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))

	single := Summarize([]Cell{{Value: 55}})
	assert.Equal(t, 1, single.Count)
	assert.InDelta(t, 55, single.Mean, 0)
	assert.InDelta(t, 0, single.StdDev, 0)
}
