package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rocksoncodes/market-scout/internal/model"
)

func TestClassifyThresholdBoundaries(t *testing.T) {
	cases := []struct {
		compound float64
		want     model.Label
	}{
		{0.0, model.LabelNeutral},
		{0.05, model.LabelNeutral},
		{-0.05, model.LabelNeutral},
		{0.051, model.LabelPositive},
		{-0.051, model.LabelNegative},
		{0.9, model.LabelPositive},
		{-0.9, model.LabelNegative},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.compound), "compound %v", tc.compound)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil)
	assert.Equal(t, model.LabelNeutral, got.Dominant)
	assert.Zero(t, got.AvgCompound)
	assert.NotNil(t, got.Counts)
	assert.Empty(t, got.Counts)
}

func TestSummarizeMajorityAndMean(t *testing.T) {
	scores := []model.CommentScore{
		{Compound: 0.6, Label: model.LabelPositive},
		{Compound: -0.4, Label: model.LabelNegative},
		{Compound: 0.2, Label: model.LabelPositive},
		{Compound: 0.0, Label: model.LabelNeutral},
	}

	got := Summarize(scores)
	assert.Equal(t, model.LabelPositive, got.Dominant)
	assert.InDelta(t, 0.1, got.AvgCompound, 1e-9)
	assert.Equal(t, map[model.Label]int{
		model.LabelPositive: 2,
		model.LabelNegative: 1,
		model.LabelNeutral:  1,
	}, got.Counts)
}

func TestSummarizeTieBreaksToFirstEncountered(t *testing.T) {
	scores := []model.CommentScore{
		{Compound: -0.3, Label: model.LabelNegative},
		{Compound: 0.3, Label: model.LabelPositive},
		{Compound: 0.4, Label: model.LabelPositive},
		{Compound: -0.4, Label: model.LabelNegative},
	}
	assert.Equal(t, model.LabelNegative, Summarize(scores).Dominant)
}

func TestSummarizeDeterministic(t *testing.T) {
	scores := []model.CommentScore{
		{Compound: 0.7, Label: model.LabelPositive},
		{Compound: -0.2, Label: model.LabelNegative},
		{Compound: 0.0, Label: model.LabelNeutral},
		{Compound: 0.0, Label: model.LabelNeutral},
	}
	assert.Equal(t, Summarize(scores), Summarize(scores))
}
