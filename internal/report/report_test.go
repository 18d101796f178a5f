package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipsight/clipsight/internal/aggregate"
	"github.com/clipsight/clipsight/internal/models"
)

func fullAggregate() aggregate.Result {
	summaries := make([]models.SegmentSummary, 0, 4)
	for i, label := range models.SegmentLabels {
		summaries = append(summaries, models.SegmentSummary{
			Label:     label,
			Start:     float64(i * 5),
			End:       float64((i + 1) * 5),
			Narrative: "something happens",
		})
	}
	return aggregate.Result{
		Genre:     models.GenreClassification{Label: "vlog", Confidence: 0.8},
		Summaries: summaries,
		Recommendations: []models.Recommendation{
			{Rank: 1, Text: "tighten the opening cut", Segments: []models.SegmentLabel{models.SegmentA}},
			{Rank: 2, Text: "add captions", Segments: []models.SegmentLabel{models.SegmentB, models.SegmentC}},
		},
		Coverage: 0.9,
		Warnings: []string{"analysis incomplete: 18 of 20 attempted frames succeeded"},
	}
}

func TestAssemble(t *testing.T) {
	rep, err := Assemble("run-123", fullAggregate())

	require.NoError(t, err)
	assert.Equal(t, "run-123", rep.RunID)
	assert.False(t, rep.CreatedAt.IsZero())
	assert.Equal(t, "vlog", rep.Genre.Label)
	assert.Len(t, rep.Segments, 4)
	assert.Len(t, rep.Recommendations, 2)
	assert.Equal(t, 0.9, rep.Coverage)
}

func TestAssembleGeneratesRunID(t *testing.T) {
	rep, err := Assemble("", fullAggregate())
	require.NoError(t, err)
	assert.NotEmpty(t, rep.RunID)
}

func TestAssembleRejectsTooManySegments(t *testing.T) {
	agg := fullAggregate()
	agg.Summaries = append(agg.Summaries, models.SegmentSummary{Label: "E"})

	_, err := Assemble("", agg)
	assert.Error(t, err)
}

func TestAssembleFewerSegmentsNeedWarning(t *testing.T) {
	agg := fullAggregate()
	agg.Summaries = agg.Summaries[:2]
	agg.Warnings = nil

	_, err := Assemble("", agg)
	require.Error(t, err)

	agg.Warnings = []string{"only 2 frame(s) sampled: degraded to 2 segment(s) instead of 4"}
	rep, err := Assemble("", agg)
	require.NoError(t, err)
	assert.Len(t, rep.Segments, 2)
}

func TestAssembleRejectsTooManyRecommendations(t *testing.T) {
	agg := fullAggregate()
	agg.Recommendations = nil
	for i := 0; i <= models.MaxRecommendations; i++ {
		agg.Recommendations = append(agg.Recommendations, models.Recommendation{
			Rank: i + 1,
			Text: string(rune('a' + i)),
		})
	}

	_, err := Assemble("", agg)
	assert.Error(t, err)
}

func TestAssembleRejectsDuplicateRecommendations(t *testing.T) {
	agg := fullAggregate()
	agg.Recommendations = []models.Recommendation{
		{Rank: 1, Text: "Add Captions"},
		{Rank: 2, Text: "add   captions!"},
	}

	_, err := Assemble("", agg)
	assert.Error(t, err)
}

func TestAssembleRejectsCoverageOutOfRange(t *testing.T) {
	for _, cov := range []float64{-0.1, 1.1} {
		agg := fullAggregate()
		agg.Coverage = cov
		_, err := Assemble("", agg)
		assert.Error(t, err, "coverage %v", cov)
	}
}
