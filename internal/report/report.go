package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clipsight/clipsight/internal/aggregate"
	"github.com/clipsight/clipsight/internal/models"
)

// Assemble validates the aggregate and packages it into the immutable
// report handed to the rendering layer. It performs no I/O.
func Assemble(runID string, agg aggregate.Result) (*models.AnalysisReport, error) {
	if runID == "" {
		runID = uuid.NewString()
	}

	if len(agg.Summaries) > len(models.SegmentLabels) {
		return nil, fmt.Errorf("report has %d segment summaries, want at most %d",
			len(agg.Summaries), len(models.SegmentLabels))
	}
	if len(agg.Summaries) < len(models.SegmentLabels) && len(agg.Warnings) == 0 {
		return nil, fmt.Errorf("report degraded to %d segments without a warning",
			len(agg.Summaries))
	}
	if len(agg.Recommendations) > models.MaxRecommendations {
		return nil, fmt.Errorf("report has %d recommendations, want at most %d",
			len(agg.Recommendations), models.MaxRecommendations)
	}
	if agg.Coverage < 0 || agg.Coverage > 1 {
		return nil, fmt.Errorf("coverage %v outside [0,1]", agg.Coverage)
	}

	seen := make(map[string]bool, len(agg.Recommendations))
	for _, rec := range agg.Recommendations {
		key := aggregate.Normalize(rec.Text)
		if seen[key] {
			return nil, fmt.Errorf("duplicate recommendation %q", rec.Text)
		}
		seen[key] = true
	}

	return &models.AnalysisReport{
		RunID:           runID,
		CreatedAt:       time.Now().UTC(),
		Genre:           agg.Genre,
		Segments:        agg.Summaries,
		Recommendations: agg.Recommendations,
		Coverage:        agg.Coverage,
		Warnings:        agg.Warnings,
	}, nil
}
