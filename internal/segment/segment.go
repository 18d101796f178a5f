package segment

import (
	"fmt"

	"github.com/clipsight/clipsight/internal/models"
)

// Partition divides the frame sequence into up to four contiguous
// segments labeled A through D. Segment i covers frame indices
// [floor(i*N/4), floor((i+1)*N/4)). With fewer than four frames the
// partition degrades to one single-frame segment per frame and reports a
// warning instead of failing; the warning surfaces on the final report.
func Partition(frames []models.Frame, interval float64) ([]models.Segment, []string) {
	n := len(frames)
	if n == 0 {
		return nil, []string{"no frames available: video too short to partition"}
	}

	parts := len(models.SegmentLabels)
	var warnings []string
	if n < parts {
		parts = n
		warnings = append(warnings,
			fmt.Sprintf("only %d frame(s) sampled: degraded to %d segment(s) instead of 4", n, parts))
	}

	segments := make([]models.Segment, 0, parts)
	for i := 0; i < parts; i++ {
		lo := i * n / parts
		hi := (i + 1) * n / parts
		if n < len(models.SegmentLabels) {
			lo, hi = i, i+1
		}
		sub := frames[lo:hi]
		segments = append(segments, models.Segment{
			Label:  models.SegmentLabels[i],
			Frames: sub,
			Start:  sub[0].Timestamp,
			End:    sub[len(sub)-1].Timestamp + interval,
		})
	}
	return segments, warnings
}

// LabelFor maps a frame index onto its segment label under the same
// boundary formula used by Partition. The second return is false for an
// index outside [0, n).
func LabelFor(index, n int) (models.SegmentLabel, bool) {
	if index < 0 || index >= n {
		return "", false
	}
	parts := len(models.SegmentLabels)
	if n < parts {
		parts = n
	}
	for i := 0; i < parts; i++ {
		lo := i * n / parts
		hi := (i + 1) * n / parts
		if n < len(models.SegmentLabels) {
			lo, hi = i, i+1
		}
		if index >= lo && index < hi {
			return models.SegmentLabels[i], true
		}
	}
	return "", false
}
