package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/clipsight/clipsight/internal/inference"
	"github.com/clipsight/clipsight/internal/models"
)

// Result is the merged outcome of every per-frame analysis.
type Result struct {
	Genre           models.GenreClassification
	Summaries       []models.SegmentSummary
	Recommendations []models.Recommendation
	Coverage        float64
	Warnings        []string
}

// Aggregate merges the ordered frame results into a genre vote, one
// summary per segment, and a ranked recommendation list. It never fails:
// a run with zero successful frames degrades to the Unknown genre,
// "insufficient data" summaries and an empty recommendation list.
// results must be aligned index-for-index with the full frame sequence.
func Aggregate(segments []models.Segment, results []models.FrameResult) Result {
	res := Result{
		Genre:           classifyGenre(results),
		Summaries:       summarize(segments, results),
		Recommendations: rankRecommendations(segments, results),
	}
	res.Coverage, res.Warnings = coverage(segments, results)
	return res
}

// classifyGenre tallies the declared genre signal across all successful
// results, weighted by per-frame confidence (default weight 1). Ties
// break toward the label seen earliest in frame order, so the outcome is
// deterministic for a given result sequence.
func classifyGenre(results []models.FrameResult) models.GenreClassification {
	type tally struct {
		label     string
		weight    float64
		firstSeen int
	}
	votes := make(map[string]*tally)
	total := 0.0

	for i, r := range results {
		if !r.Ok() {
			continue
		}
		label := strings.TrimSpace(r.Field(models.FieldGenre))
		if label == "" {
			continue
		}
		key := strings.ToLower(label)
		weight := inference.ParseConfidence(r.Field(models.FieldConfidence))
		total += weight

		if t, ok := votes[key]; ok {
			t.weight += weight
		} else {
			votes[key] = &tally{label: label, weight: weight, firstSeen: i}
		}
	}

	if len(votes) == 0 || total == 0 {
		return models.GenreClassification{Label: models.GenreUnknown, Confidence: 0}
	}

	var win *tally
	for _, t := range votes {
		if win == nil || t.weight > win.weight ||
			(t.weight == win.weight && t.firstSeen < win.firstSeen) {
			win = t
		}
	}
	return models.GenreClassification{Label: win.label, Confidence: win.weight / total}
}

// summarize builds exactly one summary per segment, preserving frame
// order, each derived only from that segment's own results.
func summarize(segments []models.Segment, results []models.FrameResult) []models.SegmentSummary {
	summaries := make([]models.SegmentSummary, 0, len(segments))
	for _, seg := range segments {
		var observations []string
		for _, frame := range seg.Frames {
			r := resultFor(results, frame.Index)
			if r == nil || !r.Ok() {
				continue
			}
			obs := strings.TrimSpace(r.Field(models.FieldObservation))
			if obs == "" {
				continue
			}
			observations = append(observations,
				fmt.Sprintf("t=%.1fs: %s", frame.Timestamp, obs))
		}

		summary := models.SegmentSummary{
			Label:        seg.Label,
			Start:        seg.Start,
			End:          seg.End,
			Observations: observations,
		}
		if len(observations) == 0 {
			summary.Narrative = "insufficient data: no frames in this segment were analyzed successfully"
		} else {
			summary.Narrative = narrate(seg.Label, observations)
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// narrate condenses a segment's observations into a short narrative. The
// wording here is mechanical; the descriptive content itself comes from
// the inference capability.
func narrate(label models.SegmentLabel, observations []string) string {
	first := observations[0]
	if len(observations) == 1 {
		return fmt.Sprintf("Part %s: %s", label, first)
	}
	last := observations[len(observations)-1]
	return fmt.Sprintf("Part %s opens with %s and closes with %s (%d analyzed moments).",
		label, first, last, len(observations))
}

// rankRecommendations collects the suggestion phrases from every
// successful result, dedupes them by normalized text, ranks them by how
// often they were mentioned (ties broken by the first segment, then
// first frame, they appeared in), and truncates to the top seven. Fewer
// than seven candidates yields fewer recommendations; nothing is padded.
func rankRecommendations(segments []models.Segment, results []models.FrameResult) []models.Recommendation {
	type candidate struct {
		text       string
		count      int
		segments   []models.SegmentLabel
		segSeen    map[models.SegmentLabel]bool
		firstSeg   int
		firstFrame int
	}
	byKey := make(map[string]*candidate)
	var order []*candidate

	for segIdx, seg := range segments {
		for _, frame := range seg.Frames {
			r := resultFor(results, frame.Index)
			if r == nil || !r.Ok() {
				continue
			}
			for _, phrase := range strings.Split(r.Field(models.FieldSuggestion), ";") {
				phrase = strings.TrimSpace(phrase)
				key := Normalize(phrase)
				if key == "" {
					continue
				}
				c, ok := byKey[key]
				if !ok {
					c = &candidate{
						text:       phrase,
						segSeen:    make(map[models.SegmentLabel]bool),
						firstSeg:   segIdx,
						firstFrame: frame.Index,
					}
					byKey[key] = c
					order = append(order, c)
				}
				c.count++
				if !c.segSeen[seg.Label] {
					c.segSeen[seg.Label] = true
					c.segments = append(c.segments, seg.Label)
				}
			}
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		if order[i].firstSeg != order[j].firstSeg {
			return order[i].firstSeg < order[j].firstSeg
		}
		return order[i].firstFrame < order[j].firstFrame
	})

	if len(order) > models.MaxRecommendations {
		order = order[:models.MaxRecommendations]
	}

	recs := make([]models.Recommendation, len(order))
	for i, c := range order {
		recs[i] = models.Recommendation{
			Rank:     i + 1,
			Text:     c.text,
			Segments: c.segments,
		}
	}
	return recs
}

// coverage is the fraction of attempted frames that analyzed
// successfully, with a warning naming any segment that lost every frame
// and one when the run ended before attempting all frames.
func coverage(segments []models.Segment, results []models.FrameResult) (float64, []string) {
	attempted, ok := 0, 0
	for _, r := range results {
		if r.Attempted {
			attempted++
		}
		if r.Ok() {
			ok++
		}
	}

	var warnings []string
	cov := 0.0
	if attempted > 0 {
		cov = float64(ok) / float64(attempted)
	}

	if cov < 1.0 {
		warnings = append(warnings,
			fmt.Sprintf("analysis incomplete: %d of %d attempted frames succeeded", ok, attempted))
	}
	if attempted < len(results) {
		warnings = append(warnings,
			fmt.Sprintf("run ended early: %d of %d frames were never attempted", len(results)-attempted, len(results)))
	}
	for _, seg := range segments {
		lost := true
		for _, frame := range seg.Frames {
			if r := resultFor(results, frame.Index); r != nil && r.Ok() {
				lost = false
				break
			}
		}
		if lost {
			warnings = append(warnings,
				fmt.Sprintf("segment %s produced no successful analyses", seg.Label))
		}
	}
	return cov, warnings
}

func resultFor(results []models.FrameResult, index int) *models.FrameResult {
	if index < 0 || index >= len(results) {
		return nil
	}
	return &results[index]
}
