package models

import "time"

// Frame is a single still image sampled from the source video.
// Index is dense and starts at 0; Timestamp is seconds from the start.
type Frame struct {
	Index     int
	Timestamp float64
	Path      string
}

// SegmentLabel names one quarter of the video (A through D).
type SegmentLabel string

const (
	SegmentA SegmentLabel = "A"
	SegmentB SegmentLabel = "B"
	SegmentC SegmentLabel = "C"
	SegmentD SegmentLabel = "D"
)

// SegmentLabels lists the labels in playback order.
var SegmentLabels = []SegmentLabel{SegmentA, SegmentB, SegmentC, SegmentD}

// Segment is a contiguous run of frames belonging to one part of the video.
type Segment struct {
	Label  SegmentLabel
	Frames []Frame
	Start  float64
	End    float64
}

// ResultStatus reports whether a frame's inference call succeeded.
type ResultStatus string

const (
	StatusOk     ResultStatus = "ok"
	StatusFailed ResultStatus = "failed"
)

// FrameResult is the outcome of analyzing a single frame. It is created
// once by the inference client and never mutated afterwards.
type FrameResult struct {
	FrameIndex int
	RawOutput  string
	Fields     map[string]string
	Status     ResultStatus
	FailReason string

	// Attempted is false when the pipeline was cancelled before this
	// frame's call was ever dispatched.
	Attempted bool
}

// Ok reports whether the frame was analyzed successfully.
func (r FrameResult) Ok() bool { return r.Status == StatusOk }

// Field returns the parsed value for key, or "" when absent.
func (r FrameResult) Field(key string) string { return r.Fields[key] }

// Recognized keys in FrameResult.Fields.
const (
	FieldGenre       = "genre"
	FieldConfidence  = "confidence"
	FieldObservation = "observation"
	FieldSuggestion  = "suggestion"
)

// GenreUnknown is the sentinel returned when no frame produced a usable
// genre signal.
const GenreUnknown = "Unknown"

// GenreClassification is the per-video genre vote outcome.
type GenreClassification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// SegmentSummary condenses one segment's successful frame results.
type SegmentSummary struct {
	Label        SegmentLabel `json:"label"`
	Start        float64      `json:"start_seconds"`
	End          float64      `json:"end_seconds"`
	Narrative    string       `json:"narrative"`
	Observations []string     `json:"key_observations"`
}

// Recommendation is one ranked, deduplicated edit suggestion.
type Recommendation struct {
	Rank     int            `json:"rank"`
	Text     string         `json:"text"`
	Segments []SegmentLabel `json:"supporting_segments"`
}

// MaxRecommendations caps the ranked recommendation list.
const MaxRecommendations = 7

// AnalysisReport is the terminal artifact handed to the rendering layer.
type AnalysisReport struct {
	RunID           string              `json:"run_id"`
	CreatedAt       time.Time           `json:"created_at"`
	Genre           GenreClassification `json:"genre"`
	Segments        []SegmentSummary    `json:"segments"`
	Recommendations []Recommendation    `json:"recommendations"`
	Coverage        float64             `json:"coverage"`
	Warnings        []string            `json:"warnings"`
}
