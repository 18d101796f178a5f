package inference

import (
	"strconv"
	"strings"

	"github.com/clipsight/clipsight/internal/models"
)

// recognizedKeys is the closed set of fields the aggregator consumes.
var recognizedKeys = map[string]string{
	"genre":          models.FieldGenre,
	"confidence":     models.FieldConfidence,
	"observation":    models.FieldObservation,
	"observations":   models.FieldObservation,
	"suggestion":     models.FieldSuggestion,
	"recommendation": models.FieldSuggestion,
	"advice":         models.FieldSuggestion,
}

// ParseFields extracts the recognized key/value lines from a free-form
// model response. Lines that do not match "key: value" are folded into
// the observation field so unparseable text never crashes the run and is
// never lost.
func ParseFields(raw string) map[string]string {
	fields := make(map[string]string)
	var narrative []string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if ok {
			canonical, known := recognizedKeys[strings.ToLower(strings.TrimSpace(key))]
			value = strings.TrimSpace(value)
			if known && value != "" {
				if existing, dup := fields[canonical]; dup {
					fields[canonical] = existing + "; " + value
				} else {
					fields[canonical] = value
				}
				continue
			}
		}
		narrative = append(narrative, line)
	}

	if len(narrative) > 0 {
		tail := strings.Join(narrative, " ")
		if existing, ok := fields[models.FieldObservation]; ok {
			fields[models.FieldObservation] = existing + "; " + tail
		} else {
			fields[models.FieldObservation] = tail
		}
	}
	return fields
}

// ParseConfidence interprets a confidence value as a fraction in [0,1].
// It accepts "87", "87%", and "0.87"; anything unreadable maps to the
// default weight of 1.
func ParseConfidence(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 1
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 1
	}
	if v > 1 {
		v = v / 100
	}
	if v > 1 {
		v = 1
	}
	return v
}
