package inference

import "fmt"

// adviceVocabulary steers the per-frame suggestion toward the editorial
// categories the final report ranks: cut editing, caption strategy,
// music and sound effects, visual effects, thumbnail design, structure,
// trend fit.
const adviceVocabulary = "cut editing, captions, music and sound effects, " +
	"visual effects, thumbnail design, structure, trend fit"

// FramePrompt builds the per-frame instruction. The labeled-line format
// is what the response parser recognizes; anything else degrades to a
// narrative-only observation.
func FramePrompt(frameIndex int, timestamp float64) string {
	return fmt.Sprintf(
		"This is frame %d of a short-form video, sampled at %.1f seconds.\n"+
			"Reply with exactly four lines in this format:\n"+
			"genre: <one or two words, e.g. vlog, gaming, business explainer, tutorial, comedy>\n"+
			"confidence: <0-100>\n"+
			"observation: <one sentence: what is happening, including any on-screen text>\n"+
			"suggestion: <one concrete editing improvement for this moment, covering one of: %s>",
		frameIndex, timestamp, adviceVocabulary)
}
