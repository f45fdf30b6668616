package evaluation

import "strings"

// MaxPromptChars caps how much document text is sent to a provider.
const MaxPromptChars = 8000

const truncatedMarker = "...[truncated]"

const reviewInstructions = "You are an IT professor evaluating a Software Requirements Specification (SRS) document based on standard IEEE 830 guidelines. " +
	"Please read the provided document content carefully. " +
	"Summarize its specific strengths and weaknesses briefly and clearly. " +
	"If the document appears to be empty or unrelated to an SRS, state that clearly.\n\n" +
	"DOCUMENT CONTENT:\n"

// BuildPrompt wraps document text in the review instructions, truncating
// it to MaxPromptChars characters.
func BuildPrompt(content string) string {
	var b strings.Builder
	b.WriteString(reviewInstructions)
	if runes := []rune(content); len(runes) > MaxPromptChars {
		b.WriteString(string(runes[:MaxPromptChars]))
		b.WriteString(truncatedMarker)
	} else {
		b.WriteString(content)
	}
	return b.String()
}
