package plan

import (
	"regexp"
	"strings"
)

// MaxPlanBytes caps input size before the engine sees it. The engine's
// runtime is bounded by text length, so truncation is the caller-side
// safety valve for pathological pastes.
const MaxPlanBytes = 200000

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// Sanitize strips HTML tags, normalizes line endings, and caps the length
// of raw plan text. The analysis engine assumes its input has already been
// through this.
func Sanitize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = htmlTagRe.ReplaceAllString(text, "")
	if len(text) > MaxPlanBytes {
		text = text[:MaxPlanBytes]
	}
	return strings.TrimSpace(text)
}
