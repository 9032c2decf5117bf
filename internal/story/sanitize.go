package story

import (
	"regexp"
	"strings"
)

// safeScene replaces an entire scene when it contains terms too extreme for
// word-level substitution to fix.
const safeScene = "A calm, friendly, non-violent fairy-tale illustration suitable for children."

var extremeTerms = []string{"blood", "gore", "corpse", "nsfw"}

// replacements soften antagonist and violence-adjacent wording so the image
// model's content filter does not reject the prompt. Whole words only,
// case-insensitive. Kept deliberately narrow: classic fairy tales trip broad
// filters ("wolf", "chase") without being unsafe.
var replacements = []struct {
	pattern *regexp.Regexp
	with    string
}{
	{regexp.MustCompile(`(?i)\bwolf\b`), "friendly character"},
	{regexp.MustCompile(`(?i)\battacked\b`), "approached"},
	{regexp.MustCompile(`(?i)\battacking\b`), "approaching"},
	{regexp.MustCompile(`(?i)\battack\b`), "approach"},
	{regexp.MustCompile(`(?i)\bchased\b`), "followed"},
	{regexp.MustCompile(`(?i)\bchase\b`), "follow"},
	{regexp.MustCompile(`(?i)\bleaped out\b`), "appeared"},
	{regexp.MustCompile(`(?i)\bleap\b`), "arrive"},
	{regexp.MustCompile(`(?i)\bscary\b`), "mysterious"},
	{regexp.MustCompile(`(?i)\bfrightening\b`), "surprising"},
	{regexp.MustCompile(`(?i)\bdangerous\b`), "tricky"},
	{regexp.MustCompile(`(?i)\bdanger\b`), "challenge"},
}

// SanitizeScene rewrites a scene description for content safety before it is
// embedded in an image prompt. Scenes containing extreme terms are replaced
// wholesale with a generic safe sentence; everything else gets the word-level
// substitution table.
func SanitizeScene(text string) string {
	lowered := strings.ToLower(text)
	for _, term := range extremeTerms {
		if strings.Contains(lowered, term) {
			return safeScene
		}
	}
	out := text
	for _, r := range replacements {
		out = r.pattern.ReplaceAllString(out, r.with)
	}
	return out
}
