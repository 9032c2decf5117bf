package story

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"server/internal/domain"
)

// KidStylePreamble is the fixed block of style instructions that biases the
// image model toward child-appropriate picture-book aesthetics.
const KidStylePreamble = "Children's picture-book illustration. Simple, soft shapes and gentle lighting.\n" +
	"No text in the image. No brand logos. No weapons or scary content.\n" +
	"Palette: warm, cozy colors (soft yellows, light greens, pastel blues).\n" +
	"Backgrounds: clean, uncluttered; nature or simple indoor settings.\n" +
	"Facial features: minimal, friendly, dot eyes; clear expressions.\n" +
	"Framing: keep proportions consistent across images; clear focal subject.\n" +
	"Style reference: modern picture-book, high legibility for children."

const sceneTextLimit = 600

// StylePreamble returns the picture-book preamble, optionally tuned to the
// reader's age.
func StylePreamble(readerAge *int) string {
	parts := []string{KidStylePreamble}
	if readerAge != nil {
		switch {
		case *readerAge <= 7:
			parts = append(parts, "Shapes and compositions should be extra simple; avoid clutter.")
		case *readerAge <= 10:
			parts = append(parts, "Maintain simple shapes; allow slightly richer scenes for ages 7-12.")
		}
	}
	return strings.Join(parts, "\n") + "\n"
}

// ContextPreamble appends story-wide character and setting context to the
// style preamble so every scene prompt in a job shares the same framing. It
// is built once per job and reused for each scene.
func ContextPreamble(base string, plan domain.StorySummary) string {
	var bits []string
	if plan.Setting != "" {
		bits = append(bits, "Overall setting: "+plan.Setting)
	}
	if len(plan.Characters) > 0 {
		bits = append(bits, "Main characters:")
		for _, ch := range plan.Characters {
			bits = append(bits, "- "+ch)
		}
	}
	if len(bits) == 0 {
		return base
	}
	return base + "\n\nStory context:\n" + strings.Join(bits, "\n") + "\n"
}

// ScenePrompt builds the image prompt for one scene. index is the zero-based
// position of the scene in the plan, used only for the page label.
func ScenePrompt(sceneText string, index int, preamble string) string {
	scene := SanitizeScene(TrimText(sceneText, sceneTextLimit))
	if preamble != "" {
		return fmt.Sprintf(
			"%s\nScene (page %d): %s\n\n"+
				"Instructions:\n"+
				"- Avoid any text in the image (no captions).\n"+
				"- Compose for square or 4:3 crops; keep the main action centered.\n"+
				"- Simple background that supports the scene; clear foreground subject(s).\n",
			preamble, index+1, scene,
		)
	}
	return fmt.Sprintf(
		"Illustrate the scene described below.\n\nPage %d summary: %s\n\nNo text in the image.",
		index+1, scene,
	)
}

// TrimText collapses whitespace runs and truncates to limit runes, appending
// an ellipsis when text was cut.
func TrimText(text string, limit int) string {
	t := strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(t) <= limit {
		return t
	}
	runes := []rune(t)
	return string(runes[:limit]) + "…"
}
