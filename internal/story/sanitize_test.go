package story

import (
	"strings"
	"testing"
)

func TestSanitizeSceneSubstitutions(t *testing.T) {
	got := SanitizeScene("The wolf attacked the girl and chased her through the scary forest.")
	want := "The friendly character approached the girl and followed her through the mysterious forest."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSanitizeSceneCaseInsensitive(t *testing.T) {
	got := SanitizeScene("A Dangerous Wolf leaped out.")
	if strings.Contains(strings.ToLower(got), "wolf") || strings.Contains(strings.ToLower(got), "dangerous") {
		t.Fatalf("substitution missed a cased word: %q", got)
	}
}

func TestSanitizeSceneWholeWordsOnly(t *testing.T) {
	got := SanitizeScene("The attacker wolfed down his dinner.")
	if !strings.Contains(got, "attacker") || !strings.Contains(got, "wolfed") {
		t.Fatalf("partial words must not be rewritten: %q", got)
	}
}

func TestSanitizeSceneExtremeTerms(t *testing.T) {
	for _, scene := range []string{
		"There was blood everywhere.",
		"A pile of GORE.",
		"The knight found a corpse in the moat.",
	} {
		if got := SanitizeScene(scene); got != safeScene {
			t.Errorf("scene %q: got %q, want the safe placeholder", scene, got)
		}
	}
}

func TestSanitizeSceneCleanTextUnchanged(t *testing.T) {
	scene := "Two rabbits share carrot soup under a willow tree."
	if got := SanitizeScene(scene); got != scene {
		t.Fatalf("clean text modified: %q", got)
	}
}
