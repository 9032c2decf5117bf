package domain

// Scene is one planned illustration unit derived from the story text.
type Scene struct {
	ID       int    `json:"id"`
	PageHint int    `json:"page_hint"`
	Summary  string `json:"summary"`
}

// StorySummary is the scene plan produced by the summarizer for a whole
// document: a character list, an overall setting, and an ordered, capped list
// of scenes. Any of the fields may be empty when the model response was
// unusable; callers are expected to fall back to a page-per-scene plan.
type StorySummary struct {
	Characters []string `json:"characters"`
	Setting    string   `json:"setting"`
	Scenes     []Scene  `json:"scenes"`
}

// ImageRecord is one successfully generated illustration. Page is the
// sequential output number assigned in success order, not the scene's
// original page hint.
type ImageRecord struct {
	URL        string `json:"url"`
	Page       int    `json:"page"`
	Prompt     string `json:"prompt"`
	StorageKey string `json:"storage_key,omitempty"`
}

// ResultSummary is the story-wide context echoed back with the result.
type ResultSummary struct {
	Characters []string `json:"characters"`
	Setting    string   `json:"setting"`
}

// StoryResult is the final payload of a completed illustration job.
type StoryResult struct {
	Message string        `json:"message"`
	Count   int           `json:"count"`
	Images  []ImageRecord `json:"images"`
	Summary ResultSummary `json:"summary"`
}
