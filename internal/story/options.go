package story

import (
	"net/url"
	"strconv"
	"strings"
)

// AllowedSizes is the fixed allow-list of image dimensions accepted by the
// image model. Keep in sync with the Images API docs.
var AllowedSizes = map[string]struct{}{
	"1024x1024": {},
	"1024x1536": {},
	"1536x1024": {},
	"auto":      {},
}

// NormalizeSize returns size if it is on the allow-list, otherwise fallback.
func NormalizeSize(size, fallback string) string {
	if _, ok := AllowedSizes[strings.TrimSpace(size)]; ok {
		return strings.TrimSpace(size)
	}
	return fallback
}

// Options carries the validated per-request knobs for one illustration run.
// KidStyle is tri-state: nil means the caller left it unspecified and the
// reader-age rule or configured default decides.
type Options struct {
	MaxPages  int
	Size      string
	KidStyle  *bool
	ReaderAge *int
}

// Defaults holds the configured fallbacks applied while parsing options.
type Defaults struct {
	MaxPages int
	Size     string
	KidStyle bool
}

// ParseOptions validates raw form fields into an Options value, applying the
// clamping and defaulting rules at the boundary so the pipeline never sees an
// invalid knob. A non-numeric max_pages falls back to the default; a
// non-positive one clamps to 1. An unrecognized size falls back to the
// default size.
func ParseOptions(form url.Values, defaults Defaults) Options {
	opts := Options{MaxPages: defaults.MaxPages, Size: defaults.Size}

	if raw := strings.TrimSpace(form.Get("max_pages")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			if n <= 0 {
				opts.MaxPages = 1
			} else {
				opts.MaxPages = n
			}
		}
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 1
	}

	if raw := form.Get("size"); raw != "" {
		opts.Size = NormalizeSize(raw, defaults.Size)
	}

	if raw := form.Get("kid_style"); raw != "" {
		v := parseSwitch(raw)
		opts.KidStyle = &v
	}

	if raw := strings.TrimSpace(form.Get("reader_age")); raw != "" {
		if age, err := strconv.Atoi(raw); err == nil {
			opts.ReaderAge = &age
		}
	}

	return opts
}

// KidStyleEnabled resolves the tri-state flag: an explicit value wins, then
// readers aged 7-10 force it on, then the configured default applies.
func (o Options) KidStyleEnabled(defaultOn bool) bool {
	if o.KidStyle != nil {
		return *o.KidStyle
	}
	if o.ReaderAge != nil && *o.ReaderAge >= 7 && *o.ReaderAge <= 10 {
		return true
	}
	return defaultOn
}

func parseSwitch(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
