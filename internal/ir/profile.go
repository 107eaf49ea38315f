package ir

import (
	"fmt"
	"slices"
)

// Default search bounds. They are implementation-chosen, not derived from the
// fingerprint library, and do not guarantee completeness.
const (
	DefaultMaxUndefinedCombos = 1 << 16
	DefaultMaxUndefinedBits   = 20
	DefaultMaxErrorCombos     = 1 << 6
	DefaultMaxErrorKeys       = 6
)

// DefaultProfileName names the built-in profile.
const DefaultProfileName = "fpjs_v3"

// Profile configures the reconciliation search for one version of the
// client-side fingerprint library.
type Profile struct {
	Name string `json:"name"`

	// KnownKeys are the component keys the library emits. Their order fixes
	// which missing key each subset bit stands for.
	KnownKeys []string `json:"known_keys"`

	// ErrorCandidates are keys prone to failing at runtime in the browser.
	ErrorCandidates []string `json:"error_candidates"`

	// Seeds are tried for every hypothesis, in order.
	Seeds []uint32 `json:"seeds"`

	MaxUndefinedCombos int `json:"max_undefined_combos"`
	MaxUndefinedBits   int `json:"max_undefined_bits"`
	MaxErrorCombos     int `json:"max_error_combos"`
	MaxErrorKeys       int `json:"max_error_keys"`

	// MaxEvaluations caps hash evaluations per record. Zero means the
	// combination caps alone bound the search.
	MaxEvaluations int `json:"max_evaluations,omitempty"`
}

// DefaultProfile returns the profile for the v3 fingerprint library.
func DefaultProfile() Profile {
	return Profile{
		Name: DefaultProfileName,
		KnownKeys: []string{
			"audio",
			"canvas",
			"color_gamut",
			"contrast",
			"device_memory",
			"dom_blockers",
			"font_preferences",
			"fonts",
			"forced_colors",
			"hardware_concurrency",
			"hdr",
			"indexed_db",
			"inverted_colors",
			"languages",
			"math",
			"monochrome",
			"open_database",
			"pdf_viewer_enabled",
			"platform",
			"plugins",
			"screen_frame",
			"screen_resolution",
			"timezone",
			"touch_support",
			"vendor_flavors",
			"video_card",
			"reduced_motion",
		},
		ErrorCandidates:    []string{"audio", "canvas", "dom_blockers", "video_card"},
		Seeds:              []uint32{0, 31},
		MaxUndefinedCombos: DefaultMaxUndefinedCombos,
		MaxUndefinedBits:   DefaultMaxUndefinedBits,
		MaxErrorCombos:     DefaultMaxErrorCombos,
		MaxErrorKeys:       DefaultMaxErrorKeys,
	}
}

// Validate checks the profile bounds.
func (p Profile) Validate() error {
	if len(p.Seeds) == 0 {
		return fmt.Errorf("profile %q: at least one seed is required", p.Name)
	}
	if p.MaxUndefinedCombos < 1 {
		return fmt.Errorf("profile %q: max_undefined_combos must be >= 1, got %d", p.Name, p.MaxUndefinedCombos)
	}
	if p.MaxUndefinedBits < 0 || p.MaxUndefinedBits > 30 {
		return fmt.Errorf("profile %q: max_undefined_bits must be in [0, 30], got %d", p.Name, p.MaxUndefinedBits)
	}
	if p.MaxErrorCombos < 1 {
		return fmt.Errorf("profile %q: max_error_combos must be >= 1, got %d", p.Name, p.MaxErrorCombos)
	}
	if p.MaxErrorKeys < 0 || p.MaxErrorKeys > 30 {
		return fmt.Errorf("profile %q: max_error_keys must be in [0, 30], got %d", p.Name, p.MaxErrorKeys)
	}
	if p.MaxEvaluations < 0 {
		return fmt.Errorf("profile %q: max_evaluations must be >= 0, got %d", p.Name, p.MaxEvaluations)
	}
	for _, k := range p.KnownKeys {
		if k == "" {
			return fmt.Errorf("profile %q: empty known key", p.Name)
		}
	}
	if dup := firstDuplicate(p.KnownKeys); dup != "" {
		return fmt.Errorf("profile %q: duplicate known key %q", p.Name, dup)
	}
	if dup := firstDuplicate(p.ErrorCandidates); dup != "" {
		return fmt.Errorf("profile %q: duplicate error candidate %q", p.Name, dup)
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate a shared profile.
func (p Profile) Clone() Profile {
	p.KnownKeys = slices.Clone(p.KnownKeys)
	p.ErrorCandidates = slices.Clone(p.ErrorCandidates)
	p.Seeds = slices.Clone(p.Seeds)
	return p
}

func firstDuplicate(keys []string) string {
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			return k
		}
		seen[k] = struct{}{}
	}
	return ""
}
