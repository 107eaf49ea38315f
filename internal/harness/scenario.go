package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/fprecon/internal/engine"
	"github.com/roach88/fprecon/internal/ir"
)

// Scenario defines a conformance test scenario: a batch of records, the
// profile to reconcile them with, and the expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Profile is a CUE file or directory declaring search profiles.
	// Relative paths are resolved against the scenario file's directory.
	// Empty selects the built-in default profile.
	Profile string `yaml:"profile,omitempty"`

	// ProfileName selects one profile from Profile.
	ProfileName string `yaml:"profile_name,omitempty"`

	// RunID is a fixed run ID for deterministic tests.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// Records is the batch, in input order. A record's index is its position.
	Records []RecordStep `yaml:"records"`

	// Assertions validate the batch as a whole.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// RecordStep is one input record with its optional expectation.
type RecordStep struct {
	Version string `yaml:"version"`

	// Components is a YAML mapping converted to JSON, or a string holding
	// raw JSON.
	Components yaml.Node `yaml:"components"`

	Fingerprint string `yaml:"fingerprint"`

	// Expect specifies the expected result. If nil, nothing is checked.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome for one record.
// This is a subset match - only specified fields are validated.
type ExpectClause struct {
	// Skipped is the expected record error code. When set, no other field
	// may be set.
	Skipped string `yaml:"skipped,omitempty"`

	Match         *bool     `yaml:"match,omitempty"`
	Calculated    string    `yaml:"calculated,omitempty"`
	Seed          *uint32   `yaml:"seed,omitempty"`
	Strategy      string    `yaml:"strategy,omitempty"`
	Tried         *int      `yaml:"tried,omitempty"`
	UndefinedKeys *[]string `yaml:"undefined_keys,omitempty"`
	ErrorKeys     *[]string `yaml:"error_keys,omitempty"`
}

func (e *ExpectClause) hasResultFields() bool {
	return e.Match != nil || e.Calculated != "" || e.Seed != nil || e.Strategy != "" ||
		e.Tried != nil || e.UndefinedKeys != nil || e.ErrorKeys != nil
}

// Assertion validates the batch as a whole.
type Assertion struct {
	// Type specifies the assertion type:
	// - "matched_count": Count results matched
	// - "unmatched_count": Count results did not match
	// - "skipped_count": Count records were skipped
	// - "document": the Field hash of the result document equals Value
	Type string `yaml:"type"`

	// Count is the expected number (used by the *_count types).
	Count int `yaml:"count,omitempty"`

	// Field is v1, v1SansUA or v2 (used by document).
	Field string `yaml:"field,omitempty"`

	// Value is the expected hash; omitted or null expects null (used by document).
	Value *string `yaml:"value,omitempty"`
}

// Assertion type constants.
const (
	AssertMatchedCount   = "matched_count"
	AssertUnmatchedCount = "unmatched_count"
	AssertSkippedCount   = "skipped_count"
	AssertDocument       = "document"
)

var documentFields = []string{"v1", "v1SansUA", "v2"}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the profile path relative to the scenario BEFORE validation
	if scenario.Profile != "" && !filepath.IsAbs(scenario.Profile) {
		scenario.Profile = filepath.Join(filepath.Dir(path), scenario.Profile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Records) == 0 {
		return fmt.Errorf("records list is required and must be non-empty")
	}

	if s.Profile != "" {
		if _, err := os.Stat(s.Profile); os.IsNotExist(err) {
			return fmt.Errorf("profile not found: %s", s.Profile)
		}
	}

	for i, rec := range s.Records {
		if rec.Version == "" {
			return fmt.Errorf("records[%d]: version is required", i)
		}
		if rec.Components.Kind == 0 {
			return fmt.Errorf("records[%d]: components is required", i)
		}
		if rec.Fingerprint == "" {
			return fmt.Errorf("records[%d]: fingerprint is required", i)
		}
		if rec.Expect == nil {
			continue
		}
		if err := validateExpect(i, rec.Expect); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateExpect(index int, e *ExpectClause) error {
	if e.Skipped != "" {
		code := engine.RecordErrorCode(e.Skipped)
		if code != engine.ErrCodeMalformedComponents && code != engine.ErrCodeUnsupportedVariant {
			return fmt.Errorf("records[%d].expect: unknown skip code %q", index, e.Skipped)
		}
		if e.hasResultFields() {
			return fmt.Errorf("records[%d].expect: skipped cannot be combined with result fields", index)
		}
		return nil
	}
	switch ir.Strategy(e.Strategy) {
	case "", ir.StrategyDirect, ir.StrategyAllMissing, ir.StrategySubsetError, ir.StrategyExhausted, ir.StrategyBudget:
	default:
		return fmt.Errorf("records[%d].expect: unknown strategy %q", index, e.Strategy)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertMatchedCount, AssertUnmatchedCount, AssertSkippedCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertDocument:
		if !slices.Contains(documentFields, a.Field) {
			return fmt.Errorf("assertions[%d]: field must be one of %v for document", index, documentFields)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
