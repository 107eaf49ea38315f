package ir

import "slices"

// Variant identifies one of the three serialization schemes a fingerprint
// library version uses. The string values are the wire tags.
type Variant string

const (
	// VariantV1 joins a fixed field list, identity string first, with "~~~".
	VariantV1 Variant = "fingerprint-v1"

	// VariantV1NoUA is VariantV1 without the identity string.
	VariantV1NoUA Variant = "fingerprint-v1-sans-ua"

	// VariantV2 emits sorted key:JSON pairs joined with "|".
	VariantV2 Variant = "fingerprint-v2"
)

// ValidVariants lists the supported variants in declaration order.
var ValidVariants = []Variant{VariantV1, VariantV1NoUA, VariantV2}

// ParseVariant maps a wire tag to a Variant.
func ParseVariant(tag string) (Variant, bool) {
	v := Variant(tag)
	if slices.Contains(ValidVariants, v) {
		return v, true
	}
	return "", false
}

// Seed returns the hash seed the variant is specified at.
func (v Variant) Seed() uint32 {
	if v == VariantV2 {
		return 0
	}
	return 31
}

// Record is one fingerprint to reconcile.
// Records are produced by an external sampler and never mutated.
type Record struct {
	Index      int
	Variant    Variant
	Components Object
	Target     string // 32-char lowercase hex
}

// RawRecord is a record as it arrives on the wire, before its components are
// decoded. Version may name an unsupported variant; Components may be malformed.
type RawRecord struct {
	Index       int
	Version     string
	Components  []byte
	Fingerprint string
}

// Hypothesis is one candidate explanation for fields missing at capture time.
// UndefinedKeys are emitted as "key:undefined", ErrorKeys as "key:error".
// The two sets are disjoint; an error marking wins over an undefined one.
type Hypothesis struct {
	UndefinedKeys []string `json:"undefinedKeys"`
	ErrorKeys     []string `json:"errorKeys"`
}

// NewHypothesis builds a hypothesis and drops undefined keys that are also
// error keys, keeping the sets disjoint.
func NewHypothesis(undefinedKeys, errorKeys []string) Hypothesis {
	h := Hypothesis{
		UndefinedKeys: make([]string, 0, len(undefinedKeys)),
		ErrorKeys:     slices.Clone(errorKeys),
	}
	if h.ErrorKeys == nil {
		h.ErrorKeys = []string{}
	}
	for _, k := range undefinedKeys {
		if !slices.Contains(errorKeys, k) {
			h.UndefinedKeys = append(h.UndefinedKeys, k)
		}
	}
	return h
}

// IsEmpty reports whether the hypothesis adds no sentinel markers.
func (h Hypothesis) IsEmpty() bool {
	return len(h.UndefinedKeys) == 0 && len(h.ErrorKeys) == 0
}

// Strategy names the search stage that produced a result.
type Strategy string

const (
	StrategyDirect      Strategy = "direct"       // matched with no sentinel keys
	StrategyAllMissing  Strategy = "all_missing"  // every missing known key as undefined
	StrategySubsetError Strategy = "subset_error" // subset of missing keys plus error keys
	StrategyExhausted   Strategy = "exhausted"    // bounded space searched, no match
	StrategyBudget      Strategy = "budget"       // evaluation budget ran out first
)

// Result is the outcome of reconciling one record.
// The first five fields are the minimal wire shape.
type Result struct {
	Version    Variant     `json:"version"`
	Expected   string      `json:"expected"`
	Calculated string      `json:"calculated"`
	Match      bool        `json:"match"`
	Index      int         `json:"index"`
	Seed       uint32      `json:"seed"`
	Strategy   Strategy    `json:"strategy,omitempty"`
	Tried      int         `json:"tried,omitempty"`
	Hypothesis *Hypothesis `json:"hypothesis,omitempty"`
}
