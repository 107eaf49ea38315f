package canonical

import (
	"fmt"

	"github.com/roach88/fprecon/internal/ir"
)

// Serialize renders dict in the given variant. V1 variants have no sentinel
// markers, so h must be empty for them.
func Serialize(variant ir.Variant, dict ir.Object, h ir.Hypothesis) (string, error) {
	switch variant {
	case ir.VariantV1, ir.VariantV1NoUA:
		if !h.IsEmpty() {
			return "", fmt.Errorf("variant %s has no sentinel markers", variant)
		}
		if variant == ir.VariantV1 {
			return V1(dict), nil
		}
		return V1NoUA(dict), nil
	case ir.VariantV2:
		return V2(dict, h), nil
	default:
		return "", fmt.Errorf("unsupported variant %q", variant)
	}
}

// Hash serializes dict in variant and hashes it at the variant's seed.
func Hash(variant ir.Variant, dict ir.Object, h ir.Hypothesis) (string, error) {
	s, err := Serialize(variant, dict, h)
	if err != nil {
		return "", err
	}
	return ir.HashString(s, variant.Seed()), nil
}
