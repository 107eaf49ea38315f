package engine

import (
	"github.com/roach88/fprecon/internal/ir"
)

// Space is the bounded hypothesis space for one dictionary.
//
// Evaluations are numbered by ordinal in the order a sequential search
// visits them:
//
//	0                      direct hash, no sentinel keys
//	1 .. S                 every missing key undefined, one ordinal per seed
//	1+S .. 1+S+U*E*S-1     subsets: mask (undefined) outer, emask (error)
//	                       middle, seed inner
//
// where S is the seed count, U the undefined-subset count and E the
// error-subset count. The first matching ordinal wins, so tie-breaking is a
// plain integer comparison no matter how the range is partitioned.
type Space struct {
	// Missing are known keys absent from the dictionary, in profile order.
	// Bit i of an undefined mask selects Missing[i].
	Missing []string

	// ErrorKeys are error candidates absent from the dictionary, in profile
	// order. Bit j of an error mask selects ErrorKeys[j].
	ErrorKeys []string

	Seeds []uint32

	UndefinedCombos int // U
	ErrorCombos     int // E
}

// NewSpace derives the hypothesis space for dict under profile.
func NewSpace(profile ir.Profile, dict ir.Object) Space {
	sp := Space{Seeds: profile.Seeds}

	for _, k := range profile.KnownKeys {
		if !dict.Has(k) {
			sp.Missing = append(sp.Missing, k)
		}
	}
	for _, k := range profile.ErrorCandidates {
		if !dict.Has(k) {
			sp.ErrorKeys = append(sp.ErrorKeys, k)
		}
	}

	undefBits := min(len(sp.Missing), profile.MaxUndefinedBits)
	sp.UndefinedCombos = min(1<<undefBits, profile.MaxUndefinedCombos)

	errBits := min(len(sp.ErrorKeys), profile.MaxErrorKeys)
	sp.ErrorKeys = sp.ErrorKeys[:errBits]
	sp.ErrorCombos = min(1<<errBits, profile.MaxErrorCombos)

	return sp
}

// SubsetBase is the ordinal of the first subset evaluation.
func (sp Space) SubsetBase() int {
	return 1 + len(sp.Seeds)
}

// SubsetCount is the number of subset evaluations, U*E*S.
func (sp Space) SubsetCount() int {
	return sp.UndefinedCombos * sp.ErrorCombos * len(sp.Seeds)
}

// Total is the number of evaluations in the whole space.
func (sp Space) Total() int {
	return sp.SubsetBase() + sp.SubsetCount()
}

// PerMask is the number of evaluations sharing one undefined mask, E*S.
func (sp Space) PerMask() int {
	return sp.ErrorCombos * len(sp.Seeds)
}

// Stage reports which strategy an ordinal belongs to.
func (sp Space) Stage(ordinal int) ir.Strategy {
	switch {
	case ordinal == 0:
		return ir.StrategyDirect
	case ordinal < sp.SubsetBase():
		return ir.StrategyAllMissing
	default:
		return ir.StrategySubsetError
	}
}

// At returns the hypothesis and seed evaluated at ordinal.
// The returned slices are freshly allocated.
func (sp Space) At(ordinal int) (ir.Hypothesis, uint32) {
	switch sp.Stage(ordinal) {
	case ir.StrategyDirect:
		return ir.Hypothesis{}, ir.VariantV2.Seed()
	case ir.StrategyAllMissing:
		return ir.Hypothesis{UndefinedKeys: append([]string(nil), sp.Missing...)}, sp.Seeds[ordinal-1]
	}

	rel := ordinal - sp.SubsetBase()
	sIdx := rel % len(sp.Seeds)
	pair := rel / len(sp.Seeds)
	mask, emask := pair/sp.ErrorCombos, pair%sp.ErrorCombos

	return ir.Hypothesis{
		UndefinedKeys: selectBits(nil, sp.Missing, mask),
		ErrorKeys:     selectBits(nil, sp.ErrorKeys, emask),
	}, sp.Seeds[sIdx]
}

// selectBits appends keys[i] for every set bit i of mask, lowest bit first.
func selectBits(dst, keys []string, mask int) []string {
	for i := 0; i < len(keys) && mask>>i != 0; i++ {
		if mask&(1<<i) != 0 {
			dst = append(dst, keys[i])
		}
	}
	return dst
}
