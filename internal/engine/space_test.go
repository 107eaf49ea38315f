package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/fprecon/internal/ir"
	"github.com/roach88/fprecon/internal/testutil"
)

func TestNewSpace_V2Fixture(t *testing.T) {
	sp := NewSpace(ir.DefaultProfile(), testutil.V2Components(t))

	assert.Equal(t, []string{"device_memory", "forced_colors", "hardware_concurrency", "pdf_viewer_enabled"}, sp.Missing)
	assert.Empty(t, sp.ErrorKeys)
	assert.Equal(t, 16, sp.UndefinedCombos)
	assert.Equal(t, 1, sp.ErrorCombos)
	assert.Equal(t, 3, sp.SubsetBase())
	assert.Equal(t, 32, sp.SubsetCount())
	assert.Equal(t, 35, sp.Total())
}

func TestNewSpace_ErrorCandidatesRestrictedToAbsent(t *testing.T) {
	sp := NewSpace(ir.DefaultProfile(), testutil.V2ComponentsWithoutFailures(t))

	assert.Equal(t, []string{"canvas", "device_memory", "forced_colors", "hardware_concurrency", "pdf_viewer_enabled", "video_card"}, sp.Missing)
	assert.Equal(t, []string{"canvas", "video_card"}, sp.ErrorKeys)
	assert.Equal(t, 64, sp.UndefinedCombos)
	assert.Equal(t, 4, sp.ErrorCombos)
	assert.Equal(t, 1+2+64*4*2, sp.Total())
}

func TestNewSpace_Caps(t *testing.T) {
	p := ir.DefaultProfile()
	p.MaxUndefinedBits = 3
	p.MaxErrorKeys = 1
	sp := NewSpace(p, ir.NewObject())

	assert.Len(t, sp.Missing, 27)
	assert.Equal(t, 8, sp.UndefinedCombos, "only the first 3 missing keys vary")
	assert.Equal(t, []string{"audio"}, sp.ErrorKeys)
	assert.Equal(t, 2, sp.ErrorCombos)

	p = ir.DefaultProfile()
	p.MaxUndefinedCombos = 5
	p.MaxErrorCombos = 3
	sp = NewSpace(p, ir.NewObject())
	assert.Equal(t, 5, sp.UndefinedCombos)
	assert.Equal(t, 3, sp.ErrorCombos)
}

func TestNewSpace_NothingMissing(t *testing.T) {
	p := ir.DefaultProfile()
	pairs := make([]ir.Pair, 0, len(p.KnownKeys))
	for _, k := range p.KnownKeys {
		pairs = append(pairs, ir.P(k, ir.Null{}))
	}
	sp := NewSpace(p, ir.NewObject(pairs...))

	assert.Empty(t, sp.Missing)
	assert.Equal(t, 1, sp.UndefinedCombos)
	assert.Equal(t, 1, sp.ErrorCombos)
	assert.Equal(t, 5, sp.Total())
}

func TestSpace_At(t *testing.T) {
	sp := NewSpace(ir.DefaultProfile(), testutil.V2ComponentsWithoutFailures(t))

	h, seed := sp.At(0)
	assert.True(t, h.IsEmpty())
	assert.Equal(t, uint32(0), seed)
	assert.Equal(t, ir.StrategyDirect, sp.Stage(0))

	h, seed = sp.At(2)
	assert.Equal(t, sp.Missing, h.UndefinedKeys)
	assert.Empty(t, h.ErrorKeys)
	assert.Equal(t, uint32(31), seed)
	assert.Equal(t, ir.StrategyAllMissing, sp.Stage(2))

	// mask 8 selects hardware_concurrency, emask 2 selects video_card.
	h, seed = sp.At(3 + (8*4+2)*2)
	assert.Equal(t, []string{"hardware_concurrency"}, h.UndefinedKeys)
	assert.Equal(t, []string{"video_card"}, h.ErrorKeys)
	assert.Equal(t, uint32(0), seed)
	assert.Equal(t, ir.StrategySubsetError, sp.Stage(3))

	h, seed = sp.At(sp.Total() - 1)
	assert.Equal(t, sp.Missing, h.UndefinedKeys)
	assert.Equal(t, sp.ErrorKeys, h.ErrorKeys)
	assert.Equal(t, uint32(31), seed)
}

func TestSpace_AtReturnsFreshSlices(t *testing.T) {
	sp := NewSpace(ir.DefaultProfile(), testutil.V2Components(t))

	h, _ := sp.At(1)
	h.UndefinedKeys[0] = "mutated"
	assert.Equal(t, "device_memory", sp.Missing[0])
}

func TestSelectBits(t *testing.T) {
	keys := []string{"a", "b", "c", "d"}

	assert.Empty(t, selectBits(nil, keys, 0))
	assert.Equal(t, []string{"a"}, selectBits(nil, keys, 1))
	assert.Equal(t, []string{"b", "d"}, selectBits(nil, keys, 0b1010))
	assert.Equal(t, keys, selectBits(nil, keys, 0b1111))
}
