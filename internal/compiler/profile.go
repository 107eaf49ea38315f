package compiler

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/fprecon/internal/ir"
)

//go:embed schema.cue
var profileSchema string

// profileFields mirrors #Profile for decoding.
type profileFields struct {
	Name               string   `json:"name"`
	KnownKeys          []string `json:"known_keys"`
	ErrorCandidates    []string `json:"error_candidates"`
	Seeds              []int64  `json:"seeds"`
	MaxUndefinedCombos int      `json:"max_undefined_combos"`
	MaxUndefinedBits   int      `json:"max_undefined_bits"`
	MaxErrorCombos     int      `json:"max_error_combos"`
	MaxErrorKeys       int      `json:"max_error_keys"`
	MaxEvaluations     int      `json:"max_evaluations"`
}

// CompileProfile parses a CUE value into a search profile.
//
// The value is unified with the #Profile schema, which closes the struct
// and fills in the default seeds and caps. The profile name is the value's
// label unless the struct sets name explicitly:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`profile: fpjs_v3: { known_keys: [...] }`)
//	p, err := CompileProfile(v.LookupPath(cue.ParsePath("profile.fpjs_v3")))
func CompileProfile(v cue.Value) (ir.Profile, error) {
	if err := v.Err(); err != nil {
		return ir.Profile{}, formatCUEError(err)
	}
	if v.IncompleteKind() != cue.StructKind {
		return ir.Profile{}, &CompileError{
			Field:   "profile",
			Message: fmt.Sprintf("profile must be a struct, got %s", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}

	schema := v.Context().CompileString(profileSchema).LookupPath(cue.ParsePath("#Profile"))
	if err := schema.Err(); err != nil {
		return ir.Profile{}, fmt.Errorf("profile schema: %w", err)
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return ir.Profile{}, formatCUEError(err)
	}

	var raw profileFields
	if err := unified.Decode(&raw); err != nil {
		return ir.Profile{}, formatCUEError(err)
	}

	p := ir.Profile{
		Name:               raw.Name,
		KnownKeys:          raw.KnownKeys,
		ErrorCandidates:    raw.ErrorCandidates,
		Seeds:              make([]uint32, len(raw.Seeds)),
		MaxUndefinedCombos: raw.MaxUndefinedCombos,
		MaxUndefinedBits:   raw.MaxUndefinedBits,
		MaxErrorCombos:     raw.MaxErrorCombos,
		MaxErrorKeys:       raw.MaxErrorKeys,
		MaxEvaluations:     raw.MaxEvaluations,
	}
	// The schema bounds seeds to uint32.
	for i, s := range raw.Seeds {
		p.Seeds[i] = uint32(s)
	}
	if p.ErrorCandidates == nil {
		p.ErrorCandidates = []string{}
	}
	if p.Name == "" {
		p.Name = labelOf(v)
	}
	if p.Name == "" {
		return ir.Profile{}, &CompileError{
			Field:   "name",
			Code:    ErrProfileNameEmpty,
			Message: "profile has no label and no name field",
			Pos:     v.Pos(),
		}
	}

	if errs := ValidateProfile(p); len(errs) > 0 {
		return ir.Profile{}, &CompileError{
			Field:   errs[0].Field,
			Code:    errs[0].Code,
			Message: errs[0].Message,
			Pos:     v.Pos(),
		}
	}
	return p, nil
}

// CompileProfiles compiles every field of a `profile: <name>: {...}` struct,
// in declaration order.
func CompileProfiles(v cue.Value) ([]ir.Profile, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []ir.Profile
	for iter.Next() {
		p, err := CompileProfile(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", iter.Selector(), err)
		}
		out = append(out, p)
	}
	return out, nil
}

func labelOf(v cue.Value) string {
	sels := v.Path().Selectors()
	if len(sels) == 0 {
		return ""
	}
	last := sels[len(sels)-1]
	if last.LabelType() != cue.StringLabel {
		return ""
	}
	return last.Unquoted()
}
