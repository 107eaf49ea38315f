// Package compiler turns CUE-authored search profiles into ir.Profile values.
//
// Profiles are declared under a top-level profile struct:
//
//	profile: fpjs_v3: {
//		known_keys: ["audio", "canvas", ...]
//		error_candidates: ["audio", "canvas"]
//		seeds: [0, 31]
//	}
//
// Each profile is unified with the embedded #Profile schema, which rejects
// unknown fields and supplies the default seeds and combination caps, then
// checked by ValidateProfile.
package compiler
