// Package harness runs conformance scenarios through the reconciliation
// engine.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	profile: ../profiles/tiny.cue   # optional, relative to the scenario file
//	profile_name: tiny              # optional when the file declares one profile
//	records:
//	  - version: fingerprint-v2
//	    components: { fonts: ["Arial"], timezone: "Europe/Berlin" }
//	    fingerprint: bcfd54ab1fe3a8e041c9b8e141b38a00
//	    expect:
//	      match: true
//	      strategy: subset_error
//	      seed: 31
//	      tried: 41
//	      undefined_keys: [hdr]
//	      error_keys: [canvas]
//	  - version: fingerprint-v2
//	    components: '{"audio":'     # a string is taken as raw JSON
//	    fingerprint: ffffffffffffffffffffffffffffffff
//	    expect:
//	      skipped: MALFORMED_COMPONENTS
//	assertions:
//	  - type: matched_count
//	    count: 1
//
// Components written as a YAML mapping are converted to JSON in document
// order. A string is used verbatim, which is how malformed input and long
// captured dictionaries are expressed.
//
// Expect clauses are subset matches: only the fields given are checked.
//
// # Assertion Types
//
//   - matched_count: number of results with match=true
//   - unmatched_count: number of results with match=false
//   - skipped_count: number of records rejected before reconciliation
//   - document: the v1, v1SansUA or v2 hash of the result document
//
// # Deterministic Testing
//
// Every scenario runs with a fixed run ID and a fresh logical clock, so the
// result document is identical across runs and can be compared against a
// golden snapshot with RunWithGolden.
package harness
