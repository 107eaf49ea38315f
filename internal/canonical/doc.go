// Package canonical turns a component dictionary into the byte string a
// fingerprint library version hashes.
//
// Three mutually incompatible variants exist for the same logical data:
//   - V1: fixed field order, String() coercion, "~~~" separator, seed 31
//   - V1 without identity string: V1 minus user_agent, seed 31
//   - V2: UTF-16 sorted "key:JSON" pairs joined with "|", seed 0, with
//     sentinel markers for keys that were undefined or errored at capture
//
// Serializers are pure: the same dictionary and hypothesis always produce the
// same bytes. V2Plan caches per-key fragments so the reconciliation search can
// re-serialize one dictionary under many hypotheses cheaply.
package canonical
