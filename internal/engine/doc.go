// Package engine reconciles fingerprint records against target hashes.
//
// A record's dictionary is serialized with the variant it declares and
// hashed. For V2, a mismatch starts a bounded search over sentinel
// hypotheses: which missing keys the capturing library wrote as
// "key:undefined" and which failing collectors it wrote as "key:error".
//
// The search space is enumerated by ordinal (see Space). The reported
// match is always the lowest matching ordinal, whether the space is
// scanned on one goroutine or partitioned across many, so results and
// their "tried" counts are identical across runs and machines.
//
// Failures are scoped to one record. A batch never aborts because a record
// is malformed or declares an unknown variant; such records are skipped
// and reported as RecordError values. An exhausted search is a normal
// outcome (match=false), not an error.
package engine
