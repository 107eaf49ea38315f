// Package ir provides the value model shared by every fprecon package.
//
// This package holds component values, records, hypotheses, results and
// search profiles, plus the two pure functions everything else is built on:
// the ECMAScript-exact value encoders (canonical.go) and the 128-bit hash
// primitive (hash.go). All other internal packages import ir; ir imports
// nothing internal.
//
// Key design constraints:
//   - Values are immutable once constructed; Object has no exported mutators
//   - Object member order follows ECMAScript enumeration order, never Go map order
//   - Top-level key ordering uses UTF-16 code units, matching Array.prototype.sort
//   - Hash arithmetic is plain uint64 with wraparound, never wider
package ir
