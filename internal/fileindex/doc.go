// Package fileindex walks a music directory once and builds inverted indexes
// for fast replacement-candidate retrieval: exact size to paths, filename
// token to paths, and ancestor-directory token to paths.
//
// The index is a point-in-time snapshot. It is immutable after Build and safe
// for concurrent searches; callers refresh by building a new Index and
// swapping the pointer. Search applies a tiered strategy (size, name tokens,
// artist directory tokens, then a linear fuzzy fallback) and returns
// candidates in deterministic first-discovery order.
package fileindex
