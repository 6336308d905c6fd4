// Package match scores filesystem candidates against catalog entries and
// decides whether a candidate is an acceptable replacement.
//
// Scoring sums five independent weighted components (name similarity, size
// closeness, extension compatibility, and artist/album path hints) into a
// 0-100 confidence with a per-component breakdown for explainability. The
// weights are empirically tuned constants carried as configuration
// (DefaultWeights), not derived values.
//
// The decision policy is threshold-only: operating modes pick a default
// auto-accept threshold, interactive runs always prompt through the Chooser
// contract, and ties between equal scores resolve in search-discovery order.
package match
