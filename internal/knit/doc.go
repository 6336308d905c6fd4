// Package knit completes partially-present albums. For each album in the
// catalog it fetches the canonical tracklist, diffs it against the tracks on
// hand, and searches the local file index for the missing titles. Tracklist
// lookups are sequential to respect service rate limits; index searches fan
// out when an album is missing enough tracks to justify it.
package knit
