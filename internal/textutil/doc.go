// Package textutil provides text normalization, tokenization, and similarity
// helpers for catalog-to-filesystem matching.
//
// The primary use cases are:
//   - Canonicalizing track, artist, and album names for comparison
//   - Producing index tokens from normalized text
//   - Computing token-overlap similarity between two names
//   - Sanitizing filenames and path segments for safe filesystem use
//
// Normalization folds diacritics, lowercases, strips leading articles,
// truncates at featuring credits, and collapses punctuation and whitespace.
// Tokens shorter than 3 characters are filtered from index keys.
package textutil
