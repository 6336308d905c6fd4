// Package checkpoint persists scan progress to disk so interrupted runs can
// resume where they left off. The store serializes access with an advisory
// file lock and writes atomically.
package checkpoint
