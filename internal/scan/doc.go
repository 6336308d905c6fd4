// Package scan orchestrates a full catalog reconciliation pass: verify each
// track's file, quarantine corruption, search the index for replacements, and
// apply the decision policy. Progress is checkpointed so interrupted runs
// resume, and outcomes are recorded to the session history.
package scan
