// Package fileutil provides verified file copies and safe placement into
// managed directories. Copies are staged and renamed so destinations are
// complete or absent; CopyInto and MoveInto confine destinations to their
// root and resolve name collisions with numeric suffixes.
package fileutil
