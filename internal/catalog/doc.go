// Package catalog defines the catalog entry model and the Apple Music /
// iTunes Library.xml parser that produces it.
//
// An Entry describes one expected track: name, artist, album, size, duration,
// and the file URL the catalog believes backs it. Entries are value types;
// the matching core reads them and never mutates them. IsMissing resolves the
// location against the filesystem, so a stale catalog row reads as missing.
package catalog
