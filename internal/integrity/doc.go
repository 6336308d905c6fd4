// Package integrity verifies that audio files on disk are readable and
// undamaged before the scanner treats them as healthy. Checks layer from
// cheap to expensive: stat and size floor, metadata parse, and an optional
// ffmpeg decode of the file's tail.
package integrity
