// Command mfdr reconciles a personal music catalog (an exported Library.xml)
// against the audio files on disk: it verifies tracks, finds and imports
// replacements for missing or corrupt files, and fills in incomplete albums.
package main
