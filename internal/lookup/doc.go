// Package lookup resolves canonical album tracklists from external metadata
// services. MusicBrainz is the primary source with the iTunes Search API as
// fallback; results are cached on disk and outbound requests share a rate
// gate sized to the anonymous MusicBrainz quota.
package lookup
