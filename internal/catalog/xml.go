package catalog

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ErrLibraryNotFound indicates the Library.xml path does not exist.
var ErrLibraryNotFound = errors.New("library xml not found")

// Library holds the parsed contents of an Apple Music / iTunes Library.xml.
type Library struct {
	MusicFolder string
	Entries     []Entry
}

// ParseLibraryFile parses the Library.xml plist at path.
func ParseLibraryFile(path string) (*Library, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrLibraryNotFound, path)
		}
		return nil, fmt.Errorf("open library xml: %w", err)
	}
	defer file.Close()
	return ParseLibrary(file)
}

// ParseLibrary parses Library.xml plist content from r. The top-level dict is
// expected to carry a "Tracks" dict keyed by track ID; playlists are ignored.
func ParseLibrary(r io.Reader) (*Library, error) {
	decoder := xml.NewDecoder(r)
	root, err := findRootDict(decoder)
	if err != nil {
		return nil, err
	}

	lib := &Library{}
	if folder, ok := root["Music Folder"].(string); ok {
		lib.MusicFolder = folder
	}

	tracks, ok := root["Tracks"].(map[string]any)
	if !ok {
		return nil, errors.New("library xml has no Tracks section")
	}

	entries := make([]Entry, 0, len(tracks))
	for _, value := range tracks {
		dict, ok := value.(map[string]any)
		if !ok {
			continue
		}
		entries = append(entries, entryFromDict(dict))
	}
	// Map iteration order is random; catalog order must be reproducible.
	sort.Slice(entries, func(i, j int) bool { return entries[i].TrackID < entries[j].TrackID })
	lib.Entries = entries
	return lib, nil
}

func entryFromDict(dict map[string]any) Entry {
	entry := Entry{
		Name:         plistString(dict, "Name"),
		Artist:       plistString(dict, "Artist"),
		Album:        plistString(dict, "Album"),
		Genre:        plistString(dict, "Genre"),
		PersistentID: plistString(dict, "Persistent ID"),
		Location:     plistString(dict, "Location"),
		TrackID:      int(plistInt(dict, "Track ID")),
		TrackNumber:  int(plistInt(dict, "Track Number")),
		Year:         int(plistInt(dict, "Year")),
		SizeBytes:    plistInt(dict, "Size"),
	}
	if totalTime := plistInt(dict, "Total Time"); totalTime > 0 {
		entry.DurationSeconds = float64(totalTime) / 1000.0
	}
	return entry
}

func plistString(dict map[string]any, key string) string {
	value, _ := dict[key].(string)
	return value
}

func plistInt(dict map[string]any, key string) int64 {
	value, _ := dict[key].(int64)
	return value
}

// findRootDict advances the decoder to the first dict under <plist> and
// parses it.
func findRootDict(decoder *xml.Decoder) (map[string]any, error) {
	for {
		token, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("library xml has no root dict")
			}
			return nil, fmt.Errorf("parse library xml: %w", err)
		}
		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "plist":
			continue
		case "dict":
			return parseDict(decoder)
		default:
			if err := decoder.Skip(); err != nil {
				return nil, fmt.Errorf("parse library xml: %w", err)
			}
		}
	}
}

// parseDict consumes plist <key>/<value> pairs until the matching </dict>.
func parseDict(decoder *xml.Decoder) (map[string]any, error) {
	dict := make(map[string]any)
	var pendingKey string
	haveKey := false
	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("parse plist dict: %w", err)
		}
		switch elem := token.(type) {
		case xml.StartElement:
			if elem.Name.Local == "key" {
				text, err := elementText(decoder, &elem)
				if err != nil {
					return nil, err
				}
				pendingKey = text
				haveKey = true
				continue
			}
			value, err := parseValue(decoder, &elem)
			if err != nil {
				return nil, err
			}
			if haveKey {
				dict[pendingKey] = value
				haveKey = false
			}
		case xml.EndElement:
			if elem.Name.Local == "dict" {
				return dict, nil
			}
		}
	}
}

// parseValue decodes a single plist value element.
func parseValue(decoder *xml.Decoder, start *xml.StartElement) (any, error) {
	switch start.Name.Local {
	case "dict":
		return parseDict(decoder)
	case "string", "date", "data":
		return elementText(decoder, start)
	case "integer":
		text, err := elementText(decoder, start)
		if err != nil {
			return nil, err
		}
		value, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return int64(0), nil
		}
		return value, nil
	case "real":
		text, err := elementText(decoder, start)
		if err != nil {
			return nil, err
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return float64(0), nil
		}
		return value, nil
	case "true":
		return true, skipElement(decoder, start)
	case "false":
		return false, skipElement(decoder, start)
	case "array":
		// Playlists and other arrays are not needed; consume and discard.
		return nil, decoder.Skip()
	default:
		return nil, decoder.Skip()
	}
}

func elementText(decoder *xml.Decoder, start *xml.StartElement) (string, error) {
	var text string
	if err := decoder.DecodeElement(&text, start); err != nil {
		return "", fmt.Errorf("parse plist element %s: %w", start.Name.Local, err)
	}
	return text, nil
}

func skipElement(decoder *xml.Decoder, start *xml.StartElement) error {
	var empty struct{}
	return decoder.DecodeElement(&empty, start)
}
