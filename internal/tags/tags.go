// Package tags reads and writes audio-file metadata tags, used to prefill
// catalog fields from a track's file and to keep the stored asset's tags in
// sync with the catalog.
package tags

import (
	"fmt"
	"strconv"

	"go.senan.xyz/taglib"

	"tracklib/internal/library"
)

// Info is the subset of file tags the catalog cares about.
type Info struct {
	Title  string
	Artist string
	Album  string
	Year   int
}

// Read returns the tags of an audio file. Missing tags come back as zero
// values; a file without a valid tag block is an error.
func Read(path string) (Info, error) {
	raw, err := taglib.ReadTags(path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to read tags from %s: %w", path, err)
	}

	info := Info{
		Title:  firstTag(raw, taglib.Title),
		Artist: firstTag(raw, taglib.Artist),
		Album:  firstTag(raw, taglib.Album),
	}
	if date := firstTag(raw, taglib.Date); len(date) >= 4 {
		if year, err := strconv.Atoi(date[:4]); err == nil {
			info.Year = year
		}
	}
	return info, nil
}

// Write stamps a record's metadata onto an audio file. Empty fields are
// left out rather than cleared.
func Write(path string, rec library.Record) error {
	out := make(map[string][]string)

	if rec.Name != "" {
		out[taglib.Title] = []string{rec.Name}
	}
	if rec.Artist != "" {
		out[taglib.Artist] = []string{rec.Artist}
	}
	if rec.Kind == library.Album {
		if rec.Album != "" {
			out[taglib.Album] = []string{rec.Album}
		}
		if rec.Year > 0 {
			out[taglib.Date] = []string{strconv.Itoa(rec.Year)}
		}
	}

	if err := taglib.WriteTags(path, out, 0); err != nil {
		return fmt.Errorf("failed to write tags to %s: %w", path, err)
	}
	return nil
}

func firstTag(tags map[string][]string, key string) string {
	if vals, ok := tags[key]; ok && len(vals) > 0 {
		return vals[0]
	}
	return ""
}
