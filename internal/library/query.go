package library

import (
	"sort"
	"strings"
)

// Play-count buckets offered by the filter UI. Boundaries are inclusive.
const (
	BucketLow   = "0-10"
	BucketMid   = "11-20"
	BucketHigh  = "21-50"
	BucketHeavy = "51+"
)

// Buckets lists the play-count buckets in display order.
func Buckets() []string {
	return []string{BucketLow, BucketMid, BucketHigh, BucketHeavy}
}

// Search returns the ids whose name or artist contains query,
// case-insensitively. An empty query matches everything.
func (c *Catalog) Search(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []string
	for _, id := range c.order {
		rec := c.records[id]
		if strings.Contains(strings.ToLower(rec.Name), q) ||
			strings.Contains(strings.ToLower(rec.Artist), q) {
			out = append(out, id)
		}
	}
	return out
}

// FilterByArtist returns the ids whose artist matches exactly,
// case-insensitively.
func (c *Catalog) FilterByArtist(artist string) []string {
	var out []string
	for _, id := range c.order {
		if strings.EqualFold(c.records[id].Artist, artist) {
			out = append(out, id)
		}
	}
	return out
}

// FilterByRating returns the ids with exactly the given rating.
func (c *Catalog) FilterByRating(rating int) []string {
	var out []string
	for _, id := range c.order {
		if c.records[id].Rating == rating {
			out = append(out, id)
		}
	}
	return out
}

// FilterByPlayBucket returns the ids whose play count falls in the named
// bucket. Unknown bucket names match nothing.
func (c *Catalog) FilterByPlayBucket(bucket string) []string {
	var out []string
	for _, id := range c.order {
		count := c.records[id].PlayCount
		match := false
		switch bucket {
		case BucketLow:
			match = count <= 10
		case BucketMid:
			match = count >= 11 && count <= 20
		case BucketHigh:
			match = count >= 21 && count <= 50
		case BucketHeavy:
			match = count >= 51
		}
		if match {
			out = append(out, id)
		}
	}
	return out
}

// Artists returns the distinct artist values in the catalog, sorted. Drives
// the artist filter's value list.
func (c *Catalog) Artists() []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range c.order {
		artist := c.records[id].Artist
		if !seen[artist] {
			seen[artist] = true
			out = append(out, artist)
		}
	}
	sort.Strings(out)
	return out
}
