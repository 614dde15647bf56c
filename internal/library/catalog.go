// Package library implements the track catalog: a mapping from fixed-width
// track identifiers to metadata records, persisted as a flat CSV table.
package library

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"tracklib/internal/assets"
	"tracklib/internal/logger"
)

// columns is the canonical backing-table column order.
var columns = []string{"track_id", "name", "artist", "rating", "plays", "album", "year"}

// Catalog owns all metadata records, keyed by identifier. Every mutating
// operation re-persists the full table before returning, so the in-memory
// mapping and the backing file never drift apart.
//
// A Catalog is not safe for concurrent use; all mutations are expected to
// run on one control goroutine.
type Catalog struct {
	file    string
	store   *assets.Store
	log     *logger.Logger
	records map[string]Record
	order   []string // insertion order of keys
}

// NewCatalog creates an empty catalog backed by file. Call Load to read any
// existing table.
func NewCatalog(file string, store *assets.Store, log *logger.Logger) *Catalog {
	return &Catalog{
		file:    file,
		store:   store,
		log:     log,
		records: make(map[string]Record),
	}
}

// File returns the backing table path.
func (c *Catalog) File() string {
	return c.file
}

// Assets returns the asset store the catalog copies and deletes through.
func (c *Catalog) Assets() *assets.Store {
	return c.store
}

// Load replaces the in-memory mapping with the contents of the backing
// table. A missing file is not an error and yields an empty catalog. Rows
// whose rating or plays columns do not parse as integers are skipped and
// reported in the returned slice; a non-digit year only downgrades that row
// to a Plain record.
func (c *Catalog) Load() ([]RowError, error) {
	c.records = make(map[string]Record)
	c.order = nil

	f, err := os.Open(c.file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open library file %s: %w", c.file, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse library file %s: %w", c.file, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[name] = i
	}
	for _, required := range []string{"track_id", "name", "artist", "rating", "plays"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("library file %s is missing column %q", c.file, required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var bad []RowError
	for n, row := range rows[1:] {
		line := n + 2 // header is line 1
		id := field(row, "track_id")

		rating, err := strconv.Atoi(field(row, "rating"))
		if err != nil {
			bad = append(bad, RowError{Line: line, ID: id, Field: "rating", Value: field(row, "rating")})
			continue
		}
		plays, err := strconv.Atoi(field(row, "plays"))
		if err != nil {
			bad = append(bad, RowError{Line: line, ID: id, Field: "plays", Value: field(row, "plays")})
			continue
		}

		album := field(row, "album")
		year := 0
		if raw := field(row, "year"); IsDigits(raw) {
			year, _ = strconv.Atoi(raw)
		}

		rec := NewAlbum(field(row, "name"), field(row, "artist"), rating, album, year)
		rec.PlayCount = plays
		c.insert(id, rec)
	}

	return bad, nil
}

// Save rewrites the backing table in full, in canonical column order. The
// table is written to a temporary file in the same directory and renamed
// into place, so a crash mid-write leaves the previous table intact.
func (c *Catalog) Save() error {
	dir := filepath.Dir(c.file)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create library directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.file)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp library file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(columns); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write library header: %w", err)
	}
	for _, id := range c.order {
		rec := c.records[id]
		album, year := "", ""
		if rec.Kind == Album {
			album = rec.Album
			year = strconv.Itoa(rec.Year)
		}
		row := []string{
			id,
			rec.Name,
			rec.Artist,
			strconv.Itoa(rec.Rating),
			strconv.Itoa(rec.PlayCount),
			album,
			year,
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write library row for %s: %w", id, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush library file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp library file: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.file); err != nil {
		return fmt.Errorf("failed to replace library file %s: %w", c.file, err)
	}
	return nil
}

func (c *Catalog) insert(id string, rec Record) {
	if _, exists := c.records[id]; !exists {
		c.order = append(c.order, id)
	}
	c.records[id] = rec
}

// Keys returns all identifiers in insertion order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of tracks in the catalog.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Has reports whether id is present.
func (c *Catalog) Has(id string) bool {
	_, ok := c.records[id]
	return ok
}

// Record returns the record for id, if present.
func (c *Catalog) Record(id string) (Record, bool) {
	rec, ok := c.records[id]
	return rec, ok
}

// Name returns the track name, or "" if id is absent.
func (c *Catalog) Name(id string) string {
	return c.records[id].Name
}

// Artist returns the track artist, or "" if id is absent.
func (c *Catalog) Artist(id string) string {
	return c.records[id].Artist
}

// Rating returns the track rating, or -1 if id is absent.
func (c *Catalog) Rating(id string) int {
	rec, ok := c.records[id]
	if !ok {
		return -1
	}
	return rec.Rating
}

// PlayCount returns the track play count, or -1 if id is absent.
func (c *Catalog) PlayCount(id string) int {
	rec, ok := c.records[id]
	if !ok {
		return -1
	}
	return rec.PlayCount
}

// AddTrack inserts rec under id and persists. imagePath and audioPath, when
// non-empty, are copied into the asset directories under the conventional
// names; a failed copy is logged and does not fail the add.
func (c *Catalog) AddTrack(id string, rec Record, imagePath, audioPath string) error {
	if rec.Rating < 0 || rec.Rating > 5 {
		return ErrInvalidRating
	}
	if _, exists := c.records[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}

	c.insert(id, rec)
	if err := c.Save(); err != nil {
		c.delete(id)
		return err
	}

	if imagePath != "" {
		if err := c.store.CopyImage(imagePath, id); err != nil {
			c.log.Warn("Image copy failed for track %s: %v", id, err)
		}
	}
	if audioPath != "" {
		if err := c.store.CopySound(audioPath, id); err != nil {
			c.log.Warn("Audio copy failed for track %s: %v", id, err)
		}
	}
	return nil
}

func (c *Catalog) delete(id string) {
	delete(c.records, id)
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// RemoveTrack deletes the record for id, persists, and removes any asset
// files. Returns ErrNotFound if id is absent.
func (c *Catalog) RemoveTrack(id string) error {
	if _, exists := c.records[id]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	c.delete(id)
	if err := c.Save(); err != nil {
		return err
	}

	if err := c.store.Remove(id); err != nil {
		c.log.Warn("Asset removal failed for track %s: %v", id, err)
	}
	return nil
}

// SetRating updates the rating for id and persists. Absent ids are a no-op.
func (c *Catalog) SetRating(id string, rating int) error {
	if rating < 0 || rating > 5 {
		return ErrInvalidRating
	}
	rec, ok := c.records[id]
	if !ok {
		return nil
	}
	rec.Rating = rating
	c.records[id] = rec
	return c.Save()
}

// IncrementPlayCount bumps the play count for id by one and persists.
// Absent ids are a no-op.
func (c *Catalog) IncrementPlayCount(id string) error {
	rec, ok := c.records[id]
	if !ok {
		return nil
	}
	rec.PlayCount++
	c.records[id] = rec
	return c.Save()
}

// Patch carries optional field updates for UpdateMetadata. Nil fields are
// left untouched.
type Patch struct {
	Name   *string
	Artist *string
	Rating *int
	Album  *string
	Year   *int
}

// UpdateMetadata applies the provided fields to the record for id and
// persists. If the record is Plain and the patch supplies a non-empty album
// or a positive year, the record is upgraded to the Album variant first,
// preserving name, artist, rating and play count.
func (c *Catalog) UpdateMetadata(id string, patch Patch) error {
	rec, ok := c.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if patch.Rating != nil && (*patch.Rating < 0 || *patch.Rating > 5) {
		return ErrInvalidRating
	}

	if patch.Name != nil && *patch.Name != "" {
		rec.Name = *patch.Name
	}
	if patch.Artist != nil && *patch.Artist != "" {
		rec.Artist = *patch.Artist
	}
	if patch.Rating != nil {
		rec.Rating = *patch.Rating
	}

	wantsAlbum := patch.Album != nil && *patch.Album != ""
	wantsYear := patch.Year != nil && *patch.Year > 0
	if rec.Kind == Plain && (wantsAlbum || wantsYear) {
		album, year := "", 0
		if wantsAlbum {
			album = *patch.Album
		}
		if wantsYear {
			year = *patch.Year
		}
		rec = rec.WithAlbum(album, year)
	}
	if rec.Kind == Album {
		if wantsAlbum {
			rec.Album = *patch.Album
		}
		if wantsYear {
			rec.Year = *patch.Year
		}
	}

	c.records[id] = rec
	return c.Save()
}
