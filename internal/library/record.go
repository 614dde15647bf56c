package library

import (
	"fmt"
	"strings"
)

// Kind discriminates the two record variants.
type Kind int

const (
	// Plain is a track with no album information.
	Plain Kind = iota
	// Album is a track qualified with an album name and release year.
	Album
)

// Record holds the descriptive data for one track. Album and Year are only
// meaningful when Kind == Album.
type Record struct {
	Name      string
	Artist    string
	Rating    int // 0-5
	PlayCount int

	Kind  Kind
	Album string
	Year  int
}

// New creates a Plain record.
func New(name, artist string, rating int) Record {
	return Record{Name: name, Artist: artist, Rating: rating}
}

// NewAlbum creates an Album record. If album is empty or year is not
// positive, the record falls back to Plain: a track is album-qualified only
// when both pieces of information are actually present.
func NewAlbum(name, artist string, rating int, album string, year int) Record {
	if album == "" || year <= 0 {
		return New(name, artist, rating)
	}
	return Record{
		Name:   name,
		Artist: artist,
		Rating: rating,
		Kind:   Album,
		Album:  album,
		Year:   year,
	}
}

// WithAlbum returns an Album copy of r, preserving name, artist, rating and
// play count. Used when editing a Plain record with album details supplied.
func (r Record) WithAlbum(album string, year int) Record {
	out := r
	out.Kind = Album
	out.Album = album
	out.Year = year
	return out
}

// Stars renders the rating as repeated '*' characters.
func (r Record) Stars() string {
	return strings.Repeat("*", r.Rating)
}

// Describe returns a one-line human-readable summary of the record.
func (r Record) Describe() string {
	if r.Kind == Album {
		return fmt.Sprintf("%s - %s (%s, %d) %s", r.Name, r.Artist, r.Album, r.Year, r.Stars())
	}
	return fmt.Sprintf("%s - %s %s", r.Name, r.Artist, r.Stars())
}
