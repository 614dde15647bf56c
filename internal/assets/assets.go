// Package assets maps track identifiers to their image and audio files.
//
// Assets live under two flat directories and are addressed purely by
// convention: <imageDir>/<id>.jpg and <soundDir>/<id>.mp3. Presence is
// optional per track.
package assets

import (
	"path/filepath"

	"tracklib/pkg/utils"
)

const (
	imageExt = ".jpg"
	soundExt = ".mp3"
)

// Store resolves and manages per-track asset files.
type Store struct {
	imageDir      string
	soundDir      string
	fallbackImage string
}

// NewStore creates a Store over the given directories. fallbackImage is the
// image returned for tracks that have none of their own; it may be empty.
func NewStore(imageDir, soundDir, fallbackImage string) *Store {
	return &Store{
		imageDir:      imageDir,
		soundDir:      soundDir,
		fallbackImage: fallbackImage,
	}
}

// ImagePath returns the conventional image path for id, whether or not the
// file exists.
func (s *Store) ImagePath(id string) string {
	return filepath.Join(s.imageDir, id+imageExt)
}

// SoundPath returns the conventional audio path for id, whether or not the
// file exists.
func (s *Store) SoundPath(id string) string {
	return filepath.Join(s.soundDir, id+soundExt)
}

// ImagePathOrFallback returns the track's image if present, otherwise the
// configured fallback image.
func (s *Store) ImagePathOrFallback(id string) string {
	if p := s.ImagePath(id); utils.FileExists(p) {
		return p
	}
	return s.fallbackImage
}

// HasSound reports whether an audio asset exists for id.
func (s *Store) HasSound(id string) bool {
	return utils.FileExists(s.SoundPath(id))
}

// CopyImage copies src into place as the image asset for id.
func (s *Store) CopyImage(src, id string) error {
	return utils.CopyFile(src, s.ImagePath(id))
}

// CopySound copies src into place as the audio asset for id.
func (s *Store) CopySound(src, id string) error {
	return utils.CopyFile(src, s.SoundPath(id))
}

// Remove deletes both asset files for id. Missing files are not an error;
// the first real failure is returned.
func (s *Store) Remove(id string) error {
	if err := utils.RemoveIfExists(s.ImagePath(id)); err != nil {
		return err
	}
	return utils.RemoveIfExists(s.SoundPath(id))
}
