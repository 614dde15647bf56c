package assets

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	fallback := filepath.Join(dir, "default.jpg")
	if err := os.WriteFile(fallback, []byte("fallback"), 0644); err != nil {
		t.Fatalf("failed to write fallback image: %v", err)
	}
	store := NewStore(filepath.Join(dir, "images"), filepath.Join(dir, "sounds"), fallback)
	return store, dir
}

func TestPathConventions(t *testing.T) {
	store, dir := newTestStore(t)

	if got, want := store.ImagePath("07"), filepath.Join(dir, "images", "07.jpg"); got != want {
		t.Errorf("ImagePath = %q, want %q", got, want)
	}
	if got, want := store.SoundPath("07"), filepath.Join(dir, "sounds", "07.mp3"); got != want {
		t.Errorf("SoundPath = %q, want %q", got, want)
	}
}

func TestCopyAndRemove(t *testing.T) {
	store, dir := newTestStore(t)

	src := filepath.Join(dir, "src.mp3")
	if err := os.WriteFile(src, []byte("audio"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := store.CopySound(src, "01"); err != nil {
		t.Fatalf("CopySound failed: %v", err)
	}
	if !store.HasSound("01") {
		t.Fatal("HasSound = false after copy")
	}

	if err := store.Remove("01"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if store.HasSound("01") {
		t.Error("sound asset still present after Remove")
	}

	// Removing a track with no assets is fine.
	if err := store.Remove("99"); err != nil {
		t.Errorf("Remove of absent assets failed: %v", err)
	}
}

func TestCopyMissingSource(t *testing.T) {
	store, dir := newTestStore(t)
	if err := store.CopyImage(filepath.Join(dir, "nope.jpg"), "01"); err == nil {
		t.Error("CopyImage of missing source succeeded, want error")
	}
}

func TestImagePathOrFallback(t *testing.T) {
	store, dir := newTestStore(t)

	if got := store.ImagePathOrFallback("01"); got != filepath.Join(dir, "default.jpg") {
		t.Errorf("fallback = %q, want default image", got)
	}

	src := filepath.Join(dir, "cover.jpg")
	if err := os.WriteFile(src, []byte("img"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := store.CopyImage(src, "01"); err != nil {
		t.Fatalf("CopyImage failed: %v", err)
	}
	if got := store.ImagePathOrFallback("01"); got != store.ImagePath("01") {
		t.Errorf("ImagePathOrFallback = %q, want track's own image", got)
	}
}
