package library

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"tracklib/internal/assets"
	"tracklib/internal/logger"
)

// newTestCatalog creates an empty catalog over a temp directory.
func newTestCatalog(t *testing.T) (*Catalog, string) {
	t.Helper()
	dir := t.TempDir()
	store := assets.NewStore(filepath.Join(dir, "images"), filepath.Join(dir, "sounds"), "")
	cat := NewCatalog(filepath.Join(dir, "tracks.csv"), store, logger.New(false))
	return cat, dir
}

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	cat, _ := newTestCatalog(t)
	bad, err := cat.Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for missing file", err)
	}
	if len(bad) != 0 || cat.Len() != 0 {
		t.Errorf("Load() of missing file: bad=%v, len=%d, want empty catalog", bad, cat.Len())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cat, _ := newTestCatalog(t)

	plain := New("Take Five", "Dave Brubeck", 3)
	album := NewAlbum("So What", "Miles Davis", 5, "Kind of Blue", 1959)
	album.PlayCount = 42

	if err := cat.AddTrack("01", plain, "", ""); err != nil {
		t.Fatalf("AddTrack(01) failed: %v", err)
	}
	if err := cat.AddTrack("02", album, "", ""); err != nil {
		t.Fatalf("AddTrack(02) failed: %v", err)
	}

	reloaded := NewCatalog(cat.File(), cat.Assets(), logger.New(false))
	bad, err := reloaded.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(bad) != 0 {
		t.Fatalf("Load() reported bad rows: %v", bad)
	}

	if !reflect.DeepEqual(reloaded.Keys(), cat.Keys()) {
		t.Errorf("keys after reload = %v, want %v", reloaded.Keys(), cat.Keys())
	}
	for _, id := range cat.Keys() {
		want, _ := cat.Record(id)
		got, ok := reloaded.Record(id)
		if !ok {
			t.Fatalf("track %s missing after reload", id)
		}
		if got != want {
			t.Errorf("track %s after reload = %+v, want %+v", id, got, want)
		}
	}
}

func TestLoadSkipsMalformedRows(t *testing.T) {
	cat, dir := newTestCatalog(t)
	writeTempFile(t, dir, "tracks.csv",
		"track_id,name,artist,rating,plays,album,year\n"+
			"01,Good,Artist,3,7,,\n"+
			"02,BadRating,Artist,x,0,,\n"+
			"03,BadPlays,Artist,2,oops,,\n"+
			"04,OddYear,Artist,1,0,Album,19x9\n")

	bad, err := cat.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if len(bad) != 2 {
		t.Fatalf("Load() bad rows = %v, want 2 entries", bad)
	}
	if bad[0].ID != "02" || bad[0].Field != "rating" {
		t.Errorf("bad[0] = %+v, want rating error for 02", bad[0])
	}
	if bad[1].ID != "03" || bad[1].Field != "plays" {
		t.Errorf("bad[1] = %+v, want plays error for 03", bad[1])
	}

	if !reflect.DeepEqual(cat.Keys(), []string{"01", "04"}) {
		t.Errorf("keys = %v, want [01 04]", cat.Keys())
	}

	// Non-digit year downgrades the row to Plain instead of skipping it.
	rec, _ := cat.Record("04")
	if rec.Kind != Plain {
		t.Errorf("track 04 Kind = %v, want Plain for non-digit year", rec.Kind)
	}
}

func TestAddTrackDuplicate(t *testing.T) {
	cat, _ := newTestCatalog(t)
	if err := cat.AddTrack("01", New("a", "b", 1), "", ""); err != nil {
		t.Fatalf("first AddTrack failed: %v", err)
	}

	before := cat.Keys()
	err := cat.AddTrack("01", New("other", "other", 2), "", "")
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("duplicate AddTrack error = %v, want ErrDuplicateID", err)
	}
	if !reflect.DeepEqual(cat.Keys(), before) {
		t.Errorf("keys changed after failed add: %v", cat.Keys())
	}
	if cat.Name("01") != "a" {
		t.Errorf("Name(01) = %q, want original record untouched", cat.Name("01"))
	}
}

func TestAddTrackCopiesAssets(t *testing.T) {
	cat, dir := newTestCatalog(t)
	img := writeTempFile(t, dir, "cover.jpg", "jpeg-bytes")
	snd := writeTempFile(t, dir, "song.mp3", "mp3-bytes")

	if err := cat.AddTrack("01", New("a", "b", 1), img, snd); err != nil {
		t.Fatalf("AddTrack failed: %v", err)
	}

	for _, path := range []string{cat.Assets().ImagePath("01"), cat.Assets().SoundPath("01")} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("asset %s not copied: %v", path, err)
		}
	}
}

func TestAddTrackAssetCopyFailureIsNonFatal(t *testing.T) {
	cat, dir := newTestCatalog(t)

	err := cat.AddTrack("01", New("a", "b", 1), filepath.Join(dir, "nope.jpg"), filepath.Join(dir, "nope.mp3"))
	if err != nil {
		t.Fatalf("AddTrack with bad asset paths failed: %v", err)
	}
	if !cat.Has("01") {
		t.Error("record not committed despite asset copy failure")
	}
}

func TestRemoveTrack(t *testing.T) {
	cat, dir := newTestCatalog(t)
	img := writeTempFile(t, dir, "cover.jpg", "x")
	snd := writeTempFile(t, dir, "song.mp3", "x")
	if err := cat.AddTrack("01", New("a", "b", 1), img, snd); err != nil {
		t.Fatalf("AddTrack failed: %v", err)
	}

	if err := cat.RemoveTrack("99"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("RemoveTrack(99) error = %v, want ErrNotFound", err)
	}

	if err := cat.RemoveTrack("01"); err != nil {
		t.Fatalf("RemoveTrack(01) failed: %v", err)
	}
	if cat.Has("01") || len(cat.Keys()) != 0 {
		t.Errorf("track 01 still present after removal")
	}
	for _, path := range []string{cat.Assets().ImagePath("01"), cat.Assets().SoundPath("01")} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("asset %s still exists after removal", path)
		}
	}
}

func TestAccessorSentinels(t *testing.T) {
	cat, _ := newTestCatalog(t)

	if got := cat.Name("99"); got != "" {
		t.Errorf("Name(absent) = %q, want empty", got)
	}
	if got := cat.Artist("99"); got != "" {
		t.Errorf("Artist(absent) = %q, want empty", got)
	}
	if got := cat.Rating("99"); got != -1 {
		t.Errorf("Rating(absent) = %d, want -1", got)
	}
	if got := cat.PlayCount("99"); got != -1 {
		t.Errorf("PlayCount(absent) = %d, want -1", got)
	}
	if _, ok := cat.Record("99"); ok {
		t.Error("Record(absent) ok = true, want false")
	}
}

func TestIncrementPlayCountPersists(t *testing.T) {
	cat, _ := newTestCatalog(t)
	if err := cat.AddTrack("01", New("a", "b", 1), "", ""); err != nil {
		t.Fatalf("AddTrack failed: %v", err)
	}

	if err := cat.IncrementPlayCount("01"); err != nil {
		t.Fatalf("IncrementPlayCount failed: %v", err)
	}
	if got := cat.PlayCount("01"); got != 1 {
		t.Fatalf("PlayCount = %d, want 1", got)
	}

	// Absent id is a silent no-op.
	if err := cat.IncrementPlayCount("99"); err != nil {
		t.Fatalf("IncrementPlayCount(absent) error = %v", err)
	}

	reloaded := NewCatalog(cat.File(), cat.Assets(), logger.New(false))
	if _, err := reloaded.Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got := reloaded.PlayCount("01"); got != 1 {
		t.Errorf("PlayCount after reload = %d, want 1", got)
	}
}

func TestSetRating(t *testing.T) {
	cat, _ := newTestCatalog(t)
	if err := cat.AddTrack("01", New("a", "b", 1), "", ""); err != nil {
		t.Fatalf("AddTrack failed: %v", err)
	}

	if err := cat.SetRating("01", 6); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("SetRating(6) error = %v, want ErrInvalidRating", err)
	}
	if err := cat.SetRating("01", -1); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("SetRating(-1) error = %v, want ErrInvalidRating", err)
	}
	if err := cat.SetRating("01", 5); err != nil {
		t.Fatalf("SetRating(5) failed: %v", err)
	}
	if got := cat.Rating("01"); got != 5 {
		t.Errorf("Rating = %d, want 5", got)
	}
	if err := cat.SetRating("99", 3); err != nil {
		t.Errorf("SetRating(absent) error = %v, want silent no-op", err)
	}
}

func TestUpdateMetadata(t *testing.T) {
	strPtr := func(s string) *string { return &s }
	intPtr := func(n int) *int { return &n }

	t.Run("partial patch", func(t *testing.T) {
		cat, _ := newTestCatalog(t)
		if err := cat.AddTrack("01", New("old", "artist", 1), "", ""); err != nil {
			t.Fatal(err)
		}
		if err := cat.UpdateMetadata("01", Patch{Name: strPtr("new")}); err != nil {
			t.Fatalf("UpdateMetadata failed: %v", err)
		}
		rec, _ := cat.Record("01")
		if rec.Name != "new" || rec.Artist != "artist" || rec.Kind != Plain {
			t.Errorf("record = %+v, want only name changed", rec)
		}
	})

	t.Run("upgrade to album preserves play count", func(t *testing.T) {
		cat, _ := newTestCatalog(t)
		if err := cat.AddTrack("01", New("n", "a", 2), "", ""); err != nil {
			t.Fatal(err)
		}
		if err := cat.IncrementPlayCount("01"); err != nil {
			t.Fatal(err)
		}

		patch := Patch{Album: strPtr("Time Out"), Year: intPtr(1959)}
		if err := cat.UpdateMetadata("01", patch); err != nil {
			t.Fatalf("UpdateMetadata failed: %v", err)
		}

		rec, _ := cat.Record("01")
		if rec.Kind != Album || rec.Album != "Time Out" || rec.Year != 1959 {
			t.Errorf("record = %+v, want album upgrade", rec)
		}
		if rec.PlayCount != 1 || rec.Rating != 2 {
			t.Errorf("record = %+v, want play count and rating preserved", rec)
		}
	})

	t.Run("invalid rating rejected", func(t *testing.T) {
		cat, _ := newTestCatalog(t)
		if err := cat.AddTrack("01", New("n", "a", 2), "", ""); err != nil {
			t.Fatal(err)
		}
		if err := cat.UpdateMetadata("01", Patch{Rating: intPtr(9)}); !errors.Is(err, ErrInvalidRating) {
			t.Fatalf("error = %v, want ErrInvalidRating", err)
		}
		rec, _ := cat.Record("01")
		if rec.Rating != 2 {
			t.Errorf("rating changed to %d despite validation failure", rec.Rating)
		}
	})

	t.Run("absent id", func(t *testing.T) {
		cat, _ := newTestCatalog(t)
		if err := cat.UpdateMetadata("99", Patch{Name: strPtr("x")}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
	})
}
