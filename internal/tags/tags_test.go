package tags

import (
	"os/exec"
	"path/filepath"
	"testing"

	"tracklib/internal/library"
)

// createTestAudioFile generates a minimal MP3 using ffmpeg.
// Skips the test if ffmpeg is not available.
func createTestAudioFile(t *testing.T, dir string) string {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available, skipping tags test")
	}

	path := filepath.Join(dir, "test.mp3")
	cmd := exec.Command("ffmpeg", "-f", "lavfi", "-i", "anullsrc=r=44100:cl=mono", "-t", "0.1", "-q:a", "9", path)
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Run(); err != nil {
		t.Fatalf("failed to create test audio file: %v", err)
	}
	return path
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := createTestAudioFile(t, t.TempDir())

	rec := library.NewAlbum("So What", "Miles Davis", 5, "Kind of Blue", 1959)
	if err := Write(path, rec); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	info, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	want := Info{Title: "So What", Artist: "Miles Davis", Album: "Kind of Blue", Year: 1959}
	if info != want {
		t.Errorf("round trip = %+v, want %+v", info, want)
	}
}

func TestWritePlainOmitsAlbumFields(t *testing.T) {
	path := createTestAudioFile(t, t.TempDir())

	if err := Write(path, library.New("Take Five", "Dave Brubeck", 3)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	info, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if info.Title != "Take Five" || info.Artist != "Dave Brubeck" {
		t.Errorf("info = %+v, want title and artist set", info)
	}
	if info.Album != "" || info.Year != 0 {
		t.Errorf("info = %+v, want album fields empty for a plain record", info)
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "missing.mp3")); err == nil {
		t.Error("Read of missing file succeeded, want error")
	}
}
