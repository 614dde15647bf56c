package player

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"tracklib/internal/library"
	"tracklib/internal/logger"
	"tracklib/pkg/utils"
)

// ErrEmptyPlaylist is returned by Play and ExportList when there is nothing
// to play or save.
var ErrEmptyPlaylist = errors.New("player: no tracks in playlist")

// State is the sequencer's playback state.
type State int

const (
	Idle State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

// Hooks are callbacks the sequencer fires as playback progresses. Nil
// members are skipped. Hooks always run on the goroutine that triggered
// them (Play, Pause or HandleCompletion), never from the background
// watcher.
type Hooks struct {
	OnNowPlaying func(id string)
	OnSkipped    func(id, reason string)
	OnError      func(id string, err error)
	OnFinished   func()
}

// Completion is delivered on the Completions channel when the current track
// finishes naturally. It must be handed back via HandleCompletion on the
// control goroutine.
type Completion struct {
	gen uint64
}

// Sequencer walks an ordered playlist of track identifiers, handing each
// one's audio asset to the Output and counting plays through the catalog.
//
// All methods must be called from one control goroutine. The only
// background activity is the per-track completion watcher, which does not
// touch sequencer state: it posts to Completions and the control goroutine
// calls HandleCompletion.
type Sequencer struct {
	cat   *library.Catalog
	out   Output
	log   *logger.Logger
	hooks Hooks

	playlist []string
	state    State
	cursor   int

	// gen identifies the currently active track. Completions carrying an
	// older generation are stale and ignored, so a superseded watcher can
	// never trigger a spurious advance.
	gen         uint64
	completions chan Completion
}

// NewSequencer creates an idle sequencer with an empty playlist.
func NewSequencer(cat *library.Catalog, out Output, log *logger.Logger, hooks Hooks) *Sequencer {
	return &Sequencer{
		cat:         cat,
		out:         out,
		log:         log,
		hooks:       hooks,
		completions: make(chan Completion, 4),
	}
}

// State returns the current playback state.
func (s *Sequencer) State() State {
	return s.state
}

// Cursor returns the index of the current track in the playlist.
func (s *Sequencer) Cursor() int {
	return s.cursor
}

// Playlist returns a copy of the playlist in playback order.
func (s *Sequencer) Playlist() []string {
	out := make([]string, len(s.playlist))
	copy(out, s.playlist)
	return out
}

// Completions delivers natural track completions from the background
// watcher. The owner must pump this channel and call HandleCompletion.
func (s *Sequencer) Completions() <-chan Completion {
	return s.completions
}

// halt stops output and rewinds the sequencer. Bumping the generation here
// invalidates any watcher still in flight.
func (s *Sequencer) halt() {
	s.out.Stop()
	s.gen++
	s.state = Idle
	s.cursor = 0
}

// Stop halts playback and rewinds to the start of the playlist.
func (s *Sequencer) Stop() {
	s.halt()
}

// AddTracks normalizes and validates raw identifier tokens and appends the
// valid, not-yet-queued ones to the playlist. Tokens that are not numeric
// or do not resolve in the catalog come back in invalid. Editing the
// playlist always halts playback.
func (s *Sequencer) AddTracks(raw []string) (added, invalid []string) {
	defer s.halt()

	for _, tok := range raw {
		id := library.NormalizeID(tok)
		switch {
		case !library.IsDigits(id) || !s.cat.Has(id):
			invalid = append(invalid, id)
		case s.contains(id) || containsString(added, id):
			// already queued, silently skipped
		default:
			added = append(added, id)
		}
	}
	s.playlist = append(s.playlist, added...)
	return added, invalid
}

// RemoveTracks normalizes raw tokens and removes the matching playlist
// entries. Tokens not currently in the playlist come back in invalid.
// Editing the playlist always halts playback.
func (s *Sequencer) RemoveTracks(raw []string) (removed, invalid []string) {
	defer s.halt()

	for _, tok := range raw {
		id := library.NormalizeID(tok)
		switch {
		case !library.IsDigits(id):
			invalid = append(invalid, id)
		case s.contains(id):
			s.remove(id)
			removed = append(removed, id)
		default:
			invalid = append(invalid, id)
		}
	}
	return removed, invalid
}

// Reset clears the playlist entirely and halts playback.
func (s *Sequencer) Reset() {
	s.playlist = nil
	s.halt()
}

// Play starts or resumes playback. Resuming from Paused keeps the current
// track; from Idle, playback starts at the head of the playlist. Returns
// ErrEmptyPlaylist when there is nothing to play; a no-op when already
// playing.
func (s *Sequencer) Play() error {
	if s.state == Paused {
		s.out.Resume()
		s.state = Playing
		return nil
	}
	if s.state == Playing {
		return nil
	}
	if len(s.playlist) == 0 {
		return ErrEmptyPlaylist
	}

	s.cursor = 0
	s.advance()
	return nil
}

// Pause toggles between Playing and Paused. The control is a toggle, not a
// one-way action: pausing while paused resumes. A no-op when idle.
func (s *Sequencer) Pause() {
	switch s.state {
	case Playing:
		s.out.Pause()
		s.state = Paused
	case Paused:
		s.out.Resume()
		s.state = Playing
	}
}

// HandleCompletion processes a natural track completion. Stale completions
// (an older generation, or arriving while not playing) are dropped.
func (s *Sequencer) HandleCompletion(c Completion) {
	if c.gen != s.gen || s.state != Playing {
		return
	}
	s.cursor++
	s.advance()
}

// advance walks the playlist from the cursor until a track starts playing
// or the list runs out. Missing audio assets and output failures are
// reported per track and skipped; they are never fatal.
func (s *Sequencer) advance() {
	for {
		if s.cursor >= len(s.playlist) {
			s.state = Idle
			if s.hooks.OnFinished != nil {
				s.hooks.OnFinished()
			}
			return
		}

		id := s.playlist[s.cursor]
		path := s.cat.Assets().SoundPath(id)
		if !utils.FileExists(path) {
			if s.hooks.OnSkipped != nil {
				s.hooks.OnSkipped(id, "no audio")
			}
			s.cursor++
			continue
		}

		if err := s.startTrack(id, path); err != nil {
			if s.hooks.OnError != nil {
				s.hooks.OnError(id, err)
			}
			s.cursor++
			continue
		}
		return
	}
}

func (s *Sequencer) startTrack(id, path string) error {
	if err := s.out.Load(path); err != nil {
		return fmt.Errorf("failed to load track %s: %w", id, err)
	}
	if err := s.out.Play(); err != nil {
		return fmt.Errorf("failed to play track %s: %w", id, err)
	}

	s.state = Playing
	if err := s.cat.IncrementPlayCount(id); err != nil {
		s.log.Warn("Failed to record play for track %s: %v", id, err)
	}
	if s.hooks.OnNowPlaying != nil {
		s.hooks.OnNowPlaying(id)
	}

	// Arm the completion watcher for this track. A later halt or track
	// start bumps gen, which orphans this watcher's message.
	s.gen++
	gen := s.gen
	done := s.out.Done()
	go func() {
		<-done
		select {
		case s.completions <- Completion{gen: gen}:
		default:
			// The pump stopped listening; drop rather than leak.
		}
	}()
	return nil
}

// ExportList writes the playlist, one identifier per line, to path.
func (s *Sequencer) ExportList(path string) error {
	if len(s.playlist) == 0 {
		return ErrEmptyPlaylist
	}

	var b strings.Builder
	for _, id := range s.playlist {
		b.WriteString(id)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to save playlist to %s: %w", path, err)
	}
	return nil
}

// ImportList replaces the playlist with the identifiers read from path,
// silently dropping any that no longer resolve in the catalog. The dropped
// identifiers are returned for reporting. Importing halts playback.
func (s *Sequencer) ImportList(path string) (dropped []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load playlist from %s: %w", path, err)
	}
	defer f.Close()

	var list []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id := library.NormalizeID(line)
		if s.cat.Has(id) {
			if !containsString(list, id) {
				list = append(list, id)
			}
		} else {
			dropped = append(dropped, id)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read playlist %s: %w", path, err)
	}

	s.playlist = list
	s.halt()
	return dropped, nil
}

func (s *Sequencer) contains(id string) bool {
	return containsString(s.playlist, id)
}

func (s *Sequencer) remove(id string) {
	for i, k := range s.playlist {
		if k == id {
			s.playlist = append(s.playlist[:i], s.playlist[i+1:]...)
			return
		}
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
