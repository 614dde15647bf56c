package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"tracklib/internal/config"
	"tracklib/internal/library"
	"tracklib/internal/logger"
	"tracklib/internal/player"
	"tracklib/internal/tags"
)

// session is the interactive control loop. It is the single goroutine that
// mutates the catalog and the sequencer; background work (completion
// watcher, library watcher) only posts on channels the loop selects over.
type session struct {
	cfg     config.Config
	log     *logger.Logger
	cat     *library.Catalog
	seq     *player.Sequencer
	watcher *library.Watcher
}

func newSession(cfg config.Config, log *logger.Logger, cat *library.Catalog, seq *player.Sequencer, watcher *library.Watcher) *session {
	return &session{cfg: cfg, log: log, cat: cat, seq: seq, watcher: watcher}
}

func (s *session) run(ctx context.Context) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	// A nil watcher leaves reloads as a nil channel, which never fires.
	var reloads <-chan struct{}
	if s.watcher != nil {
		reloads = s.watcher.Reloads()
	}

	fmt.Printf("tracklib: %d tracks loaded. Type 'help' for commands.\n", s.cat.Len())
	fmt.Print("> ")

	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-s.seq.Completions():
			s.seq.HandleCompletion(c)
		case <-reloads:
			s.watcher.HandleReload()
			fmt.Printf("Library reloaded (%d tracks).\n", s.cat.Len())
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := s.dispatch(strings.TrimSpace(line)); quit {
				return nil
			}
			fmt.Print("> ")
		}
	}
}

// dispatch handles one command line. Returns true when the session should
// end.
func (s *session) dispatch(line string) bool {
	if line == "" {
		return false
	}
	args, err := splitArgs(line)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return false
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "quit", "exit":
		s.seq.Stop()
		return true
	case "help":
		s.printHelp()
	case "list", "view":
		s.printTracks(s.cat.Keys())
	case "describe":
		s.describe(rest)
	case "search":
		s.search(rest)
	case "artists":
		for _, artist := range s.cat.Artists() {
			fmt.Println(artist)
		}
	case "filter":
		s.filter(rest)
	case "add":
		s.add(rest)
	case "update":
		s.update(rest)
	case "remove":
		s.removeTrack(rest)
	case "rate":
		s.rate(rest)
	case "queue":
		s.queue(rest)
	case "play":
		if err := s.seq.Play(); err != nil {
			fmt.Printf("%v\n", errMessage(err))
		}
	case "pause":
		s.seq.Pause()
		fmt.Printf("Playback %s.\n", s.seq.State())
	case "stop":
		s.seq.Stop()
		fmt.Println("Playback stopped.")
	case "save":
		s.savePlaylist(rest)
	case "load":
		s.loadPlaylist(rest)
	default:
		fmt.Printf("Unknown command %q. Type 'help' for commands.\n", cmd)
	}
	return false
}

func (s *session) printHelp() {
	fmt.Println("Catalog:")
	fmt.Println("  list                                 show all tracks")
	fmt.Println("  describe <id>                        one-line summary of a track")
	fmt.Println("  search <text>                        match against name or artist")
	fmt.Println("  artists                              list distinct artists")
	fmt.Println("  filter artist <name>")
	fmt.Println("  filter rating <0-5>")
	fmt.Println("  filter plays <0-10|11-20|21-50|51+>")
	fmt.Println("  add id=<id> name=<n> artist=<a> rating=<0-5> [album=<al> year=<y>]")
	fmt.Println("      [image=<path>] audio=<path>      add a track (name/artist default")
	fmt.Println("                                       to the audio file's tags)")
	fmt.Println("  update id=<id> [name=..] [artist=..] [rating=..] [album=..] [year=..]")
	fmt.Println("      [image=<path>] [audio=<path>]    change fields of a track")
	fmt.Println("  rate <id> <0-5>                      set a track's rating")
	fmt.Println("  remove <id>                          delete a track and its assets")
	fmt.Println("Playback:")
	fmt.Println("  queue                                show the playlist")
	fmt.Println("  queue add <ids...>                   append tracks (stops playback)")
	fmt.Println("  queue remove <ids...>                remove tracks (stops playback)")
	fmt.Println("  queue clear                          empty the playlist")
	fmt.Println("  play | pause | stop                  pause is a toggle")
	fmt.Println("  save [path] | load [path]            playlist file, one id per line")
	fmt.Println("  quit")
}

func (s *session) printTracks(ids []string) {
	if len(ids) == 0 {
		fmt.Println("No tracks.")
		return
	}
	for _, id := range ids {
		rec, _ := s.cat.Record(id)
		fmt.Printf("%s: %s - %s | Rating: %s | Plays: %d\n",
			id, rec.Name, rec.Artist, rec.Stars(), rec.PlayCount)
	}
}

func (s *session) describe(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: describe <id>")
		return
	}
	id := library.NormalizeID(args[0])
	rec, ok := s.cat.Record(id)
	if !ok {
		fmt.Println("Track ID not found.")
		return
	}
	fmt.Println(rec.Describe())
	fmt.Printf("Image: %s\n", s.cat.Assets().ImagePathOrFallback(id))
}

func (s *session) search(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: search <text>")
		return
	}
	s.printTracks(s.cat.Search(strings.Join(args, " ")))
}

func (s *session) filter(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: filter artist|rating|plays <value>")
		return
	}
	value := strings.Join(args[1:], " ")
	switch args[0] {
	case "artist":
		s.printTracks(s.cat.FilterByArtist(value))
	case "rating":
		rating, err := strconv.Atoi(value)
		if err != nil {
			fmt.Println("Rating must be a number between 0 and 5.")
			return
		}
		s.printTracks(s.cat.FilterByRating(rating))
	case "plays":
		s.printTracks(s.cat.FilterByPlayBucket(value))
	default:
		fmt.Println("Usage: filter artist|rating|plays <value>")
	}
}

func (s *session) add(args []string) {
	fields, err := parseFields(args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	id := library.NormalizeID(fields["id"])
	if !library.IsDigits(id) {
		fmt.Println("Track ID must be numeric.")
		return
	}
	audio := fields["audio"]
	if audio == "" {
		fmt.Println("Audio file required for new track (audio=<path>).")
		return
	}

	name, artist := fields["name"], fields["artist"]
	album := fields["album"]
	year := atoiOrZero(fields["year"])

	// Fall back to the audio file's own tags for anything not supplied.
	if name == "" || artist == "" || (album == "" && year == 0) {
		if info, err := tags.Read(audio); err == nil {
			if name == "" {
				name = info.Title
			}
			if artist == "" {
				artist = info.Artist
			}
			if album == "" && year == 0 {
				album, year = info.Album, info.Year
			}
		} else {
			s.log.Debug("Could not read tags from %s: %v", audio, err)
		}
	}
	if name == "" || artist == "" {
		fmt.Println("Missing or invalid input: id, name and artist are required.")
		return
	}

	rating := 0
	if v, ok := fields["rating"]; ok {
		rating, err = strconv.Atoi(v)
		if err != nil {
			fmt.Println("Invalid rating input.")
			return
		}
	}
	rec := library.NewAlbum(name, artist, rating, album, year)

	if err := s.cat.AddTrack(id, rec, fields["image"], audio); err != nil {
		fmt.Printf("%v\n", errMessage(err))
		return
	}
	s.syncTags(id)
	fmt.Println("Track added successfully.")
}

func (s *session) update(args []string) {
	fields, err := parseFields(args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	id := library.NormalizeID(fields["id"])
	if !s.cat.Has(id) {
		fmt.Println("Track ID not found.")
		return
	}

	var patch library.Patch
	if v, ok := fields["name"]; ok {
		patch.Name = &v
	}
	if v, ok := fields["artist"]; ok {
		patch.Artist = &v
	}
	if v, ok := fields["rating"]; ok {
		rating, err := strconv.Atoi(v)
		if err != nil {
			fmt.Println("Invalid rating input.")
			return
		}
		patch.Rating = &rating
	}
	if v, ok := fields["album"]; ok {
		patch.Album = &v
	}
	if v, ok := fields["year"]; ok {
		year, err := strconv.Atoi(v)
		if err != nil {
			fmt.Println("Invalid year input.")
			return
		}
		patch.Year = &year
	}

	if err := s.cat.UpdateMetadata(id, patch); err != nil {
		fmt.Printf("%v\n", errMessage(err))
		return
	}

	if img := fields["image"]; img != "" {
		if err := s.cat.Assets().CopyImage(img, id); err != nil {
			s.log.Warn("Image copy failed for track %s: %v", id, err)
		}
	}
	if audio := fields["audio"]; audio != "" {
		if err := s.cat.Assets().CopySound(audio, id); err != nil {
			s.log.Warn("Audio copy failed for track %s: %v", id, err)
		}
	}

	s.syncTags(id)
	fmt.Println("Track updated successfully.")
}

// syncTags stamps the catalog's metadata onto the stored audio asset, so
// the file and the table agree. Best effort.
func (s *session) syncTags(id string) {
	if !s.cat.Assets().HasSound(id) {
		return
	}
	rec, ok := s.cat.Record(id)
	if !ok {
		return
	}
	if err := tags.Write(s.cat.Assets().SoundPath(id), rec); err != nil {
		s.log.Debug("Tag sync failed for track %s: %v", id, err)
	}
}

func (s *session) removeTrack(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: remove <id>")
		return
	}
	id := library.NormalizeID(args[0])
	if err := s.cat.RemoveTrack(id); err != nil {
		fmt.Printf("%v\n", errMessage(err))
		return
	}
	fmt.Printf("Track %s deleted.\n", id)
}

func (s *session) rate(args []string) {
	if len(args) != 2 {
		fmt.Println("Usage: rate <id> <0-5>")
		return
	}
	id := library.NormalizeID(args[0])
	if !s.cat.Has(id) {
		fmt.Println("Track ID not found.")
		return
	}
	rating, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Println("Rating must be a number between 0 and 5.")
		return
	}
	if err := s.cat.SetRating(id, rating); err != nil {
		fmt.Printf("%v\n", errMessage(err))
		return
	}
	fmt.Println("Rating updated.")
}

func (s *session) queue(args []string) {
	if len(args) == 0 {
		list := s.seq.Playlist()
		if len(list) == 0 {
			fmt.Println("Playlist is empty.")
			return
		}
		s.printTracks(list)
		fmt.Printf("State: %s\n", s.seq.State())
		return
	}

	switch args[0] {
	case "add":
		added, invalid := s.seq.AddTracks(args[1:])
		if len(invalid) > 0 {
			fmt.Printf("Invalid: %s\n", strings.Join(invalid, ", "))
		}
		if len(added) > 0 {
			fmt.Println("Tracks added.")
		} else if len(invalid) == 0 {
			fmt.Println("No new valid tracks to add.")
		}
	case "remove":
		removed, invalid := s.seq.RemoveTracks(args[1:])
		switch {
		case len(removed) > 0 && len(invalid) > 0:
			fmt.Printf("Removed: %s | Invalid: %s\n", strings.Join(removed, ", "), strings.Join(invalid, ", "))
		case len(removed) > 0:
			fmt.Printf("Removed: %s\n", strings.Join(removed, ", "))
		default:
			fmt.Printf("No valid tracks found. Invalid: %s\n", strings.Join(invalid, ", "))
		}
	case "clear":
		s.seq.Reset()
		fmt.Println("Playlist reset.")
	default:
		fmt.Println("Usage: queue [add|remove|clear] [ids...]")
	}
}

func (s *session) savePlaylist(args []string) {
	path := s.cfg.PlaylistFile
	if len(args) > 0 {
		path = args[0]
	}
	if err := s.seq.ExportList(path); err != nil {
		fmt.Printf("%v\n", errMessage(err))
		return
	}
	fmt.Println("Playlist saved.")
}

func (s *session) loadPlaylist(args []string) {
	path := s.cfg.PlaylistFile
	if len(args) > 0 {
		path = args[0]
	}
	dropped, err := s.seq.ImportList(path)
	if err != nil {
		fmt.Printf("%v\n", errMessage(err))
		return
	}
	if len(dropped) > 0 {
		fmt.Printf("Dropped unknown tracks: %s\n", strings.Join(dropped, ", "))
	}
	fmt.Println("Playlist loaded.")
}

// errMessage maps the library's error taxonomy to the short status lines
// the session prints.
func errMessage(err error) string {
	switch {
	case errors.Is(err, library.ErrDuplicateID):
		return "Track ID already exists."
	case errors.Is(err, library.ErrNotFound):
		return "Track ID not found."
	case errors.Is(err, library.ErrInvalidRating):
		return "Rating must be between 0 and 5."
	case errors.Is(err, player.ErrEmptyPlaylist):
		return "No tracks in playlist."
	default:
		return err.Error()
	}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// splitArgs splits a command line into tokens, honoring double quotes.
func splitArgs(line string) ([]string, error) {
	var args []string
	var cur strings.Builder
	inQuote := false
	hasToken := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			hasToken = true
		case r == ' ' || r == '\t':
			if inQuote {
				cur.WriteRune(r)
			} else if hasToken {
				args = append(args, cur.String())
				cur.Reset()
				hasToken = false
			}
		default:
			cur.WriteRune(r)
			hasToken = true
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote")
	}
	if hasToken {
		args = append(args, cur.String())
	}
	return args, nil
}

// parseFields turns key=value tokens into a map. Values may be quoted at
// the token level ("name=Take Five" already arrives joined by splitArgs).
func parseFields(args []string) (map[string]string, error) {
	fields := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		fields[key] = value
	}
	return fields, nil
}
