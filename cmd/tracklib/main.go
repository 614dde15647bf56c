package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"tracklib/internal/assets"
	"tracklib/internal/config"
	"tracklib/internal/library"
	"tracklib/internal/logger"
	"tracklib/internal/player"
	"tracklib/internal/shutdown"
	"tracklib/pkg/utils"
)

func main() {
	cfg, configPath, err := parseArgs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}

	sh := shutdown.New()
	sh.Listen()

	log := logger.New(cfg.Verbose)
	defer log.Close()

	if !cfg.Verbose {
		logDir := config.GetDefaultLogPath()
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] Failed to create log directory: %v\n", err)
		} else {
			logFile := filepath.Join(logDir, fmt.Sprintf("tracklib_%s.log", time.Now().Format("2006-01-02_15-04-05")))
			if err := log.SetFileLog(logFile); err != nil {
				fmt.Fprintf(os.Stderr, "[WARN] Failed to setup file logging: %v\n", err)
			} else {
				log.Debug("Logging to file: %s", logFile)
			}
		}
	}

	if cfg.Verbose && configPath != "" {
		log.Debug("Loaded configuration from: %s", configPath)
	}

	if err := cfg.Validate(); err != nil {
		log.Error("Configuration error: %v", err)
		os.Exit(1)
	}

	if err := run(sh, cfg, log); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

func run(sh *shutdown.Handler, cfg config.Config, log *logger.Logger) error {
	for _, dir := range []string{cfg.ImageDir, cfg.SoundDir} {
		if err := utils.EnsureDir(dir); err != nil {
			return err
		}
	}

	store := assets.NewStore(cfg.ImageDir, cfg.SoundDir, cfg.FallbackImage)
	cat := library.NewCatalog(cfg.LibraryFile, store, log)

	bad, err := cat.Load()
	if err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}
	for _, rowErr := range bad {
		log.Warn("%v (row skipped)", rowErr)
	}
	log.Debug("Loaded %d tracks from %s", cat.Len(), cfg.LibraryFile)

	sink, err := openSink(cfg.PCMSink)
	if err != nil {
		return err
	}
	out := player.NewMP3Output(sink)
	seq := player.NewSequencer(cat, out, log, player.Hooks{
		OnNowPlaying: func(id string) {
			fmt.Printf("Now playing: %s (%s - %s)\n", id, cat.Name(id), cat.Artist(id))
		},
		OnSkipped: func(id, reason string) {
			fmt.Printf("Skipped: %s (%s)\n", id, reason)
		},
		OnError: func(id string, err error) {
			log.Error("Error playing track %s: %v", id, err)
		},
		OnFinished: func() {
			fmt.Println("All tracks played.")
		},
	})
	sh.AddCleanup(seq.Stop)

	var watcher *library.Watcher
	if cfg.WatchLibrary {
		watcher, err = library.NewWatcher(sh.Context(), cat, log)
		if err != nil {
			return err
		}
		sh.AddCleanup(func() { watcher.Close() })
		log.Debug("Watching %s for external changes", cfg.LibraryFile)
	}

	s := newSession(cfg, log, cat, seq, watcher)
	return s.run(sh.Context())
}

// openSink resolves where decoded audio goes. With no sink configured the
// player decodes in real time but the samples are discarded.
func openSink(path string) (io.Writer, error) {
	if path == "" {
		return io.Discard, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio sink %s: %w", path, err)
	}
	return f, nil
}
