package main

import (
	"fmt"
	"os"

	"tracklib/internal/config"
)

// parseArgs parses command-line arguments and loads configuration.
// Priority: CLI flags > config file > defaults
func parseArgs() (config.Config, string, error) {
	args := os.Args[1:]

	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			printUsage()
			os.Exit(0)
		}
		if arg == "--init-config" {
			return config.Config{}, "", initConfigFile()
		}
	}

	var configPath string
	var cfg config.Config
	var err error

	for i := 0; i < len(args); i++ {
		if args[i] == "--config" || args[i] == "-c" {
			if i+1 >= len(args) {
				return config.Config{}, "", fmt.Errorf("--config requires a path argument")
			}
			configPath = args[i+1]
			break
		}
	}

	cfg, err = config.LoadConfigFile(configPath)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("failed to load config: %w", err)
	}
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "--verbose", "-v":
			cfg.Verbose = true

		case "--watch", "-w":
			cfg.WatchLibrary = true

		case "--library", "-l":
			if i+1 >= len(args) {
				return config.Config{}, "", fmt.Errorf("--library requires a file argument")
			}
			i++
			cfg.LibraryFile = config.ExpandHome(args[i])

		case "--sink", "-s":
			if i+1 >= len(args) {
				return config.Config{}, "", fmt.Errorf("--sink requires a path argument")
			}
			i++
			cfg.PCMSink = config.ExpandHome(args[i])

		case "--config", "-c":
			i++

		default:
			return config.Config{}, "", fmt.Errorf("unknown argument: %s", arg)
		}
	}

	return cfg, configPath, nil
}

// initConfigFile creates a new config file with default values
func initConfigFile() error {
	path := config.GetDefaultConfigPath()

	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config file already exists at: %s\n", path)
		fmt.Println("Delete it first if you want to recreate it.")
		os.Exit(0)
	}

	cfg := config.DefaultConfig()

	if err := config.SaveConfigFile(cfg, path); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Printf("Created default config file at: %s\n", path)
	fmt.Println("\nYou can now edit this file to customize your settings.")
	fmt.Println("Available options:")
	fmt.Println("  library_file: path to the track table CSV")
	fmt.Println("  image_dir / sound_dir: asset directories")
	fmt.Println("  fallback_image: image shown for tracks without cover art")
	fmt.Println("  playlist_file: default playlist save/load path")
	fmt.Println("  pcm_sink: file or pipe that receives decoded audio")
	fmt.Println("  watch_library: true/false (reload when the CSV changes on disk)")
	fmt.Println("  verbose: true/false (enable detailed logging)")

	os.Exit(0)
	return nil
}

// printUsage displays the help message
func printUsage() {
	fmt.Println("tracklib - manage and play a local track library")
	fmt.Println()
	fmt.Println("Usage: tracklib [options]")
	fmt.Println()
	fmt.Println("Starts an interactive session over the track catalog.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -v, --verbose              Show detailed output")
	fmt.Println("  -l, --library <path>       Track table CSV (default: tracks.csv)")
	fmt.Println("  -w, --watch                Reload the catalog when the CSV changes on disk")
	fmt.Println("  -s, --sink <path>          File or pipe that receives decoded audio")
	fmt.Println("  -c, --config <path>        Path to config file")
	fmt.Println("  -h, --help                 Show this help message")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println("  --init-config              Create a default config file")
	fmt.Println()
	fmt.Println("Config file locations (checked in order):")
	fmt.Println("  ./tracklib.yaml")
	fmt.Println("  ~/.config/tracklib/config.yaml")
	fmt.Println("  ~/.tracklib.yaml")
	fmt.Println()
	fmt.Println("Session commands:")
	fmt.Println("  list, search, filter, describe       browse the catalog")
	fmt.Println("  add, update, remove, rate            edit the catalog")
	fmt.Println("  queue, play, pause, stop             control playback")
	fmt.Println("  save, load                           persist the playlist")
	fmt.Println("  help, quit")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Open the library next to the current directory")
	fmt.Println("  tracklib")
	fmt.Println()
	fmt.Println("  # Use a specific library and pipe audio to aplay")
	fmt.Println("  mkfifo /tmp/pcm && aplay -f cd /tmp/pcm &")
	fmt.Println("  tracklib -l ~/music/tracks.csv -s /tmp/pcm")
}
