package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config contains the program configuration
type Config struct {
	LibraryFile   string `yaml:"library_file"`
	ImageDir      string `yaml:"image_dir"`
	SoundDir      string `yaml:"sound_dir"`
	FallbackImage string `yaml:"fallback_image"`
	PlaylistFile  string `yaml:"playlist_file"`
	PCMSink       string `yaml:"pcm_sink"`
	WatchLibrary  bool   `yaml:"watch_library"`
	Verbose       bool   `yaml:"verbose"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		LibraryFile:   "tracks.csv",
		ImageDir:      "track_images",
		SoundDir:      "track_sounds",
		FallbackImage: filepath.Join("track_images", "default.jpg"),
		PlaylistFile:  "playlist.csv",
		WatchLibrary:  false,
		Verbose:       false,
	}
}

// LoadConfigFile loads configuration from a YAML file.
// If path is empty, searches standard locations. Returns defaults if no file found.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.LibraryFile = ExpandHome(cfg.LibraryFile)
	cfg.ImageDir = ExpandHome(cfg.ImageDir)
	cfg.SoundDir = ExpandHome(cfg.SoundDir)
	cfg.FallbackImage = ExpandHome(cfg.FallbackImage)
	cfg.PlaylistFile = ExpandHome(cfg.PlaylistFile)
	cfg.PCMSink = ExpandHome(cfg.PCMSink)

	return cfg, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := homeDir()
	locations := []string{
		"./tracklib.yaml",
		"./tracklib.yml",
		filepath.Join(home, ".config", "tracklib", "config.yaml"),
		filepath.Join(home, ".config", "tracklib", "config.yml"),
		filepath.Join(home, ".tracklib.yaml"),
		filepath.Join(home, ".tracklib.yml"),
	}

	for _, path := range locations {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// SaveConfigFile saves the current configuration to a YAML file
func SaveConfigFile(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default config file path
func GetDefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "tracklib", "config.yaml")
}

// GetDefaultLogPath returns the default log directory path
func GetDefaultLogPath() string {
	return filepath.Join(homeDir(), ".local", "share", "tracklib", "logs")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.LibraryFile == "" {
		return fmt.Errorf("library_file cannot be empty")
	}
	if filepath.Ext(c.LibraryFile) != ".csv" {
		return fmt.Errorf("library_file must be a .csv file, got %s", c.LibraryFile)
	}
	if c.ImageDir == "" {
		return fmt.Errorf("image_dir cannot be empty")
	}
	if c.SoundDir == "" {
		return fmt.Errorf("sound_dir cannot be empty")
	}
	if c.ImageDir == c.SoundDir {
		return fmt.Errorf("image_dir and sound_dir must be different directories")
	}
	if c.PlaylistFile == "" {
		return fmt.Errorf("playlist_file cannot be empty")
	}
	return nil
}
