package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DirName is the name of both the global (~/.shotcap) and repo-local (.shotcap) config directories.
const DirName = ".shotcap"

// Store drivers.
const (
	StoreDriverJSON   = "json"
	StoreDriverSQLite = "sqlite"
)

// Config holds application configuration.
type Config struct {
	// StorePath is the capture store location. Relative paths resolve against the working directory.
	StorePath string `json:"store_path,omitempty"`

	// StoreDriver selects the backend: "json" (default, flat JSON array) or "sqlite".
	StoreDriver string `json:"store_driver,omitempty"`

	// TitleMaxWords caps the number of words kept in a capture title (at most 8).
	TitleMaxWords int `json:"title_max_words,omitempty"`

	// OCRDisabled skips tesseract entirely; ingestion falls back to --text or the file name.
	OCRDisabled bool `json:"ocr_disabled,omitempty"`

	// TesseractPath is the tesseract binary name or absolute path.
	TesseractPath string `json:"tesseract_path,omitempty"`

	// TesseractLang is passed to tesseract -l.
	TesseractLang string `json:"tesseract_lang,omitempty"`

	// TessdataDir is passed to tesseract --tessdata-dir when set.
	TessdataDir string `json:"tessdata_dir,omitempty"`

	// OCRTimeoutSeconds bounds a single tesseract run.
	OCRTimeoutSeconds int `json:"ocr_timeout_seconds,omitempty"`

	// WatchExtensions adds file extensions (without dot) picked up by `shotcap watch`.
	WatchExtensions []string `json:"watch_extensions,omitempty"`

	// WatchDebounceMS coalesces bursts of write events for one file.
	WatchDebounceMS int `json:"watch_debounce_ms,omitempty"`

	// LogLevel is "info" (default) or "debug".
	LogLevel string `json:"log_level,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		StorePath:         "captures.json",
		StoreDriver:       StoreDriverJSON,
		TitleMaxWords:     8,
		TesseractPath:     "tesseract",
		TesseractLang:     "eng",
		OCRTimeoutSeconds: 30,
		WatchDebounceMS:   500,
		LogLevel:          "info",
	}
}

// OCRTimeout returns OCRTimeoutSeconds as a duration.
func (c *Config) OCRTimeout() time.Duration {
	return time.Duration(c.OCRTimeoutSeconds) * time.Second
}

// WatchDebounce returns WatchDebounceMS as a duration.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMS) * time.Millisecond
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.shotcap.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.shotcap) and repo (.shotcap) directories.
// Repo config is found by walking upward from startDir to find the nearest .shotcap/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .shotcap/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, DirName, "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the path is empty or the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		StorePath:         firstString(overlay.StorePath, base.StorePath),
		StoreDriver:       firstString(overlay.StoreDriver, base.StoreDriver),
		TesseractPath:     firstString(overlay.TesseractPath, base.TesseractPath),
		TesseractLang:     firstString(overlay.TesseractLang, base.TesseractLang),
		TessdataDir:       firstString(overlay.TessdataDir, base.TessdataDir),
		LogLevel:          firstString(overlay.LogLevel, base.LogLevel),
		TitleMaxWords:     firstInt(overlay.TitleMaxWords, base.TitleMaxWords),
		OCRTimeoutSeconds: firstInt(overlay.OCRTimeoutSeconds, base.OCRTimeoutSeconds),
		WatchDebounceMS:   firstInt(overlay.WatchDebounceMS, base.WatchDebounceMS),
	}

	// Booleans: overlay wins if true, else base
	result.OCRDisabled = base.OCRDisabled || overlay.OCRDisabled

	result.WatchExtensions = mergeStringSlice(base.WatchExtensions, overlay.WatchExtensions)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func firstString(overlay, base string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

func firstInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
