package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Loader loads and merges Settings from the user and project config dirs.
type Loader struct {
	userDir    string
	projectDir string
}

// NewLoader creates a loader defaulting to ~/.soloclaw and .soloclaw.
func NewLoader() *Loader {
	homeDir, _ := os.UserHomeDir()
	return &Loader{
		userDir:    filepath.Join(homeDir, ".soloclaw"),
		projectDir: ".soloclaw",
	}
}

// NewLoaderWithOptions creates a loader with explicit directories.
func NewLoaderWithOptions(userDir, projectDir string) *Loader {
	return &Loader{userDir: userDir, projectDir: projectDir}
}

// Load reads, in priority order (lowest to highest):
//  1. ~/.soloclaw/settings.json
//  2. .soloclaw/settings.json
//  3. .soloclaw/settings.local.json
//
// Missing or unparsable files are skipped; a later source overrides an
// earlier one field-by-field.
func (l *Loader) Load() (*Settings, error) {
	settings := NewSettings()

	sources := []string{
		filepath.Join(l.userDir, "settings.json"),
		filepath.Join(l.projectDir, "settings.json"),
		filepath.Join(l.projectDir, "settings.local.json"),
	}

	for _, src := range sources {
		data, err := os.ReadFile(src)
		if err != nil {
			continue
		}
		var s Settings
		if err := json.Unmarshal(data, &s); err != nil {
			continue
		}
		settings = MergeSettings(settings, &s)
	}

	return settings, nil
}

// EnsureProjectDir creates the project config directory if missing.
func (l *Loader) EnsureProjectDir() error {
	return os.MkdirAll(l.projectDir, 0o755)
}

// SaveToProject writes settings to the project-level settings file,
// merged with whatever is already there.
func (l *Loader) SaveToProject(settings *Settings) error {
	path := filepath.Join(l.projectDir, "settings.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	toSave := settings
	if data, err := os.ReadFile(path); err == nil {
		var existing Settings
		if err := json.Unmarshal(data, &existing); err == nil {
			toSave = MergeSettings(&existing, settings)
		}
	}

	data, err := json.MarshalIndent(toSave, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

var loadedSettings *Settings

// Load is a convenience function using the default loader, cached after
// the first call.
func Load() (*Settings, error) {
	if loadedSettings != nil {
		return loadedSettings, nil
	}
	settings, err := NewLoader().Load()
	if err != nil {
		return nil, err
	}
	loadedSettings = settings
	return loadedSettings, nil
}

// Reload clears the cache and loads again.
func Reload() (*Settings, error) {
	loadedSettings = nil
	return Load()
}
