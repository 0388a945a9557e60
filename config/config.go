// Package config reads and writes the profile-keyed credential file used
// to open sessions without passing credentials on every call.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultProfile is used when a caller does not name one.
const DefaultProfile = "DEFAULT"

// Profile holds one named set of connection credentials.
type Profile struct {
	Host     string `json:"Host"`
	Tenant   string `json:"Tenant"`
	Username string `json:"Username"`
	Password string `json:"Password"`
}

// File is the on-disk JSON document: a profile name to credential mapping.
type File map[string]Profile

// DefaultPath returns ~/.preservica/config.json for the current user.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home directory: %w", err)
	}
	return filepath.Join(home, ".preservica", "config.json"), nil
}

// Load reads and parses the config file at path.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return f, nil
}

// LoadProfile loads path and returns the named profile.
func LoadProfile(path, profile string) (Profile, error) {
	if profile == "" {
		profile = DefaultProfile
	}
	f, err := Load(path)
	if err != nil {
		return Profile{}, err
	}
	p, ok := f[profile]
	if !ok {
		return Profile{}, fmt.Errorf("config: profile %q not found in %s", profile, path)
	}
	return p, nil
}

// Write merges profile into the config file at path under the given
// profile name, creating the file and its parent directory if needed. The
// write is atomic: content is written to a temp file in the same
// directory, then renamed over the target.
func Write(path, profile string, p Profile) error {
	if profile == "" {
		profile = DefaultProfile
	}

	f, err := Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		f = File{}
	}
	f[profile] = p

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("config: create %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(f, "", " ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("config: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("config: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("config: close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		return fmt.Errorf("config: set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("config: replace %s: %w", path, err)
	}
	return nil
}
