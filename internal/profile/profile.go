// Package profile stores named PostgreSQL connection profiles in the
// user's config directory, with an optional default applied when a command
// gets neither --db nor --profile.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

const storeFileName = "profiles.yaml"

var configDirFunc = configDir

// Profile is one named connection entry.
type Profile struct {
	Name    string
	ConnStr string
}

// store is the on-disk document. Profiles are keyed by name so add and
// remove are simple map operations; ordering is applied at read time.
type store struct {
	Default  string            `yaml:"default,omitempty"`
	Profiles map[string]string `yaml:"profiles"`
}

// Resolve returns the connection string saved under name.
func Resolve(name string) (string, error) {
	s, err := read()
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", fmt.Errorf("no profiles configured; run 'pgimpact profile add'")
	}
	conn, ok := s.Profiles[name]
	if !ok {
		return "", fmt.Errorf("profile %q not found", name)
	}
	return conn, nil
}

// List returns all profiles sorted by name.
func List() ([]Profile, error) {
	s, err := read()
	if err != nil || s == nil {
		return nil, err
	}
	names := make([]string, 0, len(s.Profiles))
	for name := range s.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	var out []Profile
	for _, name := range names {
		out = append(out, Profile{Name: name, ConnStr: s.Profiles[name]})
	}
	return out, nil
}

// Add creates or updates a profile.
func Add(name, connStr string) error {
	if name == "" || name == "-" {
		return fmt.Errorf("invalid profile name %q", name)
	}
	s, err := read()
	if err != nil {
		return err
	}
	if s == nil {
		s = &store{}
	}
	if s.Profiles == nil {
		s.Profiles = make(map[string]string)
	}
	s.Profiles[name] = connStr
	return write(s)
}

// Remove deletes a profile, clearing the default if it pointed there.
func Remove(name string) error {
	s, err := read()
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("profile %q not found", name)
	}
	if _, ok := s.Profiles[name]; !ok {
		return fmt.Errorf("profile %q not found", name)
	}
	delete(s.Profiles, name)
	if s.Default == name {
		s.Default = ""
	}
	return write(s)
}

// ResolveConnStr picks the connection string for a command invocation: an
// explicit --db wins, then a named profile, then the stored default. An
// empty result means text-input-only mode, not an error.
func ResolveConnStr(db, profileName string) (string, error) {
	if db != "" {
		return db, nil
	}
	if profileName != "" {
		return Resolve(profileName)
	}
	s, err := read()
	if err != nil || s == nil || s.Default == "" {
		return "", err
	}
	return Resolve(s.Default)
}

// SetDefault marks an existing profile as the default.
func SetDefault(name string) error {
	s, err := read()
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("profile %q not found", name)
	}
	if _, ok := s.Profiles[name]; !ok {
		return fmt.Errorf("profile %q not found", name)
	}
	s.Default = name
	return write(s)
}

// GetDefault returns the default profile name, or "" when none is set.
func GetDefault() (string, error) {
	s, err := read()
	if err != nil || s == nil {
		return "", err
	}
	return s.Default, nil
}

// ClearDefault unsets the default profile. A missing config is not an
// error; there is nothing to clear.
func ClearDefault() error {
	s, err := read()
	if err != nil || s == nil {
		return err
	}
	s.Default = ""
	return write(s)
}

// read returns nil with no error when the store file does not exist yet.
func read() (*store, error) {
	path, err := storePath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s store
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &s, nil
}

func write(s *store) error {
	path, err := storePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

func configDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("finding config directory: %w", err)
	}
	return filepath.Join(base, "pgimpact"), nil
}

func storePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, storeFileName), nil
}
