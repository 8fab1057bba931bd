// Package cache is the local persistence layer: serialized library copies as
// BibTeX files, the remote-store config, and timestamped share copies. It
// holds serialized snapshots only, never live collection references.
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"refhub/src/internal/bibtex"
	"refhub/src/internal/record"
)

const (
	librariesDir   = "libraries"
	shareDir       = "share"
	remoteConfig   = "remote.yaml"
	defaultLibrary = "library.bib"
)

// RemoteConfig is the persisted remote-store configuration. The password is
// deliberately absent: it comes from the environment.
type RemoteConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Filename string `yaml:"filename"`
	Insecure bool   `yaml:"insecure,omitempty"`
}

// Cache is rooted at a directory (default "cache" under the working dir).
type Cache struct {
	Root string
}

// Open ensures the cache directory layout exists.
func Open(root string) (*Cache, error) {
	if strings.TrimSpace(root) == "" {
		root = "cache"
	}
	for _, d := range []string{root, filepath.Join(root, librariesDir), filepath.Join(root, shareDir)} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, err
		}
	}
	return &Cache{Root: root}, nil
}

// DefaultLibrary is the library filename used when none is given.
func DefaultLibrary() string { return defaultLibrary }

// normalizeName forces a flat ".bib" filename inside the libraries dir.
func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultLibrary
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid library name %q", name)
	}
	if !strings.HasSuffix(name, ".bib") {
		name += ".bib"
	}
	return name, nil
}

// LibraryPath returns the on-disk path for a library name.
func (c *Cache) LibraryPath(name string) (string, error) {
	name, err := normalizeName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(c.Root, librariesDir, name), nil
}

// SaveLibrary serializes records to the named library under an exclusive file
// lock so concurrent invocations cannot interleave writes.
func (c *Cache) SaveLibrary(name string, records []record.Record) (string, error) {
	path, err := c.LibraryPath(name)
	if err != nil {
		return "", err
	}
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return "", fmt.Errorf("lock %s: %w", path, err)
	}
	defer func() { _ = lock.Unlock() }()
	if err := os.WriteFile(path, []byte(bibtex.Format(records)), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// LoadLibrary reads and parses the named library. A missing file is an empty
// collection, not an error.
func (c *Cache) LoadLibrary(name string) ([]record.Record, error) {
	path, err := c.LibraryPath(name)
	if err != nil {
		return nil, err
	}
	lock := flock.New(path + ".lock")
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	defer func() { _ = lock.Unlock() }()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	recs, err := bibtex.Decode(string(data))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return recs, nil
}

// ListLibraries returns the cached library filenames, sorted.
func (c *Cache) ListLibraries() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(c.Root, librariesDir))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".bib") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ShareLibrary copies a cached library into the share dir under a timestamped
// name and returns the copy's path.
func (c *Cache) ShareLibrary(name string) (string, error) {
	src, err := c.LibraryPath(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return "", err
	}
	base := strings.TrimSuffix(filepath.Base(src), ".bib")
	stamp := time.Now().Format("20060102_150405")
	dst := filepath.Join(c.Root, shareDir, fmt.Sprintf("%s_share_%s.bib", base, stamp))
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", err
	}
	return dst, nil
}

// SaveRemoteConfig persists the remote-store settings as YAML.
func (c *Cache) SaveRemoteConfig(cfg RemoteConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.Root, remoteConfig), data, 0o600)
}

// LoadRemoteConfig reads the remote-store settings. Missing config returns
// (nil, nil).
func (c *Cache) LoadRemoteConfig() (*RemoteConfig, error) {
	data, err := os.ReadFile(filepath.Join(c.Root, remoteConfig))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg RemoteConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid remote config: %w", err)
	}
	return &cfg, nil
}
