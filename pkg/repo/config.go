package repo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/odvcencio/grit/pkg/snapshot"
)

// ConfigFile is the name of the configuration file inside the repository
// directory.
const ConfigFile = "config.toml"

// DefaultIgnoreFile is the pattern file read from the work tree root.
const DefaultIgnoreFile = ".gritignore"

// Storage backends.
const (
	BackendLoose   = "loose"
	BackendLevelDB = "leveldb"
	BackendSQLite  = "sqlite"
)

// Compression modes for the loose backend.
const (
	CompressionNone = "none"
	CompressionZstd = "zstd"
)

// Config is the content of config.toml.
type Config struct {
	Storage  StorageConfig  `toml:"storage"`
	Snapshot SnapshotConfig `toml:"snapshot"`
}

// StorageConfig selects and tunes the object store backend.
type StorageConfig struct {
	Backend      string `toml:"backend"`
	Compression  string `toml:"compression"`
	VerifyOnRead bool   `toml:"verify_on_read"`
}

// SnapshotConfig tunes write-tree.
type SnapshotConfig struct {
	// Ignore lists extra excluded paths, relative to the work tree or
	// absolute. The repository directory is always excluded.
	Ignore      []string `toml:"ignore"`
	IgnoreFile  string   `toml:"ignore_file"`
	Symlinks    string   `toml:"symlinks"`
	Parallelism int      `toml:"parallelism"`
}

// DefaultConfig returns the configuration used when config.toml is absent.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend:      BackendLoose,
			Compression:  CompressionNone,
			VerifyOnRead: true,
		},
		Snapshot: SnapshotConfig{
			IgnoreFile:  DefaultIgnoreFile,
			Symlinks:    snapshot.SymlinkReject.String(),
			Parallelism: 1,
		},
	}
}

// Validate checks every field and fills empty ones with their defaults.
func (c *Config) Validate() error {
	def := DefaultConfig()

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case "":
		c.Storage.Backend = def.Storage.Backend
	case BackendLoose, BackendLevelDB, BackendSQLite:
	default:
		return fmt.Errorf("config: storage.backend %q: want %s, %s or %s",
			c.Storage.Backend, BackendLoose, BackendLevelDB, BackendSQLite)
	}

	c.Storage.Compression = strings.ToLower(strings.TrimSpace(c.Storage.Compression))
	switch c.Storage.Compression {
	case "":
		c.Storage.Compression = CompressionNone
	case CompressionNone:
	case CompressionZstd:
		if c.Storage.Backend != BackendLoose {
			return fmt.Errorf("config: storage.compression %q is only supported by the %s backend",
				c.Storage.Compression, BackendLoose)
		}
	default:
		return fmt.Errorf("config: storage.compression %q: want %s or %s",
			c.Storage.Compression, CompressionNone, CompressionZstd)
	}

	if _, err := snapshot.ParseSymlinkPolicy(c.Snapshot.Symlinks); err != nil {
		return fmt.Errorf("config: snapshot.symlinks: %w", err)
	}
	if c.Snapshot.Symlinks == "" {
		c.Snapshot.Symlinks = def.Snapshot.Symlinks
	}

	switch {
	case c.Snapshot.Parallelism < 0:
		return fmt.Errorf("config: snapshot.parallelism must not be negative, got %d", c.Snapshot.Parallelism)
	case c.Snapshot.Parallelism == 0:
		c.Snapshot.Parallelism = def.Snapshot.Parallelism
	}
	return nil
}

// SymlinkPolicy returns the parsed snapshot.symlinks value.
func (c *Config) SymlinkPolicy() snapshot.SymlinkPolicy {
	p, _ := snapshot.ParseSymlinkPolicy(c.Snapshot.Symlinks)
	return p
}

// LoadConfig reads the config.toml in repoDir. A missing file yields the
// defaults. Unknown keys and invalid values are errors.
func LoadConfig(repoDir string) (*Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(repoDir, ConfigFile)

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("read config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WriteConfig atomically writes cfg to repoDir/config.toml.
func WriteConfig(repoDir string, cfg *Config) error {
	if cfg == nil {
		def := DefaultConfig()
		cfg = &def
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(repoDir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(repoDir, ConfigFile)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}
