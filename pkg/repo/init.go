package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/grit/pkg/object"
	"github.com/odvcencio/grit/pkg/snapshot"
	"github.com/sirupsen/logrus"
)

// ErrAlreadyInitialized is returned by Init when the repository directory
// already holds a config.toml.
var ErrAlreadyInitialized = errors.New("repository already initialized")

const (
	levelDBName = "objects.ldb"
	sqliteName  = "objects.db"
)

// Init creates a repository at repoDir for workTree: the directory itself,
// the backend selected by cfg and config.toml. It fails if config.toml
// already exists.
func Init(workTree, repoDir string, cfg Config, opts ...Option) (*Repo, error) {
	o := buildOptions(opts)
	workTree, repoDir, err := absPaths(workTree, repoDir)
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	if _, err := os.Stat(filepath.Join(repoDir, ConfigFile)); err == nil {
		return nil, fmt.Errorf("init: %w at %s", ErrAlreadyInitialized, repoDir)
	}
	if err := os.MkdirAll(repoDir, 0o755); err != nil {
		return nil, fmt.Errorf("init: mkdir %s: %w", repoDir, err)
	}

	backend, err := createBackend(repoDir, &cfg, o.log)
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	if err := WriteConfig(repoDir, &cfg); err != nil {
		backend.Close()
		return nil, fmt.Errorf("init: %w", err)
	}

	r := newRepo(workTree, repoDir, &cfg, backend, o.log)
	r.log.WithFields(logrus.Fields{
		"dir":     repoDir,
		"backend": cfg.Storage.Backend,
	}).Info("initialized repository")
	return r, nil
}

// Open opens the repository at repoDir for workTree. A missing repository
// directory or backend is object.ErrNotInitialized.
func Open(workTree, repoDir string, opts ...Option) (*Repo, error) {
	o := buildOptions(opts)
	workTree, repoDir, err := absPaths(workTree, repoDir)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	info, err := os.Stat(repoDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", repoDir, object.ErrNotInitialized)
		}
		return nil, fmt.Errorf("open: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open %s: %w: not a directory", repoDir, object.ErrNotInitialized)
	}

	cfg, err := LoadConfig(repoDir)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	backend, err := openBackend(repoDir, cfg, o.log)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	r := newRepo(workTree, repoDir, cfg, backend, o.log)
	if err := r.Store.EnsureReady(); err != nil {
		r.Close()
		return nil, fmt.Errorf("open: %w", err)
	}
	r.log.WithFields(logrus.Fields{
		"dir":     repoDir,
		"backend": cfg.Storage.Backend,
	}).Debug("opened repository")
	return r, nil
}

func newRepo(workTree, repoDir string, cfg *Config, backend object.Backend, log logrus.FieldLogger) *Repo {
	store := object.NewStore(backend,
		object.WithLogger(log),
		object.WithVerifyOnRead(cfg.Storage.VerifyOnRead),
	)
	engine := snapshot.New(store,
		snapshot.WithLogger(log),
		snapshot.WithSymlinks(cfg.SymlinkPolicy()),
		snapshot.WithParallelism(cfg.Snapshot.Parallelism),
	)
	return &Repo{
		WorkTree: workTree,
		Dir:      repoDir,
		Config:   cfg,
		Store:    store,
		Engine:   engine,
		log:      log,
	}
}

func createBackend(repoDir string, cfg *Config, log logrus.FieldLogger) (object.Backend, error) {
	switch cfg.Storage.Backend {
	case BackendLevelDB:
		return object.CreateLevelDB(filepath.Join(repoDir, levelDBName), log)
	case BackendSQLite:
		return object.CreateSQLite(filepath.Join(repoDir, sqliteName), log)
	default:
		return object.CreateLoose(repoDir, looseOptions(cfg, log))
	}
}

func openBackend(repoDir string, cfg *Config, log logrus.FieldLogger) (object.Backend, error) {
	switch cfg.Storage.Backend {
	case BackendLevelDB:
		return object.OpenLevelDB(filepath.Join(repoDir, levelDBName), log)
	case BackendSQLite:
		return object.OpenSQLite(filepath.Join(repoDir, sqliteName), log)
	default:
		return object.NewLoose(repoDir, looseOptions(cfg, log)), nil
	}
}

func looseOptions(cfg *Config, log logrus.FieldLogger) object.LooseOptions {
	return object.LooseOptions{
		Compress: cfg.Storage.Compression == CompressionZstd,
		Logger:   log,
	}
}

func absPaths(workTree, repoDir string) (string, string, error) {
	if workTree == "" {
		workTree = "."
	}
	absWork, err := filepath.Abs(workTree)
	if err != nil {
		return "", "", fmt.Errorf("abs path: %w", err)
	}
	if repoDir == "" {
		return absWork, filepath.Join(absWork, DefaultDirName), nil
	}
	absRepo, err := filepath.Abs(repoDir)
	if err != nil {
		return "", "", fmt.Errorf("abs path: %w", err)
	}
	return absWork, absRepo, nil
}
