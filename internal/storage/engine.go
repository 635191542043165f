package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Pessina/minredis/internal/storage/memory"
	"github.com/Pessina/minredis/internal/storage/snapshot"
	"github.com/Pessina/minredis/pkg/crypto/adaptive"
)

// Default configuration values.
const (
	DefaultDir          = "store"
	DefaultSnapshotName = "dump"
)

// Config configures the storage engine.
type Config struct {
	// Dir is the snapshot directory, created on first save.
	Dir string

	// SnapshotName is used when Save or Load is called with an empty name.
	SnapshotName string

	// LoadOnStart seeds the store from SnapshotName when it exists.
	LoadOnStart bool

	// Cipher seals snapshot data when non-nil.
	Cipher *adaptive.Cipher

	// Clock overrides time.Now for the store. Tests only.
	Clock func() time.Time

	Logger *slog.Logger
}

// DefaultConfig returns the default storage configuration.
func DefaultConfig() Config {
	return Config{
		Dir:          DefaultDir,
		SnapshotName: DefaultSnapshotName,
		Logger:       slog.Default(),
	}
}

// Engine owns the shared store and its snapshots.
type Engine struct {
	cfg   Config
	store *memory.Store
	snaps *snapshot.Manager

	// saveMu serializes snapshot writers so concurrent SAVEs of the same
	// name do not race on the temp file.
	saveMu sync.Mutex
}

// New builds an engine. With LoadOnStart set, a missing snapshot starts an
// empty store while any other load failure is returned.
func New(cfg Config) (*Engine, error) {
	if cfg.Dir == "" {
		cfg.Dir = DefaultDir
	}
	if cfg.SnapshotName == "" {
		cfg.SnapshotName = DefaultSnapshotName
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	snaps, err := snapshot.NewManager(snapshot.Config{Dir: cfg.Dir, Cipher: cfg.Cipher})
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	e := &Engine{cfg: cfg, snaps: snaps}

	if cfg.LoadOnStart {
		cells, info, err := snaps.Load(cfg.SnapshotName)
		switch {
		case err == nil:
			e.store = memory.FromCells(cells, e.storeOptions()...)
			cfg.Logger.Info("snapshot loaded",
				"name", info.Name,
				"keys", info.KeyCount,
				"created_at", info.CreatedAt)
		case errors.Is(err, snapshot.ErrNotFound):
			cfg.Logger.Info("no snapshot to load, starting empty", "name", cfg.SnapshotName)
		default:
			return nil, fmt.Errorf("storage: load %q: %w", cfg.SnapshotName, err)
		}
	}
	if e.store == nil {
		e.store = memory.New(e.storeOptions()...)
	}

	return e, nil
}

func (e *Engine) storeOptions() []memory.Option {
	if e.cfg.Clock == nil {
		return nil
	}
	return []memory.Option{memory.WithClock(e.cfg.Clock)}
}

// Store returns the shared store.
func (e *Engine) Store() *memory.Store {
	return e.store
}

// SnapshotName returns the default snapshot name.
func (e *Engine) SnapshotName() string {
	return e.cfg.SnapshotName
}

// Save drops expired cells and writes the rest to the snapshot called name.
func (e *Engine) Save(name string) (*snapshot.Info, error) {
	if name == "" {
		name = e.cfg.SnapshotName
	}

	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	start := time.Now()
	swept := e.store.Sweep()
	info, err := e.snaps.Save(name, e.store.Cells())
	if err != nil {
		e.cfg.Logger.Error("snapshot save failed", "name", name, "error", err)
		return nil, err
	}

	e.cfg.Logger.Info("snapshot saved",
		"name", name,
		"keys", info.KeyCount,
		"expired_dropped", swept,
		"size", info.Size,
		"duration", time.Since(start))
	return info, nil
}

// Load reads the snapshot called name into a fresh store. The engine's own
// store is left untouched.
func (e *Engine) Load(name string) (*memory.Store, error) {
	if name == "" {
		name = e.cfg.SnapshotName
	}
	cells, _, err := e.snaps.Load(name)
	if err != nil {
		return nil, err
	}
	return memory.FromCells(cells, e.storeOptions()...), nil
}

// Snapshots lists the snapshots in the storage directory.
func (e *Engine) Snapshots() ([]snapshot.Info, error) {
	return e.snaps.List()
}

// RemoveSnapshot deletes the snapshot called name.
func (e *Engine) RemoveSnapshot(name string) error {
	return e.snaps.Remove(name)
}
