// Package sqlite implements the takeoff storage backend. JSONL files in the
// data directory are the source of truth; a SQLite database rebuilt from them
// on every Attach serves queries.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/takeoff/pkg/types"
)

// DatabaseFile is the SQLite file created in the data directory.
const DatabaseFile = "takeoff.db"

// Backend stores boundaries, plans and color assignments.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	dataDir  string
	db       *sql.DB
	logger   *zap.Logger

	syncStrategy string
	// pending holds the latest unwritten records per JSONL file for the
	// on_close strategy.
	pending map[string][]json.RawMessage
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the backend logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach initializes the backend with the given configuration. It creates
// DataDir if needed, rebuilds the database and loads the JSONL files into it.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	if err := initJSONLFiles(dataDir); err != nil {
		return err
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)
	// The database is derived state; start from scratch every time.
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := createSchema(db); err != nil {
		db.Close()
		return err
	}
	if err := loadAllJSONL(db, dataDir, b.logger); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.config = config
	b.dataDir = dataDir
	b.syncStrategy = config.EffectiveSyncStrategy()
	b.pending = make(map[string][]json.RawMessage)
	b.attached = true

	b.logger.Debug("backend attached",
		zap.String("data_dir", dataDir),
		zap.String("sync_strategy", b.syncStrategy),
	)
	return nil
}

// Detach flushes pending writes and closes the database. After Detach every
// operation returns ErrDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if err := b.flushLocked(); err != nil {
		return fmt.Errorf("flush pending writes: %w", err)
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	b.logger.Debug("backend detached", zap.String("data_dir", b.dataDir))
	return nil
}

// Attached reports whether the backend is attached.
func (b *Backend) Attached() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.attached
}

// DataDir returns the directory holding the JSONL files.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dataDir
}

func createSchema(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enabling foreign keys: %w", err)
	}
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}

// persistLocked writes records to a JSONL file now, or queues them until
// Detach under the on_close strategy. The caller must hold b.mu.
func (b *Backend) persistLocked(file string, records []json.RawMessage) error {
	if b.syncStrategy == types.SyncOnClose {
		b.pending[file] = records
		return nil
	}
	return writeJSONL(filepath.Join(b.dataDir, file), records)
}

// flushLocked writes every queued file. The caller must hold b.mu.
func (b *Backend) flushLocked() error {
	for _, file := range jsonlFiles {
		records, ok := b.pending[file]
		if !ok {
			continue
		}
		if err := writeJSONL(filepath.Join(b.dataDir, file), records); err != nil {
			return fmt.Errorf("flush %s: %w", file, err)
		}
		delete(b.pending, file)
	}
	return nil
}

var _ types.Store = (*Backend)(nil)
