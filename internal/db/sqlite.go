// Package db opens the SQLite metadata database that records sync runs and
// AI reviews, and applies its migrations.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// Mode selects how a pool is tuned for the single-writer SQLite model.
type Mode string

// Pool modes.
const (
	ModeWrite Mode = "write"
	ModeRead  Mode = "read"
)

const (
	busyTimeoutMillis = "5000"
	defaultReadConns  = 4
	pingTimeout       = 5 * time.Second
)

// OpenSQLite opens a pool for the SQLite file at path.
//
// A write pool holds one connection and begins transactions immediately so
// concurrent sync runs queue on the busy timeout instead of failing with
// SQLITE_BUSY on upgrade. A read pool holds maxOpen connections (0 means 4).
func OpenSQLite(ctx context.Context, path string, mode Mode, maxOpen int) (*sql.DB, error) {
	if mode != ModeRead && mode != ModeWrite {
		return nil, fmt.Errorf("invalid SQLite mode %q: must be %q or %q", mode, ModeRead, ModeWrite)
	}

	pool, err := sql.Open("sqlite3", buildDSN(path, mode))
	if err != nil {
		return nil, fmt.Errorf("open sqlite (%s): %w", mode, err)
	}

	if mode == ModeWrite {
		maxOpen = 1
	} else if maxOpen <= 0 {
		maxOpen = defaultReadConns
	}
	pool.SetMaxOpenConns(maxOpen)
	pool.SetMaxIdleConns(maxOpen)
	pool.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping sqlite (%s): %w", mode, err)
	}
	return pool, nil
}

// MetaStore is the write/read pool pair over the metadata database.
type MetaStore struct {
	Write *sql.DB
	Read  *sql.DB
}

// OpenMetaStore opens both pools for path and migrates the schema to the
// latest version.
func OpenMetaStore(ctx context.Context, path string, readConns int, logger *slog.Logger) (*MetaStore, error) {
	write, err := OpenSQLite(ctx, path, ModeWrite, 0)
	if err != nil {
		return nil, err
	}
	read, err := OpenSQLite(ctx, path, ModeRead, readConns)
	if err != nil {
		_ = write.Close()
		return nil, err
	}
	store := &MetaStore{Write: write, Read: read}

	if err := Migrate(ctx, write, logger); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// Close closes both pools.
func (s *MetaStore) Close() error {
	return errors.Join(s.Read.Close(), s.Write.Close())
}

func buildDSN(path string, mode Mode) string {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_busy_timeout", busyTimeoutMillis)
	params.Set("_synchronous", "NORMAL")
	params.Set("_foreign_keys", "on")
	if mode == ModeWrite {
		params.Set("_txlock", "immediate")
	}
	return path + "?" + params.Encode()
}
