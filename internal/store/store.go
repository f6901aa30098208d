// Package store caches compilation artifacts in SQLite, keyed by source
// hash. A build whose source hash is already present can skip the whole
// pipeline and read back the canonical IR and emitted text.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when no artifact exists for a source hash.
var ErrNotFound = errors.New("store: artifact not found")

// Store is a durable artifact cache. SQLite with WAL mode allows
// concurrent reads while a build writes.
type Store struct {
	db *sql.DB
}

// Open creates or opens the cache database at path. Pragmas and schema
// are applied on every open; both are idempotent.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Artifact is one cached compilation: the canonical IR encoding and the
// emitted target text, plus enough provenance to answer "what built this".
type Artifact struct {
	SourceHash    string
	SourcePath    string
	SchemaVersion string
	RunID         string
	IRJSON        []byte
	Lua           string
	CreatedAt     string
}

// Put inserts or replaces the artifact for its source hash. Rebuilding
// the same source overwrites the row, so the cache never holds two
// artifacts for one hash.
func (s *Store) Put(ctx context.Context, a Artifact) error {
	if a.SourceHash == "" {
		return fmt.Errorf("put artifact: empty source hash")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifacts
		(source_hash, source_path, schema_version, run_id, ir_json, lua)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_hash) DO UPDATE SET
			source_path = excluded.source_path,
			schema_version = excluded.schema_version,
			run_id = excluded.run_id,
			ir_json = excluded.ir_json,
			lua = excluded.lua
	`,
		a.SourceHash,
		a.SourcePath,
		a.SchemaVersion,
		a.RunID,
		a.IRJSON,
		a.Lua,
	)
	if err != nil {
		return fmt.Errorf("put artifact: %w", err)
	}
	return nil
}

// Get loads the artifact for a source hash, or ErrNotFound.
func (s *Store) Get(ctx context.Context, sourceHash string) (*Artifact, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT source_hash, source_path, schema_version, run_id, ir_json, lua, created_at
		FROM artifacts
		WHERE source_hash = ?
	`, sourceHash)

	var a Artifact
	err := row.Scan(&a.SourceHash, &a.SourcePath, &a.SchemaVersion,
		&a.RunID, &a.IRJSON, &a.Lua, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get artifact: %w", err)
	}
	return &a, nil
}

// Entry summarizes one cached artifact without its payloads.
type Entry struct {
	SourceHash string
	SourcePath string
	RunID      string
	CreatedAt  string
}

// List returns every cached entry, newest first with the hash as a
// tiebreaker so the order is deterministic.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_hash, source_path, run_id, created_at
		FROM artifacts
		ORDER BY created_at DESC, source_hash ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.SourceHash, &e.SourcePath, &e.RunID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("list artifacts: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	return entries, nil
}

// Delete removes the artifact for a source hash. Deleting a hash that is
// not cached is not an error.
func (s *Store) Delete(ctx context.Context, sourceHash string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM artifacts WHERE source_hash = ?`, sourceHash); err != nil {
		return fmt.Errorf("delete artifact: %w", err)
	}
	return nil
}
