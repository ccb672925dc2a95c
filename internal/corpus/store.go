// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package corpus

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go driver

	"github.com/techiaith/techiaith-utils/internal/bitext"
)

// StoreConfig defines SQLite operational parameters.
type StoreConfig struct {
	BusyTimeout time.Duration
	// MaxOpenConns is 1 so that concurrent imports queue on the pool
	// instead of failing with SQLITE_BUSY.
	MaxOpenConns int
}

// DefaultStoreConfig returns the configuration used by the CLI.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		BusyTimeout:  5 * time.Second,
		MaxOpenConns: 1,
	}
}

const schemaVersion = 1

var schema = []string{
	`CREATE TABLE IF NOT EXISTS pairs (
		id          INTEGER PRIMARY KEY,
		digest      TEXT    NOT NULL UNIQUE,
		source_lang TEXT    NOT NULL,
		target_lang TEXT    NOT NULL,
		source_text TEXT    NOT NULL,
		target_text TEXT    NOT NULL,
		origin      TEXT    NOT NULL,
		added_at    INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS pairs_by_langs ON pairs (source_lang, target_lang, id)`,
	fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion),
}

// Store is a deduplicating corpus of sentence pairs.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// OpenStore opens (creating if needed) the corpus database at path.
func OpenStore(ctx context.Context, path string, cfg StoreConfig) (*Store, error) {
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 1
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		path, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open failed: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: migrate: %w", err)
		}
	}
	return &Store{db: db, path: path, now: time.Now}, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Digest identifies a pair independently of where it came from.
func Digest(p bitext.Pair) string {
	h := sha256.New()
	for _, part := range []string{p.Source.Lang, p.Target.Lang, p.Source.Text, p.Target.Text} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

const insertPair = `INSERT OR IGNORE INTO pairs
	(digest, source_lang, target_lang, source_text, target_text, origin, added_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) insert(ctx context.Context, ex execer, origin string, p bitext.Pair) (bool, error) {
	res, err := ex.ExecContext(ctx, insertPair,
		Digest(p), p.Source.Lang, p.Target.Lang, p.Source.Text, p.Target.Text, origin, s.now().Unix())
	if err != nil {
		return false, fmt.Errorf("insert pair: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert pair: %w", err)
	}
	return n == 1, nil
}

// Add stores p and reports whether it was new.
func (s *Store) Add(ctx context.Context, origin string, p bitext.Pair) (bool, error) {
	return s.insert(ctx, s.db, origin, p)
}

// Count returns the number of stored pairs for langs, or all pairs when
// langs is zero.
func (s *Store) Count(ctx context.Context, langs bitext.LanguagePair) (int, error) {
	var n int
	var err error
	if langs.IsZero() {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pairs`).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM pairs WHERE source_lang = ? AND target_lang = ?`,
			langs.Source, langs.Target).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("count pairs: %w", err)
	}
	return n, nil
}

// LanguagePairs lists the distinct pairs present in the store.
func (s *Store) LanguagePairs(ctx context.Context) ([]bitext.LanguagePair, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT source_lang, target_lang FROM pairs ORDER BY source_lang, target_lang`)
	if err != nil {
		return nil, fmt.Errorf("list language pairs: %w", err)
	}
	defer rows.Close()
	var out []bitext.LanguagePair
	for rows.Next() {
		var lp bitext.LanguagePair
		if err := rows.Scan(&lp.Source, &lp.Target); err != nil {
			return nil, fmt.Errorf("scan language pair: %w", err)
		}
		out = append(out, lp)
	}
	return out, rows.Err()
}

// Export writes every pair for langs, in insertion order, to w and commits it.
func (s *Store) Export(ctx context.Context, langs bitext.LanguagePair, w Writer) (int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_text, target_text FROM pairs
		 WHERE source_lang = ? AND target_lang = ? ORDER BY id`,
		langs.Source, langs.Target)
	if err != nil {
		return 0, fmt.Errorf("query pairs: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		p := bitext.Pair{
			Source: bitext.Sentence{Lang: langs.Source},
			Target: bitext.Sentence{Lang: langs.Target},
		}
		if err := rows.Scan(&p.Source.Text, &p.Target.Text); err != nil {
			return n, fmt.Errorf("scan pair: %w", err)
		}
		if err := w.Write(p); err != nil {
			return n, fmt.Errorf("write pair: %w", err)
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return n, fmt.Errorf("iterate pairs: %w", err)
	}
	return n, w.Commit()
}

// Verify runs PRAGMA quick_check (or integrity_check when full is set) and
// returns the diagnostic rows, or nil when the database is healthy.
func (s *Store) Verify(ctx context.Context, full bool) ([]string, error) {
	pragma := "PRAGMA quick_check"
	if full {
		pragma = "PRAGMA integrity_check"
	}
	rows, err := s.db.QueryContext(ctx, pragma)
	if err != nil {
		return nil, fmt.Errorf("integrity pragma failed: %w", err)
	}
	defer rows.Close()

	var results []string
	for rows.Next() {
		var res string
		if err := rows.Scan(&res); err != nil {
			return nil, fmt.Errorf("scan integrity result row: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(results) == 1 && strings.EqualFold(results[0], "ok") {
		return nil, nil
	}
	if len(results) == 0 {
		return []string{"no results returned from integrity check"}, nil
	}
	return results, nil
}

// StoreWriter adds pairs to the store inside one transaction. It satisfies
// Writer so a store can stand in for a file output.
type StoreWriter struct {
	store      *Store
	tx         *sql.Tx
	ctx        context.Context
	origin     string
	added      int
	duplicates int
	done       bool
}

// Begin starts a transaction for pairs coming from origin.
func (s *Store) Begin(ctx context.Context, origin string) (*StoreWriter, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	return &StoreWriter{store: s, tx: tx, ctx: ctx, origin: origin}, nil
}

func (w *StoreWriter) Write(p bitext.Pair) error {
	if w.done {
		return ErrCommitted
	}
	inserted, err := w.store.insert(w.ctx, w.tx, w.origin, p)
	if err != nil {
		return err
	}
	if inserted {
		w.added++
	} else {
		w.duplicates++
	}
	return nil
}

func (w *StoreWriter) Commit() error {
	if w.done {
		return nil
	}
	w.done = true
	if err := w.tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

func (w *StoreWriter) Close() error {
	if w.done {
		return nil
	}
	w.done = true
	if err := w.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback import: %w", err)
	}
	return nil
}

// Added returns how many new pairs the transaction inserted.
func (w *StoreWriter) Added() int { return w.added }

// Duplicates returns how many pairs were already present.
func (w *StoreWriter) Duplicates() int { return w.duplicates }
