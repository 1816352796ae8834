// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package history persists the durable conversation turns per session.
// Only the initiating user message and the final assistant message of each
// request are stored; intermediate tool traffic never reaches this store.
// Each session keeps a sliding window of recent turns and expires after a
// fixed idle period.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/teradata-labs/weft/internal/sqlitedriver"
)

// TruncationMarker is appended when an assistant turn exceeds the length cap.
const TruncationMarker = "\n... [truncated]"

// DefaultMaxTurns is the per-session sliding-window size.
const DefaultMaxTurns = 20

// Turn is one durable conversation turn.
type Turn struct {
	Role      string
	Content   string
	CreatedAt time.Time
}

// Store is a SQLite-backed conversation history store. Writes are serialized
// through a store-level mutex so the insert-plus-trim of one session is
// atomic with respect to concurrent requests on the same session.
type Store struct {
	db       *sql.DB
	mu       sync.Mutex
	maxTurns int
}

// NewStore opens (creating if needed) the history database at dbPath.
// maxTurns bounds the per-session sliding window; zero means the default.
func NewStore(dbPath string, maxTurns int) (*Store, error) {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db, maxTurns: maxTurns}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveUserTurn appends a user turn and trims the session window.
func (s *Store) SaveUserTurn(ctx context.Context, sessionID, text string) error {
	return s.saveTurn(ctx, sessionID, "user", text)
}

// SaveAssistantTurn appends an assistant turn, truncating text beyond maxLen
// with an explicit marker, and trims the session window. maxLen <= 0 means
// no cap.
func (s *Store) SaveAssistantTurn(ctx context.Context, sessionID, text string, maxLen int) error {
	if maxLen > 0 && len(text) > maxLen {
		cut := maxLen
		// Do not split a UTF-8 sequence mid-rune.
		for cut > 0 && !isRuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + TruncationMarker
	}
	return s.saveTurn(ctx, sessionID, "assistant", text)
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

func (s *Store) saveTurn(ctx context.Context, sessionID, role, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO turns (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, role, text, time.Now().Unix()); err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}

	// Sliding window: drop everything older than the newest maxTurns rows.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM turns WHERE session_id = ? AND id NOT IN (
			SELECT id FROM turns WHERE session_id = ? ORDER BY id DESC LIMIT ?
		)`,
		sessionID, sessionID, s.maxTurns); err != nil {
		return fmt.Errorf("trim window: %w", err)
	}

	return tx.Commit()
}

// GetWindow returns up to limit most recent turns for the session, oldest
// first. limit <= 0 means the store's window size.
func (s *Store) GetWindow(ctx context.Context, sessionID string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = s.maxTurns
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, created_at FROM turns
		 WHERE session_id = ? ORDER BY id DESC LIMIT ?`,
		sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query window: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var (
			t  Turn
			ts int64
		)
		if err := rows.Scan(&t.Role, &t.Content, &ts); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		t.CreatedAt = time.Unix(ts, 0)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest-first from the query; callers want chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// EvictExpired deletes every session whose newest turn is older than ttl.
// Returns the number of deleted turns.
func (s *Store) EvictExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-ttl).Unix()
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM turns WHERE session_id IN (
			SELECT session_id FROM turns GROUP BY session_id HAVING MAX(created_at) < ?
		)`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("evict expired sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Sessions returns the distinct session IDs currently stored, for admin use.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT session_id FROM turns ORDER BY session_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
