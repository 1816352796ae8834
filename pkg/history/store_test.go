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
package history

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, maxTurns int) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "history.db"), maxTurns)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestWindowChronologicalOrder(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	require.NoError(t, s.SaveUserTurn(ctx, "s1", "first question"))
	require.NoError(t, s.SaveAssistantTurn(ctx, "s1", "first answer", 0))
	require.NoError(t, s.SaveUserTurn(ctx, "s1", "second question"))

	turns, err := s.GetWindow(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "user", turns[0].Role)
	assert.Equal(t, "first question", turns[0].Content)
	assert.Equal(t, "assistant", turns[1].Role)
	assert.Equal(t, "second question", turns[2].Content)
}

func TestWindowSlides(t *testing.T) {
	s := newTestStore(t, 4)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		require.NoError(t, s.SaveUserTurn(ctx, "s1", fmt.Sprintf("q%d", i)))
	}

	turns, err := s.GetWindow(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, turns, 4)
	assert.Equal(t, "q2", turns[0].Content)
	assert.Equal(t, "q5", turns[3].Content)
}

func TestSessionsAreIsolated(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	require.NoError(t, s.SaveUserTurn(ctx, "a", "question for a"))
	require.NoError(t, s.SaveUserTurn(ctx, "b", "question for b"))

	turns, err := s.GetWindow(ctx, "a", 0)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "question for a", turns[0].Content)

	ids, err := s.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestAssistantTurnTruncation(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	long := strings.Repeat("x", 500)
	require.NoError(t, s.SaveAssistantTurn(ctx, "s1", long, 100))

	turns, err := s.GetWindow(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, strings.Repeat("x", 100)+TruncationMarker, turns[0].Content)
}

func TestAssistantTurnTruncationRuneSafe(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	// 3-byte runes; a 100-byte cut would land mid-rune.
	long := strings.Repeat("€", 50)
	require.NoError(t, s.SaveAssistantTurn(ctx, "s1", long, 100))

	turns, err := s.GetWindow(ctx, "s1", 0)
	require.NoError(t, err)
	stored := strings.TrimSuffix(turns[0].Content, TruncationMarker)
	assert.Equal(t, strings.Repeat("€", 33), stored)
}

func TestAssistantTurnNoCapWhenZero(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	long := strings.Repeat("y", 20000)
	require.NoError(t, s.SaveAssistantTurn(ctx, "s1", long, 0))

	turns, err := s.GetWindow(ctx, "s1", 0)
	require.NoError(t, err)
	assert.Equal(t, long, turns[0].Content)
}

func TestEvictExpired(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	require.NoError(t, s.SaveUserTurn(ctx, "old", "stale question"))
	// Backdate the whole session beyond the TTL.
	_, err := s.db.Exec(`UPDATE turns SET created_at = ? WHERE session_id = 'old'`,
		time.Now().Add(-2*time.Hour).Unix())
	require.NoError(t, err)
	require.NoError(t, s.SaveUserTurn(ctx, "fresh", "live question"))

	n, err := s.EvictExpired(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ids, err := s.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, ids)
}

func TestEvictKeepsActiveSessionWithOldTurns(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	require.NoError(t, s.SaveUserTurn(ctx, "s1", "old turn"))
	_, err := s.db.Exec(`UPDATE turns SET created_at = ? WHERE session_id = 's1'`,
		time.Now().Add(-2*time.Hour).Unix())
	require.NoError(t, err)
	// A recent turn keeps the whole session alive.
	require.NoError(t, s.SaveUserTurn(ctx, "s1", "recent turn"))

	n, err := s.EvictExpired(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	turns, err := s.GetWindow(ctx, "s1", 0)
	require.NoError(t, err)
	assert.Len(t, turns, 2)
}
