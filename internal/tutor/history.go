package tutor

import (
	"context"
	"fmt"
	"strings"
)

// HistoryWindowSize is the maximum number of recent turns interpolated into
// a prompt.
const HistoryWindowSize = 6

// TurnSource reads recent conversation turns, newest first. Implemented by
// the conversation store.
type TurnSource interface {
	RecentTurns(ctx context.Context, sessionID int64, limit int) ([]Turn, error)
}

// LoadHistory returns the most recent turns for the session in chronological
// order, so the window reads naturally when placed before a new question and
// always ends with the single most recent turn. A nil session yields an
// empty window without touching the source; an unknown session yields an
// empty window, never an error.
func LoadHistory(ctx context.Context, src TurnSource, sessionID *int64) ([]Turn, error) {
	if sessionID == nil {
		return nil, nil
	}
	turns, err := src.RecentTurns(ctx, *sessionID, HistoryWindowSize)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	// Source order is newest-first; reverse to oldest-first.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// RenderHistory formats turns as one "Role: content" line each.
func RenderHistory(turns []Turn) string {
	var b strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Content)
	}
	return b.String()
}
