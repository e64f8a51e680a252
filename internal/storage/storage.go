package storage

import (
	"context"
	"errors"
)

// ErrEmptyWordPool is returned when a random word is requested before any
// words have been loaded.
var ErrEmptyWordPool = errors.New("word pool is empty")

type Storage interface {
	// word pool
	InsertWords(ctx context.Context, words []string) error
	RandomWord(ctx context.Context) (string, error)
	CountWords(ctx context.Context) (int64, error)

	// winner log
	AppendWinnerLog(ctx context.Context, entry *WinnerLog) error
	LastWinnerLog(ctx context.Context, user string) (*WinnerLog, error)

	// leaderboard
	IncrementWins(ctx context.Context, user string) error
	TopPlayers(ctx context.Context, limit int) ([]*LeaderboardEntry, error)
}
