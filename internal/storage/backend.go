package storage

import (
	"context"

	"github.com/vovakirdan/tui-2048/internal/games/t2048"
)

// Backend is a persistence store that also serves run history.
// Store (SQLite) and RedisStore implement it.
type Backend interface {
	t2048.Persistence
	TopRuns(ctx context.Context, level, limit int) ([]RunEntry, error)
	RecentRuns(ctx context.Context, player string, limit int) ([]RunEntry, error)
	ResetPlayer(ctx context.Context, player string) error
	Close() error
}

var (
	_ Backend = (*Store)(nil)
	_ Backend = (*RedisStore)(nil)
)
