package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/vovakirdan/tui-2048/internal/games/t2048"
)

// recentRunsKept bounds the per-player run history list.
const recentRunsKept = 500

// RedisConfig holds the connection settings of a RedisStore.
type RedisConfig struct {
	Addr      string // host:port of the Redis server
	Password  string // Empty when no auth is required
	DB        int    // Database number
	KeyPrefix string // Prefix for every key
}

// DefaultRedisConfig returns the configuration used for a bare address.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:      "localhost:6379",
		KeyPrefix: "t2048:",
	}
}

// RedisStore keeps state in Redis so several servers can share players.
//
// Keys:
//
//	<prefix>session:<player>      JSON SavedSession
//	<prefix>progression:<player>  JSON Progression
//	<prefix>runs:level:<n>        sorted set of runs by score
//	<prefix>runs:player:<player>  list of runs, newest first
type RedisStore struct {
	client *redis.Client
	prefix string
}

// Ensure RedisStore implements the game's persistence contract.
var _ t2048.Persistence = (*RedisStore)(nil)

// OpenRedis connects to Redis and checks the connection.
func OpenRedis(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultRedisConfig().KeyPrefix
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("storage: cannot connect to redis at %s: %w", cfg.Addr, err)
	}
	return &RedisStore{client: client, prefix: cfg.KeyPrefix}, nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) sessionKey(player string) string {
	return s.prefix + "session:" + player
}

func (s *RedisStore) progressionKey(player string) string {
	return s.prefix + "progression:" + player
}

func (s *RedisStore) levelRunsKey(level int) string {
	return s.prefix + "runs:level:" + strconv.Itoa(level)
}

func (s *RedisStore) playerRunsKey(player string) string {
	return s.prefix + "runs:player:" + player
}

// runDoc is the stored form of a finished run.
type runDoc struct {
	RunID     string      `json:"run_id"`
	Player    string      `json:"player"`
	Level     int         `json:"level"`
	Score     int         `json:"score"`
	MaxTile   int         `json:"max_tile"`
	Outcome   t2048.State `json:"outcome"`
	CreatedAt time.Time   `json:"created_at"`
}

func (d runDoc) entry() RunEntry {
	return RunEntry{
		RunID:     d.RunID,
		Player:    d.Player,
		Level:     d.Level,
		Score:     d.Score,
		MaxTile:   d.MaxTile,
		Outcome:   d.Outcome,
		CreatedAt: d.CreatedAt,
	}
}

// load reads key into v. A missing key reports found=false; an undecodable
// value is deleted and reported as t2048.ErrCorrupt.
func (s *RedisStore) load(ctx context.Context, key string, v any) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage: cannot load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, s.discard(ctx, key, err)
	}
	return true, nil
}

func (s *RedisStore) discard(ctx context.Context, key string, cause error) error {
	corrupt := fmt.Errorf("storage: %s: %w: %v", key, t2048.ErrCorrupt, cause)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return errors.Join(corrupt, err)
	}
	return corrupt
}

func (s *RedisStore) store(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: cannot encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("storage: cannot save %s: %w", key, err)
	}
	return nil
}

// LoadSession returns the saved in-progress level for player.
func (s *RedisStore) LoadSession(ctx context.Context, player string) (t2048.SavedSession, bool, error) {
	var sess t2048.SavedSession
	key := s.sessionKey(player)
	found, err := s.load(ctx, key, &sess)
	if err != nil || !found {
		return t2048.SavedSession{}, false, err
	}
	if err := sess.Validate(); err != nil {
		return t2048.SavedSession{}, false, s.discard(ctx, key, err)
	}
	return sess, true, nil
}

// SaveSession replaces the saved session for player.
func (s *RedisStore) SaveSession(ctx context.Context, player string, sess t2048.SavedSession) error {
	return s.store(ctx, s.sessionKey(player), sess)
}

// ClearSession deletes the saved session for player.
func (s *RedisStore) ClearSession(ctx context.Context, player string) error {
	if err := s.client.Del(ctx, s.sessionKey(player)).Err(); err != nil {
		return fmt.Errorf("storage: cannot clear session: %w", err)
	}
	return nil
}

// LoadProgression returns the progression record for player.
func (s *RedisStore) LoadProgression(ctx context.Context, player string) (t2048.Progression, bool, error) {
	var p t2048.Progression
	key := s.progressionKey(player)
	found, err := s.load(ctx, key, &p)
	if err != nil || !found {
		return t2048.Progression{}, false, err
	}
	if p.CurrentLevel < 1 {
		return t2048.Progression{}, false, s.discard(ctx, key, fmt.Errorf("current level %d", p.CurrentLevel))
	}
	if p.BestScores == nil {
		p.BestScores = map[int]int{}
	}
	return p, true, nil
}

// SaveProgression replaces the progression record for player.
func (s *RedisStore) SaveProgression(ctx context.Context, player string, p t2048.Progression) error {
	return s.store(ctx, s.progressionKey(player), p)
}

// RecordRun adds a finished run to the level ranking and the player history.
func (s *RedisStore) RecordRun(ctx context.Context, player string, r t2048.RunRecord) error {
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	data, err := json.Marshal(runDoc{
		RunID:     r.RunID,
		Player:    player,
		Level:     r.Level,
		Score:     r.Score,
		MaxTile:   r.MaxTile,
		Outcome:   r.Outcome,
		CreatedAt: created.UTC(),
	})
	if err != nil {
		return fmt.Errorf("storage: cannot encode run: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, s.levelRunsKey(r.Level), &redis.Z{Score: float64(r.Score), Member: string(data)})
		pipe.LPush(ctx, s.playerRunsKey(player), data)
		pipe.LTrim(ctx, s.playerRunsKey(player), 0, recentRunsKept-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("storage: cannot record run: %w", err)
	}
	return nil
}

// ResetPlayer deletes the session and progression of player. Run history is kept.
func (s *RedisStore) ResetPlayer(ctx context.Context, player string) error {
	if err := s.client.Del(ctx, s.sessionKey(player), s.progressionKey(player)).Err(); err != nil {
		return fmt.Errorf("storage: cannot reset player: %w", err)
	}
	return nil
}

// TopRuns retrieves the best runs on a level across all players.
func (s *RedisStore) TopRuns(ctx context.Context, level, limit int) ([]RunEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	members, err := s.client.ZRevRange(ctx, s.levelRunsKey(level), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query top runs: %w", err)
	}
	return decodeRuns(members), nil
}

// RecentRuns retrieves the latest runs of a player, newest first.
func (s *RedisStore) RecentRuns(ctx context.Context, player string, limit int) ([]RunEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	items, err := s.client.LRange(ctx, s.playerRunsKey(player), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query recent runs: %w", err)
	}
	return decodeRuns(items), nil
}

// decodeRuns skips entries that do not decode.
func decodeRuns(items []string) []RunEntry {
	runs := make([]RunEntry, 0, len(items))
	for _, item := range items {
		var d runDoc
		if err := json.Unmarshal([]byte(item), &d); err != nil {
			continue
		}
		runs = append(runs, d.entry())
	}
	return runs
}
