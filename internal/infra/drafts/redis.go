package drafts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"team_attendance_bot/internal/domain/attendance"

	"github.com/redis/go-redis/v9"
)

const draftKeyTpl = "attendance:draft:%d" // attendance:draft:${chatID}

// RedisStore keeps open sheets in Redis so they survive a bot restart.
type RedisStore struct {
	redis *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{redis: client}
}

// ConnectRedis parses url, connects and pings the server.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (s *RedisStore) Get(ctx context.Context, chatID int64) (*attendance.Sheet, error) {
	raw, err := s.redis.Get(ctx, fmt.Sprintf(draftKeyTpl, chatID)).Bytes()
	if err == redis.Nil {
		return nil, attendance.ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read draft for chat %d: %w", chatID, err)
	}

	var sheet attendance.Sheet
	if err := json.Unmarshal(raw, &sheet); err != nil {
		return nil, fmt.Errorf("failed to decode draft for chat %d: %w", chatID, err)
	}
	return &sheet, nil
}

func (s *RedisStore) Put(ctx context.Context, chatID int64, sheet *attendance.Sheet, ttl time.Duration) error {
	raw, err := json.Marshal(sheet)
	if err != nil {
		return fmt.Errorf("failed to encode draft for chat %d: %w", chatID, err)
	}
	if err := s.redis.Set(ctx, fmt.Sprintf(draftKeyTpl, chatID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store draft for chat %d: %w", chatID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, chatID int64) error {
	return s.redis.Del(ctx, fmt.Sprintf(draftKeyTpl, chatID)).Err()
}

func (s *RedisStore) Close() error {
	return s.redis.Close()
}
