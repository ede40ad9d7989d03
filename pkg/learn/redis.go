package learn

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	redisIndexKey  = "longhand:learn:abbrevs"
	redisHashScope = "longhand:learn:counts:"
)

// RedisStore keeps correction counts in Redis: one hash per
// abbreviation (word -> count) plus a set indexing every abbreviation
// seen, so All does not have to scan the keyspace.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Record(ctx context.Context, abbrev, word string) error {
	abbrev, word = strings.ToLower(abbrev), strings.ToLower(word)
	if abbrev == "" || word == "" {
		return fmt.Errorf("learn: empty abbreviation or word")
	}

	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, redisIndexKey, abbrev)
	pipe.HIncrBy(ctx, redisHashScope+abbrev, word, 1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("learn: record %q: %w", abbrev, err)
	}
	return nil
}

func (s *RedisStore) Preference(ctx context.Context, abbrev string) (string, error) {
	counts, err := s.counts(ctx, strings.ToLower(abbrev))
	if err != nil {
		return "", err
	}
	return preferred(counts), nil
}

func (s *RedisStore) All(ctx context.Context) (map[string]string, error) {
	abbrevs, err := s.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("learn: list abbreviations: %w", err)
	}

	out := make(map[string]string, len(abbrevs))
	for _, abbrev := range abbrevs {
		counts, err := s.counts(ctx, abbrev)
		if err != nil {
			return nil, err
		}
		if word := preferred(counts); word != "" {
			out[abbrev] = word
		}
	}
	return out, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	abbrevs, err := s.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return fmt.Errorf("learn: list abbreviations: %w", err)
	}

	keys := make([]string, 0, len(abbrevs)+1)
	for _, abbrev := range abbrevs {
		keys = append(keys, redisHashScope+abbrev)
	}
	keys = append(keys, redisIndexKey)
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("learn: clear store: %w", err)
	}
	return nil
}

func (s *RedisStore) counts(ctx context.Context, abbrev string) (map[string]int, error) {
	raw, err := s.client.HGetAll(ctx, redisHashScope+abbrev).Result()
	if err != nil {
		return nil, fmt.Errorf("learn: counts for %q: %w", abbrev, err)
	}
	counts := make(map[string]int, len(raw))
	for word, val := range raw {
		n, err := strconv.Atoi(val)
		if err != nil {
			continue // a foreign value in our hash, skip it
		}
		counts[word] = n
	}
	return counts, nil
}
