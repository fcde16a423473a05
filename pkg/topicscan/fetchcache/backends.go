package fetchcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/cognicore/topicscan/internal/apperr"
)

// DefaultRedisKey is the hash holding source → timestamp.
const DefaultRedisKey = "topicscan:fetch_cache"

// FileBackend keeps the cache in <dataDir>/fetch_cache.json.
type FileBackend struct {
	path    string
	entries map[string]string
}

func NewFileBackend(dataDir string) *FileBackend {
	return &FileBackend{path: filepath.Join(dataDir, "fetch_cache.json")}
}

func (b *FileBackend) Load(context.Context) (map[string]string, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read fetch cache: %w", err)
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse fetch cache %s: %w", b.path, err)
	}
	b.entries = entries
	return entries, nil
}

// Save rewrites the whole file.
func (b *FileBackend) Save(_ context.Context, source, timestamp string) error {
	if b.entries == nil {
		b.entries = make(map[string]string)
	}
	b.entries[source] = timestamp

	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.MarshalIndent(b.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fetch cache: %w", err)
	}
	if err := os.WriteFile(b.path, data, 0o644); err != nil {
		return fmt.Errorf("write fetch cache: %w", err)
	}
	return nil
}

// RedisBackend keeps the cache in a redis hash so several hosts can share
// it.
type RedisBackend struct {
	client *redis.Client
	key    string
}

func NewRedisBackend(client *redis.Client, key string) *RedisBackend {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisBackend{client: client, key: key}
}

func (b *RedisBackend) Load(ctx context.Context) (map[string]string, error) {
	entries, err := b.client.HGetAll(ctx, b.key).Result()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w: %w", b.key, apperr.ErrStoreUnavailable, err)
	}
	return entries, nil
}

func (b *RedisBackend) Save(ctx context.Context, source, timestamp string) error {
	if err := b.client.HSet(ctx, b.key, source, timestamp).Err(); err != nil {
		return fmt.Errorf("save %s: %w: %w", b.key, apperr.ErrStoreUnavailable, err)
	}
	return nil
}
