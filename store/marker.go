package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionMarkerKey is the fixed key the session marker is saved under.
const SessionMarkerKey = "auth_token"

// MarkerStore is client-local durable key/value storage.
// Get returns ErrMarkerNotFound for missing keys; Delete of a missing key succeeds.
type MarkerStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// FileMarkerStore keeps markers in a JSON object on disk.
type FileMarkerStore struct {
	path string
	mu   sync.Mutex
}

// NewFileMarkerStore stores markers at path, creating parent directories on first write.
func NewFileMarkerStore(path string) *FileMarkerStore {
	return &FileMarkerStore{path: path}
}

// Get implements MarkerStore.
func (f *FileMarkerStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.load()
	if err != nil {
		return "", err
	}
	v, ok := m[key]
	if !ok {
		return "", ErrMarkerNotFound
	}
	return v, nil
}

// Set implements MarkerStore.
func (f *FileMarkerStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.load()
	if err != nil {
		return err
	}
	m[key] = value
	return f.save(m)
}

// Delete implements MarkerStore.
func (f *FileMarkerStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := m[key]; !ok {
		return nil
	}
	delete(m, key)
	return f.save(m)
}

func (f *FileMarkerStore) load() (map[string]string, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read marker file: %w", err)
	}
	m := map[string]string{}
	if len(b) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode marker file: %w", err)
	}
	return m, nil
}

// save writes through a temp file so a crash never leaves a torn file.
func (f *FileMarkerStore) save(m map[string]string) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create marker dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".marker-*")
	if err != nil {
		return fmt.Errorf("create temp marker file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write marker file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

// RedisMarkerStore keeps markers in Redis under a key prefix.
type RedisMarkerStore struct {
	rc     *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisMarkerStore returns a marker store on rc. A zero ttl keeps markers forever.
func NewRedisMarkerStore(rc *redis.Client, prefix string, ttl time.Duration) *RedisMarkerStore {
	return &RedisMarkerStore{rc: rc, prefix: prefix, ttl: ttl}
}

// Get implements MarkerStore.
func (r *RedisMarkerStore) Get(ctx context.Context, key string) (string, error) {
	v, err := r.rc.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMarkerNotFound
	}
	return v, err
}

// Set implements MarkerStore.
func (r *RedisMarkerStore) Set(ctx context.Context, key, value string) error {
	return r.rc.Set(ctx, r.prefix+key, value, r.ttl).Err()
}

// Delete implements MarkerStore.
func (r *RedisMarkerStore) Delete(ctx context.Context, key string) error {
	return r.rc.Del(ctx, r.prefix+key).Err()
}
