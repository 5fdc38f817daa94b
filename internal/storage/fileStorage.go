package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// FileCache persists all keys as one JSON object on disk. Every Set and
// Remove rewrites the whole file through a temporary file and a rename, so a
// crash never leaves a half-written cache behind.
type FileCache struct {
	mu     sync.Mutex
	path   string
	values map[string]json.RawMessage
	logger *zap.Logger
}

// NewFileCache opens the cache stored at p, creating the directory if
// needed. A missing file is an empty cache; a corrupted file is logged and
// replaced on the next write.
func NewFileCache(p string, logger *zap.Logger) (*FileCache, error) {
	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(p), 0770); err != nil {
		return nil, err
	}

	fc := &FileCache{
		path:   p,
		values: make(map[string]json.RawMessage),
		logger: logger,
	}

	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fc, nil
		}
		return nil, err
	}

	if len(b) == 0 {
		return fc, nil
	}

	if err := json.Unmarshal(b, &fc.values); err != nil {
		logger.Warn("local cache file is corrupted, starting empty", zap.String("path", p), zap.Error(err))
		fc.values = make(map[string]json.RawMessage)
	}

	return fc, nil
}

func (fc *FileCache) Get(key string, dst any) bool {
	fc.mu.Lock()
	raw, exists := fc.values[key]
	fc.mu.Unlock()

	if !exists {
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		fc.logger.Debug("cannot decode cached value", zap.String("key", key), zap.Error(err))
		return false
	}

	return true
}

func (fc *FileCache) Set(key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()

	prev, had := fc.values[key]
	fc.values[key] = b

	if err := fc.flush(); err != nil {
		if had {
			fc.values[key] = prev
		} else {
			delete(fc.values, key)
		}
		return err
	}

	return nil
}

func (fc *FileCache) Remove(key string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if _, exists := fc.values[key]; !exists {
		return
	}

	delete(fc.values, key)
	if err := fc.flush(); err != nil {
		fc.logger.Error("cannot persist local cache", zap.String("path", fc.path), zap.Error(err))
	}
}

// flush must be called with mu held.
func (fc *FileCache) flush() error {
	b, err := json.Marshal(fc.values)
	if err != nil {
		return err
	}

	tmp := fc.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0660); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}

	if err := os.Rename(tmp, fc.path); err != nil {
		return fmt.Errorf("replace cache file: %w", err)
	}

	return nil
}
