package repository

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"jetrent/internal/config"
)

// Storage bundles the stores of the configured backend
type Storage struct {
	Backend       string
	Conversations *ConversationStore
	Bookmarks     BookmarkRepository
	kv            KV
}

// Open connects to the backend named in cfg and prepares both stores
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Storage, error) {
	backend := cfg.Storage.Backend
	storage := &Storage{Backend: backend}

	switch backend {
	case "sqlite", "postgres":
		var (
			store *SQLStore
			err   error
		)
		if backend == "sqlite" {
			store, err = NewSQLiteStore(cfg.Storage.SQLitePath)
		} else {
			pg := cfg.Storage.PostgreSQL
			store, err = NewPostgresStore(cfg.GetPostgreSQLDSN(), pg.MaxConnections, pg.MaxIdleConnections)
		}
		if err != nil {
			return nil, err
		}

		bookmarks, err := NewSQLBookmarkRepository(ctx, store)
		if err != nil {
			store.Close()
			return nil, err
		}
		storage.kv = store
		storage.Bookmarks = bookmarks

	case "redis", "memory":
		var kv KV = NewMemoryStore()
		if backend == "redis" {
			redisStore, err := NewRedisStore(cfg.Storage.RedisURL)
			if err != nil {
				return nil, err
			}
			kv = redisStore
		}

		bookmarks, err := NewKVBookmarkRepository(ctx, kv, logger)
		if err != nil {
			kv.Close()
			return nil, err
		}
		storage.kv = kv
		storage.Bookmarks = bookmarks

	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}

	storage.Conversations = NewConversationStore(storage.kv, logger)

	logger.WithField("backend", backend).Info("✅ Storage initialized")
	return storage, nil
}

// Close releases the backend
func (s *Storage) Close() error {
	return s.kv.Close()
}
