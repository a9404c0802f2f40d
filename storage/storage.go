/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package storage provides the key-value backends used to cache game
// snapshots between restarts.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("key not found")

// KV is the minimal key-value contract shared by backends and wrappers.
type KV interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// Backend is a KV with a lifecycle.
type Backend interface {
	KV
	Ping(ctx context.Context) error
	Close() error
}

// Open returns the backend named by kind. dsn is the SQLite path or the
// Redis URL and is ignored for the memory backend.
func Open(ctx context.Context, kind, dsn string) (Backend, error) {
	switch kind {
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		db, err := OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "redis":
		rdb, err := OpenRedis(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return rdb, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}
