// Package storage is the durable key-value surface the session and cart
// stores persist through. Values are JSON-serialized strings; a missing key
// is an expected state reported as ErrNotFound.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

var ErrNotFound = errors.New("storage: key not found")

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

type Keys struct {
	Token       string
	User        string
	CartItems   string
	Retailer    string
	LegacyAdmin string
}

func NewKeys(prefix string) Keys {
	return Keys{
		Token:       prefix + "auth_token",
		User:        prefix + "auth_user",
		CartItems:   prefix + "cart_items",
		Retailer:    prefix + "selected_retailer",
		LegacyAdmin: prefix + "admin_token",
	}
}

type Options struct {
	Driver        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DBUrl         string
}

// Open builds the backend named by opts.Driver. The returned close func
// releases any connection the backend holds.
func Open(opts Options, logger zerolog.Logger) (Store, func() error, error) {
	switch opts.Driver {
	case "", "memory":
		logger.Warn().Msg("Using in-memory storage, session and cart will not survive restarts")
		return NewMemoryStore(), func() error { return nil }, nil
	case "redis":
		rs, err := NewRedisStore(&RedisConfig{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
			PoolSize: 10,
		})
		if err != nil {
			return nil, nil, err
		}
		return rs, rs.Close, nil
	case "mysql":
		db, err := InitDB(opts.DBUrl)
		if err != nil {
			return nil, nil, err
		}
		if err := RunMigrations(context.Background(), db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return NewSQLStore(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
