package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records token IDs revoked before their natural expiry.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type RedisDenylist struct {
	RDB    *redis.Client
	Prefix string
}

func NewRedisDenylist(addr, pass string, db int) *RedisDenylist {
	return &RedisDenylist{
		RDB:    redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
		Prefix: "auth:revoked:",
	}
}

func (d *RedisDenylist) Ping(ctx context.Context) error { return d.RDB.Ping(ctx).Err() }

func (d *RedisDenylist) Close() error { return d.RDB.Close() }

// Revoke 的 key 与令牌同寿，过期后自动清理
func (d *RedisDenylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	return d.RDB.Set(ctx, d.Prefix+tokenID, 1, ttl).Err()
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	n, err := d.RDB.Exists(ctx, d.Prefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
