// Package redis keeps pending verifications in Redis hashes whose keys expire
// on their own.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/artem13815/colorfit/pkg/auth"
)

const keyPrefix = "colorfit:pending:"

// consumeScript deletes the hash only while it still holds the given code.
var consumeScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'code') == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// PendingRepository implements auth.PendingRepository. Each key lives until
// its record's expiry plus retention.
type PendingRepository struct {
	client    redis.UniversalClient
	retention time.Duration
}

func NewPendingRepository(client redis.UniversalClient, retention time.Duration) *PendingRepository {
	return &PendingRepository{client: client, retention: retention}
}

func key(email string) string { return keyPrefix + email }

func (r *PendingRepository) Upsert(ctx context.Context, p auth.PendingVerification) error {
	k := key(p.Email)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k,
			"code", p.Code,
			"expires_at", p.ExpiresAt.UnixMilli(),
			"created_at", p.CreatedAt.UnixMilli(),
		)
		pipe.PExpireAt(ctx, k, p.ExpiresAt.Add(r.retention))
		return nil
	})
	return err
}

func (r *PendingRepository) Get(ctx context.Context, email string) (auth.PendingVerification, error) {
	fields, err := r.client.HGetAll(ctx, key(email)).Result()
	if err != nil {
		return auth.PendingVerification{}, err
	}
	if len(fields) == 0 {
		return auth.PendingVerification{}, auth.ErrNotFound
	}
	expires, err := parseMillis(fields["expires_at"])
	if err != nil {
		return auth.PendingVerification{}, fmt.Errorf("decode expires_at: %w", err)
	}
	created, err := parseMillis(fields["created_at"])
	if err != nil {
		return auth.PendingVerification{}, fmt.Errorf("decode created_at: %w", err)
	}
	return auth.PendingVerification{
		Email:     email,
		Code:      fields["code"],
		ExpiresAt: expires,
		CreatedAt: created,
	}, nil
}

func (r *PendingRepository) Consume(ctx context.Context, email, code string) (bool, error) {
	n, err := consumeScript.Run(ctx, r.client, []string{key(email)}, code).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return n == 1, nil
}

func parseMillis(s string) (time.Time, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}
