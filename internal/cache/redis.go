package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

type RedisCache struct {
	Client *redis.Client
}

func NewRedisCache(url, password string) *RedisCache {
	client := redis.NewClient(
		&redis.Options{
			Addr:     url,
			Password: password,
			DB:       0,
		},
	)
	return &RedisCache{Client: client}
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.Client.Close()
}

/*
* sessions
 */

// NewSession stores token -> username with ttl and returns the token.
func (r *RedisCache) NewSession(ctx context.Context, username string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	if err := r.Client.Set(ctx, MakeSessionKey(token), username, ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (r *RedisCache) GetSession(ctx context.Context, token string) (username string, ok bool, err error) {
	username, err = r.Client.Get(ctx, MakeSessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return username, true, nil
}

func (r *RedisCache) DeleteSession(ctx context.Context, token string) error {
	return r.Client.Del(ctx, MakeSessionKey(token)).Err()
}

/*
* in-flight application submissions
 */

// AcquireApplyLock serializes submissions for one (role, user) pair.
// The returned release func only deletes the lock if this caller still owns it.
func (r *RedisCache) AcquireApplyLock(ctx context.Context, roleID uint, username string, ttl time.Duration) (func(), error) {
	key := MakeApplyLockKey(roleID, username)
	owner := uuid.NewString()
	ok, err := r.Client.SetNX(ctx, key, owner, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	release := func() {
		// detached so a cancelled request still frees the lock
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = releaseLockScript.Run(releaseCtx, r.Client, []string{key}, owner).Err()
	}
	return release, nil
}
