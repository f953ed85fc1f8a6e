package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

// keySession is the Redis key for one wizard session: checkout:session:{id}.
const keySession = "checkout:session:%s"

// RedisStore keeps sessions in Redis so a checkout survives gateway
// restarts and works across replicas. TTL handling is delegated to Redis
// key expiry; the version CAS runs inside a WATCH transaction.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a RedisStore on the given client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func sessionKey(id string) string {
	return fmt.Sprintf(keySession, id)
}

func (r *RedisStore) Put(ctx context.Context, s *Session, ttl time.Duration) error {
	key := sessionKey(s.ID)

	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			// First write for this session.
		case err != nil:
			return errors.Wrap(err, "read session")
		default:
			var stored Session
			if err := json.Unmarshal(cur, &stored); err != nil {
				return errors.Wrap(err, "decode stored session")
			}
			if stored.Version != s.Version {
				return ErrVersionConflict
			}
		}

		s.Version++
		s.UpdatedAt = time.Now().UTC()
		data, err := json.Marshal(s)
		if err != nil {
			return errors.Wrap(err, "encode session")
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, ttl)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrVersionConflict
	}
	return err
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "read session")
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "decode session")
	}
	return &s, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return errors.Wrap(err, "delete session")
	}
	return nil
}
