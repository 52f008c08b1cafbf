package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/accunode/accunode-go/internal/domain/models"
	"github.com/redis/go-redis/v9"
)

const redisSessionKey = "accunode:auth-storage"

// RedisStore keeps the session in Redis so multiple syncd replicas share one
// login. The entry expires with the refresh token's useful life.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, ttl: 30 * 24 * time.Hour}
}

func (r *RedisStore) Load() (*models.Session, error) {
	data, err := r.client.Get(context.Background(), redisSessionKey).Bytes()
	if err != nil {
		return nil, err
	}
	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *RedisStore) Save(sess *models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return r.client.Set(context.Background(), redisSessionKey, data, r.ttl).Err()
}

func (r *RedisStore) Clear() error {
	return r.client.Del(context.Background(), redisSessionKey).Err()
}
