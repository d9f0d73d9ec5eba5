package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/medflow/intake/flow"
	"github.com/medflow/intake/utils"
	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	// DraftTTL expires abandoned drafts; every write refreshes it.
	DraftTTL time.Duration
}

// RedisDraftStore backs the flow package's DraftStore port with redis, so
// an intake can be resumed from another device or after the client-local
// copy is gone.
type RedisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDraftStore(config RedisConfig) (*RedisDraftStore, error) {
	port := config.Port
	if port == 0 {
		port = 6379
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, port),
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, utils.WrapError(err, "redis ping failed")
	}

	ttl := config.DraftTTL
	if ttl == 0 {
		ttl = 14 * 24 * time.Hour
	}

	return &RedisDraftStore{
		client: client,
		ttl:    ttl,
	}, nil
}

func draftKey(serviceSlug, identityRef string) string {
	return "draft:" + serviceSlug + ":" + identityRef
}

func (s *RedisDraftStore) Get(ctx context.Context, serviceSlug, identityRef string) (*flow.Draft, error) {
	data, err := s.client.Get(ctx, draftKey(serviceSlug, identityRef)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var draft flow.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (s *RedisDraftStore) Put(ctx context.Context, draft *flow.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, draftKey(draft.ServiceSlug, draft.IdentityRef), data, s.ttl).Err()
}

func (s *RedisDraftStore) Delete(ctx context.Context, serviceSlug, identityRef string) error {
	return s.client.Del(ctx, draftKey(serviceSlug, identityRef)).Err()
}

func (s *RedisDraftStore) Close() error {
	return s.client.Close()
}
