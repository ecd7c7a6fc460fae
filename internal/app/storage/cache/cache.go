// Package cache decorates a PayeeStore with a Redis read-through cache for
// the full payee listing. Writes invalidate the cached listing.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/R3E-Network/payee_manager/internal/app/domain/payee"
	"github.com/R3E-Network/payee_manager/internal/app/storage"
	"github.com/R3E-Network/payee_manager/pkg/logger"
)

const listKey = "payees:list"

// Client is the subset of the Redis API used by the cache.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Store caches ListPayees results in Redis and delegates everything else.
type Store struct {
	storage.PayeeStore
	client Client
	ttl    time.Duration
	log    *logger.Logger
}

var _ storage.PayeeStore = (*Store)(nil)

// New wraps next. A non-positive ttl defaults to 30 seconds.
func New(next storage.PayeeStore, client Client, ttl time.Duration, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewDefault("payee-cache")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Store{PayeeStore: next, client: client, ttl: ttl, log: log}
}

func (s *Store) ListPayees(ctx context.Context) ([]payee.Payee, error) {
	raw, err := s.client.Get(ctx, listKey).Bytes()
	switch {
	case err == nil:
		var cached []payee.Payee
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached, nil
		}
		s.log.Warn("discarding undecodable cached payee list")
	case errors.Is(err, redis.Nil):
	default:
		s.log.WithError(err).Warn("payee cache read failed")
	}

	list, err := s.PayeeStore.ListPayees(ctx)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(list); err == nil {
		if err := s.client.Set(ctx, listKey, encoded, s.ttl).Err(); err != nil {
			s.log.WithError(err).Warn("payee cache write failed")
		}
	}
	return list, nil
}

func (s *Store) CreatePayee(ctx context.Context, p payee.Payee) (payee.Payee, error) {
	created, err := s.PayeeStore.CreatePayee(ctx, p)
	if err != nil {
		return payee.Payee{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *Store) UpdatePayee(ctx context.Context, p payee.Payee) (payee.Payee, error) {
	updated, err := s.PayeeStore.UpdatePayee(ctx, p)
	if err != nil {
		return payee.Payee{}, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *Store) DeletePayee(ctx context.Context, id string) error {
	if err := s.PayeeStore.DeletePayee(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Store) invalidate(ctx context.Context) {
	if err := s.client.Del(ctx, listKey).Err(); err != nil {
		s.log.WithError(err).Warn("payee cache invalidation failed")
	}
}
