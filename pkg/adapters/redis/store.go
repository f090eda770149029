package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// resetRetries bounds how often Reset retries after losing a WATCH race.
const resetRetries = 5

// Store implements ports.ProgressStore using Redis.
// Conditional writes use WATCH/MULTI on the record key.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for progress records. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "gambit:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(userID, scenarioID string) string {
	return s.prefix + "progress:" + domain.ProgressKey(userID, scenarioID)
}

func (s *Store) indexKey(userID string) string {
	return s.prefix + "index:" + url.QueryEscape(userID)
}

type getter interface {
	Get(ctx context.Context, key string) *backend.StringCmd
}

func (s *Store) get(ctx context.Context, c getter, key string) (*domain.Progress, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, &domain.NotFoundError{Kind: domain.KindProgress, ID: key}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	var p domain.Progress
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal progress: %w", err)
	}
	return &p, nil
}

// Load retrieves a traversal from Redis.
func (s *Store) Load(ctx context.Context, userID, scenarioID string) (*domain.Progress, error) {
	return s.get(ctx, s.client, s.key(userID, scenarioID))
}

// Save writes p if the stored version still matches.
func (s *Store) Save(ctx context.Context, p *domain.Progress) (*domain.Progress, error) {
	key := s.key(p.UserID, p.ScenarioID)

	var saved *domain.Progress
	err := s.client.Watch(ctx, func(tx *backend.Tx) error {
		current, err := s.get(ctx, tx, key)
		if err != nil {
			return err
		}
		if current.Version != p.Version {
			return domain.ErrConflict
		}

		next := p.Clone()
		next.ID = current.ID
		next.CreatedAt = current.CreatedAt
		next.Version = current.Version + 1
		next.UpdatedAt = time.Now().UTC()
		if err := s.write(ctx, tx, key, next); err != nil {
			return err
		}
		saved = next
		return nil
	}, key)
	if errors.Is(err, backend.TxFailedErr) {
		return nil, domain.ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// Reset creates or overwrites the traversal at rootStepID.
func (s *Store) Reset(ctx context.Context, userID, scenarioID, rootStepID string) (*domain.Progress, error) {
	key := s.key(userID, scenarioID)

	for attempt := 0; attempt < resetRetries; attempt++ {
		var saved *domain.Progress
		err := s.client.Watch(ctx, func(tx *backend.Tx) error {
			now := time.Now().UTC()
			next := domain.NewProgress(uuid.NewString(), userID, scenarioID, rootStepID)
			next.CreatedAt = now
			next.UpdatedAt = now
			next.Version = 1

			current, err := s.get(ctx, tx, key)
			switch {
			case err == nil:
				next.ID = current.ID
				next.CreatedAt = current.CreatedAt
				next.Version = current.Version + 1
			case !errors.Is(err, domain.ErrProgressNotFound):
				return err
			}

			if err := s.write(ctx, tx, key, next); err != nil {
				return err
			}
			saved = next
			return nil
		}, key)
		if errors.Is(err, backend.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return saved, nil
	}
	return nil, fmt.Errorf("failed to reset %s: %w", key, domain.ErrConflict)
}

func (s *Store) write(ctx context.Context, tx *backend.Tx, key string, p *domain.Progress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}
	_, err = tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Set(ctx, key, data, s.ttl)
		pipe.SAdd(ctx, s.indexKey(p.UserID), p.ScenarioID)
		return nil
	})
	return err
}

// List returns every traversal of a user. Expired records are pruned from the index.
func (s *Store) List(ctx context.Context, userID string) ([]*domain.Progress, error) {
	scenarios, err := s.client.SMembers(ctx, s.indexKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	if len(scenarios) == 0 {
		return []*domain.Progress{}, nil
	}

	keys := make([]string, len(scenarios))
	for i, sc := range scenarios {
		keys[i] = s.key(userID, sc)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	list := make([]*domain.Progress, 0, len(values))
	var stale []any
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, scenarios[i])
			continue
		}
		var p domain.Progress
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal progress: %w", err)
		}
		list = append(list, &p)
	}
	if len(stale) > 0 {
		if err := s.client.SRem(ctx, s.indexKey(userID), stale...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune expired progress: %w", err)
		}
	}
	return list, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
