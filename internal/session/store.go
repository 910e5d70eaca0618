package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/sahasrara-wellness/booking-api/internal/config"
)

var ErrNotFound = errors.New("session not found")

// Flow is the guest's in-progress booking state, keyed by an opaque session
// key the browser carries between the slot grid and checkout.
type Flow struct {
	BranchID  uint   `json:"branch_id"`
	ServiceID uint   `json:"service_id"`
	WorkerID  uint   `json:"worker_id"`
	Date      string `json:"date"`
	Start     string `json:"start"`
	LockID    uint   `json:"lock_id"`
}

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(cfg *config.Config) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
	})

	// Flow state outlives the slot lock slightly so an expired-lock error can
	// still be rendered with context.
	ttl := time.Duration(cfg.SlotLockTTLMinutes+5) * time.Minute

	return &Store{client: client, ttl: ttl}
}

func NewKey() string {
	return uuid.NewString()
}

func (s *Store) Save(ctx context.Context, key string, flow *Flow) error {
	b, err := json.Marshal(flow)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, "booking_flow:"+key, b, s.ttl).Err()
}

func (s *Store) Get(ctx context.Context, key string) (*Flow, error) {
	b, err := s.client.Get(ctx, "booking_flow:"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var flow Flow
	if err := json.Unmarshal(b, &flow); err != nil {
		return nil, err
	}
	return &flow, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, "booking_flow:"+key).Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
