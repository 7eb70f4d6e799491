package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Marker is the advisory admin-session record. It only short-circuits UI
// rendering; the authoritative role check re-queries the profile store on
// every guarded request.
type Marker struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

var ErrNoMarker = errors.New("no admin session marker")

const keyPrefix = "adminsession:"

// Store keeps advisory markers in Redis with a TTL matching the refresh
// token lifetime.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewStore(cfg Config) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ttl := cfg.TTL

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) Put(ctx context.Context, userID string, m Marker) error {
	b, err := json.Marshal(m)

	if err != nil {
		return err
	}

	return s.rdb.Set(ctx, keyPrefix+userID, b, s.ttl).Err()
}

// Get returns the marker for a user. A corrupt marker is deleted and
// reported as absent, forcing a fresh login.
func (s *Store) Get(ctx context.Context, userID string) (Marker, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+userID).Bytes()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Marker{}, ErrNoMarker
		}

		return Marker{}, err
	}

	var m Marker

	if err := json.Unmarshal(raw, &m); err != nil {
		_ = s.rdb.Del(ctx, keyPrefix+userID).Err()

		return Marker{}, ErrNoMarker
	}

	return m, nil
}

func (s *Store) Delete(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, keyPrefix+userID).Err()
}
