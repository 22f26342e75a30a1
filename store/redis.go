package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	nextIDKey     = "users:next_id"
	byUsernameKey = "users:by_username"
)

// RedisUserStore keeps user records in Redis: a username→id hash for
// uniqueness and one hash per user for the record itself.
type RedisUserStore struct {
	rdb *redis.Client
}

// NewRedisUserStore connects and pings the server; an unreachable Redis is
// an error so the caller can fall back to the in-memory store.
func NewRedisUserStore(addr, password string, db int) (*RedisUserStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return &RedisUserStore{rdb: rdb}, nil
}

func (s *RedisUserStore) Create(ctx context.Context, username, password string) (User, error) {
	id, err := s.rdb.Incr(ctx, nextIDKey).Result()
	if err != nil {
		return User{}, fmt.Errorf("allocate user id: %w", err)
	}

	// HSETNX makes the username claim atomic; a lost race just wastes an id.
	ok, err := s.rdb.HSetNX(ctx, byUsernameKey, username, id).Result()
	if err != nil {
		return User{}, fmt.Errorf("claim username: %w", err)
	}
	if !ok {
		return User{}, ErrDuplicateUsername
	}

	if err := s.rdb.HSet(ctx, userKey(id), "username", username, "password", password).Err(); err != nil {
		return User{}, fmt.Errorf("store user: %w", err)
	}
	return User{ID: id, Username: username}, nil
}

func (s *RedisUserStore) List(ctx context.Context) ([]User, error) {
	byName, err := s.rdb.HGetAll(ctx, byUsernameKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]User, 0, len(byName))
	for username, rawID := range byName {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			continue
		}
		users = append(users, User{ID: id, Username: username})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *RedisUserStore) Get(ctx context.Context, id int64) (User, error) {
	fields, err := s.rdb.HGetAll(ctx, userKey(id)).Result()
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	if len(fields) == 0 {
		return User{}, ErrNotFound
	}
	return User{ID: id, Username: fields["username"]}, nil
}

func (s *RedisUserStore) Close() error {
	return s.rdb.Close()
}

func userKey(id int64) string {
	return "users:" + strconv.FormatInt(id, 10)
}
