package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"lostluggage/models"
)

// OpenRedisPool initializes a Redis connection pool
func OpenRedisPool(ctx context.Context, dsn string) (*redis.Client, error) {
	opt, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opt.PoolSize = 100
	opt.MinIdleConns = 2
	opt.DialTimeout = 5 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)
	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisSessionStore keeps each session in a hash at session:<token> with a TTL
// matching its expiry, and indexes authenticated sessions per user.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(token string) string { return "session:" + token }

func userSessionsKey(userID string) string { return "user_sessions:" + userID }

// Save writes the session hash and refreshes its expiry.
func (s *RedisSessionStore) Save(ctx context.Context, session *models.Session) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	flashes, err := json.Marshal(session.Flashes)
	if err != nil {
		return err
	}
	userID := strconv.FormatInt(session.UserID, 10)
	sessionMap := map[string]any{
		"user_id":       userID,
		"name":          session.Name,
		"role":          string(session.Role),
		"created_at":    session.CreatedAt.Format(time.RFC3339),
		"expires_at":    session.ExpiresAt.Format(time.RFC3339),
		"last_activity": session.LastActivity.Format(time.RFC3339),
		"csrf_token":    session.CSRFToken,
		"user_agent":    session.UserAgent,
		"ip_address":    session.IPAddress,
		"flashes":       string(flashes),
	}

	key := sessionKey(session.SessionToken)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, sessionMap)
		pipe.ExpireAt(ctx, key, session.ExpiresAt)
		if session.UserID != 0 {
			pipe.SAdd(ctx, userSessionsKey(userID), key)
		}
		return nil
	})
	return err
}

// Get retrieves session details from Redis
func (s *RedisSessionStore) Get(ctx context.Context, token string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	data, err := s.client.HGetAll(ctx, sessionKey(token)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrSessionNotFound
	}

	session := &models.Session{
		SessionToken: token,
		Name:         data["name"],
		Role:         models.Role(data["role"]),
		CSRFToken:    data["csrf_token"],
		UserAgent:    data["user_agent"],
		IPAddress:    data["ip_address"],
	}
	if session.UserID, err = strconv.ParseInt(data["user_id"], 10, 64); err != nil {
		return nil, fmt.Errorf("corrupt session user id: %w", err)
	}
	if session.ExpiresAt, err = time.Parse(time.RFC3339, data["expires_at"]); err != nil {
		return nil, fmt.Errorf("corrupt session expiry: %w", err)
	}
	if !time.Now().Before(session.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	session.CreatedAt, _ = time.Parse(time.RFC3339, data["created_at"])
	session.LastActivity, _ = time.Parse(time.RFC3339, data["last_activity"])
	if raw := data["flashes"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &session.Flashes); err != nil {
			return nil, fmt.Errorf("corrupt session flashes: %w", err)
		}
	}
	return session, nil
}

// Delete removes a single session and its reference in the user index
func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	key := sessionKey(token)
	userID, err := s.client.HGet(ctx, key, "user_id").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if userID != "" && userID != "0" {
		if err := s.client.SRem(ctx, userSessionsKey(userID), key).Err(); err != nil {
			return err
		}
	}
	return s.client.Del(ctx, key).Err()
}
