package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNoSession = errors.New("session not found or expired")

// AppSessionStore keeps bearer sessions in Redis. A per-user set tracks the
// tokens so all of them can be revoked at once.
type AppSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAppSessionStore(rdb *redis.Client, ttl time.Duration) *AppSessionStore {
	return &AppSessionStore{rdb: rdb, ttl: ttl}
}

type AppSession struct {
	UserID    string `json:"uid"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

func key(token string) string      { return fmt.Sprintf("invensys:sess:%s", token) }
func userSetKey(uid string) string { return fmt.Sprintf("invensys:user_sessions:%s", uid) }

// NewToken returns 32 random bytes, hex encoded.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Create issues a new token for userID.
func (s *AppSessionStore) Create(ctx context.Context, userID string) (string, *AppSession, error) {
	token, err := NewToken()
	if err != nil {
		return "", nil, fmt.Errorf("session token: %w", err)
	}
	now := time.Now()
	as := &AppSession{
		UserID:    userID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}
	b, _ := json.Marshal(as)
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key(token), b, s.ttl)
	pipe.SAdd(ctx, userSetKey(userID), token)
	pipe.Expire(ctx, userSetKey(userID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", nil, err
	}
	return token, as, nil
}

func (s *AppSessionStore) Get(ctx context.Context, token string) (*AppSession, error) {
	b, err := s.rdb.Get(ctx, key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	var as AppSession
	if err := json.Unmarshal(b, &as); err != nil {
		return nil, err
	}
	return &as, nil
}

func (s *AppSessionStore) Delete(ctx context.Context, token string) error {
	as, _ := s.Get(ctx, token) // 忽略失败
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key(token))
	if as != nil {
		pipe.SRem(ctx, userSetKey(as.UserID), token)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RevokeAllForUser 删除或停用用户时撤销其全部会话
func (s *AppSessionStore) RevokeAllForUser(ctx context.Context, userID string) error {
	ids, err := s.rdb.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	pipe := s.rdb.TxPipeline()
	for _, sid := range ids {
		pipe.Del(ctx, key(sid))
	}
	pipe.Del(ctx, userSetKey(userID))
	_, err = pipe.Exec(ctx)
	return err
}

// Store is what the HTTP layer needs from a session backend.
type Store interface {
	Create(ctx context.Context, userID string) (string, *AppSession, error)
	Get(ctx context.Context, token string) (*AppSession, error)
	Delete(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

var _ Store = (*AppSessionStore)(nil)
