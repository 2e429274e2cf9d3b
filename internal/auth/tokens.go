package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Sanilblank/blog-api/internal/shared"
)

const tokenPrefix = "token:"

// TokenStore issues personal access tokens backed by Redis. A token reads
// "<id>|<secret>"; only a digest of the secret is stored.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

type tokenRecord struct {
	UserID int64  `json:"user_id"`
	Digest string `json:"digest"`
}

// NewTokenStore constructs a TokenStore.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

// Issue creates a token for userID.
func (s *TokenStore) Issue(ctx context.Context, userID int64) (string, error) {
	id := uuid.NewString()
	secret, err := randomSecret()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(tokenRecord{UserID: userID, Digest: digest(secret)})
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, tokenPrefix+id, data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return id + "|" + secret, nil
}

// Lookup resolves a plain token to its token id and user id. Unknown,
// expired or malformed tokens yield ErrUnauthenticated.
func (s *TokenStore) Lookup(ctx context.Context, token string) (string, int64, error) {
	id, secret, ok := strings.Cut(token, "|")
	if !ok || id == "" || secret == "" {
		return "", 0, shared.ErrUnauthenticated
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", 0, shared.ErrUnauthenticated
	}
	data, err := s.client.Get(ctx, tokenPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", 0, shared.ErrUnauthenticated
		}
		return "", 0, err
	}
	var rec tokenRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", 0, err
	}
	if subtle.ConstantTimeCompare([]byte(rec.Digest), []byte(digest(secret))) != 1 {
		return "", 0, shared.ErrUnauthenticated
	}
	return id, rec.UserID, nil
}

// Revoke deletes the token with id.
func (s *TokenStore) Revoke(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, tokenPrefix+id).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func digest(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
