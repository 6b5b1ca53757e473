package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"client-vault/internal/domain/identity"
	apperrors "client-vault/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// RedisStateStore keeps OAuth state nonces for the duration of a provider
// round-trip. Each nonce records the role that started the flow and can be
// consumed once.
type RedisStateStore struct {
	client *redis.Client
}

func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{client: client}
}

// Issue stores a fresh nonce for role and returns it.
func (s *RedisStateStore) Issue(ctx context.Context, role identity.Role, ttl time.Duration) (string, error) {
	if !role.Valid() {
		return "", apperrors.Validation(fmt.Sprintf(msgInvalidRole, role))
	}

	nonce, err := newNonce()
	if err != nil {
		return "", err
	}

	if err := s.client.Set(ctx, stateKeyPrefix+nonce, string(role), ttl).Err(); err != nil {
		return "", fmt.Errorf(msgFailedSaveStateFmt, err)
	}

	return nonce, nil
}

// Consume returns the role bound to nonce and forgets it.
func (s *RedisStateStore) Consume(ctx context.Context, nonce string) (identity.Role, error) {
	if nonce == "" {
		return "", apperrors.NotFound(msgStateNotFound)
	}

	raw, err := s.client.GetDel(ctx, stateKeyPrefix+nonce).Result()
	if errors.Is(err, redis.Nil) {
		return "", apperrors.NotFound(msgStateNotFound)
	}
	if err != nil {
		return "", fmt.Errorf(msgFailedConsumeStateFmt, err)
	}

	role := identity.Role(raw)
	if !role.Valid() {
		return "", apperrors.NotFound(msgStateNotFound)
	}
	return role, nil
}

func newNonce() (string, error) {
	buf := make([]byte, stateNonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf(msgFailedGenerateNonceFmt, err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
