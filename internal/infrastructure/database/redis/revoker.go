package redis

import (
	"context"
	"time"
)

const revokedPrefix = "auth:revoked:"

// TokenRevoker stores logged-out JWT ids until the token would have expired
type TokenRevoker struct {
	client *Client
}

func NewTokenRevoker(client *Client) *TokenRevoker {
	return &TokenRevoker{client: client}
}

func (r *TokenRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.rdb.Set(ctx, revokedPrefix+tokenID, 1, ttl).Err()
}

func (r *TokenRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.rdb.Exists(ctx, revokedPrefix+tokenID).Result()
	return n > 0, err
}
