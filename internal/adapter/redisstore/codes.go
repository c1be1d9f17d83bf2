// Package redisstore keeps one-time registration codes in redis, where the
// TTL does the expiry for us.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"jobboard/internal/domain"
)

const codeKeyPrefix = "otp:"

// consumeScript compares and deletes in one round trip so a matching code
// can be redeemed at most once, even under concurrent verification calls.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("DEL", KEYS[1])
	return 1
end
return 0`)

// Codes is the redis-backed CodeStore.
type Codes struct {
	client *redis.Client
}

func NewCodes(client *redis.Client) *Codes {
	return &Codes{client: client}
}

func key(email string) string {
	return codeKeyPrefix + email
}

// Save stores the code under the email for ttl, replacing any earlier code.
func (c *Codes) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("save code: %w", err)
	}
	return nil
}

// Consume redeems the code. A missing, expired or mismatched code all come
// back as ErrCodeInvalid.
func (c *Codes) Consume(ctx context.Context, email, code string) error {
	if code == "" {
		return domain.ErrCodeInvalid
	}
	n, err := consumeScript.Run(ctx, c.client, []string{key(email)}, code).Int()
	if err != nil {
		return fmt.Errorf("consume code: %w", err)
	}
	if n != 1 {
		return domain.ErrCodeInvalid
	}
	return nil
}
