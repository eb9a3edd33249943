package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// guestBackend is the slice of the redis client the guest store needs.
type guestBackend interface {
	Get(ctx context.Context, key string) (string, error)
	Eval(ctx context.Context, script string, keys []string, args ...any) (any, error)
	Del(ctx context.Context, keys ...string) error
	GuestCartKey(guestToken string) string
}

// guestCartSaveScript implements compare-and-set over the JSON document: the
// write goes through only if the stored version (or absence, for version
// zero) matches what the caller read.
const guestCartSaveScript = `
local current = redis.call('GET', KEYS[1])
if current == false then
  if tonumber(ARGV[1]) ~= 0 then
    return 0
  end
else
  local doc = cjson.decode(current)
  if tonumber(doc.version) ~= tonumber(ARGV[1]) then
    return 0
  end
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`

type guestCartDocument struct {
	Version int64      `json:"version"`
	Items   []LineItem `json:"items"`
}

// RedisStore keeps guest carts as JSON documents keyed by guest token, with
// a sliding TTL so abandoned carts expire on their own.
type RedisStore struct {
	client guestBackend
	ttl    time.Duration
}

// NewRedisStore builds a guest cart store with the provided TTL.
func NewRedisStore(client guestBackend, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("guest cart ttl must be positive")
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

// Load returns the guest cart for the token, or an empty cart at version
// zero when none is stored or it has expired.
func (s *RedisStore) Load(ctx context.Context, key string) (*Cart, int64, error) {
	raw, err := s.client.Get(ctx, s.client.GuestCartKey(key))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return &Cart{}, 0, nil
		}
		return nil, 0, err
	}

	var doc guestCartDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, 0, fmt.Errorf("decode guest cart: %w", err)
	}
	return &Cart{Items: doc.Items}, doc.Version, nil
}

// Save writes the guest cart through the compare-and-set script and resets
// the TTL. A version mismatch surfaces as ErrConflict.
func (s *RedisStore) Save(ctx context.Context, key string, cart *Cart, version int64) error {
	doc := guestCartDocument{
		Version: version + 1,
		Items:   cart.Items,
	}
	if doc.Items == nil {
		doc.Items = []LineItem{}
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode guest cart: %w", err)
	}

	result, err := s.client.Eval(ctx, guestCartSaveScript,
		[]string{s.client.GuestCartKey(key)},
		version, string(payload), s.ttl.Milliseconds())
	if err != nil {
		return err
	}
	applied, ok := result.(int64)
	if !ok {
		return fmt.Errorf("unexpected guest cart save result %T", result)
	}
	if applied != 1 {
		return ErrConflict
	}
	return nil
}

// Delete removes the guest cart record. Deleting an absent token is a no-op.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.client.GuestCartKey(key))
}
