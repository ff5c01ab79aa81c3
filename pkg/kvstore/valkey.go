package kvstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/smartnotes/summarizer/infrastructure/valkey"
)

// ValkeyStore implements Store on top of a shared Valkey client.
// Lists are stored as JSON-encoded strings.
type ValkeyStore struct {
	client *valkey.Client
	prefix string
}

// NewValkeyStore creates a Store backed by the given Valkey client.
func NewValkeyStore(client *valkey.Client) *ValkeyStore {
	return &ValkeyStore{
		client: client,
		prefix: client.Key("kv") + ":",
	}
}

func (s *ValkeyStore) fullKey(key string) string {
	return s.prefix + key
}

func (s *ValkeyStore) GetString(ctx context.Context, key string) (string, bool, error) {
	inner := s.client.Inner()
	cmd := inner.B().Get().Key(s.fullKey(key)).Build()

	value, err := inner.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsNil(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, true, nil
}

func (s *ValkeyStore) SetString(ctx context.Context, key, value string) error {
	inner := s.client.Inner()
	cmd := inner.B().Set().Key(s.fullKey(key)).Value(value).Build()

	if err := inner.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (s *ValkeyStore) GetStringList(ctx context.Context, key string) ([]string, bool, error) {
	raw, ok, err := s.GetString(ctx, "list:"+key)
	if err != nil || !ok {
		return nil, ok, err
	}

	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, false, fmt.Errorf("corrupt list for key %s: %w", key, err)
	}
	return values, true, nil
}

func (s *ValkeyStore) SetStringList(ctx context.Context, key string, values []string) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return s.SetString(ctx, "list:"+key, string(raw))
}

func (s *ValkeyStore) Remove(ctx context.Context, key string) error {
	inner := s.client.Inner()
	cmd := inner.B().Del().Key(s.fullKey(key)).Key(s.fullKey("list:" + key)).Build()

	if err := inner.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}
