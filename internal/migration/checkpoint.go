package migration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"kgv/internal/platform/redis"
)

const checkpointKey = "kgv:migration:last_run"

// Checkpoint records the outcome of the last migration run in Redis, the
// state store the legacy pipeline already used. Operators inspect it to
// verify counts before decommissioning the source.
type Checkpoint struct {
	client *redis.Client
}

// NewCheckpoint wraps the shared Redis client; a nil client disables
// checkpointing.
func NewCheckpoint(client *redis.Client) *Checkpoint {
	if client == nil {
		return nil
	}
	return &Checkpoint{client: client}
}

// Save stores the run summary. Called only after a successful commit.
func (c *Checkpoint) Save(ctx context.Context, s *Summary) error {
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal migration checkpoint: %w", err)
	}
	if err := c.client.Set(ctx, checkpointKey, payload, 0).Err(); err != nil {
		return fmt.Errorf("save migration checkpoint: %w", err)
	}
	return nil
}

// Load returns the last stored summary, or nil when none exists.
func (c *Checkpoint) Load(ctx context.Context) (*Summary, error) {
	if c == nil {
		return nil, nil
	}
	payload, err := c.client.Get(ctx, checkpointKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load migration checkpoint: %w", err)
	}
	var s Summary
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("decode migration checkpoint: %w", err)
	}
	return &s, nil
}
