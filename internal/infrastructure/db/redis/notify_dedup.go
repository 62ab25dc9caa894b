package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const notifyDedupTTL = 24 * time.Hour

// NotifyDedup suppresses repeat status emails backed by Redis. An admin
// toggling an application back and forth within the TTL produces one email
// per (application, status), not one per click.
// Key format: notify:<application_id>:<status>
type NotifyDedup struct {
	client *redis.Client
}

// NewNotifyDedup creates a NotifyDedup wrapping the given Redis client.
func NewNotifyDedup(client *redis.Client) *NotifyDedup {
	return &NotifyDedup{client: client}
}

// AlreadySent reports whether an email for this (application, status) pair
// went out within the TTL window.
func (d *NotifyDedup) AlreadySent(ctx context.Context, applicationID, status string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(applicationID, status)).Result()
	if err != nil {
		return false, fmt.Errorf("notify dedup check: %w", err)
	}
	return n > 0, nil
}

// MarkSent records that the email for this pair has been delivered.
func (d *NotifyDedup) MarkSent(ctx context.Context, applicationID, status string) error {
	return d.client.Set(ctx, d.key(applicationID, status), "1", notifyDedupTTL).Err()
}

func (d *NotifyDedup) key(applicationID, status string) string {
	return fmt.Sprintf("notify:%s:%s", applicationID, status)
}
