package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/onurcolak/daily-campaign-mailer/environments"
	"github.com/onurcolak/daily-campaign-mailer/internal/domain"
	"github.com/onurcolak/daily-campaign-mailer/pkg/logger"
)

type Client struct {
	client valkey.Client
}

const (
	RunLockKey = "mailer:lock:campaign_run"
	LastRunKey = "mailer:last_run"
	lastRunTTL = 7 * 24 * time.Hour
)

// releaseScript deletes the lock only while it still holds our token.
var releaseScript = valkey.NewLuaScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

func NewRedisClient(cfg environments.RedisConfig) (*Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:  []string{fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)},
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Valkey client: %w", err)
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Infof("Connected to Redis (via Valkey client)")

	return &Client{client: client}, nil
}

// AcquireRunLock takes the cross-process campaign lock for ttl. It returns
// false when another process holds it.
func (c *Client) AcquireRunLock(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	if ttl < time.Second {
		ttl = time.Second
	}

	err := c.client.Do(ctx, c.client.B().Set().Key(RunLockKey).Value(token).Nx().Ex(ttl).Build()).Error()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to acquire run lock: %w", err)
	}

	return true, nil
}

func (c *Client) ReleaseRunLock(ctx context.Context, token string) error {
	err := releaseScript.Exec(ctx, c.client, []string{RunLockKey}, []string{token}).Error()
	if err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}
	return nil
}

func (c *Client) CacheRunRecord(ctx context.Context, rec domain.RunRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}

	err = c.client.Do(ctx, c.client.B().Set().Key(LastRunKey).Value(string(data)).Ex(lastRunTTL).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to cache run record: %w", err)
	}

	logger.Debugf("Cached run record %s (%s) in Redis", rec.RunID, rec.Status)

	return nil
}

// GetCachedRunRecord returns the last cached run, or nil when none exists.
func (c *Client) GetCachedRunRecord(ctx context.Context) (*domain.RunRecord, error) {
	result := c.client.Do(ctx, c.client.B().Get().Key(LastRunKey).Build())
	if result.Error() != nil {
		if valkey.IsValkeyNil(result.Error()) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached run record: %w", result.Error())
	}

	data, err := result.ToString()
	if err != nil {
		return nil, fmt.Errorf("failed to read cached run record: %w", err)
	}

	var rec domain.RunRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run record: %w", err)
	}

	return &rec, nil
}

func (c *Client) Close() error {
	c.client.Close()
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}
