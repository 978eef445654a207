package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/andersoncassiani/chatsuite/environments"
	"github.com/andersoncassiani/chatsuite/internal/domain"
	"github.com/andersoncassiani/chatsuite/pkg/logger"
)

// Client keeps a short-lived record of recently delivered notifications so
// operators can see provider SIDs without hitting the database. Best
// effort: the service runs fine without it.
type Client struct {
	client valkey.Client
}

const (
	sentNotificationKeyPrefix = "sent_notification:"
	sentNotificationTTL       = 24 * time.Hour
)

func NewRedisClient(cfg environments.RedisConfig) (*Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)},
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Infof("Connected to Redis (via Valkey client)")

	return &Client{client: client}, nil
}

// ErrCacheDisabled is returned by a nil Client; caching is optional and a
// nil receiver means it was never configured.
var ErrCacheDisabled = fmt.Errorf("redis cache not configured")

func (c *Client) CacheSentNotification(ctx context.Context, dbID int64, twilioSID string, sentAt time.Time) error {
	if c == nil {
		return ErrCacheDisabled
	}

	cache := domain.SentNotificationCache{
		TwilioSID: twilioSID,
		SentAt:    sentAt,
	}

	data, err := json.Marshal(cache)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	key := fmt.Sprintf("%s%d", sentNotificationKeyPrefix, dbID)

	err = c.client.Do(ctx, c.client.B().Set().Key(key).Value(string(data)).Ex(sentNotificationTTL).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to cache sent notification: %w", err)
	}

	logger.Debugf("Cached notification %d -> %s in Redis", dbID, twilioSID)

	return nil
}

func (c *Client) GetCachedNotification(ctx context.Context, dbID int64) (*domain.SentNotificationCache, error) {
	if c == nil {
		return nil, ErrCacheDisabled
	}

	key := fmt.Sprintf("%s%d", sentNotificationKeyPrefix, dbID)

	result := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
	if result.Error() != nil {
		if valkey.IsValkeyNil(result.Error()) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached notification: %w", result.Error())
	}

	data, err := result.ToString()
	if err != nil {
		return nil, fmt.Errorf("failed to read cached notification: %w", err)
	}

	var cache domain.SentNotificationCache
	if err := json.Unmarshal([]byte(data), &cache); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}

	return &cache, nil
}

func (c *Client) GetAllCachedNotifications(ctx context.Context) (map[int64]*domain.SentNotificationCache, error) {
	if c == nil {
		return nil, ErrCacheDisabled
	}

	pattern := fmt.Sprintf("%s*", sentNotificationKeyPrefix)

	var keys []string
	var cursor uint64
	for {
		result := c.client.Do(ctx, c.client.B().Scan().Cursor(cursor).Match(pattern).Count(100).Build())
		if result.Error() != nil {
			return nil, fmt.Errorf("failed to scan cache keys: %w", result.Error())
		}

		scanResult, err := result.AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("failed to parse scan result: %w", err)
		}

		keys = append(keys, scanResult.Elements...)
		cursor = scanResult.Cursor

		if cursor == 0 {
			break
		}
	}

	result := make(map[int64]*domain.SentNotificationCache)

	for _, key := range keys {
		getResult := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
		if getResult.Error() != nil {
			continue
		}

		data, err := getResult.ToString()
		if err != nil {
			continue
		}

		var cache domain.SentNotificationCache
		if err := json.Unmarshal([]byte(data), &cache); err != nil {
			continue
		}

		var dbID int64
		if _, err := fmt.Sscanf(key, sentNotificationKeyPrefix+"%d", &dbID); err != nil {
			logger.Warnf("failed to parse dbID from redis key %q: %v", key, err)
			continue
		}

		result[dbID] = &cache
	}

	return result, nil
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.client.Close()
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return ErrCacheDisabled
	}
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}
