package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fallvision-alarm/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ErrNoStatus is returned when no cached result exists for the patient.
var ErrNoStatus = errors.New("no cached status for patient")

// StatusCache mirrors the most recent monitoring result per patient into
// Redis with a TTL. The engine never requires it; it only serves cheap
// latest-status reads.
type StatusCache struct {
	client    *redis.Client
	keyPrefix string
	keySuffix string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewStatusCache creates the cache around an existing Redis client.
func NewStatusCache(client *redis.Client, keyPrefix, keySuffix string, ttl time.Duration, logger *zap.Logger) *StatusCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusCache{
		client:    client,
		keyPrefix: keyPrefix,
		keySuffix: keySuffix,
		ttl:       ttl,
		logger:    logger,
	}
}

// SetLatest stores the patient's most recent monitoring result.
func (c *StatusCache) SetLatest(ctx context.Context, patientID string, result *models.MonitoringResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal monitoring result: %w", err)
	}

	key := c.key(patientID)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set status cache: %w", err)
	}

	c.logger.Debug("Cached monitoring result",
		zap.String("patient_id", patientID),
		zap.String("key", key),
	)
	return nil
}

// GetLatest returns the patient's most recent monitoring result, or
// ErrNoStatus when nothing is cached.
func (c *StatusCache) GetLatest(ctx context.Context, patientID string) (*models.MonitoringResult, error) {
	val, err := c.client.Get(ctx, c.key(patientID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("%w: %s", ErrNoStatus, patientID)
		}
		return nil, fmt.Errorf("failed to get status cache: %w", err)
	}

	var result models.MonitoringResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal monitoring result: %w", err)
	}
	return &result, nil
}

func (c *StatusCache) key(patientID string) string {
	return fmt.Sprintf("%s%s%s", c.keyPrefix, patientID, c.keySuffix)
}
