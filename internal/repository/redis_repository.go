package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fleetpay/withdraw-service/internal/model"
	"github.com/fleetpay/withdraw-service/internal/phone"
	"github.com/redis/go-redis/v9"
)

const (
	resultKeyPrefix = "withdrawal:"
	resultTTL       = 7 * 24 * time.Hour
)

// ErrNotFound is returned when no result exists for the requested id
var ErrNotFound = errors.New("withdrawal result not found")

// RedisRepository implements WithdrawalRepository using Redis
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a new Redis repository
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func (r *RedisRepository) SaveResult(ctx context.Context, result *model.WithdrawalResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	if err := r.client.Set(ctx, resultKeyPrefix+result.ID, data, resultTTL).Err(); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func (r *RedisRepository) GetResult(ctx context.Context, id string) (*model.WithdrawalResult, error) {
	data, err := r.client.Get(ctx, resultKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}

	var result model.WithdrawalResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return &result, nil
}

func (r *RedisRepository) ListResults(ctx context.Context, filter ResultFilter) ([]*model.WithdrawalResult, error) {
	// Simple prefix scan; audit records are short-lived and low-volume,
	// a proper index belongs in a database if retention ever grows.
	var cursor uint64
	var results []*model.WithdrawalResult

	for {
		keys, nextCursor, err := r.client.Scan(ctx, cursor, resultKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan results: %w", err)
		}

		for _, key := range keys {
			data, err := r.client.Get(ctx, key).Bytes()
			if err != nil {
				continue
			}

			var result model.WithdrawalResult
			if err := json.Unmarshal(data, &result); err != nil {
				continue
			}

			if filter.OK != nil && result.OK != *filter.OK {
				continue
			}
			if filter.Reason != "" && result.Reason != filter.Reason {
				continue
			}
			if filter.Phone != "" && !phone.SameSuffix(result.Phone, filter.Phone) {
				continue
			}

			results = append(results, &result)

			if filter.Limit > 0 && len(results) >= filter.Limit {
				return results, nil
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return results, nil
}
