package repository

import (
	"context"
	"fmt"
	"time"

	"cosme/crawler/internal/domain"
	"cosme/crawler/internal/domain/task"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RedisRepository appends records to a Redis stream as task messages
type RedisRepository struct {
	redisClient *redis.Client
	stream      string
	maxLength   int64
	now         func() time.Time
}

func NewRedisRepository(redisClient *redis.Client, stream string, maxLength int64) *RedisRepository {
	return &RedisRepository{
		redisClient: redisClient,
		stream:      stream,
		maxLength:   maxLength,
		now:         time.Now,
	}
}

func (r *RedisRepository) SaveRecord(ctx context.Context, record domain.ProductRecord) error {
	values, err := r.messageValues(record)
	if err != nil {
		return err
	}

	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: values,
	}
	if r.maxLength > 0 {
		args.MaxLen = r.maxLength
		args.Approx = true
	}

	messageID, err := r.redisClient.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to add record to Redis stream %s: %w", r.stream, err)
	}

	log.Debugf("Added record to stream %s with message ID: %s", r.stream, messageID)
	return nil
}

func (r *RedisRepository) messageValues(record domain.ProductRecord) (map[string]interface{}, error) {
	return task.Values(&task.RecordTask{ProductRecord: record, CrawledAt: r.now().Unix()})
}

func (r *RedisRepository) Close() error {
	return r.redisClient.Close()
}
