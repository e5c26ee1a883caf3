package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rohmanhakim/nps-crawler/internal/metadata"
	"github.com/rohmanhakim/nps-crawler/pkg/failure"
)

// RedisStore keeps the mapping in one redis hash: field is the request key,
// value the JSON-encoded entry. Save swaps the whole hash inside a
// MULTI/EXEC transaction so readers see either the old or the new mapping.
type RedisStore struct {
	client       *redis.Client
	hashKey      string
	metadataSink metadata.MetadataSink
}

func NewRedisStore(client *redis.Client, hashKey string, metadataSink metadata.MetadataSink) *RedisStore {
	return &RedisStore{
		client:       client,
		hashKey:      hashKey,
		metadataSink: metadataSink,
	}
}

// ConnectRedis opens a client and checks the server answers.
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       0,
		Protocol: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func (s *RedisStore) Load(ctx context.Context) Mapping {
	fields, err := s.client.HGetAll(ctx, s.hashKey).Result()
	if err != nil {
		s.recordError("RedisStore.Load", err.Error())
		return make(Mapping)
	}

	mapping := make(Mapping, len(fields))
	for key, value := range fields {
		mapping[key] = decodeEntry(json.RawMessage(value))
	}
	return mapping
}

func (s *RedisStore) Save(ctx context.Context, m Mapping) failure.ClassifiedError {
	values := make(map[string]interface{}, len(m))
	for key, entry := range m {
		encoded, err := json.Marshal(entry)
		if err != nil {
			cacheErr := &CacheError{
				Message: err.Error(),
				Cause:   ErrCauseEncodeFailure,
			}
			s.recordError("RedisStore.Save", cacheErr.Error())
			return cacheErr
		}
		values[key] = string(encoded)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.hashKey)
		if len(values) > 0 {
			pipe.HSet(ctx, s.hashKey, values)
		}
		return nil
	})
	if err != nil {
		cacheErr := &CacheError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseBackendFailure,
		}
		s.recordError("RedisStore.Save", cacheErr.Error())
		return cacheErr
	}

	s.metadataSink.RecordArtifact(
		metadata.ArtifactCacheFile,
		"redis://"+s.client.Options().Addr+"/"+s.hashKey,
		nil,
	)
	return nil
}

func (s *RedisStore) recordError(action string, details string) {
	s.metadataSink.RecordError(
		time.Now(),
		"cache",
		action,
		metadata.CauseStorageFailure,
		details,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrCacheKey, s.hashKey),
		},
	)
}
