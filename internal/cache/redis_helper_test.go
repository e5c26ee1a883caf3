package cache_test

import "github.com/redis/go-redis/v9"

func newUnreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:       "127.0.0.1:1",
		MaxRetries: -1,
	})
}
