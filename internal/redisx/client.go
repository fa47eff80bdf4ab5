package redisx

import (
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	r := redis.NewClient(&redis.Options{Addr: addr})
	// WithTimeout balikin client baru, yang lama tetap tanpa timeout
	return r.WithTimeout(2 * time.Second)
}
