package redis

import (
	"context"
	"fmt"
	"misikaMarket/pkg/config"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect opens the client used for token revocation and checks it answers
// before the server starts accepting requests.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", client.Options().Addr, err)
	}

	return client, nil
}

// Close is safe on a nil client, which is what the server holds when
// revocation is disabled.
func Close(client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}
