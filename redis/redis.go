package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Password  string `json:"password"`
	Namespace string `json:"namespace"`
}

type RedisSentinelConfig struct {
	SentinelHost     string `json:"sentinel_host"`
	SentinelPort     int    `json:"sentinel_port"`
	Password         string `json:"password"`
	MasterName       string `json:"master_name"`
	SentinelUsername string `json:"sentinel_username"`
	Namespace        string `json:"namespace"`
}

const pingTimeout = 3 * time.Second

// Key builds a namespaced key like "scanner:session:<id>".
func Key(namespace, kind, id string) string {
	return fmt.Sprintf("%s:%s:%s", namespace, kind, id)
}

func NewRedisClient(config *RedisConfig) (*redis.Client, error) {
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	slog.Info("Connecting to Redis", "address", address)

	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: config.Password,
		DB:       0,
	})

	if err := ping(client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func NewRedisSentinelClient(config *RedisSentinelConfig) (*redis.Client, error) {
	if config.MasterName == "" {
		return nil, fmt.Errorf("failed to connect to Redis through Sentinel: no master name configured")
	}

	address := fmt.Sprintf("%s:%d", config.SentinelHost, config.SentinelPort)
	slog.Info("Connecting to Redis through Sentinel", "sentinel", address, "master", config.MasterName)

	client := redis.NewFailoverClient(&redis.FailoverOptions{
		MasterName:       config.MasterName,
		SentinelAddrs:    []string{address},
		SentinelUsername: config.SentinelUsername,
		SentinelPassword: config.Password,
		Password:         config.Password,
		DB:               0,
	})

	if err := ping(client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis through Sentinel: %w", err)
	}
	return client, nil
}

func ping(client *redis.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return client.Ping(ctx).Err()
}
