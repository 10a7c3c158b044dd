package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go-mrz-scanner/events"
	"go-mrz-scanner/logging"
	redis "go-mrz-scanner/redis"
)

type Config struct {
	ServerConfig ServerConfig `json:"server_config"`
	LogLevel     string       `json:"log_level"`

	// Receipts are only signed when a key is configured.
	JwtPrivateKeyPath string `json:"jwt_private_key_path,omitempty"`
	IssuerId          string `json:"issuer_id"`

	StorageType         string                    `json:"storage_type"`
	RedisConfig         redis.RedisConfig         `json:"redis_config,omitempty"`
	RedisSentinelConfig redis.RedisSentinelConfig `json:"redis_sentinel_config,omitempty"`

	EventsConfig *events.Config `json:"events_config,omitempty"`
}

func main() {
	configPath := flag.String("config", "", "Path for the config.json to use")
	flag.Parse()

	if *configPath == "" {
		slog.Error("please provide a config path using the --config flag")
		os.Exit(1)
	}

	config, err := readConfigFile(*configPath)
	if err != nil {
		slog.Error("failed to read config file", "path", *configPath, "error", err)
		os.Exit(1)
	}
	logging.InitLogger(config.LogLevel)
	slog.Info("Using config", "path", *configPath)

	if err := run(config); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(config Config) error {
	sessionStorage, err := createSessionStorage(&config)
	if err != nil {
		return fmt.Errorf("failed to instantiate session storage: %w", err)
	}

	receiptSigner, err := createReceiptSigner(&config)
	if err != nil {
		return fmt.Errorf("failed to instantiate receipt signer: %w", err)
	}

	publisher, err := createPublisher(&config)
	if err != nil {
		return fmt.Errorf("failed to instantiate event publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Warn("failed to close event publisher", "error", err)
		}
	}()

	serverState := ServerState{
		sessionStorage: sessionStorage,
		receiptSigner:  receiptSigner,
		publisher:      publisher,
	}

	server, err := NewServer(&serverState, config.ServerConfig)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		_ = server.Stop()
	}()

	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to listen and serve: %w", err)
	}
	return nil
}

func readConfigFile(path string) (Config, error) {
	configBytes, err := os.ReadFile(path)

	if err != nil {
		return Config{}, err
	}

	var config Config
	err = json.Unmarshal(configBytes, &config)

	if err != nil {
		return Config{}, err
	}

	return config, nil
}

func createSessionStorage(config *Config) (SessionStorage, error) {
	switch config.StorageType {
	case "redis":
		slog.Info("Using redis session storage")
		client, err := redis.NewRedisClient(&config.RedisConfig)
		if err != nil {
			return nil, err
		}
		return NewRedisSessionStorage(client, config.RedisConfig.Namespace), nil
	case "redis_sentinel":
		slog.Info("Using redis sentinel session storage")
		client, err := redis.NewRedisSentinelClient(&config.RedisSentinelConfig)
		if err != nil {
			return nil, err
		}
		return NewRedisSessionStorage(client, config.RedisSentinelConfig.Namespace), nil
	case "memory":
		slog.Info("Using in memory session storage")
		return NewInMemorySessionStorage(), nil
	}
	return nil, fmt.Errorf("%v is not a valid storage type", config.StorageType)
}

// createReceiptSigner returns a nil interface when no key is configured.
func createReceiptSigner(config *Config) (ReceiptSigner, error) {
	if config.JwtPrivateKeyPath == "" {
		slog.Info("No JWT private key configured, scan receipts are disabled")
		return nil, nil
	}
	signer, err := NewJwtReceiptSigner(config.JwtPrivateKeyPath, config.IssuerId)
	if err != nil {
		return nil, err
	}
	return signer, nil
}

func createPublisher(config *Config) (events.Publisher, error) {
	if config.EventsConfig == nil || config.EventsConfig.URL == "" {
		slog.Info("No event broker configured, events are dropped")
		return events.NoopPublisher{}, nil
	}
	return events.NewRabbitPublisher(config.EventsConfig)
}
