// internal/app/auth.go
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/appello/internal/models"
)

type Auth struct {
	enabled     bool
	redis       *redis.Client
	keyTemplate string
	tokenHeader string
}

func NewAuth(config *Config) (*Auth, error) {
	if !config.Server.EnableAuth {
		return &Auth{enabled: false, tokenHeader: config.Auth.TokenHeader}, nil
	}

	client, err := connectRedis(config.Auth.RedisURL)
	if err != nil {
		return nil, err
	}

	return &Auth{
		enabled:     true,
		redis:       client,
		keyTemplate: config.Auth.TokenKeyTemplate,
		tokenHeader: config.Auth.TokenHeader,
	}, nil
}

func connectRedis(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (a *Auth) Enabled() bool {
	return a.enabled
}

func (a *Auth) TokenHeader() string {
	return a.tokenHeader
}

func (a *Auth) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

func (a *Auth) key(role models.Role, user string) string {
	return strings.NewReplacer(
		"{role}", string(role),
		"{user}", user,
	).Replace(a.keyTemplate)
}

// ValidateToken compares token with the one issued for role/user.
func (a *Auth) ValidateToken(ctx context.Context, role models.Role, user, token string) error {
	if !a.enabled {
		return nil
	}

	key := a.key(role, user)

	stored, err := a.redis.HGet(ctx, key, "token").Result()
	if err == redis.Nil {
		logger.Debug.Printf("Token not found for key: %s", key)
		return fmt.Errorf("token not found")
	}
	if err != nil {
		logger.Debug.Printf("Redis error: %v", err)
		return fmt.Errorf("redis error: %w", err)
	}

	if stored != token {
		logger.Debug.Printf("Token mismatch for %s %s, checked against %s", role, user, key)
		return fmt.Errorf("invalid token")
	}

	return nil
}
