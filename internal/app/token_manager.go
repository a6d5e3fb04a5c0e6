package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shrimpsizemoose/appello/internal/models"
)

const (
	timeFormat  = "2006-01-02 15:04:05"
	tokenPrefix = "sk-appello-"
)

// TokenManager issues API tokens into the hashes Auth reads.
type TokenManager struct {
	redis       *redis.Client
	keyTemplate string
}

func NewTokenManager(redis *redis.Client, keyTemplate string) *TokenManager {
	if keyTemplate == "" {
		keyTemplate = defaultTokenKeyTemplate
	}
	return &TokenManager{redis: redis, keyTemplate: keyTemplate}
}

// NewTokenManagerFromConfig connects to the auth redis.
func NewTokenManagerFromConfig(config *Config) (*TokenManager, error) {
	client, err := connectRedis(config.Auth.RedisURL)
	if err != nil {
		return nil, err
	}
	return NewTokenManager(client, config.Auth.TokenKeyTemplate), nil
}

func generateToken() (string, error) {
	randomBytes := make([]byte, 12)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return tokenPrefix + hex.EncodeToString(randomBytes), nil
}

func (tm *TokenManager) key(role models.Role, user string) string {
	return strings.NewReplacer(
		"{role}", string(role),
		"{user}", user,
	).Replace(tm.keyTemplate)
}

// FetchOrCreateToken returns the token of role/user, creating one on first
// use. The bool reports whether the token is new.
func (tm *TokenManager) FetchOrCreateToken(ctx context.Context, role models.Role, user string) (*models.TokenInfo, bool, error) {
	if !role.Valid() {
		return nil, false, fmt.Errorf("unknown role %q", role)
	}
	key := tm.key(role, user)

	token, err := tm.redis.HGet(ctx, key, "token").Result()
	if err != nil && err != redis.Nil {
		return nil, false, fmt.Errorf("failed to check token: %w", err)
	}

	now := time.Now().UTC()
	isNewToken := false

	if err == redis.Nil {
		token, err = generateToken()
		if err != nil {
			return nil, false, fmt.Errorf("failed to generate token: %w", err)
		}

		pipe := tm.redis.Pipeline()
		pipe.HSet(ctx, key, map[string]interface{}{
			"token":                 token,
			"request_count":         1,
			"last_request_dttm_utc": now.Format(timeFormat),
			"created_dttm_utc":      now.Format(timeFormat),
		})

		if _, err := pipe.Exec(ctx); err != nil {
			return nil, false, fmt.Errorf("failed to create token: %w", err)
		}

		isNewToken = true
	} else {
		pipe := tm.redis.Pipeline()
		pipe.HIncrBy(ctx, key, "request_count", 1)
		pipe.HSet(ctx, key, "last_request_dttm_utc", now.Format(timeFormat))

		if _, err := pipe.Exec(ctx); err != nil {
			return nil, false, fmt.Errorf("failed to update token stats: %w", err)
		}
	}

	values, err := tm.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get token info: %w", err)
	}

	lastReqTime, _ := time.Parse(timeFormat, values["last_request_dttm_utc"])
	createdTime, _ := time.Parse(timeFormat, values["created_dttm_utc"])
	reqCount, _ := strconv.Atoi(values["request_count"])

	return &models.TokenInfo{
		Token:           values["token"],
		RequestCount:    reqCount,
		LastRequestTime: lastReqTime,
		CreatedTime:     createdTime,
	}, isNewToken, nil
}

// RevokeToken deletes the token of role/user.
func (tm *TokenManager) RevokeToken(ctx context.Context, role models.Role, user string) error {
	return tm.redis.Del(ctx, tm.key(role, user)).Err()
}

func (tm *TokenManager) Close() error {
	if tm.redis != nil {
		return tm.redis.Close()
	}
	return nil
}
