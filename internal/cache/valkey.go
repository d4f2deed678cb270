package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ValkeyClient caches catalog-style class listings and the auth lookup. Live
// schedule views bypass it entirely; catalog listings live for a short TTL.
type ValkeyClient struct {
	client     *redis.Client
	listingTTL time.Duration
}

type Config struct {
	Addr          string
	Password      string
	ListingTTLSec int
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	ttl := time.Duration(cfg.ListingTTLSec) * time.Second
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &ValkeyClient{client: rdb, listingTTL: ttl}, nil
}

func classListKey(page, pageSize int, category string) string {
	return fmt.Sprintf("classes:list:%s:%d:%d", category, page, pageSize)
}

// GetClassListRaw returns the cached JSON body for a catalog listing, or an
// error on miss.
func (v *ValkeyClient) GetClassListRaw(ctx context.Context, page, pageSize int, category string) ([]byte, error) {
	raw, err := v.client.Get(ctx, classListKey(page, pageSize, category)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("cache miss")
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}
	return raw, nil
}

// SetClassList stores a catalog listing response for the configured TTL.
// Errors are deliberately dropped; the cache is advisory.
func (v *ValkeyClient) SetClassList(ctx context.Context, page, pageSize int, category string, response interface{}) {
	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	v.client.Set(ctx, classListKey(page, pageSize, category), payload, v.listingTTL)
}

// InvalidateClassLists drops all cached listings, called after admin writes
// to the schedule.
func (v *ValkeyClient) InvalidateClassLists(ctx context.Context) {
	iter := v.client.Scan(ctx, 0, "classes:list:*", 100).Iterator()
	for iter.Next(ctx) {
		v.client.Del(ctx, iter.Val())
	}
}

// GetUserIDByAuth resolves a cached basic-auth credential pair to a user id.
func (v *ValkeyClient) GetUserIDByAuth(ctx context.Context, email, passwordHash string) (int64, error) {
	key := fmt.Sprintf("users:auth:%x", sha256.Sum256([]byte(email+":"+passwordHash)))
	userID, err := v.client.Get(ctx, key).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, fmt.Errorf("user not found in cache")
		}
		return 0, fmt.Errorf("cache lookup error: %w", err)
	}
	return userID, nil
}

// SetUserAuth caches a verified credential pair for subsequent requests.
func (v *ValkeyClient) SetUserAuth(ctx context.Context, email, passwordHash string, userID int64) {
	key := fmt.Sprintf("users:auth:%x", sha256.Sum256([]byte(email+":"+passwordHash)))
	v.client.Set(ctx, key, userID, 10*time.Minute)
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
