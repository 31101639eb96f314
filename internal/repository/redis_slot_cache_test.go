package repository

import (
	"context"
	"os"
	"testing"
	"time"

	pkgredis "github.com/cheeksnpeeps/amenity-scheduler/pkg/redis"
)

// getRedisClient creates a Redis client for testing
func getRedisClient(t *testing.T) *pkgredis.Client {
	skipIfNoIntegration(t)

	host := os.Getenv("TEST_REDIS_HOST")
	if host == "" {
		host = "localhost"
	}

	password := os.Getenv("TEST_REDIS_PASSWORD")

	cfg := &pkgredis.Config{
		Host:          host,
		Port:          6379,
		Password:      password,
		DB:            15, // Use DB 15 for testing
		PoolSize:      10,
		MinIdleConns:  2,
		DialTimeout:   5 * time.Second,
		ReadTimeout:   3 * time.Second,
		WriteTimeout:  3 * time.Second,
		MaxRetries:    3,
		RetryInterval: time.Second,
	}

	ctx := context.Background()
	client, err := pkgredis.NewClient(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to create Redis client: %v", err)
	}

	// Flush test database
	if err := client.Client().FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test database: %v", err)
	}

	t.Cleanup(func() { _ = client.Close() })
	return client
}

func cachedRange() (time.Time, []time.Time) {
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	return start, []time.Time{start, start.Add(time.Hour), start.Add(2 * time.Hour)}
}

func slotsEqual(a, b []time.Time) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func TestRedisSlotCache_SetGetRoundTrip(t *testing.T) {
	skipIfNoIntegration(t)

	client := getRedisClient(t)
	cache := NewRedisSlotCache(client.Client(), time.Minute)
	ctx := context.Background()

	start, slots := cachedRange()
	end := start.Add(14 * time.Hour)

	if _, hit := cache.Get(ctx, "amenity-001", start, end); hit {
		t.Fatal("Get() before Set reported a hit")
	}

	cache.Set(ctx, "amenity-001", start, end, slots)

	got, hit := cache.Get(ctx, "amenity-001", start, end)
	if !hit {
		t.Fatal("Get() after Set reported a miss")
	}
	if !slotsEqual(got, slots) {
		t.Errorf("Get() slots = %v, want %v", got, slots)
	}
}

func TestRedisSlotCache_InvalidateDropsCachedRanges(t *testing.T) {
	skipIfNoIntegration(t)

	client := getRedisClient(t)
	cache := NewRedisSlotCache(client.Client(), time.Minute)
	ctx := context.Background()

	start, slots := cachedRange()
	end := start.Add(14 * time.Hour)

	cache.Set(ctx, "amenity-001", start, end, slots)
	cache.Set(ctx, "amenity-001", start.Add(24*time.Hour), end.Add(24*time.Hour), slots)

	cache.Invalidate(ctx, "amenity-001")

	if _, hit := cache.Get(ctx, "amenity-001", start, end); hit {
		t.Error("Get() after Invalidate still hit the first range")
	}
	if _, hit := cache.Get(ctx, "amenity-001", start.Add(24*time.Hour), end.Add(24*time.Hour)); hit {
		t.Error("Get() after Invalidate still hit the second range")
	}

	// the bumped version is where new entries land
	cache.Set(ctx, "amenity-001", start, end, slots[:1])
	got, hit := cache.Get(ctx, "amenity-001", start, end)
	if !hit {
		t.Fatal("Get() after re-Set reported a miss")
	}
	if !slotsEqual(got, slots[:1]) {
		t.Errorf("Get() slots = %v, want %v", got, slots[:1])
	}
}

func TestRedisSlotCache_InvalidateIsPerAmenity(t *testing.T) {
	skipIfNoIntegration(t)

	client := getRedisClient(t)
	cache := NewRedisSlotCache(client.Client(), time.Minute)
	ctx := context.Background()

	start, slots := cachedRange()
	end := start.Add(14 * time.Hour)

	cache.Set(ctx, "amenity-001", start, end, slots)
	cache.Set(ctx, "amenity-002", start, end, slots)

	cache.Invalidate(ctx, "amenity-001")

	if _, hit := cache.Get(ctx, "amenity-001", start, end); hit {
		t.Error("Get() for invalidated amenity reported a hit")
	}
	if _, hit := cache.Get(ctx, "amenity-002", start, end); !hit {
		t.Error("Get() for untouched amenity reported a miss")
	}
}
