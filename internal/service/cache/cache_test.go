package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache(0)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.SetBytes(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.SetBytes(ctx, "forever", []byte("2"), 0))

	b, ok, err := c.GetBytes(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), b)

	now = now.Add(2 * time.Minute)
	_, ok, _ = c.GetBytes(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = c.GetBytes(ctx, "forever")
	assert.True(t, ok)
}

func TestTTLCacheNonBytes(t *testing.T) {
	c := NewTTLCache(0)
	c.Set("k", 42, time.Minute)
	_, ok, err := c.GetBytes(context.Background(), "k")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestTTLCacheEviction(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache(2)
	c.now = func() time.Time { return now }

	c.Set("short", 1, time.Minute)
	c.Set("long", 2, time.Hour)
	c.Set("new", 3, time.Hour)

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("short")
	assert.False(t, ok)
	_, ok = c.Get("long")
	assert.True(t, ok)

	c.Set("long", 4, time.Hour)
	assert.Equal(t, 2, c.Len())
}

func TestTTLCacheClear(t *testing.T) {
	c := NewTTLCache(0)
	c.Set("a", 1, 0)
	require.NoError(t, c.Clear(context.Background()))
	assert.Equal(t, 0, c.Len())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "analyze:ACME:1d:500", Key("analyze", "ACME", "1d", "500"))
}

func TestRedisCacheGetSet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheFromClient(db, "fusion:")
	ctx := context.Background()

	mock.ExpectGet("fusion:hit").SetVal("payload")
	mock.ExpectGet("fusion:miss").RedisNil()
	mock.ExpectGet("fusion:err").SetErr(errors.New("conn reset"))
	mock.ExpectSet("fusion:k", []byte("v"), time.Minute).SetVal("OK")

	b, ok, err := c.GetBytes(ctx, "hit")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("payload"), b)

	_, ok, err = c.GetBytes(ctx, "miss")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = c.GetBytes(ctx, "err")
	assert.Error(t, err)

	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), time.Minute))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheClear(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheFromClient(db, "fusion:")

	mock.ExpectScan(0, "fusion:*", clearBatch).SetVal([]string{"fusion:a", "fusion:b"}, 7)
	mock.ExpectDel("fusion:a", "fusion:b").SetVal(2)
	mock.ExpectScan(7, "fusion:*", clearBatch).SetVal([]string{}, 0)

	require.NoError(t, c.Clear(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheClearScanError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheFromClient(db, "p:")
	mock.ExpectScan(0, "p:*", clearBatch).SetErr(errors.New("down"))
	assert.Error(t, c.Clear(context.Background()))
}
