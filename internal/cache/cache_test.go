// ABOUTME: Tests for the memory and Redis schema caches.
// ABOUTME: Redis is exercised through a fake client returning canned command results.

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyconkr/console/internal/backend"
	"github.com/pyconkr/console/internal/store"
)

var (
	_ backend.Cache = (*Memory)(nil)
	_ backend.Cache = (*Redis)(nil)
	_ backend.Cache = (*store.Store)(nil)
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 8, 15, 9, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	_, ok, err := m.Get(ctx, "schema:cms:page")
	require.NoError(t, err)
	assert.False(t, ok)

	value := []byte(`{"schema":{}}`)
	require.NoError(t, m.Set(ctx, "schema:cms:page", value, time.Minute))
	value[0] = 'X'

	got, ok, err := m.Get(ctx, "schema:cms:page")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"schema":{}}`, string(got), "stored bytes are copied")

	require.NoError(t, m.Set(ctx, "forever", []byte("1"), 0))

	now = now.Add(time.Minute)
	_, ok, _ = m.Get(ctx, "schema:cms:page")
	assert.False(t, ok, "expired")
	_, ok, _ = m.Get(ctx, "forever")
	assert.True(t, ok)
	assert.Equal(t, 1, m.Len())
}

type fakeRedis struct {
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestRedis(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	r := NewRedis(fake, DefaultPrefix, nil)

	_, ok, err := r.Get(ctx, "schema:cms:page")
	require.NoError(t, err)
	assert.False(t, ok, "redis.Nil is a miss")

	require.NoError(t, r.Set(ctx, "schema:cms:page", []byte("doc"), time.Hour))
	assert.Equal(t, "doc", fake.data["console:schema:cms:page"])
	assert.Equal(t, time.Hour, fake.ttls["console:schema:cms:page"])

	got, ok, err := r.Get(ctx, "schema:cms:page")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "doc", string(got))
}

func TestRedis_Errors(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	fake.getErr = errors.New("connection refused")
	fake.setErr = errors.New("READONLY")
	r := NewRedis(fake, "", nil)

	_, ok, err := r.Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, r.Set(ctx, "k", []byte("v"), 0))
}

func TestDial_InvalidURL(t *testing.T) {
	_, err := Dial(context.Background(), "not a url", nil)
	assert.Error(t, err)
}
