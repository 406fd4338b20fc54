package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyed_SerialisesSameKey(t *testing.T) {
	k := NewKeyed()
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := k.Lock(context.Background(), "loan-1")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, maxInside)
	assert.Zero(t, k.Len(), "idle keys must be dropped")
}

func TestKeyed_IndependentKeys(t *testing.T) {
	k := NewKeyed()
	r1, err := k.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer r1()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	r2, err := k.Lock(ctx, "b")
	require.NoError(t, err)
	r2()
}

func TestKeyed_ContextCancelled(t *testing.T) {
	k := NewKeyed()
	r1, err := k.Lock(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = k.Lock(ctx, "a")
	assert.ErrorIs(t, err, ErrNotAcquired)

	r1()
	r1() // second release is a no-op
	assert.Zero(t, k.Len())
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedis_LockAndRelease(t *testing.T) {
	mr, rdb := newRedis(t)
	l := NewRedis(rdb, "lock:disburse:", 5*time.Second)

	release, err := l.Lock(context.Background(), "L1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:disburse:L1"))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "L1")
	assert.ErrorIs(t, err, ErrNotAcquired)

	release()
	assert.False(t, mr.Exists("lock:disburse:L1"))

	release2, err := l.Lock(context.Background(), "L1")
	require.NoError(t, err)
	release2()
}

func TestRedis_ReleaseDoesNotStealForeignLock(t *testing.T) {
	mr, rdb := newRedis(t)
	l := NewRedis(rdb, "lk:", time.Second)

	release, err := l.Lock(context.Background(), "X")
	require.NoError(t, err)

	// simulate expiry and another holder taking over
	require.NoError(t, mr.Set("lk:X", "someone-else"))
	release()

	v, err := mr.Get("lk:X")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", v)
}

func TestRedis_StoreDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	l := NewRedis(rdb, "lk:", time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := l.Lock(ctx, "X")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotAcquired))
}

func TestChain_ReleasesInReverseOnFailure(t *testing.T) {
	k := NewKeyed()
	failing := lockerFunc(func(context.Context, string) (func(), error) { return nil, errors.New("down") })

	_, err := Chain{k, failing}.Lock(context.Background(), "a")
	require.Error(t, err)
	assert.Zero(t, k.Len(), "first lock must be released when a later one fails")

	release, err := Chain{k, nil}.Lock(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 1, k.Len())
	release()
	assert.Zero(t, k.Len())
}

type lockerFunc func(ctx context.Context, key string) (func(), error)

func (f lockerFunc) Lock(ctx context.Context, key string) (func(), error) { return f(ctx, key) }
