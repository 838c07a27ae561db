package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore(), memory.NewLoader(nil))
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_ = mgr.Save(ctx, sid, domain.NewSessionState(sid, ""))
		_ = mgr.Delete(ctx, sid)
	}

	assert.Empty(t, mgr.locks, "lock entries must be released once unused")
}

// fakeLocker records distributed lock usage.
type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	ttls     []time.Duration
	unlocked int
}

func (f *fakeLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[key] {
		return nil, fmt.Errorf("lock %s already held", key)
	}
	f.held[key] = true
	f.ttls = append(f.ttls, ttl)
	return func(context.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.held, key)
		f.unlocked++
		return nil
	}, nil
}

func TestManager_DistributedLock(t *testing.T) {
	locker := &fakeLocker{held: make(map[string]bool)}
	mgr := NewManager(memory.NewStore(), memory.NewLoader(nil), WithLocker(locker), WithLockTTL(5*time.Second))
	ctx := context.Background()

	err := mgr.WithLock(ctx, "s1", func(ctx context.Context) error {
		assert.True(t, locker.held["s1"])
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{5 * time.Second}, locker.ttls)
	assert.Equal(t, 1, locker.unlocked)
	assert.Empty(t, locker.held)
}

func TestManager_DistributedLockFailure(t *testing.T) {
	locker := &fakeLocker{held: map[string]bool{"s1": true}}
	mgr := NewManager(memory.NewStore(), memory.NewLoader(nil), WithLocker(locker))

	called := false
	err := mgr.WithLock(context.Background(), "s1", func(context.Context) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
	assert.Empty(t, mgr.locks)
}
