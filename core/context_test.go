package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/huangsam/storecheck/internal/iocache"
)

func TestSuppressHeader(t *testing.T) {
	ctx := context.Background()
	assert.False(t, shouldSuppressHeader(ctx))
	assert.True(t, shouldSuppressHeader(WithSuppressHeader(ctx)))

	// Values of the wrong type are ignored
	ctx = context.WithValue(ctx, suppressHeaderKey, "yes")
	assert.False(t, shouldSuppressHeader(ctx))
}

func TestStoreManagerFromContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, storeManagerFromContext(ctx))
	assert.Nil(t, storeManagerFromContext(WithStoreManager(ctx, nil)))

	mgr := &iocache.MockStoreManager{}
	assert.Same(t, mgr, storeManagerFromContext(WithStoreManager(ctx, mgr)))
}

// TestContextConcurrentAccess tests that context values can be safely accessed concurrently.
func TestContextConcurrentAccess(t *testing.T) {
	mgr := &iocache.MockStoreManager{}
	ctx := WithStoreManager(WithSuppressHeader(context.Background()), mgr)

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			assert.True(t, shouldSuppressHeader(ctx))
			assert.Same(t, mgr, storeManagerFromContext(ctx))
		})
	}
	wg.Wait()
}
