package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuppressHeader(t *testing.T) {
	ctx := context.Background()
	assert.False(t, shouldSuppressHeader(ctx))
	assert.True(t, shouldSuppressHeader(WithSuppressHeader(ctx)))

	// A foreign value under the same key type is ignored
	ctx = context.WithValue(ctx, suppressHeaderKey, "yes")
	assert.False(t, shouldSuppressHeader(ctx))
}

func TestRunID(t *testing.T) {
	ctx := context.Background()
	_, ok := getRunID(ctx)
	assert.False(t, ok)

	ctx1 := withRunID(ctx, 1)
	ctx2 := withRunID(ctx, 2)
	id1, _ := getRunID(ctx1)
	id2, _ := getRunID(ctx2)
	assert.Equal(t, int64(1), id1)
	assert.Equal(t, int64(2), id2)
}

func TestContextConcurrentAccess(t *testing.T) {
	ctx := withRunID(WithSuppressHeader(context.Background()), 12345)

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			runID, ok := getRunID(ctx)
			assert.True(t, ok)
			assert.Equal(t, int64(12345), runID)
			assert.True(t, shouldSuppressHeader(ctx))
		})
	}
	wg.Wait()
}
