package requestctx_test

import (
	"context"
	"sync"
	"testing"

	"praxis-backend/requestctx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithFromRoundtrip(t *testing.T) {
	rc := requestctx.Context{
		UserID:    "u1",
		IPAddress: "10.0.0.1",
		UserAgent: "curl/8.0",
		BranchID:  "b1",
	}
	ctx := requestctx.With(context.Background(), rc)

	got, ok := requestctx.From(ctx)
	require.True(t, ok)
	assert.Equal(t, rc, got)
}

func TestFromAbsent(t *testing.T) {
	_, ok := requestctx.From(context.Background())
	assert.False(t, ok)

	_, ok = requestctx.From(nil)
	assert.False(t, ok)
}

func TestWithNilContext(t *testing.T) {
	ctx := requestctx.With(nil, requestctx.Context{UserID: "u1"})
	got, ok := requestctx.From(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", got.UserID)
}

func TestRunInstallsForExtentOnly(t *testing.T) {
	outer := context.Background()

	err := requestctx.Run(outer, requestctx.Context{UserID: "job-runner"}, func(ctx context.Context) error {
		got, ok := requestctx.From(ctx)
		require.True(t, ok)
		assert.Equal(t, "job-runner", got.UserID)
		return nil
	})
	require.NoError(t, err)

	// The outer context is untouched after Run returns.
	_, ok := requestctx.From(outer)
	assert.False(t, ok)
}

// Two concurrent logical chains must each see only their own context even
// when their work interleaves.
func TestConcurrentChainIsolation(t *testing.T) {
	ctxA := requestctx.With(context.Background(), requestctx.Context{UserID: "a"})
	ctxB := requestctx.With(context.Background(), requestctx.Context{UserID: "b"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			got, ok := requestctx.From(ctxA)
			assert.True(t, ok)
			assert.Equal(t, "a", got.UserID)
		}()
		go func() {
			defer wg.Done()
			got, ok := requestctx.From(ctxB)
			assert.True(t, ok)
			assert.Equal(t, "b", got.UserID)
		}()
	}
	wg.Wait()
}

func TestDerivedContextInheritsValue(t *testing.T) {
	ctx := requestctx.With(context.Background(), requestctx.Context{UserID: "u1"})
	child, cancel := context.WithCancel(ctx)
	defer cancel()

	got, ok := requestctx.From(child)
	require.True(t, ok)
	assert.Equal(t, "u1", got.UserID)
}
