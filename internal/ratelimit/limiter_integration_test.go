//go:build integration

package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeledger/pkg/testutil"
	"lifeledger/pkg/testutil/containers"
)

func TestLimiterAgainstRealRedis(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	limiter := New(rc.Client, 2, time.Minute, logger)

	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(orgID int64) int {
		req := httptest.NewRequest(http.MethodPost, "/attestations", nil)
		req = testutil.WithOrg(req, orgID)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, do(1))
	assert.Equal(t, http.StatusNoContent, do(1))
	assert.Equal(t, http.StatusTooManyRequests, do(1))
	assert.Equal(t, http.StatusNoContent, do(2), "limits are per organization")

	// The window key carries a TTL so abandoned buckets expire on their own.
	keys, err := rc.Client.Keys(ctx, "ratelimit:submit:org:1:*").Result()
	require.NoError(t, err)
	require.Len(t, keys, 1)
	ttl, err := rc.Client.TTL(ctx, keys[0]).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
