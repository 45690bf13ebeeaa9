// Copyright (c) 2026 Trailgo. All rights reserved.

package ctxutil_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledinhkha/trailgo/internal/platform/ctxutil"
	"github.com/ledinhkha/trailgo/internal/platform/sec"
)

/*
TestRequestID_RoundTrip stores and retrieves a request ID.
*/
func TestRequestID_RoundTrip(t *testing.T) {
	ctx := ctxutil.WithRequestID(context.Background(), "req-123")

	assert.Equal(t, "req-123", ctxutil.GetRequestID(ctx))
}

/*
TestRequestID_Missing returns an empty string on a bare context.
*/
func TestRequestID_Missing(t *testing.T) {
	assert.Empty(t, ctxutil.GetRequestID(context.Background()))
}

/*
TestLogger_RoundTrip stores and retrieves a scoped logger.
*/
func TestLogger_RoundTrip(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	ctx := ctxutil.WithLogger(context.Background(), logger)

	assert.Same(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestLogger_FallsBackToDefault never returns nil, even on a bare context.
*/
func TestLogger_FallsBackToDefault(t *testing.T) {
	logger := ctxutil.GetLogger(context.Background())

	require.NotNil(t, logger)
	assert.Same(t, slog.Default(), logger)
}

/*
TestIdentity_RoundTrip stores and retrieves the authenticated identity.
*/
func TestIdentity_RoundTrip(t *testing.T) {
	identity := &sec.Identity{ID: "u-1", Role: sec.RoleAdmin}
	ctx := ctxutil.WithIdentity(context.Background(), identity)

	assert.Same(t, identity, ctxutil.GetIdentity(ctx))
}

/*
TestIdentity_Missing returns nil for unauthenticated requests.
*/
func TestIdentity_Missing(t *testing.T) {
	assert.Nil(t, ctxutil.GetIdentity(context.Background()))
}
