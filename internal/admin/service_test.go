package admin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rosamendez/emberglow-backend/pkg/config"
	pkgerrors "github.com/rosamendez/emberglow-backend/pkg/errors"
	"github.com/rosamendez/emberglow-backend/pkg/logger"
)

func testAdminConfig() config.AdminConfig {
	return config.AdminConfig{
		AllowedIPs: []string{"203.0.113.10"},
		JWTSecret:  "test-secret",
		JWTIssuer:  "emberglow",
		SessionTTL: time.Hour,
	}
}

func newTestService(t *testing.T, cfg config.AdminConfig) Service {
	t.Helper()

	svc, err := NewService(cfg, logger.New(logger.Options{ServiceName: "admin-test"}))
	require.NoError(t, err)
	return svc
}

func TestLoginAllowedIP(t *testing.T) {
	svc := newTestService(t, testAdminConfig())

	session, err := svc.Login(context.Background(), "203.0.113.10")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	require.True(t, session.ExpiresAt.After(time.Now()))
}

func TestLoginRejectsUnknownIP(t *testing.T) {
	svc := newTestService(t, testAdminConfig())

	_, err := svc.Login(context.Background(), "198.51.100.7")
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestLoginRejectsWhenAllowListEmpty(t *testing.T) {
	cfg := testAdminConfig()
	cfg.AllowedIPs = nil
	svc := newTestService(t, cfg)

	_, err := svc.Login(context.Background(), "203.0.113.10")
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestVerifyRoundTrip(t *testing.T) {
	cfg := testAdminConfig()
	svc := newTestService(t, cfg)
	ctx := context.Background()

	session, err := svc.Login(ctx, "203.0.113.10")
	require.NoError(t, err)

	claims, err := svc.Verify(ctx, session.Token, "203.0.113.10")
	require.NoError(t, err)
	require.Equal(t, "203.0.113.10", claims.RemoteIP)
	require.Equal(t, "emberglow", claims.Issuer)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	cfg := testAdminConfig()
	svc := newTestService(t, cfg)
	ctx := context.Background()

	session, err := svc.Login(ctx, "203.0.113.10")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, session.Token+"x", "203.0.113.10")
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())

	_, err = svc.Verify(ctx, "", "203.0.113.10")
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestVerifyRechecksAllowList(t *testing.T) {
	cfg := testAdminConfig()
	svc := newTestService(t, cfg)
	ctx := context.Background()

	session, err := svc.Login(ctx, "203.0.113.10")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, session.Token, "198.51.100.7")
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestExpiredTokenRejected(t *testing.T) {
	cfg := testAdminConfig()

	token, err := MintSessionToken(cfg, time.Now().Add(-2*time.Hour), "sid", "203.0.113.10")
	require.NoError(t, err)

	_, err = ParseSessionToken(cfg, token)
	require.Error(t, err)
}
