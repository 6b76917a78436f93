package admin

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rosamendez/emberglow-backend/pkg/config"
	pkgerrors "github.com/rosamendez/emberglow-backend/pkg/errors"
	"github.com/rosamendez/emberglow-backend/pkg/logger"
)

// Session is the result of a successful admin login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Service gates admin mode behind the IP allow-list and issues session
// tokens for subsequent admin calls.
type Service interface {
	Login(ctx context.Context, remoteIP string) (*Session, error)
	Verify(ctx context.Context, token, remoteIP string) (*SessionClaims, error)
}

type service struct {
	cfg  config.AdminConfig
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds the admin session service.
func NewService(cfg config.AdminConfig, logg *logger.Logger) (Service, error) {
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &service{
		cfg:  cfg,
		logg: logg,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// Login checks the caller's IP against the allow-list and mints a session
// token. An empty allow-list denies everyone.
func (s *service) Login(ctx context.Context, remoteIP string) (*Session, error) {
	remoteIP = strings.TrimSpace(remoteIP)
	if len(s.cfg.AllowedIPs) == 0 || !s.cfg.Allows(remoteIP) {
		s.logg.Warn(s.logg.WithField(ctx, "remote_ip", remoteIP), "admin login rejected by allow-list")
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin access is not available from this address")
	}

	now := s.now()
	token, err := MintSessionToken(s.cfg, now, uuid.NewString(), remoteIP)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint admin session token")
	}

	s.logg.Info(s.logg.WithField(ctx, "remote_ip", remoteIP), "admin session issued")
	return &Session{Token: token, ExpiresAt: now.Add(s.cfg.SessionTTL)}, nil
}

// Verify validates a session token and re-checks the allow-list so a token
// minted from an allowed address cannot be replayed elsewhere.
func (s *service) Verify(ctx context.Context, token, remoteIP string) (*SessionClaims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin session token is required")
	}

	claims, err := ParseSessionToken(s.cfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid admin session token")
	}
	if !s.cfg.Allows(strings.TrimSpace(remoteIP)) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin access is not available from this address")
	}
	return claims, nil
}
