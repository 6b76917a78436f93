package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rosamendez/emberglow-backend/internal/cart"
	"github.com/rosamendez/emberglow-backend/pkg/config"
	"github.com/rosamendez/emberglow-backend/pkg/db"
	pkgerrors "github.com/rosamendez/emberglow-backend/pkg/errors"
	"github.com/rosamendez/emberglow-backend/pkg/localstore"
	"github.com/rosamendez/emberglow-backend/pkg/logger"
	"github.com/rosamendez/emberglow-backend/pkg/square"
)

type fakeGateway struct {
	keys   []string
	amount int64
	err    error
}

func (f *fakeGateway) Charge(ctx context.Context, params square.ChargeParams) (*square.ChargeResult, error) {
	f.keys = append(f.keys, params.IdempotencyKey)
	f.amount = params.AmountCents
	if f.err != nil {
		return nil, f.err
	}
	return &square.ChargeResult{PaymentID: "pay_1", Status: "COMPLETED"}, nil
}

type fakeLocker struct {
	held    map[string]bool
	setErr  error
	deleted []string
}

func (f *fakeLocker) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if f.setErr != nil {
		return false, f.setErr
	}
	if f.held == nil {
		f.held = make(map[string]bool)
	}
	if f.held[key] {
		return false, nil
	}
	f.held[key] = true
	return true, nil
}

func (f *fakeLocker) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.held, key)
		f.deleted = append(f.deleted, key)
	}
	return nil
}

func (f *fakeLocker) CheckoutLockKey(sessionID, cartHash string) string {
	return "eg:checkout:inflight:" + sessionID + ":" + cartHash
}

func newTestCart(t *testing.T) cart.Service {
	t.Helper()

	client, err := db.New(context.Background(), config.DBConfig{Driver: "sqlite", DSN: "file::memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	entries, err := localstore.New(client)
	require.NoError(t, err)
	require.NoError(t, entries.AutoMigrate())

	carts, err := cart.NewService(entries, logger.New(logger.Options{ServiceName: "checkout-test"}))
	require.NoError(t, err)
	return carts
}

func seedCart(t *testing.T, carts cart.Service, sessionID string) {
	t.Helper()

	_, err := carts.AddItem(context.Background(), sessionID, cart.AddInput{
		ID: "c1", Name: "Ember Candle", Price: decimal.NewFromFloat(24.50), Quantity: 2, Size: "8oz",
	})
	require.NoError(t, err)
}

func TestSubmitChargesAndClearsCart(t *testing.T) {
	carts := newTestCart(t)
	gateway := &fakeGateway{}
	locks := &fakeLocker{}
	svc, err := NewService(carts, gateway, locks, logger.New(logger.Options{ServiceName: "checkout-test"}))
	require.NoError(t, err)
	ctx := context.Background()

	seedCart(t, carts, "s1")

	receipt, err := svc.Submit(ctx, "s1", SubmitInput{SourceToken: "cnon:ok"})
	require.NoError(t, err)
	require.Equal(t, "pay_1", receipt.PaymentID)
	require.EqualValues(t, 4900, receipt.AmountCents)
	require.Equal(t, 2, receipt.ItemCount)

	items, err := carts.Items(ctx, "s1")
	require.NoError(t, err)
	require.Empty(t, items)
	require.Empty(t, locks.held)
}

func TestSubmitFreshIdempotencyKeyPerAttempt(t *testing.T) {
	carts := newTestCart(t)
	gateway := &fakeGateway{err: pkgerrors.New(pkgerrors.CodePayment, "card declined")}
	svc, err := NewService(carts, gateway, &fakeLocker{}, logger.New(logger.Options{ServiceName: "checkout-test"}))
	require.NoError(t, err)
	ctx := context.Background()

	seedCart(t, carts, "s1")

	_, err = svc.Submit(ctx, "s1", SubmitInput{SourceToken: "cnon:bad"})
	require.Equal(t, pkgerrors.CodePayment, pkgerrors.As(err).Code())

	gateway.err = nil
	_, err = svc.Submit(ctx, "s1", SubmitInput{SourceToken: "cnon:ok"})
	require.NoError(t, err)

	require.Len(t, gateway.keys, 2)
	require.NotEqual(t, gateway.keys[0], gateway.keys[1])
}

func TestSubmitPaymentErrorKeepsCart(t *testing.T) {
	carts := newTestCart(t)
	gateway := &fakeGateway{err: pkgerrors.New(pkgerrors.CodePayment, "card declined")}
	locks := &fakeLocker{}
	svc, err := NewService(carts, gateway, locks, logger.New(logger.Options{ServiceName: "checkout-test"}))
	require.NoError(t, err)
	ctx := context.Background()

	seedCart(t, carts, "s1")

	_, err = svc.Submit(ctx, "s1", SubmitInput{SourceToken: "cnon:bad"})
	require.Equal(t, "card declined", pkgerrors.As(err).Message())

	items, err := carts.Items(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	// Guard released so the shopper can retry immediately.
	require.Empty(t, locks.held)
}

func TestSubmitRejectsConcurrentSameCart(t *testing.T) {
	carts := newTestCart(t)
	locks := &fakeLocker{}
	svc, err := NewService(carts, &fakeGateway{}, locks, logger.New(logger.Options{ServiceName: "checkout-test"}))
	require.NoError(t, err)
	ctx := context.Background()

	seedCart(t, carts, "s1")

	items, err := carts.Items(ctx, "s1")
	require.NoError(t, err)
	key := locks.CheckoutLockKey("s1", hashCartState(items))
	_, err = locks.SetNX(ctx, key, "1", time.Minute)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "s1", SubmitInput{SourceToken: "cnon:ok"})
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestSubmitValidation(t *testing.T) {
	carts := newTestCart(t)
	svc, err := NewService(carts, &fakeGateway{}, nil, logger.New(logger.Options{ServiceName: "checkout-test"}))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Submit(ctx, "", SubmitInput{SourceToken: "cnon:ok"})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Submit(ctx, "s1", SubmitInput{})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Submit(ctx, "s1", SubmitInput{SourceToken: "cnon:ok"})
	require.Equal(t, "cart is empty", pkgerrors.As(err).Message())
}
