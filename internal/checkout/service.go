package checkout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rosamendez/emberglow-backend/internal/cart"
	pkgerrors "github.com/rosamendez/emberglow-backend/pkg/errors"
	"github.com/rosamendez/emberglow-backend/pkg/logger"
	"github.com/rosamendez/emberglow-backend/pkg/square"
)

// inFlightTTL bounds how long a checkout guard can outlive a crashed attempt.
const inFlightTTL = time.Minute

// Gateway is the payment surface the checkout flow depends on. The card is
// tokenized in the shopper's browser; only the source token reaches us.
type Gateway interface {
	Charge(ctx context.Context, params square.ChargeParams) (*square.ChargeResult, error)
}

// Locker guards against concurrent submissions of the same cart state.
type Locker interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	CheckoutLockKey(sessionID, cartHash string) string
}

// SubmitInput carries one checkout attempt.
type SubmitInput struct {
	SourceToken string
	Email       string
	Note        string
}

// Receipt reports a successful charge.
type Receipt struct {
	PaymentID   string          `json:"paymentId"`
	Status      string          `json:"status"`
	AmountCents int64           `json:"amountCents"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ItemCount   int             `json:"itemCount"`
}

// Service drives the checkout flow.
type Service interface {
	Submit(ctx context.Context, sessionID string, input SubmitInput) (*Receipt, error)
}

type service struct {
	carts   cart.Service
	gateway Gateway
	locks   Locker
	logg    *logger.Logger
}

// NewService wires the checkout flow. The locker may be nil, in which case
// concurrent submissions of the same cart are not guarded.
func NewService(carts cart.Service, gateway Gateway, locks Locker, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		carts:   carts,
		gateway: gateway,
		locks:   locks,
		logg:    logg,
	}, nil
}

// Submit charges the current cart. Each attempt carries a fresh idempotency
// key; a second submission of the same cart state is rejected while a prior
// one is outstanding. The cart is cleared only after a successful charge, and
// gateway errors propagate to the caller unmodified.
func (s *service) Submit(ctx context.Context, sessionID string, input SubmitInput) (*Receipt, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if strings.TrimSpace(input.SourceToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment source token is required")
	}

	items, err := s.carts.Items(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	subtotal := decimal.Zero
	count := 0
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
		count += item.Quantity
	}
	amountCents := subtotal.Shift(2).Round(0).IntPart()
	if amountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order total must be positive")
	}

	ctx = s.logg.WithSessionID(ctx, sessionID)
	cartHash := hashCartState(items)

	var lockKey string
	if s.locks != nil {
		lockKey = s.locks.CheckoutLockKey(sessionID, cartHash)
		acquired, err := s.locks.SetNX(ctx, lockKey, "1", inFlightTTL)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire checkout guard")
		}
		if !acquired {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "a checkout for this cart is already in progress")
		}
	}

	result, err := s.gateway.Charge(ctx, square.ChargeParams{
		SourceToken:    input.SourceToken,
		AmountCents:    amountCents,
		OrderReference: fmt.Sprintf("eg-%s", cartHash[:12]),
		Note:           strings.TrimSpace(input.Note),
		IdempotencyKey: newAttemptKey(),
	})
	if err != nil {
		s.releaseLock(ctx, lockKey)
		return nil, err
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		s.logg.Error(ctx, "clear cart after successful charge", err)
	}
	s.releaseLock(ctx, lockKey)
	s.logg.Info(s.logg.WithField(ctx, "payment_id", result.PaymentID), "checkout completed")

	return &Receipt{
		PaymentID:   result.PaymentID,
		Status:      result.Status,
		AmountCents: amountCents,
		Subtotal:    subtotal,
		ItemCount:   count,
	}, nil
}

func (s *service) releaseLock(ctx context.Context, key string) {
	if s.locks == nil || key == "" {
		return
	}
	if err := s.locks.Del(ctx, key); err != nil {
		s.logg.Warn(ctx, "checkout guard release failed, key expires on its own")
	}
}

// newAttemptKey generates a fresh idempotency key for every submission
// attempt. Retries after a failure deliberately get a new key.
func newAttemptKey() string {
	return fmt.Sprintf("checkout-%s", uuid.NewString())
}

// hashCartState fingerprints the cart's identity keys and quantities so the
// in-flight guard scopes to a specific cart state, not the whole session.
func hashCartState(items []cart.LineItem) string {
	h := sha256.New()
	for _, key := range cart.SortedKeys(items) {
		h.Write([]byte(key))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
