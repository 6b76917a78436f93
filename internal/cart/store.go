package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/rosamendez/emberglow-backend/pkg/errors"
	"github.com/rosamendez/emberglow-backend/pkg/localstore"
	"github.com/rosamendez/emberglow-backend/pkg/logger"
)

// AddInput is a line-item candidate for AddItem. Quantity defaults to 1.
type AddInput struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Quantity int
	Size     string
	Scent    string
	Category string
	Image    string
	IsCustom bool
}

// Service exposes the shopper cart operations.
type Service interface {
	AddItem(ctx context.Context, sessionID string, input AddInput) ([]LineItem, error)
	RemoveItem(ctx context.Context, sessionID string, key ItemKey) ([]LineItem, error)
	UpdateQuantity(ctx context.Context, sessionID string, key ItemKey, quantity int) ([]LineItem, error)
	Clear(ctx context.Context, sessionID string) error
	Items(ctx context.Context, sessionID string) ([]LineItem, error)
	TotalItemCount(ctx context.Context, sessionID string) (int, error)
	Subtotal(ctx context.Context, sessionID string) (decimal.Decimal, error)
	Subscribe(obs Observer)
}

type store struct {
	entries *localstore.Store
	logg    *logger.Logger

	mu        sync.Mutex
	carts     map[string][]LineItem
	observers []Observer
}

// NewService builds a cart service over the persisted entry store. Cached
// in-memory state stays authoritative for the session even when persistence
// fails.
func NewService(entries *localstore.Store, logg *logger.Logger) (Service, error) {
	if entries == nil {
		return nil, fmt.Errorf("entry store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &store{
		entries: entries,
		logg:    logg,
		carts:   make(map[string][]LineItem),
	}, nil
}

func storageKey(sessionID string) string {
	return fmt.Sprintf("emberglow:cart:%s", sessionID)
}

func (s *store) Subscribe(obs Observer) {
	if obs == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, obs)
}

func (s *store) AddItem(ctx context.Context, sessionID string, input AddInput) ([]LineItem, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if input.Quantity <= 0 {
		input.Quantity = 1
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = newItemID()
		input.IsCustom = true
	}
	key := KeyFor(id, input.Size, input.Scent, input.Category)

	s.mu.Lock()
	items := s.loadLocked(ctx, sessionID)
	merged := false
	for i := range items {
		if items[i].Key() == key {
			items[i].Quantity += input.Quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, LineItem{
			ID:        key.ID,
			Name:      strings.TrimSpace(input.Name),
			UnitPrice: input.Price,
			Quantity:  input.Quantity,
			Size:      key.Size,
			Scent:     key.Scent,
			Image:     input.Image,
			IsCustom:  input.IsCustom,
		})
	}
	s.carts[sessionID] = items
	snapshot := snapshotItems(items)
	s.persistLocked(ctx, sessionID, items)
	observers := s.observersLocked()
	s.mu.Unlock()

	notify(observers, ChangeEvent{SessionID: sessionID, Items: snapshot, Action: ActionAdd})
	return snapshot, nil
}

func (s *store) RemoveItem(ctx context.Context, sessionID string, key ItemKey) ([]LineItem, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	s.mu.Lock()
	items := s.loadLocked(ctx, sessionID)
	kept := items[:0]
	for _, item := range items {
		if item.Key() != key {
			kept = append(kept, item)
		}
	}
	s.carts[sessionID] = kept
	snapshot := snapshotItems(kept)
	s.persistLocked(ctx, sessionID, kept)
	observers := s.observersLocked()
	s.mu.Unlock()

	notify(observers, ChangeEvent{SessionID: sessionID, Items: snapshot, Action: ActionRemove})
	return snapshot, nil
}

func (s *store) UpdateQuantity(ctx context.Context, sessionID string, key ItemKey, quantity int) ([]LineItem, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, sessionID, key)
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	s.mu.Lock()
	items := s.loadLocked(ctx, sessionID)
	for i := range items {
		if items[i].Key() == key {
			items[i].Quantity = quantity
			break
		}
	}
	s.carts[sessionID] = items
	snapshot := snapshotItems(items)
	s.persistLocked(ctx, sessionID, items)
	observers := s.observersLocked()
	s.mu.Unlock()

	notify(observers, ChangeEvent{SessionID: sessionID, Items: snapshot, Action: ActionUpdate})
	return snapshot, nil
}

func (s *store) Clear(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	s.mu.Lock()
	s.carts[sessionID] = nil
	s.persistLocked(ctx, sessionID, nil)
	observers := s.observersLocked()
	s.mu.Unlock()

	notify(observers, ChangeEvent{SessionID: sessionID, Items: []LineItem{}, Action: ActionClear})
	return nil
}

func (s *store) Items(ctx context.Context, sessionID string) ([]LineItem, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotItems(s.loadLocked(ctx, sessionID)), nil
}

func (s *store) TotalItemCount(ctx context.Context, sessionID string) (int, error) {
	items, err := s.Items(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total, nil
}

func (s *store) Subtotal(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	items, err := s.Items(ctx, sessionID)
	if err != nil {
		return decimal.Zero, err
	}
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal, nil
}

// loadLocked returns the session's line items, reading the persisted snapshot
// on first access. Missing or unparseable data yields an empty cart.
func (s *store) loadLocked(ctx context.Context, sessionID string) []LineItem {
	if items, ok := s.carts[sessionID]; ok {
		return items
	}

	raw, found, err := s.entries.Get(ctx, storageKey(sessionID))
	if err != nil {
		s.logg.Error(s.logg.WithSessionID(ctx, sessionID), "load cart snapshot", err)
		s.carts[sessionID] = nil
		return nil
	}
	if !found {
		s.carts[sessionID] = nil
		return nil
	}

	var items []LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), "discarding unparseable cart snapshot")
		items = nil
	}
	s.carts[sessionID] = items
	return items
}

// persistLocked writes the full collection under the session's cart key.
// Persistence failures are logged; the in-memory cart stays authoritative.
func (s *store) persistLocked(ctx context.Context, sessionID string, items []LineItem) {
	payload, err := json.Marshal(snapshotItems(items))
	if err != nil {
		s.logg.Error(s.logg.WithSessionID(ctx, sessionID), "encode cart snapshot", err)
		return
	}
	if err := s.entries.Put(ctx, storageKey(sessionID), string(payload)); err != nil {
		s.logg.Error(s.logg.WithSessionID(ctx, sessionID), "persist cart snapshot", err)
	}
}

func (s *store) observersLocked() []Observer {
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	return observers
}

func notify(observers []Observer, event ChangeEvent) {
	for _, obs := range observers {
		obs(event)
	}
}

func snapshotItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

// SortedKeys reports the identity keys in a stable order, mainly for hashing
// a cart state during checkout.
func SortedKeys(items []LineItem) []string {
	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, fmt.Sprintf("%s:%d", item.Key(), item.Quantity))
	}
	sort.Strings(keys)
	return keys
}
