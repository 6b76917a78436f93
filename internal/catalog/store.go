package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/rosamendez/emberglow-backend/pkg/errors"
	"github.com/rosamendez/emberglow-backend/pkg/localstore"
	"github.com/rosamendez/emberglow-backend/pkg/logger"
)

const productsKey = "emberglow:products"

// Service owns the admin-managed product catalog with a local-first,
// eventually-consistent relationship to the remote catalog service.
type Service interface {
	List(ctx context.Context, category string) ([]Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, input Product) (*Product, error)
	Update(ctx context.Context, id string, patch Patch) (*Product, error)
	Delete(ctx context.Context, id string) error
	FetchRemoteAndMerge(ctx context.Context) (bool, error)
}

type service struct {
	entries *localstore.Store
	remote  Remote
	logg    *logger.Logger
	now     func() time.Time

	mu       sync.Mutex
	loaded   bool
	products []Product
}

// NewService builds the catalog service. The remote client may be nil, in
// which case the catalog runs purely off the local snapshot.
func NewService(entries *localstore.Store, remote Remote, logg *logger.Logger) (Service, error) {
	if entries == nil {
		return nil, fmt.Errorf("entry store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		entries: entries,
		remote:  remote,
		logg:    logg,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) List(ctx context.Context, category string) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := s.loadLocked(ctx)
	category = strings.ToLower(strings.TrimSpace(category))
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if category != "" && strings.ToLower(p.Category) != category {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id string) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.loadLocked(ctx) {
		if p.ID == id {
			copied := p
			return &copied, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

// Create validates the candidate, writes it locally, then propagates to the
// remote catalog best-effort. The operation succeeds iff the local write
// succeeds.
func (s *service) Create(ctx context.Context, input Product) (*Product, error) {
	now := s.now()
	input.Name = strings.TrimSpace(input.Name)
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.ID) == "" {
		input.ID = NewProductID(input.Name, now)
	}
	if len(input.Sizes) == 0 {
		input.Sizes = []string{"Standard"}
	}
	input.CreatedAt = now
	input.UpdatedAt = now

	s.mu.Lock()
	products := s.loadLocked(ctx)
	for _, p := range products {
		if p.ID == input.ID {
			s.mu.Unlock()
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product id already exists")
		}
	}
	s.products = append(products, input)
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		s.logg.Error(s.logg.WithProductID(ctx, input.ID), "persist catalog snapshot", err)
	}

	if s.remote != nil {
		if err := s.remote.CreateProduct(ctx, input); err != nil {
			s.logg.Warn(s.logg.WithProductID(ctx, input.ID), "remote product create failed, local copy kept")
		}
	}
	return &input, nil
}

// Update requires the product to exist locally. The patch preserves ImageURL
// unless it supplies a new one.
func (s *service) Update(ctx context.Context, id string, patch Patch) (*Product, error) {
	s.mu.Lock()
	products := s.loadLocked(ctx)
	idx := -1
	for i, p := range products {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	updated := products[idx].applyPatch(patch, s.now())
	if err := updated.Validate(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	products[idx] = updated
	s.products = products
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		s.logg.Error(s.logg.WithProductID(ctx, id), "persist catalog snapshot", err)
	}

	if s.remote != nil {
		if err := s.remote.UpdateProduct(ctx, updated); err != nil {
			s.logg.Warn(s.logg.WithProductID(ctx, id), "remote product update failed, local copy kept")
		}
	}
	return &updated, nil
}

// Delete removes the product locally first, then propagates best-effort.
func (s *service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	products := s.loadLocked(ctx)
	idx := -1
	for i, p := range products {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	s.products = append(products[:idx], products[idx+1:]...)
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		s.logg.Error(s.logg.WithProductID(ctx, id), "persist catalog snapshot", err)
	}

	if s.remote != nil {
		if err := s.remote.DeleteProduct(ctx, id); err != nil {
			s.logg.Warn(s.logg.WithProductID(ctx, id), "remote product delete failed, local copy removed")
		}
	}
	return nil
}

// FetchRemoteAndMerge pulls the remote snapshot and reconciles it with the
// local one. Remote failures skip the cycle; the local snapshot stays
// authoritative. Returns true when the merged result replaced the local
// snapshot.
func (s *service) FetchRemoteAndMerge(ctx context.Context) (bool, error) {
	if s.remote == nil {
		return false, nil
	}

	remote, err := s.remote.ListProducts(ctx)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	local := s.loadLocked(ctx)
	s.warnShadowedEdits(ctx, local, remote)
	merged := Merge(local, remote)
	if Equal(local, merged) {
		return false, nil
	}
	s.products = merged
	if err := s.persistLocked(ctx); err != nil {
		s.logg.Error(ctx, "persist merged catalog snapshot", err)
	}
	return true, nil
}

// warnShadowedEdits flags local records about to be replaced by an older
// remote version. The merge still lets remote win; the log entry is the
// operator's window into the conflict.
func (s *service) warnShadowedEdits(ctx context.Context, local, remote []Product) {
	remoteByID := make(map[string]Product, len(remote))
	for _, p := range remote {
		remoteByID[p.ID] = p
	}
	for _, p := range local {
		if r, ok := remoteByID[p.ID]; ok && p.UpdatedAt.After(r.UpdatedAt) {
			s.logg.Warn(s.logg.WithProductID(ctx, p.ID), "remote snapshot replaces a newer local edit")
		}
	}
}

// loadLocked deserializes the persisted snapshot on first access. Missing or
// unparseable data yields an empty catalog.
func (s *service) loadLocked(ctx context.Context) []Product {
	if s.loaded {
		return s.products
	}
	s.loaded = true

	raw, found, err := s.entries.Get(ctx, productsKey)
	if err != nil {
		s.logg.Error(ctx, "load catalog snapshot", err)
		return nil
	}
	if !found {
		return nil
	}
	var products []Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		s.logg.Warn(ctx, "discarding unparseable catalog snapshot")
		return nil
	}
	s.products = products
	return products
}

func (s *service) persistLocked(ctx context.Context) error {
	payload, err := json.Marshal(s.products)
	if err != nil {
		return err
	}
	return s.entries.Put(ctx, productsKey, string(payload))
}
