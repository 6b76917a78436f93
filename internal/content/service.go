package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	pkgerrors "github.com/rosamendez/emberglow-backend/pkg/errors"
	"github.com/rosamendez/emberglow-backend/pkg/localstore"
	"github.com/rosamendez/emberglow-backend/pkg/logger"
)

// DefaultPages are the storefront pages carrying editable text blocks.
var DefaultPages = []string{"home", "candles", "jewelry", "custom", "about"}

// Remote is the slice of the remote catalog service that serves page content.
type Remote interface {
	GetContent(ctx context.Context, page string) (map[string]string, error)
	PutContent(ctx context.Context, page string, blocks map[string]string) error
}

// Service owns the editable per-page text blocks, local-first with
// best-effort remote propagation.
type Service interface {
	Get(ctx context.Context, page string) (map[string]string, error)
	Set(ctx context.Context, page string, blocks map[string]string) error
	RefreshFromRemote(ctx context.Context) error
}

type service struct {
	entries *localstore.Store
	remote  Remote
	logg    *logger.Logger
	pages   []string

	mu sync.Mutex
}

// NewService builds the content service. The remote may be nil; pages falls
// back to DefaultPages when empty.
func NewService(entries *localstore.Store, remote Remote, logg *logger.Logger, pages []string) (Service, error) {
	if entries == nil {
		return nil, fmt.Errorf("entry store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if len(pages) == 0 {
		pages = DefaultPages
	}
	return &service{
		entries: entries,
		remote:  remote,
		logg:    logg,
		pages:   pages,
	}, nil
}

func storageKey(page string) string {
	return fmt.Sprintf("emberglow:content:%s", page)
}

// Get returns the page's text blocks from the local snapshot. When nothing is
// stored locally it consults the remote once and caches the result;
// remote failure yields an empty block set, never an error.
func (s *service) Get(ctx context.Context, page string) (map[string]string, error) {
	page = normalizePage(page)
	if page == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "page is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	blocks, found := s.loadLocked(ctx, page)
	if found {
		return blocks, nil
	}

	if s.remote != nil {
		remote, err := s.remote.GetContent(ctx, page)
		if err != nil {
			s.logg.Warn(s.logg.WithPage(ctx, page), "remote content fetch failed, serving empty blocks")
		} else if len(remote) > 0 {
			s.persistLocked(ctx, page, remote)
			return remote, nil
		}
	}
	return map[string]string{}, nil
}

// Set persists the page's blocks locally, then propagates best-effort.
func (s *service) Set(ctx context.Context, page string, blocks map[string]string) error {
	page = normalizePage(page)
	if page == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "page is required")
	}
	if blocks == nil {
		blocks = map[string]string{}
	}

	s.mu.Lock()
	s.persistLocked(ctx, page, blocks)
	s.mu.Unlock()

	if s.remote != nil {
		if err := s.remote.PutContent(ctx, page, blocks); err != nil {
			s.logg.Warn(s.logg.WithPage(ctx, page), "remote content update failed, local copy kept")
		}
	}
	return nil
}

// RefreshFromRemote replaces every known page's local blocks with the remote
// version. Per-page failures are logged and skipped.
func (s *service) RefreshFromRemote(ctx context.Context) error {
	if s.remote == nil {
		return nil
	}

	var firstErr error
	for _, page := range s.pages {
		blocks, err := s.remote.GetContent(ctx, page)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			s.logg.Warn(s.logg.WithPage(ctx, page), "remote content refresh failed for page")
			continue
		}
		s.mu.Lock()
		s.persistLocked(ctx, page, blocks)
		s.mu.Unlock()
	}
	return firstErr
}

func (s *service) loadLocked(ctx context.Context, page string) (map[string]string, bool) {
	raw, found, err := s.entries.Get(ctx, storageKey(page))
	if err != nil {
		s.logg.Error(s.logg.WithPage(ctx, page), "load content snapshot", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	var blocks map[string]string
	if err := json.Unmarshal([]byte(raw), &blocks); err != nil {
		s.logg.Warn(s.logg.WithPage(ctx, page), "discarding unparseable content snapshot")
		return nil, false
	}
	return blocks, true
}

func (s *service) persistLocked(ctx context.Context, page string, blocks map[string]string) {
	payload, err := json.Marshal(blocks)
	if err != nil {
		s.logg.Error(s.logg.WithPage(ctx, page), "encode content snapshot", err)
		return
	}
	if err := s.entries.Put(ctx, storageKey(page), string(payload)); err != nil {
		s.logg.Error(s.logg.WithPage(ctx, page), "persist content snapshot", err)
	}
}

func normalizePage(page string) string {
	return strings.ToLower(strings.TrimSpace(page))
}
