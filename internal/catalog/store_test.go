package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rosamendez/emberglow-backend/pkg/config"
	"github.com/rosamendez/emberglow-backend/pkg/db"
	pkgerrors "github.com/rosamendez/emberglow-backend/pkg/errors"
	"github.com/rosamendez/emberglow-backend/pkg/localstore"
	"github.com/rosamendez/emberglow-backend/pkg/logger"
)

type fakeRemote struct {
	products   []Product
	listErr    error
	markers    VersionMarkers
	markersErr error

	created  []Product
	updated  []Product
	deleted  []string
	writeErr error
}

func (f *fakeRemote) ListProducts(ctx context.Context) ([]Product, error) {
	return f.products, f.listErr
}

func (f *fakeRemote) CreateProduct(ctx context.Context, product Product) error {
	f.created = append(f.created, product)
	return f.writeErr
}

func (f *fakeRemote) UpdateProduct(ctx context.Context, product Product) error {
	f.updated = append(f.updated, product)
	return f.writeErr
}

func (f *fakeRemote) DeleteProduct(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.writeErr
}

func (f *fakeRemote) VersionMarkers(ctx context.Context) (*VersionMarkers, error) {
	if f.markersErr != nil {
		return nil, f.markersErr
	}
	markers := f.markers
	return &markers, nil
}

func (f *fakeRemote) GetContent(ctx context.Context, page string) (map[string]string, error) {
	return nil, nil
}

func (f *fakeRemote) PutContent(ctx context.Context, page string, blocks map[string]string) error {
	return nil
}

func newTestEntries(t *testing.T) *localstore.Store {
	t.Helper()

	client, err := db.New(context.Background(), config.DBConfig{Driver: "sqlite", DSN: "file::memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	entries, err := localstore.New(client)
	require.NoError(t, err)
	require.NoError(t, entries.AutoMigrate())
	return entries
}

func newTestCatalog(t *testing.T, remote Remote) Service {
	t.Helper()

	svc, err := NewService(newTestEntries(t), remote, logger.New(logger.Options{ServiceName: "catalog-test"}))
	require.NoError(t, err)
	return svc
}

func validProduct(name string) Product {
	return Product{
		Name:     name,
		Price:    decimal.NewFromInt(24),
		Category: "candles",
		Emoji:    "🕯️",
		InStock:  true,
	}
}

func TestCreateAssignsIDAndDefaults(t *testing.T) {
	remote := &fakeRemote{}
	svc := newTestCatalog(t, remote)

	created, err := svc.Create(context.Background(), validProduct("Ember Candle"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, []string{"Standard"}, created.Sizes)
	require.False(t, created.CreatedAt.IsZero())
	require.Len(t, remote.created, 1)
}

func TestCreateRejectsInvalidProduct(t *testing.T) {
	svc := newTestCatalog(t, nil)
	ctx := context.Background()

	bad := validProduct("Ember Candle")
	bad.Price = decimal.Zero
	_, err := svc.Create(ctx, bad)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	products, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Empty(t, products)
}

func TestCreateSucceedsWhenRemoteFails(t *testing.T) {
	remote := &fakeRemote{writeErr: errors.New("remote down")}
	svc := newTestCatalog(t, remote)

	created, err := svc.Create(context.Background(), validProduct("Ember Candle"))
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
}

func TestUpdatePreservesImageURL(t *testing.T) {
	svc := newTestCatalog(t, nil)
	ctx := context.Background()

	seed := validProduct("Ember Candle")
	seed.ImageURL = "https://cdn.example.com/ember.jpg"
	created, err := svc.Create(ctx, seed)
	require.NoError(t, err)

	name := "Ember Candle Deluxe"
	empty := ""
	updated, err := svc.Update(ctx, created.ID, Patch{Name: &name, ImageURL: &empty})
	require.NoError(t, err)
	require.Equal(t, "Ember Candle Deluxe", updated.Name)
	require.Equal(t, "https://cdn.example.com/ember.jpg", updated.ImageURL)
}

func TestUpdateUnknownIDFails(t *testing.T) {
	svc := newTestCatalog(t, nil)

	name := "x"
	_, err := svc.Update(context.Background(), "missing", Patch{Name: &name})
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestDeleteRemovesLocallyDespiteRemoteFailure(t *testing.T) {
	remote := &fakeRemote{writeErr: errors.New("remote down")}
	svc := newTestCatalog(t, remote)
	ctx := context.Background()

	created, err := svc.Create(ctx, validProduct("Ember Candle"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(svc.Delete(ctx, created.ID)).Code())
}

func TestFetchRemoteAndMergeAppliesRule(t *testing.T) {
	remote := &fakeRemote{}
	svc := newTestCatalog(t, remote)
	ctx := context.Background()

	local, err := svc.Create(ctx, validProduct("Local Only"))
	require.NoError(t, err)

	remote.products = []Product{
		{ID: "A", Name: "Remote Candle", Price: decimal.NewFromInt(30), Category: "candles", Emoji: "🕯️", UpdatedAt: time.Now().UTC()},
	}

	changed, err := svc.FetchRemoteAndMerge(ctx)
	require.NoError(t, err)
	require.True(t, changed)

	products, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "A", products[0].ID)
	require.Equal(t, local.ID, products[1].ID)

	changed, err = svc.FetchRemoteAndMerge(ctx)
	require.NoError(t, err)
	require.False(t, changed)
}

func TestFetchRemoteAndMergeSkipsCycleOnError(t *testing.T) {
	remote := &fakeRemote{listErr: errors.New("timeout")}
	svc := newTestCatalog(t, remote)
	ctx := context.Background()

	created, err := svc.Create(ctx, validProduct("Ember Candle"))
	require.NoError(t, err)

	_, err = svc.FetchRemoteAndMerge(ctx)
	require.Error(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
}

func TestListFiltersByCategory(t *testing.T) {
	svc := newTestCatalog(t, nil)
	ctx := context.Background()

	candle := validProduct("Ember Candle")
	_, err := svc.Create(ctx, candle)
	require.NoError(t, err)

	ring := validProduct("Opal Ring")
	ring.Category = "jewelry"
	_, err = svc.Create(ctx, ring)
	require.NoError(t, err)

	jewelry, err := svc.List(ctx, "Jewelry")
	require.NoError(t, err)
	require.Len(t, jewelry, 1)
	require.Equal(t, "Opal Ring", jewelry[0].Name)
}

func TestCatalogSurvivesReload(t *testing.T) {
	entries := newTestEntries(t)
	logg := logger.New(logger.Options{ServiceName: "catalog-test"})
	ctx := context.Background()

	first, err := NewService(entries, nil, logg)
	require.NoError(t, err)
	created, err := first.Create(ctx, validProduct("Ember Candle"))
	require.NoError(t, err)

	second, err := NewService(entries, nil, logg)
	require.NoError(t, err)
	got, err := second.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Ember Candle", got.Name)
}

func TestCorruptSnapshotYieldsEmptyCatalog(t *testing.T) {
	entries := newTestEntries(t)
	ctx := context.Background()
	require.NoError(t, entries.Put(ctx, productsKey, "[broken"))

	svc, err := NewService(entries, nil, logger.New(logger.Options{ServiceName: "catalog-test"}))
	require.NoError(t, err)

	products, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Empty(t, products)
}
