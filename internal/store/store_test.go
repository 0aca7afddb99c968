package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evhagen/aoiview/internal/core/model"
	"github.com/evhagen/aoiview/internal/geom"
	"github.com/evhagen/aoiview/internal/store"
	"github.com/evhagen/aoiview/internal/testutil"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	return store.New(db)
}

func sampleAOI(user string) model.AOI {
	return model.AOI{
		Name:   "harbor",
		UserID: user,
		Geometry: geom.Geometry{
			Type: geom.TypePolygon,
			Polygon: [][][]float64{
				{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}},
			},
		},
	}
}

func TestCreateAndGet_GeometryRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	aoi := sampleAOI("u1")
	require.NoError(t, s.Create(ctx, &aoi))
	require.NotZero(t, aoi.ID)

	got, err := s.Get(ctx, "u1", aoi.ID)
	require.NoError(t, err)
	assert.Equal(t, "harbor", got.Name)
	assert.Equal(t, geom.TypePolygon, got.Geometry.Type)
	assert.Equal(t, aoi.Geometry.Polygon, got.Geometry.Polygon)
}

func TestListByUser_IsScoped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a1 := sampleAOI("u1")
	a2 := sampleAOI("u1")
	a3 := sampleAOI("u2")
	require.NoError(t, s.Create(ctx, &a1))
	require.NoError(t, s.Create(ctx, &a2))
	require.NoError(t, s.Create(ctx, &a3))

	mine, err := s.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	theirs, err := s.ListByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestGet_OtherUsersAOIIsNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	aoi := sampleAOI("u1")
	require.NoError(t, s.Create(ctx, &aoi))

	_, err := s.Get(ctx, "u2", aoi.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	aoi := sampleAOI("u1")
	require.NoError(t, s.Create(ctx, &aoi))

	require.NoError(t, s.Delete(ctx, "u1", aoi.ID))
	_, err := s.Get(ctx, "u1", aoi.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, "u1", aoi.ID), store.ErrNotFound)
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
