package listings

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/boardinghub/boardinghub-api/internal/cache"
	"github.com/boardinghub/boardinghub-api/internal/events"
	"github.com/boardinghub/boardinghub-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchQueryNormalize(t *testing.T) {
	q := SearchQuery{
		City:         "  Cebu ",
		PropertyType: "castle",
		GenderPolicy: "female",
		MinPrice:     -5,
		Sort:         "cheapest",
		Limit:        500,
		Offset:       -1,
	}
	q.Normalize()

	assert.Equal(t, "Cebu", q.City)
	assert.Empty(t, q.PropertyType)
	assert.Equal(t, "female", q.GenderPolicy)
	assert.Zero(t, q.MinPrice)
	assert.Equal(t, SortNewest, q.Sort)
	assert.Equal(t, 100, q.Limit)
	assert.Zero(t, q.Offset)
}

func TestSearchQueryCacheKey(t *testing.T) {
	a := SearchQuery{City: "Cebu", Text: "Near Campus", Sort: SortPriceAsc}
	b := SearchQuery{City: "cebu ", Text: "near campus", Sort: SortPriceAsc}
	a.Normalize()
	b.Normalize()
	assert.Equal(t, a.CacheKey(), b.CacheKey())

	c := b
	c.Offset = 20
	assert.NotEqual(t, b.CacheKey(), c.CacheKey())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now`, escapeLike("50% off_now"))
}

func TestSearchServesRepeatQueriesFromCache(t *testing.T) {
	db, mock := testutil.MockDB(t)
	listingCache := cache.NewListingCache(50, time.Minute, nil)
	defer listingCache.Close()

	svc := NewService(db, nil, listingCache, events.NoopPublisher{}, nil, 0, "/files/placeholder.png")
	ctx := context.Background()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "properties"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "properties"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	first, err := svc.Search(ctx, SearchQuery{City: "Cebu"})
	require.NoError(t, err)
	assert.Empty(t, first.Items)
	assert.Equal(t, 20, first.Limit)

	// No further expectations: a second identical search must not touch the DB.
	second, err := svc.Search(ctx, SearchQuery{City: "cebu"})
	require.NoError(t, err)
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, 1, listingCache.ItemCount())
}

func TestSearchAfterInvalidationHitsDatabase(t *testing.T) {
	db, mock := testutil.MockDB(t)
	listingCache := cache.NewListingCache(50, time.Minute, nil)
	defer listingCache.Close()

	svc := NewService(db, nil, listingCache, nil, nil, 0, "")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		mock.ExpectQuery(`SELECT count\(\*\) FROM "properties"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT \* FROM "properties"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
	}

	_, err := svc.Search(ctx, SearchQuery{})
	require.NoError(t, err)
	listingCache.InvalidateAll(ctx)
	_, err = svc.Search(ctx, SearchQuery{})
	require.NoError(t, err)
}
