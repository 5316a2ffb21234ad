package dataloader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/UkralStul/halalyelp-service/internal/domain"
	"github.com/UkralStul/halalyelp-service/internal/storage"
	"github.com/UkralStul/halalyelp-service/internal/storage/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore считает батч-запросы к хранилищу.
type countingStore struct {
	storage.Storage
	mu              sync.Mutex
	restaurantCalls int
	ratingCalls     int
}

func (s *countingStore) GetRestaurantsByIDs(ctx context.Context, ids []string) (map[string]*domain.Restaurant, error) {
	s.mu.Lock()
	s.restaurantCalls++
	s.mu.Unlock()
	return s.Storage.GetRestaurantsByIDs(ctx, ids)
}

func (s *countingStore) GetRatingStatsByRestaurantIDs(ctx context.Context, ids []string) (map[string]domain.RatingStats, error) {
	s.mu.Lock()
	s.ratingCalls++
	s.mu.Unlock()
	return s.Storage.GetRatingStatsByRestaurantIDs(ctx, ids)
}

func TestLoaders_BatchesLookups(t *testing.T) {
	ctx := context.Background()
	mem := inmemory.New()
	var ids []string
	for _, name := range []string{"A", "B", "C"} {
		r, err := mem.CreateRestaurant(ctx, &domain.Restaurant{Name: name})
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}
	_, err := mem.CreateReview(ctx, &domain.Review{RestaurantID: ids[0], Rating: 4})
	require.NoError(t, err)

	store := &countingStore{Storage: mem}
	loaders := NewLoaders(store)

	// Сначала ставим все ключи в очередь, потом ждем
	var waits []func() (*domain.Restaurant, error)
	var ratings []func() (domain.RatingStats, error)
	for _, id := range ids {
		waits = append(waits, loaders.Restaurant(ctx, id))
		ratings = append(ratings, loaders.Ratings(ctx, id))
	}
	for i, wait := range waits {
		r, err := wait()
		require.NoError(t, err)
		assert.Equal(t, ids[i], r.ID)
	}
	stats, err := ratings[0]()
	require.NoError(t, err)
	assert.Equal(t, domain.RatingStats{Count: 1, Sum: 4}, stats)

	assert.Equal(t, 1, store.restaurantCalls)
	assert.Equal(t, 1, store.ratingCalls)

	_, err = loaders.Restaurant(ctx, "missing")()
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestMiddleware_InjectsLoaders(t *testing.T) {
	var got *Loaders
	h := Middleware(inmemory.New(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = For(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fyp", nil))
	require.NotNil(t, got)
	assert.NotNil(t, got.RestaurantByID)
	assert.NotNil(t, got.RatingsByRestaurantID)
}
