package dataloader

import (
	"context"
	"net/http"
	"time"

	"github.com/UkralStul/halalyelp-service/internal/domain"
	"github.com/UkralStul/halalyelp-service/internal/storage"
	"github.com/graph-gophers/dataloader"
)

type contextKey string

const key = contextKey("dataloaders")

// Loaders содержит все дата-лоадеры приложения.
type Loaders struct {
	RestaurantByID        *dataloader.Loader
	RatingsByRestaurantID *dataloader.Loader
}

// NewLoaders создает лоадеры для одного запроса.
func NewLoaders(store storage.Storage) *Loaders {
	restaurantsFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := keys.Keys()
		// Один запрос к БД на все ключи
		found, err := store.GetRestaurantsByIDs(ctx, ids)
		if err != nil {
			return errorResults(len(keys), err)
		}
		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			r, ok := found[id]
			if !ok {
				results[i] = &dataloader.Result{Error: domain.NotFoundf("restaurant with id %s", id)}
				continue
			}
			results[i] = &dataloader.Result{Data: r}
		}
		return results
	}

	ratingsFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := keys.Keys()
		stats, err := store.GetRatingStatsByRestaurantIDs(ctx, ids)
		if err != nil {
			return errorResults(len(keys), err)
		}
		// Формируем результат в том же порядке, что и ключи
		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			results[i] = &dataloader.Result{Data: stats[id]}
		}
		return results
	}

	return &Loaders{
		RestaurantByID:        dataloader.NewBatchedLoader(restaurantsFn, dataloader.WithWait(time.Millisecond*1)),
		RatingsByRestaurantID: dataloader.NewBatchedLoader(ratingsFn, dataloader.WithWait(time.Millisecond*1)),
	}
}

func errorResults(n int, err error) []*dataloader.Result {
	results := make([]*dataloader.Result, n)
	for i := range results {
		results[i] = &dataloader.Result{Error: err}
	}
	return results
}

// Middleware для внедрения лоадеров в контекст запроса.
func Middleware(store storage.Storage, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithLoaders(r.Context(), NewLoaders(store))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithLoaders кладет лоадеры в контекст.
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, key, loaders)
}

// For извлекает лоадеры из контекста.
func For(ctx context.Context) *Loaders {
	return ctx.Value(key).(*Loaders)
}

// Restaurant ставит ID в очередь загрузки и возвращает функцию ожидания результата.
// Сначала нужно поставить в очередь все ключи, и только потом ждать: так они попадут в один батч.
func (l *Loaders) Restaurant(ctx context.Context, id string) func() (*domain.Restaurant, error) {
	thunk := l.RestaurantByID.Load(ctx, dataloader.StringKey(id))
	return func() (*domain.Restaurant, error) {
		data, err := thunk()
		if err != nil {
			return nil, err
		}
		return data.(*domain.Restaurant), nil
	}
}

// Ratings работает так же, как Restaurant, для агрегатов оценок.
func (l *Loaders) Ratings(ctx context.Context, restaurantID string) func() (domain.RatingStats, error) {
	thunk := l.RatingsByRestaurantID.Load(ctx, dataloader.StringKey(restaurantID))
	return func() (domain.RatingStats, error) {
		data, err := thunk()
		if err != nil {
			return domain.RatingStats{}, err
		}
		return data.(domain.RatingStats), nil
	}
}
