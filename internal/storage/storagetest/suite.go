// Package storagetest содержит общие тесты для всех реализаций storage.Storage.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/UkralStul/halalyelp-service/internal/domain"
	"github.com/UkralStul/halalyelp-service/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory создает пустое хранилище для одного теста.
type Factory func(t *testing.T) storage.Storage

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// Run прогоняет общий набор тестов на хранилище.
func Run(t *testing.T, newStore Factory) {
	t.Run("RestaurantCRUD", func(t *testing.T) { testRestaurantCRUD(t, newStore(t)) })
	t.Run("SearchRestaurants", func(t *testing.T) { testSearchRestaurants(t, newStore(t)) })
	t.Run("SearchLiteralWildcards", func(t *testing.T) { testSearchLiteralWildcards(t, newStore(t)) })
	t.Run("Reviews", func(t *testing.T) { testReviews(t, newStore(t)) })
	t.Run("RatingStats", func(t *testing.T) { testRatingStats(t, newStore(t)) })
	t.Run("ContentCounters", func(t *testing.T) { testContentCounters(t, newStore(t)) })
	t.Run("Comments", func(t *testing.T) { testComments(t, newStore(t)) })
	t.Run("DeleteAllRestaurants", func(t *testing.T) { testDeleteAll(t, newStore(t)) })
}

func mustRestaurant(t *testing.T, s storage.Storage, r domain.Restaurant, offset int) *domain.Restaurant {
	t.Helper()
	r.CreatedAt = base.Add(time.Duration(offset) * time.Minute)
	created, err := s.CreateRestaurant(context.Background(), &r)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	return created
}

func mustContent(t *testing.T, s storage.Storage, c domain.Content, offset int) *domain.Content {
	t.Helper()
	c.CreatedAt = base.Add(time.Duration(offset) * time.Minute)
	created, err := s.CreateContent(context.Background(), &c)
	require.NoError(t, err)
	return created
}

func testRestaurantCRUD(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	r := mustRestaurant(t, s, domain.Restaurant{Name: "The Halal Guys", Cuisine: "Middle Eastern"}, 0)

	got, err := s.GetRestaurantByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Halal Guys", got.Name)

	_, err = s.GetRestaurantByID(ctx, "non-existent-id")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = s.CreateRestaurant(ctx, &domain.Restaurant{Name: "  "})
	var verr *domain.ValidationError
	assert.True(t, errors.As(err, &verr))

	count, err := s.CountRestaurants(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func testSearchRestaurants(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	guys := mustRestaurant(t, s, domain.Restaurant{
		Name: "The Halal Guys", Cuisine: "Middle Eastern", HalalStatus: domain.HalalCertified,
		Description: "Gyro platters and chicken over rice.",
	}, 0)
	daves := mustRestaurant(t, s, domain.Restaurant{
		Name: "Dave's Hot Chicken", Cuisine: "American", HalalStatus: domain.HalalCertified,
		Description: "Hot chicken tenders.",
	}, 1)
	crown := mustRestaurant(t, s, domain.Restaurant{
		Name: "Crown Fried Chicken", Cuisine: "American", HalalStatus: domain.HalalStandard,
		Description: "Late-night comfort food with a middle eastern twist.",
	}, 2)

	ids := func(list []*domain.Restaurant) []string {
		out := make([]string, len(list))
		for i, r := range list {
			out[i] = r.ID
		}
		return out
	}

	all, err := s.ListRestaurants(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{guys.ID, daves.ID, crown.ID}, ids(all))

	byName, err := s.SearchRestaurants(ctx, storage.RestaurantFilter{Name: "CHICKEN"})
	require.NoError(t, err)
	assert.Equal(t, []string{daves.ID, crown.ID}, ids(byName))

	// Кухня ищется и в описании
	byCuisine, err := s.SearchRestaurants(ctx, storage.RestaurantFilter{Cuisine: "middle eastern"})
	require.NoError(t, err)
	assert.Equal(t, []string{guys.ID, crown.ID}, ids(byCuisine))

	// Халяль-статус сравнивается точно
	byStatus, err := s.SearchRestaurants(ctx, storage.RestaurantFilter{HalalStatus: domain.HalalStandard})
	require.NoError(t, err)
	assert.Equal(t, []string{crown.ID}, ids(byStatus))
	none, err := s.SearchRestaurants(ctx, storage.RestaurantFilter{HalalStatus: "halal"})
	require.NoError(t, err)
	assert.Empty(t, none)

	// Ключевые слова объединяются через OR
	byKeywords, err := s.SearchRestaurants(ctx, storage.RestaurantFilter{Keywords: []string{"gyro", "tenders"}})
	require.NoError(t, err)
	assert.Equal(t, []string{guys.ID, daves.ID}, ids(byKeywords))

	combined, err := s.SearchRestaurants(ctx, storage.RestaurantFilter{
		Cuisine:     "american",
		HalalStatus: domain.HalalCertified,
		Keywords:    []string{"chicken"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{daves.ID}, ids(combined))
}

// % и _ в запросе ищутся как обычные символы
func testSearchLiteralWildcards(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	deal := mustRestaurant(t, s, domain.Restaurant{
		Name: "50% Off Grill", Cuisine: "Grill_House", Description: "Kebabs at 100% halal.",
	}, 0)
	burgers := mustRestaurant(t, s, domain.Restaurant{
		Name: "500 Burgers", Cuisine: "GrillXHouse", Description: "Smash burgers 1000 ways.",
	}, 1)

	search := func(filter storage.RestaurantFilter) []string {
		t.Helper()
		list, err := s.SearchRestaurants(ctx, filter)
		require.NoError(t, err)
		out := make([]string, len(list))
		for i, r := range list {
			out[i] = r.ID
		}
		return out
	}

	assert.Equal(t, []string{deal.ID}, search(storage.RestaurantFilter{Name: "50%"}))
	assert.Equal(t, []string{deal.ID}, search(storage.RestaurantFilter{Cuisine: "grill_house"}))
	assert.Equal(t, []string{deal.ID}, search(storage.RestaurantFilter{Keywords: []string{"100%"}}))
	assert.Empty(t, search(storage.RestaurantFilter{Name: "%burgers"}))
	assert.Empty(t, search(storage.RestaurantFilter{Name: "5_0"}))
	assert.Equal(t, []string{burgers.ID}, search(storage.RestaurantFilter{Name: "500"}))
}

func testReviews(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	r := mustRestaurant(t, s, domain.Restaurant{Name: "Asad's Hot Chicken"}, 0)

	_, err := s.CreateReview(ctx, &domain.Review{RestaurantID: "missing", Rating: 5})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = s.CreateReview(ctx, &domain.Review{RestaurantID: r.ID, Rating: 6})
	var verr *domain.ValidationError
	assert.True(t, errors.As(err, &verr))

	comment := "Great spice levels"
	older, err := s.CreateReview(ctx, &domain.Review{RestaurantID: r.ID, Rating: 4, Comment: &comment, Date: base})
	require.NoError(t, err)
	newer, err := s.CreateReview(ctx, &domain.Review{RestaurantID: r.ID, Rating: 2, Date: base.Add(time.Hour)})
	require.NoError(t, err)

	reviews, err := s.GetReviewsByRestaurantID(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, newer.ID, reviews[0].ID)
	assert.Equal(t, older.ID, reviews[1].ID)
	assert.Nil(t, reviews[0].Comment)
	require.NotNil(t, reviews[1].Comment)
	assert.Equal(t, comment, *reviews[1].Comment)
}

func testRatingStats(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	rated := mustRestaurant(t, s, domain.Restaurant{Name: "Rated"}, 0)
	unrated := mustRestaurant(t, s, domain.Restaurant{Name: "Unrated"}, 1)
	for _, rating := range []int{5, 3, 4} {
		_, err := s.CreateReview(ctx, &domain.Review{RestaurantID: rated.ID, Rating: rating})
		require.NoError(t, err)
	}

	stats, err := s.GetRatingStatsByRestaurantIDs(ctx, []string{rated.ID, unrated.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.RatingStats{Count: 3, Sum: 12}, stats[rated.ID])
	assert.Equal(t, domain.RatingStats{}, stats[unrated.ID])

	found, err := s.GetRestaurantsByIDs(ctx, []string{rated.ID, "missing"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, "Rated", found[rated.ID].Name)
}

func testContentCounters(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	older := mustContent(t, s, domain.Content{Title: "Older", LikesCount: 5}, 0)
	newer := mustContent(t, s, domain.Content{Title: "Newer"}, 1)

	list, err := s.ListContent(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	updated, err := s.AdjustCounter(ctx, older.ID, domain.CounterLikes, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, updated.LikesCount)

	// Счетчик не опускается ниже нуля
	updated, err = s.AdjustCounter(ctx, newer.ID, domain.CounterSaves, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.SavesCount)

	_, err = s.AdjustCounter(ctx, "missing", domain.CounterShares, 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	video := "https://cdn.example.com/clip.mp4"
	updated, err = s.UpdateContentMedia(ctx, newer.ID, "", &video)
	require.NoError(t, err)
	require.NotNil(t, updated.VideoURL)
	assert.Equal(t, video, *updated.VideoURL)

	got, err := s.GetContentByID(ctx, newer.ID)
	require.NoError(t, err)
	require.NotNil(t, got.VideoURL)
	assert.Equal(t, video, *got.VideoURL)
}

func testComments(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	c := mustContent(t, s, domain.Content{Title: "Post"}, 0)

	first, count, err := s.CreateComment(ctx, &domain.ContentComment{
		ContentID: c.ID, Username: "amina", CommentText: "Looks great", CreatedAt: base,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, 1, count)

	second, count, err := s.CreateComment(ctx, &domain.ContentComment{
		ContentID: c.ID, Username: domain.DefaultCommenter, CommentText: "Going tonight", CreatedAt: base.Add(time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, _, err = s.CreateComment(ctx, &domain.ContentComment{ContentID: c.ID, CommentText: "   "})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Comment text is required", verr.Message)

	_, _, err = s.CreateComment(ctx, &domain.ContentComment{ContentID: "missing", CommentText: "hi"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	got, err := s.GetContentByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CommentsCount)

	comments, err := s.GetCommentsByContentID(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, second.ID, comments[0].ID)
	assert.Equal(t, first.ID, comments[1].ID)
}

func testDeleteAll(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	r := mustRestaurant(t, s, domain.Restaurant{Name: "Crown Fried Chicken"}, 0)
	mustRestaurant(t, s, domain.Restaurant{Name: "Dave's Hot Chicken"}, 1)
	_, err := s.CreateReview(ctx, &domain.Review{RestaurantID: r.ID, Rating: 4})
	require.NoError(t, err)
	c := mustContent(t, s, domain.Content{Title: "Promo", RestaurantID: &r.ID}, 0)

	deleted, err := s.DeleteAllRestaurants(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	count, err := s.CountRestaurants(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	reviews, err := s.GetReviewsByRestaurantID(ctx, r.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)

	// Пост остается, но без ресторана
	got, err := s.GetContentByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RestaurantID)
}
