package restaurants

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/UkralStul/halalyelp-service/internal/domain"
	"github.com/UkralStul/halalyelp-service/internal/storage"
	"github.com/go-playground/validator/v10"
)

// Summary - ресторан вместе с вычисленным рейтингом.
type Summary struct {
	*domain.Restaurant
	AvgRating   *float64           `json:"avg_rating"`
	ReviewCount int                `json:"review_count"`
	Stats       domain.RatingStats `json:"-"`
}

// Detail - данные страницы ресторана.
type Detail struct {
	Summary
	Reviews []*domain.Review `json:"reviews"`
}

// ReviewForm - сырые поля формы отзыва.
type ReviewForm struct {
	Rating  string
	Comment string
}

type reviewInput struct {
	Rating  int    `validate:"min=1,max=5"`
	Comment string `validate:"max=500"`
}

// Service отвечает за каталог ресторанов и отзывы.
type Service struct {
	store    storage.Storage
	validate *validator.Validate
}

func NewService(store storage.Storage) *Service {
	return &Service{store: store, validate: validator.New()}
}

// List возвращает все рестораны с рейтингами в порядке хранилища.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	rests, err := s.store.ListRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	return s.summarize(ctx, rests)
}

// Get возвращает ресторан с отзывами (новые первыми).
func (s *Service) Get(ctx context.Context, id string) (*Detail, error) {
	rest, err := s.store.GetRestaurantByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, err := s.store.GetReviewsByRestaurantID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}

	var stats domain.RatingStats
	for _, r := range reviews {
		stats.Count++
		stats.Sum += r.Rating
	}
	return &Detail{
		Summary: NewSummary(rest, stats),
		Reviews: reviews,
	}, nil
}

// SearchByName ищет по подстроке названия. Пустой запрос дает пустой результат.
func (s *Service) SearchByName(ctx context.Context, query string) ([]Summary, error) {
	if query == "" {
		return []Summary{}, nil
	}
	rests, err := s.store.SearchRestaurants(ctx, storage.RestaurantFilter{Name: query})
	if err != nil {
		return nil, fmt.Errorf("failed to search restaurants: %w", err)
	}
	return s.summarize(ctx, rests)
}

// Match применяет фильтры хранилища, затем отбрасывает рестораны без отзывов
// или со средней оценкой ниже ratingMin (если он задан).
func (s *Service) Match(ctx context.Context, filter storage.RestaurantFilter, ratingMin *float64) ([]Summary, error) {
	rests, err := s.store.SearchRestaurants(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search restaurants: %w", err)
	}
	summaries, err := s.summarize(ctx, rests)
	if err != nil {
		return nil, err
	}
	if ratingMin == nil {
		return summaries, nil
	}

	filtered := make([]Summary, 0, len(summaries))
	for _, sum := range summaries {
		mean := sum.Stats.Mean()
		if mean != nil && *mean >= *ratingMin {
			filtered = append(filtered, sum)
		}
	}
	return filtered, nil
}

// AddReview проверяет форму и сохраняет отзыв.
func (s *Service) AddReview(ctx context.Context, restaurantID string, form ReviewForm) (*domain.Review, error) {
	if _, err := s.store.GetRestaurantByID(ctx, restaurantID); err != nil {
		return nil, err
	}

	raw := strings.TrimSpace(form.Rating)
	if raw == "" {
		return nil, domain.NewValidationError("rating", "Please select a rating.")
	}
	rating, err := strconv.Atoi(raw)
	if err != nil {
		return nil, domain.NewValidationError("rating", "Invalid rating. Please submit a number between 1 and 5.")
	}

	in := reviewInput{Rating: rating, Comment: strings.TrimSpace(form.Comment)}
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Comment" {
			return nil, domain.NewValidationError("comment", "Comment too long (max %d characters).", domain.MaxReviewComment)
		}
		return nil, domain.NewValidationError("rating", "Invalid rating. Please submit a number between 1 and 5.")
	}

	review := &domain.Review{RestaurantID: restaurantID, Rating: in.Rating}
	if in.Comment != "" {
		review.Comment = &in.Comment
	}
	return s.store.CreateReview(ctx, review)
}

func (s *Service) summarize(ctx context.Context, rests []*domain.Restaurant) ([]Summary, error) {
	summaries := make([]Summary, 0, len(rests))
	if len(rests) == 0 {
		return summaries, nil
	}

	ids := make([]string, len(rests))
	for i, r := range rests {
		ids[i] = r.ID
	}
	// Одним запросом получаем агрегаты для всех ресторанов
	stats, err := s.store.GetRatingStatsByRestaurantIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}
	for _, r := range rests {
		summaries = append(summaries, NewSummary(r, stats[r.ID]))
	}
	return summaries, nil
}

// NewSummary собирает Summary из ресторана и агрегата оценок.
func NewSummary(r *domain.Restaurant, stats domain.RatingStats) Summary {
	return Summary{
		Restaurant:  r,
		AvgRating:   stats.Average(),
		ReviewCount: stats.Count,
		Stats:       stats,
	}
}
