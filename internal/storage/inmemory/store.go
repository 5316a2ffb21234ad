package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/UkralStul/halalyelp-service/internal/domain"
	"github.com/UkralStul/halalyelp-service/internal/storage"
	"github.com/google/uuid"
)

// Store реализует интерфейс Storage в памяти.
type Store struct {
	mu                  sync.RWMutex
	restaurants         map[string]*domain.Restaurant
	restaurantOrder     []string // порядок вставки
	reviewsByRestaurant map[string][]*domain.Review
	contents            map[string]*domain.Content
	contentOrder        []string
	commentsByContent   map[string][]*domain.ContentComment
}

// New создает новый экземпляр in-memory хранилища.
func New() *Store {
	return &Store{
		restaurants:         make(map[string]*domain.Restaurant),
		reviewsByRestaurant: make(map[string][]*domain.Review),
		contents:            make(map[string]*domain.Content),
		commentsByContent:   make(map[string][]*domain.ContentComment),
	}
}

var _ storage.Storage = (*Store)(nil)

// === Restaurant Methods ===

func (s *Store) CreateRestaurant(ctx context.Context, restaurant *domain.Restaurant) (*domain.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(restaurant.Name) == "" {
		return nil, domain.NewValidationError("name", "restaurant name cannot be empty")
	}
	if restaurant.ID == "" {
		restaurant.ID = uuid.NewString()
	}
	if restaurant.CreatedAt.IsZero() {
		restaurant.CreatedAt = time.Now().UTC()
	}
	stored := *restaurant
	s.restaurants[stored.ID] = &stored
	s.restaurantOrder = append(s.restaurantOrder, stored.ID)
	return restaurant, nil
}

func (s *Store) GetRestaurantByID(ctx context.Context, id string) (*domain.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.restaurants[id]
	if !ok {
		return nil, domain.NotFoundf("restaurant with id %s", id)
	}
	cp := *r
	return &cp, nil
}

func (s *Store) ListRestaurants(ctx context.Context) ([]*domain.Restaurant, error) {
	return s.SearchRestaurants(ctx, storage.RestaurantFilter{})
}

func (s *Store) SearchRestaurants(ctx context.Context, filter storage.RestaurantFilter) ([]*domain.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Restaurant, 0, len(s.restaurantOrder))
	for _, id := range s.restaurantOrder {
		r := s.restaurants[id]
		if !matches(r, filter) {
			continue
		}
		cp := *r
		result = append(result, &cp)
	}
	return result, nil
}

func matches(r *domain.Restaurant, f storage.RestaurantFilter) bool {
	if f.Name != "" && !containsFold(r.Name, f.Name) {
		return false
	}
	if f.Cuisine != "" && !containsFold(r.Cuisine, f.Cuisine) && !containsFold(r.Description, f.Cuisine) {
		return false
	}
	if f.HalalStatus != "" && r.HalalStatus != f.HalalStatus {
		return false
	}
	if len(f.Keywords) == 0 {
		return true
	}
	for _, kw := range f.Keywords {
		if containsFold(r.Name, kw) || containsFold(r.Description, kw) || containsFold(r.Cuisine, kw) {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (s *Store) CountRestaurants(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.restaurants)), nil
}

func (s *Store) DeleteAllRestaurants(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.restaurants))
	for _, c := range s.contents {
		if c.RestaurantID != nil {
			if _, ok := s.restaurants[*c.RestaurantID]; ok {
				c.RestaurantID = nil
			}
		}
	}
	s.restaurants = make(map[string]*domain.Restaurant)
	s.restaurantOrder = nil
	s.reviewsByRestaurant = make(map[string][]*domain.Review)
	return n, nil
}

// === Review Methods ===

func (s *Store) CreateReview(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.restaurants[review.RestaurantID]; !ok {
		return nil, domain.NotFoundf("restaurant with id %s", review.RestaurantID)
	}
	if review.Rating < domain.MinRating || review.Rating > domain.MaxRating {
		return nil, domain.NewValidationError("rating", "rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	}

	review.ID = uuid.NewString()
	if review.Date.IsZero() {
		review.Date = time.Now().UTC()
	}
	stored := *review
	s.reviewsByRestaurant[review.RestaurantID] = append(s.reviewsByRestaurant[review.RestaurantID], &stored)
	return review, nil
}

func (s *Store) GetReviewsByRestaurantID(ctx context.Context, restaurantID string) ([]*domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.reviewsByRestaurant[restaurantID]
	reviews := make([]*domain.Review, 0, len(stored))
	// Обходим с конца, чтобы при равном времени новые шли первыми
	for i := len(stored) - 1; i >= 0; i-- {
		cp := *stored[i]
		reviews = append(reviews, &cp)
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].Date.After(reviews[j].Date)
	})
	return reviews, nil
}

// === Content Methods ===

func (s *Store) CreateContent(ctx context.Context, content *domain.Content) (*domain.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if content.ID == "" {
		content.ID = uuid.NewString()
	}
	if content.CreatedAt.IsZero() {
		content.CreatedAt = time.Now().UTC()
	}
	stored := *content
	s.contents[stored.ID] = &stored
	s.contentOrder = append(s.contentOrder, stored.ID)
	return content, nil
}

func (s *Store) GetContentByID(ctx context.Context, id string) (*domain.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contents[id]
	if !ok {
		return nil, domain.NotFoundf("content with id %s", id)
	}
	cp := *c
	return &cp, nil
}

func (s *Store) ListContent(ctx context.Context) ([]*domain.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contents := make([]*domain.Content, 0, len(s.contentOrder))
	for i := len(s.contentOrder) - 1; i >= 0; i-- {
		cp := *s.contents[s.contentOrder[i]]
		contents = append(contents, &cp)
	}
	sort.SliceStable(contents, func(i, j int) bool {
		return contents[i].CreatedAt.After(contents[j].CreatedAt)
	})
	return contents, nil
}

func (s *Store) AdjustCounter(ctx context.Context, contentID string, counter domain.Counter, delta int) (*domain.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contents[contentID]
	if !ok {
		return nil, domain.NotFoundf("content with id %s", contentID)
	}
	c.Adjust(counter, delta)
	cp := *c
	return &cp, nil
}

func (s *Store) UpdateContentMedia(ctx context.Context, contentID string, imageURL string, videoURL *string) (*domain.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contents[contentID]
	if !ok {
		return nil, domain.NotFoundf("content with id %s", contentID)
	}
	if imageURL != "" {
		c.ImageURL = imageURL
	}
	if videoURL != nil {
		c.VideoURL = videoURL
	}
	cp := *c
	return &cp, nil
}

// === Comment Methods ===

func (s *Store) CreateComment(ctx context.Context, comment *domain.ContentComment) (*domain.ContentComment, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contents[comment.ContentID]
	if !ok {
		return nil, 0, domain.NotFoundf("content with id %s", comment.ContentID)
	}
	if strings.TrimSpace(comment.CommentText) == "" {
		return nil, 0, domain.NewValidationError("comment_text", "Comment text is required")
	}

	comment.ID = uuid.NewString()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	stored := *comment
	s.commentsByContent[comment.ContentID] = append(s.commentsByContent[comment.ContentID], &stored)
	count := c.Adjust(domain.CounterComments, 1)
	return comment, count, nil
}

func (s *Store) GetCommentsByContentID(ctx context.Context, contentID string) ([]*domain.ContentComment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.commentsByContent[contentID]
	comments := make([]*domain.ContentComment, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		cp := *stored[i]
		comments = append(comments, &cp)
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

// === Dataloader Methods ===

func (s *Store) GetRestaurantsByIDs(ctx context.Context, ids []string) (map[string]*domain.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*domain.Restaurant, len(ids))
	for _, id := range ids {
		if r, ok := s.restaurants[id]; ok {
			cp := *r
			result[id] = &cp
		}
	}
	return result, nil
}

func (s *Store) GetRatingStatsByRestaurantIDs(ctx context.Context, ids []string) (map[string]domain.RatingStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.RatingStats, len(ids))
	for _, id := range ids {
		var stats domain.RatingStats
		for _, rev := range s.reviewsByRestaurant[id] {
			stats.Count++
			stats.Sum += rev.Rating
		}
		result[id] = stats
	}
	return result, nil
}
