package storage

import (
	"context"

	"github.com/UkralStul/halalyelp-service/internal/domain"
)

// RestaurantFilter - фильтры поиска ресторанов. Пустые поля не участвуют.
type RestaurantFilter struct {
	// Name - подстрока названия без учета регистра.
	Name string
	// Cuisine - подстрока кухни или описания без учета регистра.
	Cuisine string
	// HalalStatus - точное совпадение.
	HalalStatus string
	// Keywords - ресторан подходит, если хотя бы одно слово входит
	// в название, описание или кухню (OR между словами).
	Keywords []string
}

// Storage определяет контракт для хранилищ.
type Storage interface {
	CreateRestaurant(ctx context.Context, restaurant *domain.Restaurant) (*domain.Restaurant, error)
	GetRestaurantByID(ctx context.Context, id string) (*domain.Restaurant, error)
	ListRestaurants(ctx context.Context) ([]*domain.Restaurant, error)
	SearchRestaurants(ctx context.Context, filter RestaurantFilter) ([]*domain.Restaurant, error)
	CountRestaurants(ctx context.Context) (int64, error)
	// DeleteAllRestaurants удаляет рестораны вместе с отзывами, у постов ленты
	// ссылка на ресторан обнуляется. Используется только утилитой сброса.
	DeleteAllRestaurants(ctx context.Context) (int64, error)

	CreateReview(ctx context.Context, review *domain.Review) (*domain.Review, error)
	GetReviewsByRestaurantID(ctx context.Context, restaurantID string) ([]*domain.Review, error)

	CreateContent(ctx context.Context, content *domain.Content) (*domain.Content, error)
	GetContentByID(ctx context.Context, id string) (*domain.Content, error)
	ListContent(ctx context.Context) ([]*domain.Content, error)
	// AdjustCounter читает пост, меняет счетчик на delta (не ниже нуля) и сохраняет.
	// Чтение и запись не атомарны относительно конкурентных запросов.
	AdjustCounter(ctx context.Context, contentID string, counter domain.Counter, delta int) (*domain.Content, error)
	UpdateContentMedia(ctx context.Context, contentID string, imageURL string, videoURL *string) (*domain.Content, error)

	// CreateComment добавляет комментарий и увеличивает comments_count на 1
	// в одной операции. Возвращает новое значение счетчика.
	CreateComment(ctx context.Context, comment *domain.ContentComment) (*domain.ContentComment, int, error)
	GetCommentsByContentID(ctx context.Context, contentID string) ([]*domain.ContentComment, error)

	// Методы для Dataloader'ов
	GetRestaurantsByIDs(ctx context.Context, ids []string) (map[string]*domain.Restaurant, error)
	GetRatingStatsByRestaurantIDs(ctx context.Context, ids []string) (map[string]domain.RatingStats, error)
}
