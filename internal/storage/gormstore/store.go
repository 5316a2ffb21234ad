package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/UkralStul/halalyelp-service/internal/domain"
	"github.com/UkralStul/halalyelp-service/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store реализует интерфейс Storage поверх GORM (PostgreSQL или SQLite).
type Store struct {
	db *gorm.DB
}

var _ storage.Storage = (*Store)(nil)

// NewPostgres создает хранилище PostgreSQL.
func NewPostgres(dsn string, debug bool) (*Store, error) {
	return Open(postgres.Open(dsn), debug)
}

// NewSQLite создает хранилище SQLite (путь к файлу или DSN вида "file:x?mode=memory&cache=shared").
func NewSQLite(path string, debug bool) (*Store, error) {
	store, err := Open(sqlite.Open(path), debug)
	if err != nil {
		return nil, err
	}
	// SQLite не любит параллельных писателей
	sqlDB, err := store.db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return store, nil
}

// Open подключается через переданный диалект и выполняет миграцию схемы.
func Open(dialector gorm.Dialector, debug bool) (*Store, error) {
	level := logger.Warn
	if debug {
		level = logger.Info // Включаем логирование SQL для отладки
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Restaurant{}, &domain.Review{}, &domain.Content{}, &domain.ContentComment{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close закрывает пул соединений.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFoundf(format, args...)
	}
	return err
}

// likeEscaper экранирует спецсимволы LIKE, чтобы "50%" и "a_b" искались буквально,
// как в in-memory хранилище. Пара к likeClause с ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likeClause - условие подстрочного поиска, одинаково работающее в Postgres и SQLite.
func likeClause(column string) string {
	return "LOWER(" + column + `) LIKE ? ESCAPE '\'`
}

// likePattern строит шаблон для likeClause.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// === Restaurant Methods ===

func (s *Store) CreateRestaurant(ctx context.Context, restaurant *domain.Restaurant) (*domain.Restaurant, error) {
	if strings.TrimSpace(restaurant.Name) == "" {
		return nil, domain.NewValidationError("name", "restaurant name cannot be empty")
	}
	if err := s.db.WithContext(ctx).Create(restaurant).Error; err != nil {
		return nil, err
	}
	return restaurant, nil
}

func (s *Store) GetRestaurantByID(ctx context.Context, id string) (*domain.Restaurant, error) {
	var restaurant domain.Restaurant
	if err := s.db.WithContext(ctx).First(&restaurant, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "restaurant with id %s", id)
	}
	return &restaurant, nil
}

func (s *Store) ListRestaurants(ctx context.Context) ([]*domain.Restaurant, error) {
	return s.SearchRestaurants(ctx, storage.RestaurantFilter{})
}

func (s *Store) SearchRestaurants(ctx context.Context, filter storage.RestaurantFilter) ([]*domain.Restaurant, error) {
	query := s.db.WithContext(ctx).Model(&domain.Restaurant{})

	if filter.Name != "" {
		query = query.Where(likeClause("name"), likePattern(filter.Name))
	}
	if filter.Cuisine != "" {
		p := likePattern(filter.Cuisine)
		query = query.Where("("+likeClause("cuisine")+" OR "+likeClause("description")+")", p, p)
	}
	if filter.HalalStatus != "" {
		query = query.Where("halal_status = ?", filter.HalalStatus)
	}
	if len(filter.Keywords) > 0 {
		// OR между ключевыми словами: достаточно совпадения по любому из них
		clauses := make([]string, 0, len(filter.Keywords))
		args := make([]any, 0, len(filter.Keywords)*3)
		for _, kw := range filter.Keywords {
			p := likePattern(kw)
			clauses = append(clauses, likeClause("name")+" OR "+likeClause("description")+" OR "+likeClause("cuisine"))
			args = append(args, p, p, p)
		}
		query = query.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}

	var restaurants []*domain.Restaurant
	err := query.Order("created_at ASC").Find(&restaurants).Error
	return restaurants, err
}

func (s *Store) CountRestaurants(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Restaurant{}).Count(&count).Error
	return count, err
}

func (s *Store) DeleteAllRestaurants(ctx context.Context) (int64, error) {
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Content{}).
			Where("restaurant_id IS NOT NULL").
			Update("restaurant_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("1 = 1").Delete(&domain.Restaurant{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// === Review Methods ===

func (s *Store) CreateReview(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	if review.Rating < domain.MinRating || review.Rating > domain.MaxRating {
		return nil, domain.NewValidationError("rating", "rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Restaurant{}).Where("id = ?", review.RestaurantID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.NotFoundf("restaurant with id %s", review.RestaurantID)
		}
		if review.Date.IsZero() {
			review.Date = time.Now().UTC()
		}
		return tx.Create(review).Error
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (s *Store) GetReviewsByRestaurantID(ctx context.Context, restaurantID string) ([]*domain.Review, error) {
	var reviews []*domain.Review
	err := s.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("reviewed_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// === Content Methods ===

func (s *Store) CreateContent(ctx context.Context, content *domain.Content) (*domain.Content, error) {
	if err := s.db.WithContext(ctx).Create(content).Error; err != nil {
		return nil, err
	}
	return content, nil
}

func (s *Store) GetContentByID(ctx context.Context, id string) (*domain.Content, error) {
	var content domain.Content
	if err := s.db.WithContext(ctx).First(&content, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "content with id %s", id)
	}
	return &content, nil
}

func (s *Store) ListContent(ctx context.Context) ([]*domain.Content, error) {
	var contents []*domain.Content
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&contents).Error
	return contents, err
}

func (s *Store) AdjustCounter(ctx context.Context, contentID string, counter domain.Counter, delta int) (*domain.Content, error) {
	var content domain.Content
	// Чтение и запись в одной транзакции; при READ COMMITTED
	// параллельные запросы всё равно могут потерять инкремент.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&content, "id = ?", contentID).Error; err != nil {
			return notFound(err, "content with id %s", contentID)
		}
		next := content.Adjust(counter, delta)
		return tx.Model(&content).Update(string(counter), next).Error
	})
	if err != nil {
		return nil, err
	}
	return &content, nil
}

func (s *Store) UpdateContentMedia(ctx context.Context, contentID string, imageURL string, videoURL *string) (*domain.Content, error) {
	var content domain.Content
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&content, "id = ?", contentID).Error; err != nil {
			return notFound(err, "content with id %s", contentID)
		}
		updates := map[string]any{}
		if imageURL != "" {
			content.ImageURL = imageURL
			updates["image_url"] = imageURL
		}
		if videoURL != nil {
			content.VideoURL = videoURL
			updates["video_url"] = *videoURL
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&content).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &content, nil
}

// === Comment Methods ===

func (s *Store) CreateComment(ctx context.Context, comment *domain.ContentComment) (*domain.ContentComment, int, error) {
	var count int
	// Комментарий и счетчик меняются в одной транзакции
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var content domain.Content
		if err := tx.First(&content, "id = ?", comment.ContentID).Error; err != nil {
			return notFound(err, "content with id %s", comment.ContentID)
		}
		if strings.TrimSpace(comment.CommentText) == "" {
			return domain.NewValidationError("comment_text", "Comment text is required")
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		count = content.Adjust(domain.CounterComments, 1)
		return tx.Model(&content).Update(string(domain.CounterComments), count).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return comment, count, nil
}

func (s *Store) GetCommentsByContentID(ctx context.Context, contentID string) ([]*domain.ContentComment, error) {
	// пустой список отдается как [], а не null
	comments := make([]*domain.ContentComment, 0)
	err := s.db.WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

// === Dataloader Methods ===

func (s *Store) GetRestaurantsByIDs(ctx context.Context, ids []string) (map[string]*domain.Restaurant, error) {
	var restaurants []*domain.Restaurant
	// Загружаем все рестораны одним запросом
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&restaurants).Error; err != nil {
		return nil, err
	}
	result := make(map[string]*domain.Restaurant, len(restaurants))
	for _, r := range restaurants {
		result[r.ID] = r
	}
	return result, nil
}

func (s *Store) GetRatingStatsByRestaurantIDs(ctx context.Context, ids []string) (map[string]domain.RatingStats, error) {
	type row struct {
		RestaurantID string
		Count        int
		Total        int
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&domain.Review{}).
		Select("restaurant_id, COUNT(*) AS count, COALESCE(SUM(rating), 0) AS total").
		Where("restaurant_id IN ?", ids).
		Group("restaurant_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]domain.RatingStats, len(ids))
	for _, id := range ids {
		result[id] = domain.RatingStats{}
	}
	for _, r := range rows {
		result[r.RestaurantID] = domain.RatingStats{Count: r.Count, Sum: r.Total}
	}
	return result, nil
}
