package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Метки халяль-статуса, которые встречаются в каталоге.
const (
	HalalCertified   = "Certified Halal"
	HalalStandard    = "Halal"
	HalalFriendly    = "Halal-Friendly"
	HalalMuslimOwned = "Muslim Owned"
	DefaultCommenter = "Anonymous"
	MaxReviewComment = 500
	MinRating        = 1
	MaxRating        = 5
)

// Restaurant представляет ресторан в каталоге.
type Restaurant struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Description string    `json:"description" gorm:"type:text"`
	Address     string    `json:"address" gorm:"type:varchar(255)"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Cuisine     string    `json:"cuisine" gorm:"type:varchar(100)"`
	HalalStatus string    `json:"halal_status" gorm:"type:varchar(100)"`
	ImageURL    string    `json:"image_url" gorm:"type:varchar(255)"`
	CreatedAt   time.Time `json:"-" gorm:"not null;index"`
	Reviews     []*Review `json:"-" gorm:"foreignKey:RestaurantID"` // gorm only
}

func (r *Restaurant) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Review - анонимный отзыв. После создания не меняется.
type Review struct {
	ID           string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	RestaurantID string    `json:"restaurant_id" gorm:"type:varchar(36);not null;index"`
	Rating       int       `json:"rating" gorm:"not null"`
	Comment      *string   `json:"comment"`
	Date         time.Time `json:"date" gorm:"column:reviewed_at;not null;index"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Content - пост ленты. Принадлежит либо ресторану, либо автору (CreatorName).
type Content struct {
	ID            string            `json:"id" gorm:"type:varchar(36);primaryKey"`
	RestaurantID  *string           `json:"restaurant_id" gorm:"type:varchar(36);index"`
	CreatorName   *string           `json:"creator_name" gorm:"type:varchar(255)"`
	IsSponsored   bool              `json:"is_sponsored" gorm:"not null;default:false"`
	Title         string            `json:"title" gorm:"type:varchar(255)"`
	Description   string            `json:"description" gorm:"type:text"`
	ImageURL      string            `json:"image_url" gorm:"type:varchar(255)"`
	VideoURL      *string           `json:"video_url" gorm:"type:varchar(255)"`
	LikesCount    int               `json:"likes_count" gorm:"not null;default:0"`
	CommentsCount int               `json:"comments_count" gorm:"not null;default:0"`
	SharesCount   int               `json:"shares_count" gorm:"not null;default:0"`
	SavesCount    int               `json:"saves_count" gorm:"not null;default:0"`
	OrderURL      *string           `json:"order_url" gorm:"type:varchar(255)"`
	CreatedAt     time.Time         `json:"created_at" gorm:"not null;index"`
	Comments      []*ContentComment `json:"-" gorm:"foreignKey:ContentID"` // gorm only
}

func (c *Content) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// ContentComment - комментарий к посту ленты. Только добавление.
type ContentComment struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	ContentID   string    `json:"content_id" gorm:"type:varchar(36);not null;index"`
	Username    string    `json:"username" gorm:"type:varchar(100);not null"`
	CommentText string    `json:"comment_text" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;index"`
}

func (c *ContentComment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// RatingStats - агрегат оценок ресторана. Не хранится, считается по отзывам.
type RatingStats struct {
	Count int `json:"review_count"`
	Sum   int `json:"-"`
}

// Mean возвращает среднюю оценку без округления, nil если отзывов нет.
func (s RatingStats) Mean() *float64 {
	if s.Count == 0 {
		return nil
	}
	m := float64(s.Sum) / float64(s.Count)
	return &m
}

// Average возвращает среднюю оценку, округлённую до одного знака.
// Половины округляются к четному: 3.25 -> 3.2.
func (s RatingStats) Average() *float64 {
	m := s.Mean()
	if m == nil {
		return nil
	}
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(*m, 'f', 1, 64), 64)
	if err != nil {
		return m
	}
	return &rounded
}
