package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"reflect"
	"strings"

	"github.com/UkralStul/halalyelp-service/internal/domain"
	"github.com/UkralStul/halalyelp-service/internal/media"
	"github.com/UkralStul/halalyelp-service/internal/storage"
	"github.com/go-playground/validator/v10"
)

// Действия для like/save. Любое другое значение счетчик не меняет.
const (
	ActionLike   = "like"
	ActionUnlike = "unlike"
	ActionSave   = "save"
	ActionUnsave = "unsave"
)

const maxUsername = 100

// Publisher получает события об изменении счетчиков.
type Publisher interface {
	Publish(ev domain.EngagementEvent)
}

// NewContent - данные для создания поста.
type NewContent struct {
	RestaurantID *string `json:"restaurant_id"`
	CreatorName  *string `json:"creator_name" validate:"omitempty,max=255"`
	IsSponsored  bool    `json:"is_sponsored"`
	Title        string  `json:"title" validate:"required,max=255"`
	Description  string  `json:"description"`
	ImageURL     string  `json:"image_url" validate:"omitempty,url,max=255"`
	VideoURL     *string `json:"video_url" validate:"omitempty,url,max=255"`
	OrderURL     *string `json:"order_url" validate:"omitempty,max=255"`
}

// CommentInput - тело запроса на комментарий.
type CommentInput struct {
	CommentText string `json:"comment_text"`
	Username    string `json:"username"`
}

type commentFields struct {
	Username string `validate:"max=100"`
}

// OrderLink - куда отправить пользователя для заказа.
type OrderLink struct {
	RestaurantID   string `json:"restaurant_id"`
	RestaurantName string `json:"restaurant_name"`
	OrderURL       string `json:"order_url"`
}

// Service управляет лентой и счетчиками вовлеченности.
type Service struct {
	store     storage.Storage
	publisher Publisher
	uploader  media.Uploader
	validate  *validator.Validate
}

// NewService - конструктор. publisher может быть nil.
func NewService(store storage.Storage, publisher Publisher) *Service {
	v := validator.New()
	// В сообщениях об ошибках используем имена полей из JSON
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &Service{store: store, publisher: publisher, validate: v}
}

// WithUploader подключает хранилище медиафайлов.
func (s *Service) WithUploader(u media.Uploader) *Service {
	s.uploader = u
	return s
}

// List возвращает посты, новые первыми.
func (s *Service) List(ctx context.Context) ([]*domain.Content, error) {
	contents, err := s.store.ListContent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	return contents, nil
}

// Create проверяет и сохраняет новый пост.
func (s *Service) Create(ctx context.Context, in NewContent) (*domain.Content, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := s.validate.Struct(in); err != nil {
		return nil, toValidationError(err)
	}
	if in.RestaurantID != nil && *in.RestaurantID == "" {
		in.RestaurantID = nil
	}
	if in.RestaurantID == nil && (in.CreatorName == nil || strings.TrimSpace(*in.CreatorName) == "") {
		return nil, domain.NewValidationError("creator_name", "content needs a restaurant_id or a creator_name")
	}
	if in.RestaurantID != nil {
		if _, err := s.store.GetRestaurantByID(ctx, *in.RestaurantID); err != nil {
			return nil, err
		}
	}

	return s.store.CreateContent(ctx, &domain.Content{
		RestaurantID: in.RestaurantID,
		CreatorName:  in.CreatorName,
		IsSponsored:  in.IsSponsored,
		Title:        in.Title,
		Description:  in.Description,
		ImageURL:     in.ImageURL,
		VideoURL:     in.VideoURL,
		OrderURL:     in.OrderURL,
	})
}

// Like: "like" +1, "unlike" -1 (не ниже нуля), иначе без изменений.
func (s *Service) Like(ctx context.Context, contentID, action string) (int, error) {
	delta := 0
	switch action {
	case ActionLike:
		delta = 1
	case ActionUnlike:
		delta = -1
	}
	return s.adjust(ctx, contentID, domain.CounterLikes, delta)
}

// Save: "save" +1, "unsave" -1 (не ниже нуля), иначе без изменений.
func (s *Service) Save(ctx context.Context, contentID, action string) (int, error) {
	delta := 0
	switch action {
	case ActionSave:
		delta = 1
	case ActionUnsave:
		delta = -1
	}
	return s.adjust(ctx, contentID, domain.CounterSaves, delta)
}

// Share всегда увеличивает shares_count.
func (s *Service) Share(ctx context.Context, contentID string) (int, error) {
	return s.adjust(ctx, contentID, domain.CounterShares, 1)
}

func (s *Service) adjust(ctx context.Context, contentID string, counter domain.Counter, delta int) (int, error) {
	if delta == 0 {
		content, err := s.store.GetContentByID(ctx, contentID)
		if err != nil {
			return 0, err
		}
		return content.Value(counter), nil
	}

	content, err := s.store.AdjustCounter(ctx, contentID, counter, delta)
	if err != nil {
		return 0, err
	}
	value := content.Value(counter)
	s.publish(contentID, counter, value)
	return value, nil
}

// Comment добавляет комментарий и возвращает новое значение comments_count.
func (s *Service) Comment(ctx context.Context, contentID string, in CommentInput) (*domain.ContentComment, int, error) {
	if _, err := s.store.GetContentByID(ctx, contentID); err != nil {
		return nil, 0, err
	}

	text := strings.TrimSpace(in.CommentText)
	if text == "" {
		return nil, 0, domain.NewValidationError("comment_text", "Comment text is required")
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		username = domain.DefaultCommenter
	}
	if err := s.validate.Struct(commentFields{Username: username}); err != nil {
		return nil, 0, domain.NewValidationError("username", "Username too long (max %d characters)", maxUsername)
	}

	comment, count, err := s.store.CreateComment(ctx, &domain.ContentComment{
		ContentID:   contentID,
		Username:    username,
		CommentText: text,
	})
	if err != nil {
		return nil, 0, err
	}
	s.publish(contentID, domain.CounterComments, count)
	return comment, count, nil
}

// Comments возвращает комментарии поста, новые первыми.
func (s *Service) Comments(ctx context.Context, contentID string) ([]*domain.ContentComment, error) {
	if _, err := s.store.GetContentByID(ctx, contentID); err != nil {
		return nil, err
	}
	comments, err := s.store.GetCommentsByContentID(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	return comments, nil
}

// Order возвращает ссылку на заказ в ресторане поста.
func (s *Service) Order(ctx context.Context, contentID string) (*OrderLink, error) {
	content, err := s.store.GetContentByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if content.RestaurantID == nil {
		return nil, domain.NewValidationError("restaurant_id", "No restaurant associated")
	}
	rest, err := s.store.GetRestaurantByID(ctx, *content.RestaurantID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewValidationError("restaurant_id", "No restaurant associated")
	}
	if err != nil {
		return nil, err
	}

	link := &OrderLink{
		RestaurantID:   rest.ID,
		RestaurantName: rest.Name,
		OrderURL:       "/restaurants/" + rest.ID,
	}
	if content.OrderURL != nil && *content.OrderURL != "" {
		link.OrderURL = *content.OrderURL
	}
	return link, nil
}

// AttachMedia загружает файл и прописывает его в image_url или video_url поста.
func (s *Service) AttachMedia(ctx context.Context, contentID, filename string, r io.Reader, size int64, contentType string) (*domain.Content, error) {
	if s.uploader == nil {
		return nil, media.ErrNotConfigured
	}
	if _, err := s.store.GetContentByID(ctx, contentID); err != nil {
		return nil, err
	}

	isVideo := media.IsVideo(contentType)
	if !isVideo && !media.IsImage(contentType) {
		return nil, domain.NewValidationError("file", "unsupported media type %q", contentType)
	}

	url, err := s.uploader.Upload(ctx, filename, r, size, contentType)
	if err != nil {
		return nil, err
	}
	log.Printf("uploaded media for content %s: %s", contentID, url)

	if isVideo {
		return s.store.UpdateContentMedia(ctx, contentID, "", &url)
	}
	return s.store.UpdateContentMedia(ctx, contentID, url, nil)
}

func (s *Service) publish(contentID string, counter domain.Counter, value int) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(domain.EngagementEvent{ContentID: contentID, Counter: counter, Value: value})
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(fe.Field(), "%s is required", fe.Field())
	case "max":
		return domain.NewValidationError(fe.Field(), "%s is too long (max %s characters)", fe.Field(), fe.Param())
	case "url":
		return domain.NewValidationError(fe.Field(), "%s must be a valid URL", fe.Field())
	}
	return domain.NewValidationError(fe.Field(), "%s is invalid", fe.Field())
}
