package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/UkralStul/halalyelp-service/internal/dataloader"
	"github.com/UkralStul/halalyelp-service/internal/domain"
	"github.com/UkralStul/halalyelp-service/internal/feed"
	"github.com/UkralStul/halalyelp-service/internal/restaurants"
	"github.com/go-chi/chi/v5"
)

// maxUploadSize ограничивает размер загружаемого файла.
const maxUploadSize = 50 << 20

// feedItem - пост ленты с прикрепленным рестораном.
type feedItem struct {
	*domain.Content
	Restaurant *restaurants.Summary `json:"restaurant"`
}

type actionRequest struct {
	Action string `json:"action"`
}

func (h *handler) listContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	contents, err := h.Feed.List(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := attachRestaurants(ctx, contents)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// attachRestaurants подгружает рестораны и рейтинги через лоадеры.
// Все ключи ставятся в очередь до ожидания, поэтому уходят одним батчем.
func attachRestaurants(ctx context.Context, contents []*domain.Content) ([]feedItem, error) {
	loaders := dataloader.For(ctx)

	type pending struct {
		restaurant func() (*domain.Restaurant, error)
		ratings    func() (domain.RatingStats, error)
	}
	waits := make([]*pending, len(contents))
	for i, c := range contents {
		if c.RestaurantID == nil {
			continue
		}
		waits[i] = &pending{
			restaurant: loaders.Restaurant(ctx, *c.RestaurantID),
			ratings:    loaders.Ratings(ctx, *c.RestaurantID),
		}
	}

	items := make([]feedItem, len(contents))
	for i, c := range contents {
		items[i] = feedItem{Content: c}
		if waits[i] == nil {
			continue
		}
		rest, err := waits[i].restaurant()
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		stats, err := waits[i].ratings()
		if err != nil {
			return nil, err
		}
		summary := restaurants.NewSummary(rest, stats)
		items[i].Restaurant = &summary
	}
	return items, nil
}

func (h *handler) createContent(w http.ResponseWriter, r *http.Request) {
	var in feed.NewContent
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	content, err := h.Feed.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "content": content})
}

func (h *handler) uploadMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, r, domain.NewValidationError("file", "invalid upload: %v", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, domain.NewValidationError("file", "file is required"))
		return
	}
	defer file.Close()

	content, err := h.Feed.AttachMedia(r.Context(), chi.URLParam(r, "id"),
		header.Filename, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "content": content})
}

func (h *handler) likeContent(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	count, err := h.Feed.Like(r.Context(), chi.URLParam(r, "id"), req.Action)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "likes_count": count})
}

func (h *handler) saveContent(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	count, err := h.Feed.Save(r.Context(), chi.URLParam(r, "id"), req.Action)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "saves_count": count})
}

func (h *handler) shareContent(w http.ResponseWriter, r *http.Request) {
	count, err := h.Feed.Share(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "shares_count": count})
}

func (h *handler) commentContent(w http.ResponseWriter, r *http.Request) {
	var in feed.CommentInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	comment, count, err := h.Feed.Comment(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"comment":        comment,
		"comments_count": count,
	})
}

func (h *handler) listComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.Feed.Comments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *handler) orderContent(w http.ResponseWriter, r *http.Request) {
	link, err := h.Feed.Order(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.Printf("order redirect for content %s to %s", chi.URLParam(r, "id"), link.OrderURL)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"restaurant_id":   link.RestaurantID,
		"restaurant_name": link.RestaurantName,
		"order_url":       link.OrderURL,
	})
}
