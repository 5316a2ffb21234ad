package httpapi

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/UkralStul/halalyelp-service/internal/domain"
	"github.com/UkralStul/halalyelp-service/internal/restaurants"
	"github.com/go-chi/chi/v5"
)

func (h *handler) listRestaurants(w http.ResponseWriter, r *http.Request) {
	list, err := h.Restaurants.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"restaurants": list})
}

func (h *handler) searchRestaurants(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	list, err := h.Restaurants.SearchByName(r.Context(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": query, "restaurants": list})
}

func (h *handler) restaurantMap(w http.ResponseWriter, r *http.Request) {
	markers, err := h.Restaurants.Markers(r.Context(), r.URL.Query().Get("near"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"restaurants": markers})
}

func (h *handler) restaurantDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Restaurants.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	// Flash читаем до записи тела: Save выставляет cookie в заголовках
	flashes := h.popFlashes(w, r)
	writeJSON(w, http.StatusOK, map[string]any{
		"restaurant":   detail.Restaurant,
		"avg_rating":   detail.AvgRating,
		"review_count": detail.ReviewCount,
		"reviews":      detail.Reviews,
		"flashes":      flashes,
	})
}

// addReview принимает форму отзыва и всегда отвечает редиректом с flash-сообщением.
func (h *handler) addReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	target := "/restaurants/" + id

	form := restaurants.ReviewForm{
		Rating:  r.FormValue("rating"),
		Comment: r.FormValue("comment"),
	}
	_, err := h.Restaurants.AddReview(r.Context(), id, form)

	var verr *domain.ValidationError
	switch {
	case err == nil:
		h.addFlash(w, r, flashSuccess, "Review added successfully!")
	case errors.Is(err, domain.ErrNotFound):
		h.addFlash(w, r, flashError, "Restaurant not found.")
		target = "/restaurants"
	case errors.As(err, &verr):
		h.addFlash(w, r, flashError, verr.Message)
	default:
		log.Printf("failed to save review for %s: %v", id, err)
		h.addFlash(w, r, flashError, fmt.Sprintf("Error saving review: %v", err))
	}

	http.Redirect(w, r, target, http.StatusFound)
}
