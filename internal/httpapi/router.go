package httpapi

import (
	"net/http"
	"time"

	"github.com/UkralStul/halalyelp-service/internal/chatbot"
	"github.com/UkralStul/halalyelp-service/internal/dataloader"
	"github.com/UkralStul/halalyelp-service/internal/feed"
	"github.com/UkralStul/halalyelp-service/internal/live"
	"github.com/UkralStul/halalyelp-service/internal/ratelimit"
	"github.com/UkralStul/halalyelp-service/internal/restaurants"
	"github.com/UkralStul/halalyelp-service/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/sessions"
)

// Deps - зависимости HTTP-слоя.
type Deps struct {
	Store       storage.Storage
	Restaurants *restaurants.Service
	Feed        *feed.Service
	Chat        *chatbot.Service
	Hub         *live.Hub
	Sessions    sessions.Store
	// ChatLimiter может быть nil, тогда чат не ограничивается.
	ChatLimiter *ratelimit.Limiter
	CORSOrigins []string
	// TrustProxy включает middleware.RealIP. Только за своим прокси,
	// иначе клиент подменит адрес через X-Forwarded-For.
	TrustProxy  bool
}

type handler struct {
	Deps
}

// NewRouter собирает chi-роутер со всеми маршрутами сервиса.
func NewRouter(deps Deps) http.Handler {
	h := &handler{Deps: deps}
	if h.ChatLimiter == nil {
		h.ChatLimiter = ratelimit.New(nil, "", 0, 0)
	}
	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := chi.NewRouter()
	if deps.TrustProxy {
		router.Use(middleware.RealIP)
	}
	router.Use(middleware.Logger)
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           int((12 * time.Hour).Seconds()),
	}))

	router.Get("/health", h.health)

	router.Get("/", h.listRestaurants)
	router.Route("/restaurants", func(r chi.Router) {
		r.Get("/", h.listRestaurants)
		r.Get("/search", h.searchRestaurants)
		r.Get("/map", h.restaurantMap)
		r.Get("/{id}", h.restaurantDetail)
		r.Post("/{id}/reviews/add", h.addReview)
	})

	// Лента: лоадеры батчат загрузку ресторанов и рейтингов к постам
	withLoaders := func(next http.Handler) http.Handler {
		return dataloader.Middleware(deps.Store, next)
	}
	router.With(withLoaders).Get("/fyp", h.listContent)
	router.Route("/api/fyp", func(r chi.Router) {
		r.With(withLoaders).Get("/content", h.listContent)
		r.Post("/content", h.createContent)
		r.Post("/content/{id}/media", h.uploadMedia)
		r.Post("/content/{id}/like", h.likeContent)
		r.Post("/content/{id}/save", h.saveContent)
		r.Post("/content/{id}/share", h.shareContent)
		r.Post("/content/{id}/comment", h.commentContent)
		r.Get("/content/{id}/comments", h.listComments)
		r.Post("/content/{id}/order", h.orderContent)
		r.Handle("/ws", deps.Hub)
	})

	router.Get("/chatbot", h.chatbotPage)
	router.With(h.ChatLimiter.Handler).Post("/api/chat", h.chat)

	return router
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
