package httpapi

import (
	"log"
	"net/http"

	"github.com/gorilla/sessions"
)

const sessionName = "halalyelp"

// Категории flash-сообщений.
const (
	flashError   = "error"
	flashSuccess = "success"
)

// NewSessionStore создает cookie-хранилище сессий для flash-сообщений.
func NewSessionStore(secret string) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// addFlash сохраняет сообщение в сессию до следующего запроса.
func (h *handler) addFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	session, err := h.Sessions.Get(r, sessionName)
	if err != nil {
		// Поврежденная cookie: Get все равно вернул новую сессию
		log.Printf("session decode failed: %v", err)
	}
	session.AddFlash(message, category)
	if err := session.Save(r, w); err != nil {
		log.Printf("failed to save session: %v", err)
	}
}

// popFlashes забирает накопленные сообщения по категориям и очищает их.
func (h *handler) popFlashes(w http.ResponseWriter, r *http.Request) map[string][]string {
	out := map[string][]string{}
	session, err := h.Sessions.Get(r, sessionName)
	if err != nil {
		return out
	}

	found := false
	for _, category := range []string{flashError, flashSuccess} {
		for _, f := range session.Flashes(category) {
			if msg, ok := f.(string); ok {
				out[category] = append(out[category], msg)
				found = true
			}
		}
	}
	if found {
		if err := session.Save(r, w); err != nil {
			log.Printf("failed to save session: %v", err)
		}
	}
	return out
}
