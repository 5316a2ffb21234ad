package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/UkralStul/halalyelp-service/internal/domain"
	"github.com/UkralStul/halalyelp-service/internal/media"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

// writeError переводит доменную ошибку в HTTP-статус.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		message = verr.Message
	case errors.Is(err, media.ErrNotConfigured):
		status = http.StatusServiceUnavailable
	default:
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}

	writeJSON(w, status, map[string]any{"success": false, "error": message})
}

// decodeJSON читает тело запроса. Пустое тело не считается ошибкой.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return domain.NewValidationError("body", "invalid JSON body: %v", err)
}
