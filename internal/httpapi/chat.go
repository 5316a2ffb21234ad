package httpapi

import (
	"net/http"

	"github.com/UkralStul/halalyelp-service/internal/chatbot"
)

type chatRequest struct {
	Message string `json:"message"`
}

func (h *handler) chatbotPage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, chatbot.Welcome())
}

func (h *handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	reply, err := h.Chat.Reply(r.Context(), req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}
