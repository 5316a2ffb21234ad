package live

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	pingInterval = 10 * time.Second
	writeTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeHTTP отдает поток событий счетчиков по websocket.
// Параметр content_id ограничивает поток одним постом.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	contentID := r.URL.Query().Get("content_id")

	// Подписываемся до апгрейда, чтобы не потерять события сразу после рукопожатия
	subID, events := h.Subscribe(contentID)
	defer h.Unsubscribe(contentID, subID)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Читаем входящие кадры только чтобы заметить отключение клиента
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
