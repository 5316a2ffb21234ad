package live

import (
	"sync"

	"github.com/UkralStul/halalyelp-service/internal/domain"
	"github.com/google/uuid"
)

// AllContent - ключ подписки на события всех постов.
const AllContent = ""

const bufferSize = 16

// Hub хранит каналы подписчиков на изменения счетчиков.
type Hub struct {
	mu sync.RWMutex
	//   map[contentID] map[subscriberID] channel
	subs map[string]map[string]chan domain.EngagementEvent
}

// NewHub - конструктор хаба.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[string]chan domain.EngagementEvent),
	}
}

// Subscribe подписывает на события поста (или всех постов для AllContent).
func (h *Hub) Subscribe(contentID string) (string, <-chan domain.EngagementEvent) {
	ch := make(chan domain.EngagementEvent, bufferSize)
	subID := uuid.NewString()

	h.mu.Lock()
	if h.subs[contentID] == nil {
		h.subs[contentID] = make(map[string]chan domain.EngagementEvent)
	}
	h.subs[contentID][subID] = ch
	h.mu.Unlock()

	return subID, ch
}

// Unsubscribe удаляет подписку и закрывает ее канал.
func (h *Hub) Unsubscribe(contentID, subID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	contentSubs, ok := h.subs[contentID]
	if !ok {
		return
	}
	if ch, ok := contentSubs[subID]; ok {
		close(ch)
		delete(contentSubs, subID)
	}
	if len(contentSubs) == 0 {
		delete(h.subs, contentID)
	}
}

// Publish рассылает событие подписчикам поста и подписчикам всех постов.
// Не блокируется: если клиент не успевает читать, событие для него пропускается.
func (h *Hub) Publish(ev domain.EngagementEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, key := range []string{ev.ContentID, AllContent} {
		for _, ch := range h.subs[key] {
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// Subscribers возвращает число активных подписок.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, contentSubs := range h.subs {
		n += len(contentSubs)
	}
	return n
}
