package live

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/UkralStul/halalyelp-service/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan domain.EngagementEvent) domain.EngagementEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return domain.EngagementEvent{}
}

func TestHub_DeliversToContentAndGlobalSubscribers(t *testing.T) {
	hub := NewHub()
	subA, chA := hub.Subscribe("content-a")
	_, chAll := hub.Subscribe(AllContent)
	_, chB := hub.Subscribe("content-b")
	assert.Equal(t, 3, hub.Subscribers())

	ev := domain.EngagementEvent{ContentID: "content-a", Counter: domain.CounterLikes, Value: 6}
	hub.Publish(ev)

	assert.Equal(t, ev, receive(t, chA))
	assert.Equal(t, ev, receive(t, chAll))
	select {
	case got := <-chB:
		t.Fatalf("unexpected event for content-b: %+v", got)
	default:
	}

	hub.Unsubscribe("content-a", subA)
	_, ok := <-chA
	assert.False(t, ok)
	assert.Equal(t, 2, hub.Subscribers())
}

func TestHub_PublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	hub := NewHub()
	_, _ = hub.Subscribe("content-a")

	done := make(chan struct{})
	go func() {
		for i := 0; i < bufferSize*4; i++ {
			hub.Publish(domain.EngagementEvent{ContentID: "content-a", Counter: domain.CounterShares, Value: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
}

func TestHub_WebSocketStream(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?content_id=content-a"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Подписка создается до апгрейда, так что к этому моменту она уже есть
	require.Equal(t, 1, hub.Subscribers())

	hub.Publish(domain.EngagementEvent{ContentID: "content-b", Counter: domain.CounterLikes, Value: 1})
	hub.Publish(domain.EngagementEvent{ContentID: "content-a", Counter: domain.CounterComments, Value: 3})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got domain.EngagementEvent
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, domain.EngagementEvent{ContentID: "content-a", Counter: domain.CounterComments, Value: 3}, got)
}
