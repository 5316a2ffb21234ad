package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/UkralStul/halalyelp-service/internal/chatbot"
	"github.com/UkralStul/halalyelp-service/internal/domain"
	"github.com/UkralStul/halalyelp-service/internal/feed"
	"github.com/UkralStul/halalyelp-service/internal/live"
	"github.com/UkralStul/halalyelp-service/internal/ratelimit"
	"github.com/UkralStul/halalyelp-service/internal/restaurants"
	"github.com/UkralStul/halalyelp-service/internal/storage/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	server     *httptest.Server
	client     *http.Client
	store      *inmemory.Store
	restaurant *domain.Restaurant
	content    *domain.Content
	creator    *domain.Content
}

// newFixture поднимает сервер на in-memory хранилище с рестораном и двумя постами
func newFixture(t *testing.T, opts ...func(*Deps)) *fixture {
	store := inmemory.New()
	ctx := context.Background()

	rest, err := store.CreateRestaurant(ctx, &domain.Restaurant{
		Name: "The Halal Guys", Cuisine: "Middle Eastern", HalalStatus: domain.HalalCertified,
		Description: "Gyro platters and chicken over rice.", Latitude: 40.002599, Longitude: -75.225074,
	})
	require.NoError(t, err)
	_, err = store.CreateReview(ctx, &domain.Review{RestaurantID: rest.ID, Rating: 5})
	require.NoError(t, err)
	_, err = store.CreateReview(ctx, &domain.Review{RestaurantID: rest.ID, Rating: 4})
	require.NoError(t, err)

	content, err := store.CreateContent(ctx, &domain.Content{Title: "Platter", RestaurantID: &rest.ID, LikesCount: 5})
	require.NoError(t, err)
	name := "phillyfoodie"
	creator, err := store.CreateContent(ctx, &domain.Content{Title: "Late night", CreatorName: &name})
	require.NoError(t, err)

	hub := live.NewHub()
	restaurantService := restaurants.NewService(store)
	deps := Deps{
		Store:       store,
		Restaurants: restaurantService,
		Feed:        feed.NewService(store, hub),
		Chat:        chatbot.NewService(restaurantService),
		Hub:         hub,
		Sessions:    NewSessionStore("test-secret"),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	router := NewRouter(deps)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		// Редиректы проверяем вручную
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &fixture{server: srv, client: client, store: store, restaurant: rest, content: content, creator: creator}
}

func (f *fixture) send(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	return resp
}

func (f *fixture) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	resp := f.send(t, method, path, body)
	defer resp.Body.Close()

	payload := map[string]any{}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	}
	return resp.StatusCode, payload
}

// getList для эндпоинтов, которые отдают голый JSON-массив
func (f *fixture) getList(t *testing.T, path string) (int, []any) {
	t.Helper()
	resp := f.send(t, http.MethodGet, path, nil)
	defer resp.Body.Close()

	var items []any
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	}
	return resp.StatusCode, items
}

func (f *fixture) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := f.client.PostForm(f.server.URL+path, form)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func TestRouter_Health(t *testing.T) {
	f := newFixture(t)
	status, body := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])
}

func TestRouter_Restaurants(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/", "/restaurants"} {
		status, body := f.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, status, path)
		list := body["restaurants"].([]any)
		require.Len(t, list, 1)
		first := list[0].(map[string]any)
		assert.Equal(t, "The Halal Guys", first["name"])
		assert.Equal(t, 4.5, first["avg_rating"])
		assert.Equal(t, float64(2), first["review_count"])
	}

	status, body := f.do(t, http.MethodGet, "/restaurants/search?query=halal", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "halal", body["query"])
	assert.Len(t, body["restaurants"], 1)

	status, body = f.do(t, http.MethodGet, "/restaurants/search", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["restaurants"])

	status, body = f.do(t, http.MethodGet, "/restaurants/map", nil)
	require.Equal(t, http.StatusOK, status)
	markers := body["restaurants"].([]any)
	require.Len(t, markers, 1)
	assert.NotEmpty(t, markers[0].(map[string]any)["geohash"])

	status, _ = f.do(t, http.MethodGet, "/restaurants/map?near=abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = f.do(t, http.MethodGet, "/restaurants/"+f.restaurant.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 4.5, body["avg_rating"])
	assert.Len(t, body["reviews"], 2)

	status, body = f.do(t, http.MethodGet, "/restaurants/missing", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
}

func TestRouter_ReviewFlashRoundTrip(t *testing.T) {
	f := newFixture(t)
	path := "/restaurants/" + f.restaurant.ID

	resp := f.postForm(t, path+"/reviews/add", url.Values{"rating": {"3"}, "comment": {"Solid"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, path, resp.Header.Get("Location"))

	status, body := f.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(3), body["review_count"])
	flashes := body["flashes"].(map[string]any)
	assert.Equal(t, []any{"Review added successfully!"}, flashes["success"])

	// Flash показывается один раз
	_, body = f.do(t, http.MethodGet, path, nil)
	assert.Empty(t, body["flashes"])

	resp = f.postForm(t, path+"/reviews/add", url.Values{"rating": {"9"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	_, body = f.do(t, http.MethodGet, path, nil)
	flashes = body["flashes"].(map[string]any)
	assert.Equal(t, []any{"Invalid rating. Please submit a number between 1 and 5."}, flashes["error"])
	assert.Equal(t, float64(3), body["review_count"])

	resp = f.postForm(t, "/restaurants/missing/reviews/add", url.Values{"rating": {"4"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/restaurants", resp.Header.Get("Location"))
}

func TestRouter_FeedList(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/fyp", "/api/fyp/content"} {
		status, items := f.getList(t, path)
		require.Equal(t, http.StatusOK, status, path)
		require.NotNil(t, items, "feed must be a bare JSON array")
		require.Len(t, items, 2)

		byTitle := map[string]map[string]any{}
		for _, item := range items {
			m := item.(map[string]any)
			byTitle[m["title"].(string)] = m
		}
		platter := byTitle["Platter"]
		require.NotNil(t, platter["restaurant"])
		rest := platter["restaurant"].(map[string]any)
		assert.Equal(t, "The Halal Guys", rest["name"])
		assert.Equal(t, 4.5, rest["avg_rating"])
		assert.Nil(t, byTitle["Late night"]["restaurant"])
	}
}

func TestRouter_Engagement(t *testing.T) {
	f := newFixture(t)
	base := "/api/fyp/content/" + f.content.ID

	status, body := f.do(t, http.MethodPost, base+"/like", map[string]string{"action": "like"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"success": true, "likes_count": float64(6)}, body)

	status, body = f.do(t, http.MethodPost, base+"/like", map[string]string{"action": "bogus"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(6), body["likes_count"])

	status, body = f.do(t, http.MethodPost, base+"/save", map[string]string{"action": "unsave"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["saves_count"])

	status, body = f.do(t, http.MethodPost, base+"/share", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["shares_count"])

	status, body = f.do(t, http.MethodPost, "/api/fyp/content/missing/like", map[string]string{"action": "like"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
}

func TestRouter_Comments(t *testing.T) {
	f := newFixture(t)
	base := "/api/fyp/content/" + f.content.ID

	status, body := f.do(t, http.MethodPost, base+"/comment", map[string]string{"comment_text": "  "})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]any{"success": false, "error": "Comment text is required"}, body)

	status, body = f.do(t, http.MethodPost, base+"/comment", map[string]string{"comment_text": "Yum"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["comments_count"])
	comment := body["comment"].(map[string]any)
	assert.Equal(t, "Anonymous", comment["username"])

	status, comments := f.getList(t, base+"/comments")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, comments, 1)
	assert.Equal(t, "Yum", comments[0].(map[string]any)["comment_text"])

	status, comments = f.getList(t, "/api/fyp/content/"+f.creator.ID+"/comments")
	require.Equal(t, http.StatusOK, status)
	assert.NotNil(t, comments)
	assert.Empty(t, comments)

	status, _ = f.do(t, http.MethodGet, "/api/fyp/content/missing/comments", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = f.do(t, http.MethodPost, "/api/fyp/content/missing/comment", map[string]string{"comment_text": "hi"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRouter_Order(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodPost, "/api/fyp/content/"+f.content.ID+"/order", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{
		"success":         true,
		"restaurant_id":   f.restaurant.ID,
		"restaurant_name": "The Halal Guys",
		"order_url":       "/restaurants/" + f.restaurant.ID,
	}, body)

	status, body = f.do(t, http.MethodPost, "/api/fyp/content/"+f.creator.ID+"/order", nil)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]any{"success": false, "error": "No restaurant associated"}, body)
}

func TestRouter_CreateContentAndMedia(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodPost, "/api/fyp/content", map[string]any{
		"title":         "Weekend special",
		"restaurant_id": f.restaurant.ID,
	})
	require.Equal(t, http.StatusCreated, status)
	created := body["content"].(map[string]any)
	assert.Equal(t, "Weekend special", created["title"])

	status, body = f.do(t, http.MethodPost, "/api/fyp/content", map[string]any{"restaurant_id": f.restaurant.ID})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "title is required", body["error"])

	// Без MinIO загрузка недоступна
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "dish.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := f.client.Post(f.server.URL+"/api/fyp/content/"+f.content.ID+"/media", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRouter_Chat(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodGet, "/chatbot", nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["examples"])

	status, body = f.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "hi"})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body["message"], "halal restaurant assistant")
	assert.Equal(t, float64(0), body["count"])

	status, body = f.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "I'm craving chicken"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])
	assert.Contains(t, body["message"], "Great choice!")

	status, body = f.do(t, http.MethodPost, "/api/chat", map[string]string{"message": ""})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body["message"], "Please ask me something!")
}

type memCounter struct {
	mu   sync.Mutex
	keys map[string]int64
}

func (c *memCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys[key]++
	return c.keys[key], nil
}

func (f *fixture) chatFrom(t *testing.T, forwardedFor string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, f.server.URL+"/api/chat", strings.NewReader(`{"message":"hi"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", forwardedFor)
	req.Header.Set("X-Real-IP", forwardedFor)
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func TestRouter_ChatLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	counter := &memCounter{keys: map[string]int64{}}
	f := newFixture(t, func(d *Deps) {
		d.ChatLimiter = ratelimit.New(counter, "chat", 1, time.Minute)
	})

	assert.Equal(t, http.StatusOK, f.chatFrom(t, "1.1.1.1").StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, f.chatFrom(t, "2.2.2.2").StatusCode)
	assert.Equal(t, map[string]int64{"chat:127.0.0.1": 2}, counter.keys)
}

func TestRouter_ChatLimitUsesForwardedForBehindTrustedProxy(t *testing.T) {
	counter := &memCounter{keys: map[string]int64{}}
	f := newFixture(t, func(d *Deps) {
		d.ChatLimiter = ratelimit.New(counter, "chat", 1, time.Minute)
		d.TrustProxy = true
	})

	assert.Equal(t, http.StatusOK, f.chatFrom(t, "1.1.1.1").StatusCode)
	assert.Equal(t, http.StatusOK, f.chatFrom(t, "2.2.2.2").StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, f.chatFrom(t, "2.2.2.2").StatusCode)
}
