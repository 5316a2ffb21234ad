package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter увеличивает счетчик ключа в окне фиксированной длины.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisCounter реализует Counter через MULTI/INCR/EXPIRE NX.
type RedisCounter struct {
	client *redis.Client
}

// NewRedisCounter подключается к Redis и проверяет соединение.
func NewRedisCounter(ctx context.Context, addr, password string) (*RedisCounter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisCounter{client: client}, nil
}

func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	// INCR и EXPIRE NX уходят одной транзакцией: ключ не останется без TTL,
	// а TTL ставится только при открытии окна
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (c *RedisCounter) Close() error {
	return c.client.Close()
}

// Limiter - middleware, ограничивающее число запросов с одного IP.
type Limiter struct {
	counter Counter
	prefix  string
	limit   int64
	window  time.Duration
}

// New создает лимитер. При counter == nil ограничение отключено.
func New(counter Counter, prefix string, limit int, window time.Duration) *Limiter {
	return &Limiter{counter: counter, prefix: prefix, limit: int64(limit), window: window}
}

// Handler оборачивает next проверкой лимита.
func (l *Limiter) Handler(next http.Handler) http.Handler {
	if l.counter == nil || l.limit <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := l.prefix + ":" + clientIP(r)
		n, err := l.counter.Incr(r.Context(), key, l.window)
		if err != nil {
			// Redis недоступен: пропускаем запрос
			log.Printf("rate limiter: %v", err)
			next.ServeHTTP(w, r)
			return
		}

		remaining := l.limit - n
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(l.limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if n > l.limit {
			retry := int(l.window.Seconds())
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]any{
				"error":       "Too many messages. Please slow down and try again shortly.",
				"retry_after": retry,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP берет адрес только из RemoteAddr. X-Forwarded-For и X-Real-IP
// клиент может подделать, поэтому они учитываются лишь при TRUST_PROXY,
// когда middleware.RealIP переписывает RemoteAddr до лимитера.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
