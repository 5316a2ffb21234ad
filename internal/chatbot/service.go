package chatbot

import (
	"context"
	"strings"

	"github.com/UkralStul/halalyelp-service/internal/restaurants"
	"github.com/UkralStul/halalyelp-service/internal/storage"
)

// Matcher ищет рестораны по фильтру и минимальному рейтингу.
type Matcher interface {
	Match(ctx context.Context, filter storage.RestaurantFilter, ratingMin *float64) ([]restaurants.Summary, error)
}

// Service - чат-бот: сообщение -> критерии -> поиск -> ответ.
type Service struct {
	matcher Matcher
}

func NewService(matcher Matcher) *Service {
	return &Service{matcher: matcher}
}

// Reply отвечает на сообщение пользователя.
func (s *Service) Reply(ctx context.Context, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return textReply(emptyMessage), nil
	}
	// Приветствия сравниваются целиком: "hello there" идет в обычный разбор
	if greetings[strings.ToLower(message)] {
		return textReply(helpMessage), nil
	}

	criteria := Parse(message)
	matches, err := s.matcher.Match(ctx, criteria.Filter(), criteria.RatingMin)
	if err != nil {
		return Reply{}, err
	}
	return Generate(matches, criteria), nil
}

// Welcome - данные для страницы чат-бота.
func Welcome() map[string]any {
	return map[string]any{
		"message": helpMessage,
		"examples": []string{
			"I'm craving chicken",
			"Find Middle Eastern restaurants",
			"Show me certified halal places",
			"Recommend a good Pakistani restaurant",
			"Show me top rated halal restaurants",
		},
	}
}
