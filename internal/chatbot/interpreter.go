package chatbot

import (
	"strings"
	"unicode/utf8"

	"github.com/UkralStul/halalyelp-service/internal/domain"
	"github.com/UkralStul/halalyelp-service/internal/storage"
)

// Intent - намерение пользователя.
type Intent string

const (
	IntentSearch    Intent = "search"
	IntentRecommend Intent = "recommend"
	IntentQuestion  Intent = "question"
	IntentCraving   Intent = "craving"
)

const trailingPunct = ".,!?"

// Criteria - структурированные критерии поиска, извлеченные из сообщения.
// Location извлекается, но в поиске не используется.
type Criteria struct {
	Keywords    []string `json:"keywords"`
	Cuisine     string   `json:"cuisine,omitempty"`
	HalalStatus string   `json:"halal_status,omitempty"`
	RatingMin   *float64 `json:"rating_min,omitempty"`
	Location    string   `json:"location,omitempty"`
	Intent      Intent   `json:"intent"`
	FoodItems   []string `json:"food_items"`
}

// Filter переводит критерии в фильтр хранилища.
func (c Criteria) Filter() storage.RestaurantFilter {
	return storage.RestaurantFilter{
		Cuisine:     c.Cuisine,
		HalalStatus: c.HalalStatus,
		Keywords:    c.Keywords,
	}
}

// Parse разбирает сообщение цепочкой фиксированных правил.
func Parse(query string) Criteria {
	text := strings.ToLower(query)
	c := Criteria{
		Keywords:  []string{},
		FoodItems: []string{},
		Intent:    IntentSearch,
	}

	if food := detectCraving(text); food != "" {
		c.Intent = IntentCraving
		c.FoodItems = append(c.FoodItems, food)
		c.Keywords = append(c.Keywords, expandFood(food)...)
	}

	c.Cuisine = firstContained(text, cuisines)

	// "halal" проверяется раньше "halal-friendly", поэтому последняя ветка недостижима
	switch {
	case strings.Contains(text, "certified halal") || strings.Contains(text, "certified"):
		c.HalalStatus = domain.HalalCertified
	case strings.Contains(text, "halal"):
		c.HalalStatus = domain.HalalStandard
	case strings.Contains(text, "halal-friendly"):
		c.HalalStatus = domain.HalalFriendly
	}

	for _, rp := range ratingPhrases {
		if strings.Contains(text, rp.phrase) {
			threshold := rp.min
			c.RatingMin = &threshold
			break
		}
	}

	c.Location = firstContained(text, locations)

	if c.Intent != IntentCraving {
		if firstContained(text, recommendWords) != "" {
			c.Intent = IntentRecommend
		} else if firstContained(text, questionWords) != "" {
			c.Intent = IntentQuestion
		}
	}

	for _, raw := range strings.Fields(text) {
		// Стоп-слова и длина проверяются до обрезки пунктуации
		if stopWords[raw] || utf8.RuneCountInString(raw) <= 2 {
			continue
		}
		word := strings.TrimRight(raw, trailingPunct)
		if contains(c.Keywords, word) {
			continue
		}
		if isFoodWord(word) {
			c.FoodItems = append(c.FoodItems, word)
			c.Keywords = append(c.Keywords, expandFood(word)...)
		} else {
			c.Keywords = append(c.Keywords, word)
		}
	}

	c.Keywords = dedupe(c.Keywords)
	c.FoodItems = dedupe(c.FoodItems)
	return c
}

// detectCraving возвращает первое слово после первой найденной фразы желания.
func detectCraving(text string) string {
	for _, phrase := range cravingPhrases {
		idx := strings.Index(text, phrase)
		if idx < 0 {
			continue
		}
		words := strings.Fields(text[idx+len(phrase):])
		if len(words) == 0 {
			continue
		}
		return strings.TrimRight(words[0], trailingPunct)
	}
	return ""
}

// expandFood превращает блюдо в список поисковых терминов.
func expandFood(food string) []string {
	word := strings.ToLower(food)
	for _, e := range foodTable {
		if e.name == word {
			return append([]string(nil), e.terms...)
		}
	}
	for _, e := range foodTable {
		for _, term := range e.terms {
			if term == word || strings.Contains(word, term) {
				return append([]string(nil), e.terms...)
			}
		}
	}
	return []string{food, food + "s", food + "es"}
}

func isFoodWord(word string) bool {
	for _, e := range foodTable {
		if e.name == word || contains(e.terms, word) {
			return true
		}
	}
	return false
}

func firstContained(text string, candidates []string) string {
	for _, c := range candidates {
		if strings.Contains(text, c) {
			return c
		}
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func dedupe(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, v := range list {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
