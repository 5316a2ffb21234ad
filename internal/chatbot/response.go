package chatbot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/UkralStul/halalyelp-service/internal/restaurants"
)

// maxListed - сколько ресторанов перечисляется в тексте ответа.
const maxListed = 3

const (
	emptyMessage = "Please ask me something! I can help you find halal restaurants."

	helpMessage = "Hi! I'm your halal restaurant assistant. I can help you:\n\n" +
		"• Express cravings naturally (e.g., 'I'm craving steak' or 'I want chicken')\n" +
		"• Find restaurants by cuisine (e.g., 'Find Middle Eastern restaurants')\n" +
		"• Search by halal status (e.g., 'Show me certified halal places')\n" +
		"• Get recommendations (e.g., 'Recommend a good Pakistani restaurant')\n" +
		"• Find highly rated restaurants (e.g., 'Show me top rated halal restaurants')\n\n" +
		"What would you like to search for?"

	cravingMissFormat = "I couldn't find any restaurants specifically serving %s. But I can help you find:\n\n" +
		"• Restaurants by cuisine type (e.g., 'Middle Eastern', 'Pakistani')\n" +
		"• Places by food type (e.g., 'chicken', 'kabob', 'shawarma')\n" +
		"• Highly rated halal restaurants\n\n" +
		"What else would you like to try?"

	missMessage = "I couldn't find any restaurants matching your search. Try asking for:\n\n" +
		"• A specific cuisine (e.g., 'Middle Eastern' or 'Pakistani')\n" +
		"• A food item (e.g., 'I'm craving chicken' or 'I want kabob')\n" +
		"• Halal status (e.g., 'certified halal places')\n" +
		"• Highly rated restaurants"
)

// RestaurantCard - ресторан в ответе чат-бота.
type RestaurantCard struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Cuisine     string   `json:"cuisine"`
	HalalStatus string   `json:"halal_status"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	ImageURL    string   `json:"image_url"`
	AvgRating   *float64 `json:"avg_rating"`
	ReviewCount int      `json:"review_count"`
}

// Reply - ответ чат-бота.
type Reply struct {
	Message     string           `json:"message"`
	Restaurants []RestaurantCard `json:"restaurants"`
	Count       int              `json:"count"`
}

func textReply(message string) Reply {
	return Reply{Message: message, Restaurants: []RestaurantCard{}}
}

// Generate строит ответ по найденным ресторанам и критериям.
func Generate(matches []restaurants.Summary, c Criteria) Reply {
	if len(matches) == 0 {
		if c.Intent == IntentCraving && len(c.FoodItems) > 0 {
			return textReply(fmt.Sprintf(cravingMissFormat, c.FoodItems[0]))
		}
		return textReply(missMessage)
	}

	cards := make([]RestaurantCard, 0, len(matches))
	for _, m := range matches {
		cards = append(cards, RestaurantCard{
			ID:          m.ID,
			Name:        m.Name,
			Cuisine:     m.Cuisine,
			HalalStatus: m.HalalStatus,
			Description: m.Description,
			Address:     m.Address,
			ImageURL:    m.ImageURL,
			AvgRating:   m.AvgRating,
			ReviewCount: m.ReviewCount,
		})
	}

	var b strings.Builder
	n := len(cards)
	switch {
	case c.Intent == IntentCraving && len(c.FoodItems) > 0:
		fmt.Fprintf(&b, "Great choice! I found %d %s that serve %s or similar dishes:\n\n", n, pluralize(n), c.FoodItems[0])
	case c.Intent == IntentRecommend:
		fmt.Fprintf(&b, "I found %d %s that might interest you:\n\n", n, pluralize(n))
	default:
		fmt.Fprintf(&b, "I found %d %s matching your search:\n\n", n, pluralize(n))
	}

	if n <= maxListed {
		for _, card := range cards {
			writeLine(&b, card)
		}
	} else {
		top := make([]RestaurantCard, n)
		copy(top, cards)
		// Без рейтинга считается как 0; при равенстве сохраняется порядок хранилища
		sort.SliceStable(top, func(i, j int) bool {
			return ratingOrZero(top[i]) > ratingOrZero(top[j])
		})
		for _, card := range top[:maxListed] {
			writeLine(&b, card)
		}
		fmt.Fprintf(&b, "\n...and %d more. Click on any restaurant to see details!", n-maxListed)
	}

	return Reply{Message: b.String(), Restaurants: cards, Count: n}
}

func writeLine(b *strings.Builder, card RestaurantCard) {
	rating := ""
	if card.AvgRating != nil {
		rating = " (" + formatRating(*card.AvgRating) + "/5)"
	}
	fmt.Fprintf(b, "• **%s** - %s%s\n", card.Name, card.Cuisine, rating)
}

// formatRating печатает 4 как "4.0", а 4.5 как "4.5".
func formatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func ratingOrZero(card RestaurantCard) float64 {
	if card.AvgRating == nil {
		return 0
	}
	return *card.AvgRating
}

func pluralize(n int) string {
	if n == 1 {
		return "restaurant"
	}
	return "restaurants"
}
