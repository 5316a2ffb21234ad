package seed

import (
	"context"
	"fmt"
	"log"

	"github.com/UkralStul/halalyelp-service/internal/domain"
	"github.com/UkralStul/halalyelp-service/internal/storage"
)

// DemoRestaurants - рестораны Филадельфии для пустой базы.
func DemoRestaurants() []*domain.Restaurant {
	return []*domain.Restaurant{
		{
			Name:        "The Halal Guys",
			Description: "Famous for gyro platters, chicken over rice, and white & red sauce, a well-known halal street-food chain.",
			Address:     "37 E City Ave, Bala Cynwyd, PA 19004",
			Latitude:    40.002599,
			Longitude:   -75.225074,
			Cuisine:     "Middle Eastern",
			HalalStatus: domain.HalalCertified,
			ImageURL:    "/static/images/halalGuy.png",
		},
		{
			Name:        "Dave's Hot Chicken",
			Description: "Famous halal-certified hot chicken tenders and sliders served with bold spice levels.",
			Address:     "1731 Chestnut St, Philadelphia, PA 19103",
			Latitude:    39.951923,
			Longitude:   -75.169856,
			Cuisine:     "American",
			HalalStatus: domain.HalalCertified,
			ImageURL:    "/static/images/daves.jpg",
		},
		{
			Name:        "Crown Fried Chicken",
			Description: "Classic halal fried chicken spot offering crispy chicken, sandwiches, and late-night comfort food.",
			Address:     "600 S Broad St, Philadelphia, PA 19146",
			Latitude:    39.943588,
			Longitude:   -75.165840,
			Cuisine:     "American",
			HalalStatus: domain.HalalStandard,
			ImageURL:    "/static/images/crown.png",
		},
		{
			Name:        "Asad's Hot Chicken",
			Description: "Nashville-style halal hot chicken known for crispy spice levels and fresh sides.",
			Address:     "4627 Woodland Ave, Philadelphia, PA 19143",
			Latitude:    39.943994,
			Longitude:   -75.210697,
			Cuisine:     "American",
			HalalStatus: domain.HalalStandard,
			ImageURL:    "/static/images/asad.png",
		},
		{
			Name:        "Saffron Kabob House",
			Description: "Charcoal grilled kabobs, chicken biryani and fresh naan from a family Pakistani kitchen.",
			Address:     "4300 Walnut St, Philadelphia, PA 19104",
			Latitude:    39.954870,
			Longitude:   -75.209720,
			Cuisine:     "Pakistani",
			HalalStatus: domain.HalalMuslimOwned,
			ImageURL:    "/static/images/saffron.jpg",
		},
		{
			Name:        "Cedar Grill",
			Description: "Lebanese mezze, falafel wraps and lamb shawarma with a few halal-friendly options.",
			Address:     "1020 Spring Garden St, Philadelphia, PA 19123",
			Latitude:    39.961250,
			Longitude:   -75.155410,
			Cuisine:     "Lebanese",
			HalalStatus: domain.HalalFriendly,
			ImageURL:    "/static/images/cedar.jpg",
		},
	}
}

// Run заполняет пустое хранилище демо-данными. Непустое хранилище не трогает.
func Run(ctx context.Context, store storage.Storage) error {
	count, err := store.CountRestaurants(ctx)
	if err != nil {
		return fmt.Errorf("failed to count restaurants: %w", err)
	}
	if count > 0 {
		return nil
	}

	var created []*domain.Restaurant
	for _, r := range DemoRestaurants() {
		rest, err := store.CreateRestaurant(ctx, r)
		if err != nil {
			return fmt.Errorf("failed to create restaurant %q: %w", r.Name, err)
		}
		created = append(created, rest)
	}
	log.Printf("Inserted %d demo restaurants.", len(created))

	contents, err := store.ListContent(ctx)
	if err != nil {
		return fmt.Errorf("failed to list content: %w", err)
	}
	if len(contents) > 0 {
		return nil
	}
	posts := demoContent(created)
	for _, c := range posts {
		if _, err := store.CreateContent(ctx, c); err != nil {
			return fmt.Errorf("failed to create content %q: %w", c.Title, err)
		}
	}
	log.Printf("Inserted %d demo feed posts.", len(posts))
	return nil
}

func demoContent(rests []*domain.Restaurant) []*domain.Content {
	creator := "phillyfoodie"
	orderURL := "https://order.example.com/daves-hot-chicken"
	return []*domain.Content{
		{
			RestaurantID: &rests[0].ID,
			IsSponsored:  true,
			Title:        "Chicken over rice, extra white sauce",
			Description:  "The platter that started it all.",
			ImageURL:     "/static/images/halalGuy.png",
		},
		{
			RestaurantID: &rests[1].ID,
			Title:        "Reaper level tenders",
			Description:  "Only for the brave.",
			ImageURL:     "/static/images/daves.jpg",
			OrderURL:     &orderURL,
		},
		{
			CreatorName: &creator,
			Title:       "Best late night halal spots in West Philly",
			Description: "My top picks after a long night of studying.",
		},
	}
}
