package chatbot

import (
	"testing"

	"github.com/UkralStul/halalyelp-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Craving(t *testing.T) {
	c := Parse("I'm craving chicken")

	assert.Equal(t, IntentCraving, c.Intent)
	assert.Equal(t, []string{"chicken"}, c.FoodItems)
	assert.Subset(t, c.Keywords, []string{"chicken", "shawarma", "gyro", "tandoori", "hot chicken"})
	assert.Empty(t, c.Cuisine)
	assert.Nil(t, c.RatingMin)
}

func TestParse_CravingStripsPunctuation(t *testing.T) {
	c := Parse("I want falafel!")
	assert.Equal(t, IntentCraving, c.Intent)
	assert.Equal(t, []string{"falafel"}, c.FoodItems)
	assert.Equal(t, []string{"falafel", "middle eastern", "vegetarian"}, c.Keywords)
}

func TestParse_CravingPhraseWithoutFood(t *testing.T) {
	c := Parse("I'm craving")
	assert.Equal(t, IntentSearch, c.Intent)
	assert.Empty(t, c.FoodItems)
	assert.Empty(t, c.Keywords)
}

func TestParse_Cuisine(t *testing.T) {
	c := Parse("Find Middle Eastern restaurants")
	assert.Equal(t, "middle eastern", c.Cuisine)
	assert.Equal(t, IntentSearch, c.Intent)
	assert.Equal(t, []string{"middle", "eastern", "restaurants"}, c.Keywords)
}

func TestParse_HalalStatus(t *testing.T) {
	cases := []struct {
		query  string
		status string
	}{
		{"Show me certified halal places", domain.HalalCertified},
		{"anything certified", domain.HalalCertified},
		{"halal food near me", domain.HalalStandard},
		// "halal" срабатывает раньше "halal-friendly"
		{"halal-friendly places", domain.HalalStandard},
		{"cheap eats", ""},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			assert.Equal(t, tc.status, Parse(tc.query).HalalStatus)
		})
	}
}

func TestParse_Rating(t *testing.T) {
	cases := map[string]float64{
		"show me top rated halal restaurants": 4.0,
		"best rated kabob":                    4.0,
		"something well rated":                3.5,
		"5 star places":                       5.0,
	}
	for query, want := range cases {
		c := Parse(query)
		require.NotNil(t, c.RatingMin, query)
		assert.Equal(t, want, *c.RatingMin, query)
	}
	assert.Nil(t, Parse("pakistani food").RatingMin)
}

func TestParse_Intent(t *testing.T) {
	assert.Equal(t, IntentRecommend, Parse("Recommend a good Pakistani restaurant").Intent)
	assert.Equal(t, IntentRecommend, Parse("what can I eat tonight").Intent)
	assert.Equal(t, IntentQuestion, Parse("where is good biryani").Intent)
	assert.Equal(t, IntentSearch, Parse("pakistani").Intent)

	c := Parse("Recommend a good Pakistani restaurant")
	assert.Equal(t, "pakistani", c.Cuisine)
}

func TestParse_Location(t *testing.T) {
	assert.Equal(t, "philadelphia", Parse("halal food in Philadelphia").Location)
	assert.Equal(t, "philly", Parse("best cheesesteak in west philly").Location)
	assert.Empty(t, Parse("halal food").Location)
}

func TestParse_StopWordsCheckedBeforeStripping(t *testing.T) {
	// "me." не стоп-слово и длиннее двух символов, поэтому "me" попадает в ключевые слова
	c := Parse("show me.")
	assert.Equal(t, []string{"me"}, c.Keywords)

	c = Parse("show me")
	assert.Empty(t, c.Keywords)
}

func TestParse_ResidualFoodWords(t *testing.T) {
	c := Parse("chicken chicken wings")
	assert.Equal(t, []string{"chicken"}, c.FoodItems)
	assert.Equal(t, expandFood("chicken"), c.Keywords)

	c = Parse("spicy biryani")
	assert.Equal(t, []string{"spicy", "biryani"}, c.FoodItems)
	assert.Equal(t, []string{"spicy", "hot", "bold", "nashville", "biryani", "rice", "pakistani", "indian"}, c.Keywords)
}

func TestExpandFood(t *testing.T) {
	assert.Equal(t, []string{"falafel", "middle eastern", "vegetarian"}, expandFood("falafel"))
	// Точное совпадение с синонимом: первая подходящая запись таблицы
	assert.Equal(t, expandFood("steak"), expandFood("kebabs"))
	// Термин как подстрока слова
	assert.Equal(t, expandFood("chicken"), expandFood("shawarmas"))
	assert.Equal(t, []string{"pizza", "pizzas", "pizzaes"}, expandFood("pizza"))

	// Результат - копия, таблица не меняется
	terms := expandFood("naan")
	terms[0] = "changed"
	assert.Equal(t, "naan", expandFood("naan")[0])
}

func TestCriteria_Filter(t *testing.T) {
	c := Parse("certified pakistani biryani")
	f := c.Filter()
	assert.Equal(t, "pakistani", f.Cuisine)
	assert.Equal(t, domain.HalalCertified, f.HalalStatus)
	assert.Equal(t, c.Keywords, f.Keywords)
	assert.Empty(t, f.Name)
}
