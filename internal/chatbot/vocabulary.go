package chatbot

// Словари интерпретатора. Порядок в срезах значим: побеждает первое совпадение.

type foodEntry struct {
	name  string
	terms []string
}

// foodTable - блюда и связанные с ними поисковые термины.
var foodTable = []foodEntry{
	// Мясо
	{"steak", []string{"steak", "beef", "grilled", "kabob", "kebab", "kabobs", "kebabs"}},
	{"chicken", []string{"chicken", "poultry", "tenders", "wings", "fried chicken", "hot chicken",
		"chicken over rice", "shawarma", "gyro", "tandoori"}},
	{"beef", []string{"beef", "steak", "kabob", "kebab", "gyro", "cheesesteak", "biryani"}},
	{"lamb", []string{"lamb", "kabob", "kebab", "gyro", "shawarma"}},

	// Блюда
	{"gyro", []string{"gyro", "gyros", "shawarma", "wrap", "platter"}},
	{"shawarma", []string{"shawarma", "gyro", "wrap", "platter", "chicken"}},
	{"falafel", []string{"falafel", "middle eastern", "vegetarian"}},
	{"kabob", []string{"kabob", "kebab", "kabobs", "kebabs", "grilled", "pakistani", "middle eastern"}},
	{"biryani", []string{"biryani", "rice", "pakistani", "indian"}},
	{"curry", []string{"curry", "curries", "indian", "pakistani", "sauce"}},
	{"tandoori", []string{"tandoori", "chicken", "indian", "pakistani"}},
	{"naan", []string{"naan", "bread", "pakistani", "indian"}},
	{"platter", []string{"platter", "platters", "combo", "meal"}},
	{"burger", []string{"burger", "burgers", "smash burger", "fusion"}},
	{"wings", []string{"wings", "chicken wings", "fried"}},
	{"tenders", []string{"tenders", "chicken tenders", "hot chicken"}},
	{"fried chicken", []string{"fried chicken", "chicken", "crispy"}},
	{"hot chicken", []string{"hot chicken", "spicy", "nashville", "chicken"}},
	{"cheesesteak", []string{"cheesesteak", "cheesesteaks", "philly", "sandwich"}},

	// Признаки кухни
	{"spicy", []string{"spicy", "hot", "bold", "nashville"}},
	{"grilled", []string{"grilled", "kabob", "kebab", "bbq"}},
	{"fried", []string{"fried", "crispy", "fried chicken"}},
	{"comfort food", []string{"comfort food", "fried", "chicken", "late night"}},
}

var cravingPhrases = []string{
	"i'm craving", "im craving", "i am craving",
	"i want", "i'd like", "id like", "i would like",
	"i feel like", "i'm in the mood for", "im in the mood for",
	"i need", "i could go for", "i'm hungry for", "im hungry for",
	"craving", "want some", "feel like", "in the mood",
}

var cuisines = []string{
	"middle eastern", "pakistani", "indian", "lebanese", "ethiopian",
	"american", "fusion", "fried chicken", "halal",
}

type ratingPhrase struct {
	phrase string
	min    float64
}

var ratingPhrases = []ratingPhrase{
	{"high rating", 4.0},
	{"best rated", 4.0},
	{"top rated", 4.0},
	{"good rating", 3.5},
	{"well rated", 3.5},
	{"4 star", 4.0},
	{"5 star", 5.0},
}

var locations = []string{"philadelphia", "philly", "west philly", "temple", "center city"}

var recommendWords = []string{"recommend", "suggest", "what should", "what can"}

var questionWords = []string{"what", "how", "where", "when", "why"}

var stopWords = toSet(
	"find", "search", "looking", "for", "want", "need", "show", "me",
	"a", "an", "the", "is", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "do", "does", "did", "will", "would", "could",
	"should", "may", "might", "can", "must", "shall", "i'm", "im", "i",
	"am", "craving", "feel", "like", "some", "get", "give",
)

// greetings сравниваются целиком, а не по подстроке.
var greetings = toSet("hi", "hello", "hey", "help", "what can you do")

func toSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
