package domain

// Counter - имя счетчика вовлеченности (совпадает с колонкой в БД и ключом JSON).
type Counter string

const (
	CounterLikes    Counter = "likes_count"
	CounterComments Counter = "comments_count"
	CounterShares   Counter = "shares_count"
	CounterSaves    Counter = "saves_count"
)

// Value возвращает текущее значение счетчика у поста.
func (c *Content) Value(counter Counter) int {
	switch counter {
	case CounterLikes:
		return c.LikesCount
	case CounterComments:
		return c.CommentsCount
	case CounterShares:
		return c.SharesCount
	case CounterSaves:
		return c.SavesCount
	}
	return 0
}

// Adjust меняет счетчик на delta, не опуская его ниже нуля, и возвращает новое значение.
func (c *Content) Adjust(counter Counter, delta int) int {
	next := c.Value(counter) + delta
	if next < 0 {
		next = 0
	}
	switch counter {
	case CounterLikes:
		c.LikesCount = next
	case CounterComments:
		c.CommentsCount = next
	case CounterShares:
		c.SharesCount = next
	case CounterSaves:
		c.SavesCount = next
	}
	return next
}

// EngagementEvent публикуется после каждого изменения счетчика.
type EngagementEvent struct {
	ContentID string  `json:"content_id"`
	Counter   Counter `json:"counter"`
	Value     int     `json:"value"`
}
