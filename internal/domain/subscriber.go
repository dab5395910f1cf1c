package domain

import "time"

// Subscriber is a chat that receives the daily menu notification.
// LastDelivered is the civil date of the most recent successful delivery,
// nil if the chat has never been notified. It never moves backwards.
type Subscriber struct {
	ChatID        int64
	SubscribedAt  time.Time // UTC
	LastDelivered *Date
}
