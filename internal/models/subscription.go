package models

import (
	"time"
)

// Subscription statuses the engine assigns itself. Provider events may carry
// additional statuses; they are stored verbatim.
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusExpired  = "expired"
)

// UserSubscription stores the current state of one provider subscription.
// Rows are created on the first checkout.completed that carries the
// subscription object and updated in place by later events referencing the
// same subscription id.
type UserSubscription struct {
	BaseModel

	UserID         string `json:"user_id" gorm:"not null;size:64;index"`
	SubscriptionID string `json:"subscription_id" gorm:"not null;size:100;uniqueIndex"`
	ProductID      string `json:"product_id" gorm:"size:100"`

	Status string `json:"status" gorm:"not null;size:20;index"`

	CurrentPeriodStart time.Time  `json:"current_period_start"`
	CurrentPeriodEnd   time.Time  `json:"current_period_end" gorm:"index"`
	CanceledAt         *time.Time `json:"canceled_at"`
}
