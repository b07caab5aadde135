package models

import "encoding/json"

// WebhookEvent is the outer envelope of a provider webhook delivery. Object is
// kept raw until the event type is known; its shape differs per type.
type WebhookEvent struct {
	ID        string          `json:"id"`
	EventType string          `json:"eventType"`
	CreatedAt int64           `json:"created_at"`
	Object    json.RawMessage `json:"object"`
}

// CheckoutObject is the payload of checkout.completed events.
type CheckoutObject struct {
	ID           string                `json:"id"`
	Object       string                `json:"object"`
	Order        *CheckoutOrder        `json:"order,omitempty"`
	Product      *ProductRef           `json:"product,omitempty"`
	Subscription *CheckoutSubscription `json:"subscription,omitempty"`
	Metadata     map[string]string     `json:"metadata,omitempty"`
}

// CheckoutOrder carries the monetary details of a completed checkout.
// Transaction may be empty; the checkout id is the idempotency fallback then.
type CheckoutOrder struct {
	ID          string `json:"id"`
	Transaction string `json:"transaction,omitempty"`
	Amount      int64  `json:"amount,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

// CheckoutSubscription is the subscription object embedded in a checkout,
// present only for subscription products. Period bounds are provider-formatted
// date strings.
type CheckoutSubscription struct {
	ID                 string `json:"id"`
	Status             string `json:"status"`
	CurrentPeriodStart string `json:"current_period_start_date,omitempty"`
	CurrentPeriodEnd   string `json:"current_period_end_date,omitempty"`
}

// SubscriptionObject is the payload of subscription.* lifecycle events.
type SubscriptionObject struct {
	ID                 string       `json:"id"`
	Status             string       `json:"status"`
	CurrentPeriodStart string       `json:"current_period_start_date,omitempty"`
	CurrentPeriodEnd   string       `json:"current_period_end_date,omitempty"`
	CanceledAt         string       `json:"canceled_at,omitempty"`
	Product            *ProductRef  `json:"product,omitempty"`
	Customer           *CustomerRef `json:"customer,omitempty"`
}

// RefundObject is the payload of refund.created events. It may reference a
// transaction, an order, or both.
type RefundObject struct {
	Transaction *TransactionRef `json:"transaction,omitempty"`
	Order       *OrderRef       `json:"order,omitempty"`
}

type ProductRef struct {
	ID string `json:"id"`
}

type CustomerRef struct {
	ID string `json:"id"`
}

type TransactionRef struct {
	ID string `json:"id"`
}

type OrderRef struct {
	ID string `json:"id"`
}
