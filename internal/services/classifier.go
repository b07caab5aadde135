package services

import (
	"encoding/json"
	"fmt"

	"learning-api/internal/models"
	"learning-api/pkg/logging"
)

// EventKind is the engine's closed set of recognized webhook event kinds.
// Provider event types that are treated identically map to one kind.
type EventKind string

const (
	EventCheckoutCompleted    EventKind = "checkout.completed"
	EventSubscriptionActive   EventKind = "subscription.active"   // also subscription.paid
	EventSubscriptionCanceled EventKind = "subscription.canceled" // also subscription.expired
	EventRefundCreated        EventKind = "refund.created"

	// EventUnhandled covers informational event types the engine does not
	// model. They are acknowledged without action so the provider does not
	// retry them.
	EventUnhandled EventKind = "unhandled"
)

// ClassifiedEvent is the typed variant produced from a verified webhook body.
// Exactly one of the payload pointers matching Kind is non-nil.
type ClassifiedEvent struct {
	ID        string
	Kind      EventKind
	RawType   string
	CreatedAt int64

	Checkout     *models.CheckoutObject
	Subscription *models.SubscriptionObject
	Refund       *models.RefundObject
}

// ClassifyEvent parses a verified webhook body into its typed variant. The
// payload object is only decoded once the event type is known, so each shape
// is validated at the boundary before any handler runs.
func ClassifyEvent(body []byte) (*ClassifiedEvent, error) {
	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("invalid webhook envelope: %w", err)
	}

	classified := &ClassifiedEvent{
		ID:        event.ID,
		RawType:   event.EventType,
		CreatedAt: event.CreatedAt,
	}

	switch event.EventType {
	case "checkout.completed":
		classified.Kind = EventCheckoutCompleted
		var checkout models.CheckoutObject
		if err := json.Unmarshal(event.Object, &checkout); err != nil {
			return nil, fmt.Errorf("invalid checkout object: %w", err)
		}
		classified.Checkout = &checkout

	case "subscription.active", "subscription.paid":
		classified.Kind = EventSubscriptionActive
		var subscription models.SubscriptionObject
		if err := json.Unmarshal(event.Object, &subscription); err != nil {
			return nil, fmt.Errorf("invalid subscription object: %w", err)
		}
		classified.Subscription = &subscription

	case "subscription.canceled", "subscription.expired":
		classified.Kind = EventSubscriptionCanceled
		var subscription models.SubscriptionObject
		if err := json.Unmarshal(event.Object, &subscription); err != nil {
			return nil, fmt.Errorf("invalid subscription object: %w", err)
		}
		classified.Subscription = &subscription

	case "refund.created":
		classified.Kind = EventRefundCreated
		var refund models.RefundObject
		if err := json.Unmarshal(event.Object, &refund); err != nil {
			return nil, fmt.Errorf("invalid refund object: %w", err)
		}
		classified.Refund = &refund

	default:
		classified.Kind = EventUnhandled
	}

	return classified, nil
}

// ProductCategory classifies a provider product.
type ProductCategory string

const (
	CategorySingleCourse ProductCategory = "single_course"
	CategorySubscription ProductCategory = "subscription"
	CategoryLifetime     ProductCategory = "lifetime"
)

// ProductCatalog is the static product id → category mapping plus the
// designated free lesson, supplied at startup. Checkout-session creation and
// webhook interpretation share the same instance, so the two cannot diverge.
type ProductCatalog struct {
	singleCourseID string
	subscriptionID string
	lifetimeID     string
	freeLessonID   string
}

// NewProductCatalog builds the catalog from the configured provider product
// ids.
func NewProductCatalog(singleCourseID, subscriptionID, lifetimeID, freeLessonID string) *ProductCatalog {
	return &ProductCatalog{
		singleCourseID: singleCourseID,
		subscriptionID: subscriptionID,
		lifetimeID:     lifetimeID,
		freeLessonID:   freeLessonID,
	}
}

// Category resolves a provider product id. Unknown ids default to
// single_course; that is a configuration anomaly and logged as such.
func (c *ProductCatalog) Category(productID string) ProductCategory {
	switch {
	case productID != "" && productID == c.singleCourseID:
		return CategorySingleCourse
	case productID != "" && productID == c.subscriptionID:
		return CategorySubscription
	case productID != "" && productID == c.lifetimeID:
		return CategoryLifetime
	default:
		logging.Warnf("Unknown product id %q, defaulting to single_course", productID)
		return CategorySingleCourse
	}
}

// SingleCourseProductID returns the configured single-course product id.
func (c *ProductCatalog) SingleCourseProductID() string {
	return c.singleCourseID
}

// SubscriptionProductID returns the configured subscription product id.
func (c *ProductCatalog) SubscriptionProductID() string {
	return c.subscriptionID
}

// LifetimeProductID returns the configured lifetime product id.
func (c *ProductCatalog) LifetimeProductID() string {
	return c.lifetimeID
}

// FreeLessonID returns the one lesson accessible without any purchase.
func (c *ProductCatalog) FreeLessonID() string {
	return c.freeLessonID
}
