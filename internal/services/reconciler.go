package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"learning-api/internal/database"
	"learning-api/internal/models"
	"learning-api/pkg/logging"

	"github.com/google/uuid"
)

// ErrUnattributable marks a checkout event whose monetary effect cannot be
// attributed to any user. The event must still be acknowledged (retrying will
// never help), but the failure is recorded for operators rather than dropped.
var ErrUnattributable = errors.New("checkout event has no user id in metadata")

// Reconciler applies classified provider events to ledger, subscription and
// purchase state. Every write is an idempotent upsert, so duplicate delivery
// and retries after partial failure are harmless.
type Reconciler struct {
	store   *database.Store
	catalog *ProductCatalog
	alerts  *AlertService // nil when alerting is not configured
	now     func() time.Time
}

// NewReconciler creates a reconciler over the given store and catalog.
func NewReconciler(store *database.Store, catalog *ProductCatalog, alerts *AlertService) *Reconciler {
	return &Reconciler{
		store:   store,
		catalog: catalog,
		alerts:  alerts,
		now:     time.Now,
	}
}

// Apply routes one classified event to its handler. Unhandled kinds are
// acknowledged without action.
func (r *Reconciler) Apply(event *ClassifiedEvent) error {
	switch event.Kind {
	case EventCheckoutCompleted:
		return r.applyCheckoutCompleted(event)
	case EventSubscriptionActive:
		return r.applySubscriptionActive(event.Subscription)
	case EventSubscriptionCanceled:
		return r.applySubscriptionCanceled(event.Subscription)
	case EventRefundCreated:
		return r.applyRefundCreated(event.Refund)
	default:
		logging.Infof("Unhandled event type: %s", event.RawType)
		return nil
	}
}

func (r *Reconciler) applyCheckoutCompleted(event *ClassifiedEvent) error {
	checkout := event.Checkout

	userID := checkout.Metadata["userId"]
	if userID == "" {
		r.reportUnattributable(event)
		return ErrUnattributable
	}

	productID := checkout.Metadata["productId"]
	if productID == "" && checkout.Product != nil {
		productID = checkout.Product.ID
	}
	category := r.catalog.Category(productID)

	transactionID := checkout.ID
	orderID := ""
	var amount int64
	currency := "USD"
	if checkout.Order != nil {
		orderID = checkout.Order.ID
		amount = checkout.Order.Amount
		if checkout.Order.Transaction != "" {
			transactionID = checkout.Order.Transaction
		}
		if checkout.Order.Currency != "" {
			currency = checkout.Order.Currency
		}
	}

	subscriptionID := ""
	if checkout.Subscription != nil {
		subscriptionID = checkout.Subscription.ID
	}

	metadata, _ := json.Marshal(checkout.Metadata)
	transaction := &models.Transaction{
		UserID:         userID,
		TransactionID:  transactionID,
		CheckoutID:     checkout.ID,
		OrderID:        orderID,
		SubscriptionID: subscriptionID,
		ProductID:      productID,
		Type:           string(category),
		Amount:         amount,
		Currency:       currency,
		Status:         models.TransactionStatusCompleted,
		Metadata:       string(metadata),
	}

	// The ledger row is recorded regardless of category; its unique key is
	// the sole dedup point for the event's monetary effect.
	if err := r.store.RecordTransaction(transaction); err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	if category == CategorySubscription && checkout.Subscription != nil {
		subscription := &models.UserSubscription{
			UserID:             userID,
			SubscriptionID:     checkout.Subscription.ID,
			ProductID:          productID,
			Status:             checkout.Subscription.Status,
			CurrentPeriodStart: parseProviderDate(checkout.Subscription.CurrentPeriodStart),
			CurrentPeriodEnd:   parseProviderDate(checkout.Subscription.CurrentPeriodEnd),
		}
		if err := r.store.UpsertSubscription(subscription); err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}
		logging.Infof("Checkout %s: subscription %s %s for user %s",
			checkout.ID, subscription.SubscriptionID, subscription.Status, userID)
		return nil
	}

	// Single course or lifetime purchase
	purchaseOrderID := orderID
	if purchaseOrderID == "" {
		purchaseOrderID = checkout.ID
	}
	purchase := &models.UserPurchase{
		UserID:    userID,
		OrderID:   purchaseOrderID,
		ProductID: productID,
		LessonID:  checkout.Metadata["lessonId"],
		Amount:    amount,
		Currency:  currency,
		Status:    models.PurchaseStatusPaid,
	}
	if err := r.store.UpsertPurchase(purchase); err != nil {
		return fmt.Errorf("failed to upsert purchase: %w", err)
	}
	logging.Infof("Checkout %s: %s purchase %s for user %s",
		checkout.ID, category, purchase.OrderID, userID)
	return nil
}

func (r *Reconciler) applySubscriptionActive(subscription *models.SubscriptionObject) error {
	// A date that fails to parse is omitted from the update rather than
	// written as a zero value over a previously valid period bound.
	var periodStart, periodEnd *time.Time
	if t := parseProviderDate(subscription.CurrentPeriodStart); !t.IsZero() {
		periodStart = &t
	}
	if t := parseProviderDate(subscription.CurrentPeriodEnd); !t.IsZero() {
		periodEnd = &t
	}

	// Update only. Creation is owned by checkout.completed; an activation for
	// an unknown id is a logged no-op inside the store.
	if err := r.store.UpdateSubscriptionPeriod(subscription.ID, subscription.Status, periodStart, periodEnd); err != nil {
		return fmt.Errorf("failed to update subscription %s: %w", subscription.ID, err)
	}
	return nil
}

func (r *Reconciler) applySubscriptionCanceled(subscription *models.SubscriptionObject) error {
	canceledAt := r.now()
	if t := parseProviderDate(subscription.CanceledAt); !t.IsZero() {
		canceledAt = t
	}

	if err := r.store.CancelSubscription(subscription.ID, subscription.Status, canceledAt); err != nil {
		return fmt.Errorf("failed to cancel subscription %s: %w", subscription.ID, err)
	}
	logging.Infof("Subscription %s marked %s", subscription.ID, subscription.Status)
	return nil
}

func (r *Reconciler) applyRefundCreated(refund *models.RefundObject) error {
	if refund.Transaction != nil && refund.Transaction.ID != "" {
		if err := r.store.MarkTransactionRefunded(refund.Transaction.ID); err != nil {
			return fmt.Errorf("failed to mark transaction refunded: %w", err)
		}
	}
	if refund.Order != nil && refund.Order.ID != "" {
		if err := r.store.MarkPurchaseRefunded(refund.Order.ID); err != nil {
			return fmt.Errorf("failed to mark purchase refunded: %w", err)
		}
	}
	// A refunded subscription is not inferred here; the provider emits a
	// separate cancellation event for it.
	return nil
}

// reportUnattributable records the failure for operators and, when configured,
// sends an alert email. Silently dropping the event would be a data-loss risk.
func (r *Reconciler) reportUnattributable(event *ClassifiedEvent) {
	payload, _ := json.Marshal(event.Checkout)
	failure := &models.WebhookFailure{
		Reference: uuid.NewString(),
		EventID:   event.ID,
		EventType: event.RawType,
		Reason:    "missing userId in checkout metadata",
		Payload:   string(payload),
	}

	if err := r.store.RecordWebhookFailure(failure); err != nil {
		logging.Errorf("Failed to record webhook failure for event %s: %v", event.ID, err)
	}
	logging.Errorf("Unattributable checkout event %s (checkout %s), failure reference %s",
		event.ID, event.Checkout.ID, failure.Reference)

	if r.alerts != nil {
		go func() {
			if err := r.alerts.NotifyWebhookFailure(failure); err != nil {
				logging.Errorf("Failed to send webhook failure alert %s: %v", failure.Reference, err)
			}
		}()
	}
}

// ExpireLapsedSubscriptions expires active subscriptions whose stored period
// end has passed. Safety net for a missed provider expiry event; the provider
// push remains the primary driver.
func (r *Reconciler) ExpireLapsedSubscriptions() (int64, error) {
	return r.store.ExpireLapsedSubscriptions(r.now())
}

// StartExpirySweep runs the expiry sweep on the given interval until stop is
// closed.
func (r *Reconciler) StartExpirySweep(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				expired, err := r.ExpireLapsedSubscriptions()
				if err != nil {
					logging.Errorf("Subscription expiry sweep failed: %v", err)
				} else if expired > 0 {
					logging.Infof("Subscription expiry sweep: expired %d subscriptions", expired)
				}
			case <-stop:
				return
			}
		}
	}()
}

// parseProviderDate parses the provider's date strings. A zero time is
// returned for values that cannot be parsed; the anomaly is logged.
func parseProviderDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	logging.Warnf("Unparseable provider date %q", value)
	return time.Time{}
}
