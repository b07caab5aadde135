package database

import (
	"time"

	"learning-api/internal/models"
	"learning-api/pkg/logging"

	"gorm.io/gorm/clause"
)

// UpsertSubscription creates the subscription row on first sight of its id and
// refreshes status and period bounds on redelivery. Replaying the same event
// writes the same values, so the operation is idempotent.
func (s *Store) UpsertSubscription(sub *models.UserSubscription) error {
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "subscription_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "current_period_start", "current_period_end", "updated_at",
		}),
	}).Create(sub).Error
}

// UpdateSubscriptionPeriod updates an existing subscription's status and
// period bounds. It never inserts: creation is owned by the checkout.completed
// path, so an update for an unknown id is a logged no-op.
func (s *Store) UpdateSubscriptionPeriod(subscriptionID, status string, periodStart, periodEnd *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if periodStart != nil {
		updates["current_period_start"] = *periodStart
	}
	if periodEnd != nil {
		updates["current_period_end"] = *periodEnd
	}

	result := s.db.Model(&models.UserSubscription{}).
		Where("subscription_id = ?", subscriptionID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		logging.Infof("Subscription event for unknown subscription %s, nothing to update", subscriptionID)
	}
	return nil
}

// CancelSubscription sets the terminal status and cancellation timestamp.
func (s *Store) CancelSubscription(subscriptionID, status string, canceledAt time.Time) error {
	result := s.db.Model(&models.UserSubscription{}).
		Where("subscription_id = ?", subscriptionID).
		Updates(map[string]interface{}{
			"status":      status,
			"canceled_at": canceledAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		logging.Infof("Cancellation for unknown subscription %s, nothing to update", subscriptionID)
	}
	return nil
}

// GetSubscription fetches one subscription by its provider id.
func (s *Store) GetSubscription(subscriptionID string) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := s.db.Where("subscription_id = ?", subscriptionID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// HasActiveSubscription checks whether the user holds an active subscription
// for the given product.
func (s *Store) HasActiveSubscription(userID, productID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.UserSubscription{}).
		Where("user_id = ? AND product_id = ? AND status = ?",
			userID, productID, models.SubscriptionStatusActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExpireLapsedSubscriptions expires active subscriptions whose stored period
// end has passed. Returns the number of rows flipped.
func (s *Store) ExpireLapsedSubscriptions(now time.Time) (int64, error) {
	result := s.db.Model(&models.UserSubscription{}).
		Where("status = ? AND current_period_end > ? AND current_period_end < ?",
			models.SubscriptionStatusActive, time.Time{}, now).
		Update("status", models.SubscriptionStatusExpired)
	return result.RowsAffected, result.Error
}

// UpsertPurchase records a one-time purchase, insert-or-ignore keyed by the
// order id. Ignoring on conflict keeps a replayed checkout from resurrecting a
// purchase that was refunded in the meantime.
func (s *Store) UpsertPurchase(purchase *models.UserPurchase) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoNothing: true,
	}).Create(purchase).Error
}

// MarkPurchaseRefunded flips a purchase to refunded; no-op when the order is
// unknown.
func (s *Store) MarkPurchaseRefunded(orderID string) error {
	result := s.db.Model(&models.UserPurchase{}).
		Where("order_id = ?", orderID).
		Update("status", models.PurchaseStatusRefunded)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		logging.Infof("Refund references unknown order %s, nothing to update", orderID)
	}
	return nil
}

// GetPurchase fetches one purchase by its provider order id.
func (s *Store) GetPurchase(orderID string) (*models.UserPurchase, error) {
	var purchase models.UserPurchase
	err := s.db.Where("order_id = ?", orderID).First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// HasPaidPurchase checks whether the user holds a paid purchase of the given
// product.
func (s *Store) HasPaidPurchase(userID, productID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.UserPurchase{}).
		Where("user_id = ? AND product_id = ? AND status = ?",
			userID, productID, models.PurchaseStatusPaid).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PurchasedLessonIDs returns the lesson ids unlocked by the user's paid
// single-course purchases.
func (s *Store) PurchasedLessonIDs(userID, productID string) ([]string, error) {
	var lessonIDs []string
	err := s.db.Model(&models.UserPurchase{}).
		Where("user_id = ? AND product_id = ? AND status = ? AND lesson_id <> ''",
			userID, productID, models.PurchaseStatusPaid).
		Pluck("lesson_id", &lessonIDs).Error
	return lessonIDs, err
}
