package services

import (
	"fmt"

	"learning-api/internal/database"
)

// UserPermissions is the live entitlement snapshot for one user, computed from
// current ledger state on every call.
type UserPermissions struct {
	HasLifetimeMembership bool     `json:"hasLifetimeMembership"`
	HasActiveSubscription bool     `json:"hasActiveSubscription"`
	PurchasedLessons      []string `json:"purchasedLessons"`
}

// EntitlementService answers "can this user access this lesson now". It is a
// pure read-through over subscription and purchase state with no caching, so
// it is consistent with the latest committed webhook.
type EntitlementService struct {
	store   *database.Store
	catalog *ProductCatalog
}

// NewEntitlementService creates an entitlement service over the given store
// and product catalog.
func NewEntitlementService(store *database.Store, catalog *ProductCatalog) *EntitlementService {
	return &EntitlementService{store: store, catalog: catalog}
}

// Permissions computes the user's entitlement snapshot.
func (s *EntitlementService) Permissions(userID string) (*UserPermissions, error) {
	hasLifetime, err := s.store.HasPaidPurchase(userID, s.catalog.LifetimeProductID())
	if err != nil {
		return nil, fmt.Errorf("failed to check lifetime membership: %w", err)
	}

	hasSubscription, err := s.store.HasActiveSubscription(userID, s.catalog.SubscriptionProductID())
	if err != nil {
		return nil, fmt.Errorf("failed to check subscription: %w", err)
	}

	purchasedLessons, err := s.store.PurchasedLessonIDs(userID, s.catalog.SingleCourseProductID())
	if err != nil {
		return nil, fmt.Errorf("failed to load purchased lessons: %w", err)
	}
	if purchasedLessons == nil {
		purchasedLessons = []string{}
	}

	return &UserPermissions{
		HasLifetimeMembership: hasLifetime,
		HasActiveSubscription: hasSubscription,
		PurchasedLessons:      purchasedLessons,
	}, nil
}

// CanAccessLesson evaluates access in order: free lesson, lifetime membership,
// active subscription, matching single-course purchase. First match wins.
func (s *EntitlementService) CanAccessLesson(userID, lessonID string) (bool, error) {
	if lessonID == s.catalog.FreeLessonID() {
		return true, nil
	}

	permissions, err := s.Permissions(userID)
	if err != nil {
		return false, err
	}

	if permissions.HasLifetimeMembership || permissions.HasActiveSubscription {
		return true, nil
	}
	for _, purchased := range permissions.PurchasedLessons {
		if purchased == lessonID {
			return true, nil
		}
	}
	return false, nil
}
