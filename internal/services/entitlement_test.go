package services

import (
	"testing"
	"time"

	"learning-api/internal/database"
	"learning-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grantPurchase(t *testing.T, store *database.Store, userID, orderID, productID, lessonID string) {
	t.Helper()
	require.NoError(t, store.UpsertPurchase(&models.UserPurchase{
		UserID:    userID,
		OrderID:   orderID,
		ProductID: productID,
		LessonID:  lessonID,
		Status:    models.PurchaseStatusPaid,
	}))
}

func grantSubscription(t *testing.T, store *database.Store, userID, subscriptionID, status string) {
	t.Helper()
	require.NoError(t, store.UpsertSubscription(&models.UserSubscription{
		UserID:             userID,
		SubscriptionID:     subscriptionID,
		ProductID:          testSubProduct,
		Status:             status,
		CurrentPeriodStart: time.Now().Add(-24 * time.Hour),
		CurrentPeriodEnd:   time.Now().Add(24 * time.Hour),
	}))
}

func TestFreeLessonIsAlwaysAccessible(t *testing.T) {
	store := newTestStore(t)
	entitlement := NewEntitlementService(store, newTestCatalog())

	ok, err := entitlement.CanAccessLesson("user-without-anything", testFreeLesson)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNoEntitlementDeniesPaidLesson(t *testing.T) {
	store := newTestStore(t)
	entitlement := NewEntitlementService(store, newTestCatalog())

	ok, err := entitlement.CanAccessLesson("user-1", "numbers_l2")
	require.NoError(t, err)
	assert.False(t, ok)

	permissions, err := entitlement.Permissions("user-1")
	require.NoError(t, err)
	assert.False(t, permissions.HasLifetimeMembership)
	assert.False(t, permissions.HasActiveSubscription)
	assert.NotNil(t, permissions.PurchasedLessons)
	assert.Empty(t, permissions.PurchasedLessons)
}

func TestLifetimeMembershipUnlocksEverything(t *testing.T) {
	store := newTestStore(t)
	entitlement := NewEntitlementService(store, newTestCatalog())
	grantPurchase(t, store, "user-1", "ord_life_1", testLifetimeProduct, "")

	permissions, err := entitlement.Permissions("user-1")
	require.NoError(t, err)
	assert.True(t, permissions.HasLifetimeMembership)

	for _, lessonID := range []string{"numbers_l2", "food_l3", testFreeLesson} {
		ok, err := entitlement.CanAccessLesson("user-1", lessonID)
		require.NoError(t, err)
		assert.True(t, ok, lessonID)
	}
}

func TestActiveSubscriptionUnlocksEverything(t *testing.T) {
	store := newTestStore(t)
	entitlement := NewEntitlementService(store, newTestCatalog())
	grantSubscription(t, store, "user-1", "sub_1", models.SubscriptionStatusActive)

	ok, err := entitlement.CanAccessLesson("user-1", "numbers_l2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanceledSubscriptionDoesNotUnlock(t *testing.T) {
	store := newTestStore(t)
	entitlement := NewEntitlementService(store, newTestCatalog())
	grantSubscription(t, store, "user-1", "sub_1", models.SubscriptionStatusCanceled)

	ok, err := entitlement.CanAccessLesson("user-1", "numbers_l2")
	require.NoError(t, err)
	assert.False(t, ok)

	permissions, err := entitlement.Permissions("user-1")
	require.NoError(t, err)
	assert.False(t, permissions.HasActiveSubscription)
}

func TestSingleCoursePurchaseUnlocksOnlyItsLesson(t *testing.T) {
	store := newTestStore(t)
	entitlement := NewEntitlementService(store, newTestCatalog())
	grantPurchase(t, store, "user-1", "ord_1", testCourseProduct, "numbers_l2")

	ok, err := entitlement.CanAccessLesson("user-1", "numbers_l2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = entitlement.CanAccessLesson("user-1", "food_l3")
	require.NoError(t, err)
	assert.False(t, ok)

	permissions, err := entitlement.Permissions("user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"numbers_l2"}, permissions.PurchasedLessons)
}

func TestRefundedPurchaseRevokesAccess(t *testing.T) {
	store := newTestStore(t)
	entitlement := NewEntitlementService(store, newTestCatalog())
	grantPurchase(t, store, "user-1", "ord_1", testCourseProduct, "numbers_l2")
	require.NoError(t, store.MarkPurchaseRefunded("ord_1"))

	ok, err := entitlement.CanAccessLesson("user-1", "numbers_l2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEntitlementsAreScopedPerUser(t *testing.T) {
	store := newTestStore(t)
	entitlement := NewEntitlementService(store, newTestCatalog())
	grantPurchase(t, store, "user-1", "ord_1", testCourseProduct, "numbers_l2")

	ok, err := entitlement.CanAccessLesson("user-2", "numbers_l2")
	require.NoError(t, err)
	assert.False(t, ok)
}
