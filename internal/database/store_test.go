package database

import (
	"testing"
	"time"

	"learning-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestRecordTransactionIgnoresDuplicates(t *testing.T) {
	store := newTestStore(t)

	first := &models.Transaction{
		UserID:        "user-1",
		TransactionID: "tx_1",
		Type:          "single_course",
		Amount:        990,
		Currency:      "USD",
		Status:        models.TransactionStatusCompleted,
	}
	require.NoError(t, store.RecordTransaction(first))

	// Same transaction id, different amount: the original row must win.
	replay := &models.Transaction{
		UserID:        "user-1",
		TransactionID: "tx_1",
		Type:          "single_course",
		Amount:        12345,
		Currency:      "USD",
		Status:        models.TransactionStatusCompleted,
	}
	require.NoError(t, store.RecordTransaction(replay))

	count, err := store.CountTransactions("tx_1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	txn, err := store.GetTransaction("tx_1")
	require.NoError(t, err)
	assert.Equal(t, int64(990), txn.Amount)
}

func TestMarkTransactionRefundedUnknownIsNoOp(t *testing.T) {
	store := newTestStore(t)

	assert.NoError(t, store.MarkTransactionRefunded("tx_unknown"))
}

func TestGetUserTransactionsNewestFirst(t *testing.T) {
	store := newTestStore(t)

	for _, id := range []string{"tx_a", "tx_b"} {
		require.NoError(t, store.RecordTransaction(&models.Transaction{
			UserID:        "user-1",
			TransactionID: id,
			Status:        models.TransactionStatusCompleted,
		}))
		time.Sleep(5 * time.Millisecond)
	}
	require.NoError(t, store.RecordTransaction(&models.Transaction{
		UserID:        "user-2",
		TransactionID: "tx_other",
		Status:        models.TransactionStatusCompleted,
	}))

	txns, err := store.GetUserTransactions("user-1")
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "tx_b", txns[0].TransactionID)
	assert.Equal(t, "tx_a", txns[1].TransactionID)
}

func TestUpsertPurchasePreservesRefundOnReplay(t *testing.T) {
	store := newTestStore(t)

	purchase := &models.UserPurchase{
		UserID:    "user-1",
		OrderID:   "ord_1",
		ProductID: "prod_course",
		LessonID:  "numbers_l2",
		Status:    models.PurchaseStatusPaid,
	}
	require.NoError(t, store.UpsertPurchase(purchase))
	require.NoError(t, store.MarkPurchaseRefunded("ord_1"))

	// Replayed checkout must not flip the purchase back to paid.
	require.NoError(t, store.UpsertPurchase(&models.UserPurchase{
		UserID:    "user-1",
		OrderID:   "ord_1",
		ProductID: "prod_course",
		LessonID:  "numbers_l2",
		Status:    models.PurchaseStatusPaid,
	}))

	got, err := store.GetPurchase("ord_1")
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusRefunded, got.Status)
}

func TestUpsertSubscriptionRefreshesPeriod(t *testing.T) {
	store := newTestStore(t)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpsertSubscription(&models.UserSubscription{
		UserID:             "user-1",
		SubscriptionID:     "sub_1",
		ProductID:          "prod_sub",
		Status:             models.SubscriptionStatusActive,
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   start.AddDate(0, 1, 0),
	}))

	require.NoError(t, store.UpsertSubscription(&models.UserSubscription{
		UserID:             "user-1",
		SubscriptionID:     "sub_1",
		ProductID:          "prod_sub",
		Status:             models.SubscriptionStatusActive,
		CurrentPeriodStart: start.AddDate(0, 1, 0),
		CurrentPeriodEnd:   start.AddDate(0, 2, 0),
	}))

	sub, err := store.GetSubscription("sub_1")
	require.NoError(t, err)
	assert.Equal(t, time.March, sub.CurrentPeriodEnd.Month())

	var count int64
	require.NoError(t, store.DB().Model(&models.UserSubscription{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateSubscriptionPeriodNeverInserts(t *testing.T) {
	store := newTestStore(t)

	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpdateSubscriptionPeriod("sub_ghost", models.SubscriptionStatusActive, nil, &end))

	_, err := store.GetSubscription("sub_ghost")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestExpireLapsedSubscriptionsSkipsUnknownPeriodEnd(t *testing.T) {
	store := newTestStore(t)

	// No period end recorded; the sweep must leave it alone.
	require.NoError(t, store.UpsertSubscription(&models.UserSubscription{
		UserID:         "user-1",
		SubscriptionID: "sub_no_end",
		ProductID:      "prod_sub",
		Status:         models.SubscriptionStatusActive,
	}))
	require.NoError(t, store.UpsertSubscription(&models.UserSubscription{
		UserID:           "user-2",
		SubscriptionID:   "sub_lapsed",
		ProductID:        "prod_sub",
		Status:           models.SubscriptionStatusActive,
		CurrentPeriodEnd: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}))

	expired, err := store.ExpireLapsedSubscriptions(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	sub, err := store.GetSubscription("sub_no_end")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
}

func TestRecordAttemptAccumulatesInPlace(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.RecordAttempt("user-1", "item_1", "lesson_1", false, now))
	require.NoError(t, store.RecordAttempt("user-1", "item_1", "lesson_1", true, now.Add(time.Minute)))
	require.NoError(t, store.RecordAttempt("user-1", "item_1", "lesson_1", false, now.Add(2*time.Minute)))

	row, err := store.GetItemProgress("user-1", "item_1")
	require.NoError(t, err)
	assert.Equal(t, 3, row.Attempts)
	assert.Equal(t, 1, row.CorrectAttempts)
	assert.True(t, row.Completed, "a later wrong answer must not clear completion")

	var count int64
	require.NoError(t, store.DB().Model(&models.UserItemProgress{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecordAttemptIsScopedPerUser(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	require.NoError(t, store.RecordAttempt("user-1", "item_1", "lesson_1", true, now))
	require.NoError(t, store.RecordAttempt("user-2", "item_1", "lesson_1", false, now))

	row, err := store.GetItemProgress("user-2", "item_1")
	require.NoError(t, err)
	assert.Equal(t, 1, row.Attempts)
	assert.False(t, row.Completed)
}

func TestSaveLessonProgressOverwritesSnapshot(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveLessonProgress(&models.UserLessonProgress{
		UserID:         "user-1",
		LessonID:       "lesson_1",
		CompletedItems: 1,
		TotalItems:     3,
		LastStudiedAt:  time.Now(),
	}))
	require.NoError(t, store.SaveLessonProgress(&models.UserLessonProgress{
		UserID:         "user-1",
		LessonID:       "lesson_1",
		CompletedItems: 3,
		TotalItems:     3,
		Completed:      true,
		LastStudiedAt:  time.Now(),
	}))

	progress, err := store.GetLessonProgress("user-1", "lesson_1")
	require.NoError(t, err)
	assert.Equal(t, 3, progress.CompletedItems)
	assert.True(t, progress.Completed)

	var count int64
	require.NoError(t, store.DB().Model(&models.UserLessonProgress{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSaveUserStatsCreatesThenUpdates(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetUserStats("user-1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	now := time.Now()
	require.NoError(t, store.SaveUserStats(&models.UserStats{
		UserID:        "user-1",
		CurrentStreak: 1,
		LongestStreak: 1,
		LastStudyDate: &now,
	}))

	stats, err := store.GetUserStats("user-1")
	require.NoError(t, err)

	stats.CurrentStreak = 2
	stats.LongestStreak = 2
	stats.TotalItemsCompleted = 4
	require.NoError(t, store.SaveUserStats(stats))

	got, err := store.GetUserStats("user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentStreak)
	assert.Equal(t, 4, got.TotalItemsCompleted)

	var count int64
	require.NoError(t, store.DB().Model(&models.UserStats{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSeededCatalogIsPresent(t *testing.T) {
	store := newTestStore(t)

	lesson, err := store.GetLesson("greetings_l1")
	require.NoError(t, err)
	assert.Equal(t, "Greetings", lesson.TitleEn)

	items, err := store.GetLessonItems("greetings_l1")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "greetings_l1_i1", items[0].ItemID)

	count, err := store.CountLessonItems("greetings_l1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestWebhookFailuresRoundTrip(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.RecordWebhookFailure(&models.WebhookFailure{
		Reference: "ref-1",
		EventID:   "evt_1",
		EventType: "checkout.completed",
		Reason:    "missing userId in checkout metadata",
		Payload:   `{"id":"ch_1"}`,
	}))

	failures, err := store.ListWebhookFailures()
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "ref-1", failures[0].Reference)
}
