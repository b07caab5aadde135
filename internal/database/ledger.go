package database

import (
	"learning-api/internal/models"
	"learning-api/pkg/logging"

	"gorm.io/gorm/clause"
)

// RecordTransaction appends a ledger row, insert-or-ignore keyed by the
// transaction id. Redelivery of the same provider event therefore produces at
// most one row; a plain insert here would break that under at-least-once
// delivery.
func (s *Store) RecordTransaction(txn *models.Transaction) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "transaction_id"}},
		DoNothing: true,
	}).Create(txn).Error
}

// MarkTransactionRefunded flips a ledger row to refunded. A missing row is a
// no-op: a refund for a not-yet-seen checkout can legitimately occur in test
// flows.
func (s *Store) MarkTransactionRefunded(transactionID string) error {
	result := s.db.Model(&models.Transaction{}).
		Where("transaction_id = ?", transactionID).
		Update("status", models.TransactionStatusRefunded)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		logging.Infof("Refund references unknown transaction %s, nothing to update", transactionID)
	}
	return nil
}

// GetTransaction fetches one ledger row by transaction id.
func (s *Store) GetTransaction(transactionID string) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.Where("transaction_id = ?", transactionID).First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// GetUserTransactions returns a user's ledger history, newest first.
func (s *Store) GetUserTransactions(userID string) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&txns).Error
	return txns, err
}

// CountTransactions counts ledger rows for a transaction id (used by
// idempotence checks).
func (s *Store) CountTransactions(transactionID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.Transaction{}).
		Where("transaction_id = ?", transactionID).
		Count(&count).Error
	return count, err
}
