package database

import (
	"learning-api/internal/models"
)

// RecordWebhookFailure persists an operator-visible failure record for an
// event whose effect could not be applied.
func (s *Store) RecordWebhookFailure(failure *models.WebhookFailure) error {
	return s.db.Create(failure).Error
}

// ListWebhookFailures returns recorded failures, newest first. Operator
// tooling reads this.
func (s *Store) ListWebhookFailures() ([]models.WebhookFailure, error) {
	var failures []models.WebhookFailure
	err := s.db.Order("created_at DESC").Find(&failures).Error
	return failures, err
}
