package models

// WebhookFailure records a webhook event whose monetary effect could not be
// applied (for example a checkout with no user id in its metadata). The event
// is still acknowledged to stop provider redelivery; the row is the
// operator-visible trail, referenced by the alert email.
type WebhookFailure struct {
	BaseModel

	Reference string `json:"reference" gorm:"not null;size:36;uniqueIndex"`
	EventID   string `json:"event_id" gorm:"size:100;index"`
	EventType string `json:"event_type" gorm:"size:50"`
	Reason    string `json:"reason" gorm:"size:200"`

	// Payload excerpt for diagnosis (JSON)
	Payload string `json:"payload" gorm:"type:text"`
}
