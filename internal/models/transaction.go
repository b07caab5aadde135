package models

// Transaction statuses. A transaction is created as completed and only ever
// mutated to refunded.
const (
	TransactionStatusCompleted = "completed"
	TransactionStatusRefunded  = "refunded"
)

// Transaction is one row of the monetary ledger. TransactionID is the
// provider's idempotency key (transaction id, falling back to checkout id when
// the payload lacks one); the unique index on it is what makes redelivery of
// the same event produce at most one row.
type Transaction struct {
	BaseModel

	UserID string `json:"user_id" gorm:"not null;size:64;index"`

	// Provider identifiers
	TransactionID  string `json:"transaction_id" gorm:"not null;size:100;uniqueIndex"`
	CheckoutID     string `json:"checkout_id" gorm:"size:100;index"`
	OrderID        string `json:"order_id" gorm:"size:100;index"`
	SubscriptionID string `json:"subscription_id" gorm:"size:100"`

	// Product information
	ProductID string `json:"product_id" gorm:"size:100"`
	Type      string `json:"type" gorm:"not null;size:20;index"` // product category at time of purchase

	// Monetary fields; amount is in the provider's minor units
	Amount   int64  `json:"amount"`
	Currency string `json:"currency" gorm:"size:8"`

	Status string `json:"status" gorm:"not null;size:20;index"`

	// Raw checkout metadata, kept for audit (JSON)
	Metadata string `json:"metadata" gorm:"type:text"`
}

// TableName avoids the reserved word "transaction"
func (Transaction) TableName() string {
	return "transactions"
}
