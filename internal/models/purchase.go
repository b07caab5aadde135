package models

// Purchase statuses
const (
	PurchaseStatusPaid     = "paid"
	PurchaseStatusRefunded = "refunded"
)

// UserPurchase stores one-time purchases (single course or lifetime
// membership), upserted by the provider order id.
type UserPurchase struct {
	BaseModel

	UserID    string `json:"user_id" gorm:"not null;size:64;index"`
	OrderID   string `json:"order_id" gorm:"not null;size:100;uniqueIndex"`
	ProductID string `json:"product_id" gorm:"size:100;index"`

	// Set only for single-course purchases
	LessonID string `json:"lesson_id" gorm:"size:100"`

	Amount   int64  `json:"amount"`
	Currency string `json:"currency" gorm:"size:8"`

	Status string `json:"status" gorm:"not null;size:20;index"`
}
