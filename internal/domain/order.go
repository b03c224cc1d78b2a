package domain

// Order Model, immutable once created
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`                                    // Primary key
	UserID      uint        `gorm:"uniqueIndex:idx_order_user_fp;not null" json:"user_id"`   // Owning user
	Total       int64       `gorm:"not null" json:"total"`                                   // Charged amount in minor units
	Charge      string      `gorm:"size:191;not null" json:"charge"`                         // Gateway charge reference
	Fingerprint string      `gorm:"uniqueIndex:idx_order_user_fp;size:64;not null" json:"-"` // Checkout key derived from the cart
	Items       []OrderItem `gorm:"constraint:OnDelete:CASCADE;" json:"items"`               // Snapshot rows
	CreatedAt   int64       `gorm:"autoCreateTime:milli" json:"created_at"`                  // Timestamp of creation in milliseconds
}

// OrderItem is a snapshot of an Item at purchase time
type OrderItem struct {
	ID          uint   `gorm:"primaryKey" json:"id"`         // Primary key
	OrderID     uint   `gorm:"index;not null" json:"-"`      // Foreign key to Order
	Title       string `gorm:"not null" json:"title"`        // Copied title
	Description string `gorm:"type:text" json:"description"` // Copied description
	Price       int64  `gorm:"not null" json:"price"`        // Copied unit price
	Image       string `json:"image"`                        // Copied image URL
	LargeImage  string `json:"large_image"`                  // Copied large image URL
	Quantity    int    `gorm:"not null" json:"quantity"`     // Quantity purchased
}

// SnapshotOf copies the item fields of a cart row, dropping the live item reference
func SnapshotOf(ci CartItem) OrderItem {
	return OrderItem{
		Title:       ci.Item.Title,
		Description: ci.Item.Description,
		Price:       ci.Item.Price,
		Image:       ci.Item.Image,
		LargeImage:  ci.Item.LargeImage,
		Quantity:    ci.Quantity,
	}
}

// ItemsTotal sums price times quantity over the snapshot rows
func (o Order) ItemsTotal() int64 {
	var total int64
	for _, it := range o.Items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

// Refund records a charge returned to the payer after a checkout could not complete.
// Refunds of a cart state move its processor idempotency key to a fresh attempt.
type Refund struct {
	ID          uint   `gorm:"primaryKey" json:"id"`                               // Primary key
	UserID      uint   `gorm:"index:idx_refund_user_fp;not null" json:"user_id"`   // Paying user
	Fingerprint string `gorm:"index:idx_refund_user_fp;size:64;not null" json:"-"` // Cart state of the failed checkout
	Charge      string `gorm:"size:191;not null" json:"charge"`                    // Refunded gateway charge reference
	CreatedAt   int64  `gorm:"autoCreateTime:milli" json:"created_at"`             // Timestamp of creation in milliseconds
}
