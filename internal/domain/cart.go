package domain

// CartItem Model
type CartItem struct {
	ID       uint `gorm:"primaryKey" json:"id"`                                      // Primary key
	UserID   uint `gorm:"uniqueIndex:idx_cart_user_item;not null" json:"user_id"`    // Owning user
	ItemID   uint `gorm:"uniqueIndex:idx_cart_user_item;not null" json:"item_id"`    // Referenced item
	Quantity int  `gorm:"not null;default:1" json:"quantity"`                        // Always >= 1
	Item     Item `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"item"` // Preloaded item
}

// LineTotal is price times quantity for this row
func (ci CartItem) LineTotal() int64 {
	return ci.Item.Price * int64(ci.Quantity)
}
