package domain

// Item Model
type Item struct {
	ID          uint   `gorm:"primaryKey" json:"id"`                   // Primary key
	Title       string `gorm:"not null" json:"title"`                  // Item title
	Description string `gorm:"type:text" json:"description"`           // Item description
	Price       int64  `gorm:"not null" json:"price"`                  // Price in minor currency units
	Image       string `json:"image"`                                  // Image URL
	LargeImage  string `json:"large_image"`                            // Large image URL
	UserID      uint   `gorm:"index;not null" json:"user_id"`          // Foreign key to the creating User
	CreatedAt   int64  `gorm:"autoCreateTime:milli" json:"created_at"` // Timestamp of creation in milliseconds
}

// ItemUpdate lists the only fields an item update may touch
type ItemUpdate struct {
	Title       *string `json:"title" binding:"omitempty,min=1"` // New title
	Description *string `json:"description"`                     // New description
	Price       *int64  `json:"price" binding:"omitempty,gte=0"` // New price in minor units
	Image       *string `json:"image"`                           // New image URL
	LargeImage  *string `json:"large_image"`                     // New large image URL
}

// Columns returns the column map for the fields that were set
func (u ItemUpdate) Columns() map[string]any {
	cols := map[string]any{}
	if u.Title != nil {
		cols["title"] = *u.Title
	}
	if u.Description != nil {
		cols["description"] = *u.Description
	}
	if u.Price != nil {
		cols["price"] = *u.Price
	}
	if u.Image != nil {
		cols["image"] = *u.Image
	}
	if u.LargeImage != nil {
		cols["large_image"] = *u.LargeImage
	}
	return cols
}
