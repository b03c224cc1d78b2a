package domain

// User Model
type User struct {
	ID               uint        `gorm:"primaryKey" json:"id"`                          // Primary key
	Name             string      `gorm:"not null" json:"name"`                          // Display name
	Email            string      `gorm:"uniqueIndex;size:191;not null" json:"email"`    // Unique, lowercased email
	Password         string      `gorm:"not null" json:"-"`                             // Bcrypt hash, never serialized
	Permissions      Permissions `gorm:"type:varchar(255);not null" json:"permissions"` // Comma-joined permission set
	ResetToken       *string     `gorm:"size:64;index" json:"-"`                        // SHA-256 of the raw reset token
	ResetTokenExpiry *int64      `json:"-"`                                             // Reset token expiry in unix millis
	CreatedAt        int64       `gorm:"autoCreateTime:milli" json:"created_at"`        // Timestamp of creation in milliseconds
}
