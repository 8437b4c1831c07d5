package models

import "time"

// Account is a registered user, identified by email.
type Account struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"size:254;not null;uniqueIndex" json:"email"`
	FirstName    string    `gorm:"size:30;not null" json:"first_name"`
	LastName     *string   `gorm:"size:30" json:"last_name"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	IsStaff      bool      `gorm:"not null" json:"is_staff"`
	IsAdmin      bool      `gorm:"not null" json:"is_admin"`
	DateJoined   time.Time `gorm:"autoCreateTime" json:"date_joined"`
}

// PasswordResetToken is a single-use credential recovery token
type PasswordResetToken struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	AccountID uint64    `gorm:"not null;index"`
	Token     string    `gorm:"size:36;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName overrides the table name for Account
func (Account) TableName() string {
	return "accounts"
}

// TableName overrides the table name for PasswordResetToken
func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}
