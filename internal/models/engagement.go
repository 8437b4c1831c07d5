package models

import "time"

// Favorite is an account's singleton collection of favorited works
type Favorite struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	AccountID uint64    `gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null"`
}

// FavoriteWork is one membership row of a Favorite collection
type FavoriteWork struct {
	FavoriteID uint64    `gorm:"primaryKey;autoIncrement:false"`
	WorkID     uint64    `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt  time.Time `gorm:"not null"`
}

// Like is an account's singleton collection of liked works
type Like struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	AccountID uint64    `gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null"`
}

// LikeWork is one membership row of a Like collection
type LikeWork struct {
	LikeID    uint64    `gorm:"primaryKey;autoIncrement:false"`
	WorkID    uint64    `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName overrides the table name for Favorite
func (Favorite) TableName() string {
	return "favorites"
}

// TableName overrides the table name for FavoriteWork
func (FavoriteWork) TableName() string {
	return "favorites_works"
}

// TableName overrides the table name for Like
func (Like) TableName() string {
	return "likes"
}

// TableName overrides the table name for LikeWork
func (LikeWork) TableName() string {
	return "likes_works"
}
