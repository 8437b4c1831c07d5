package models

import (
	"time"

	"gorm.io/datatypes"
)

// Category groups works
type Category struct {
	ID   uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:42;not null;uniqueIndex" json:"name"`
}

// Work is a published design-portfolio item.
// Views only grow, and only through a new ViewRecord.
type Work struct {
	ID             uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID      uint64         `gorm:"not null;index" json:"user"`
	Title          *string        `gorm:"size:65;uniqueIndex:idx_works_title" json:"design_title"`
	MediaData      string         `gorm:"size:512" json:"media_data"`
	Descriptions   LongText       `gorm:"not null" json:"descriptions"`
	CategoryID     uint64         `gorm:"not null;index" json:"category"`
	Hashtag        string         `gorm:"size:24;not null" json:"hashtag"`
	Views          uint64         `gorm:"not null;default:0" json:"views"`
	Likes          uint64         `gorm:"not null;default:0" json:"likes"`
	PublicatedDate datatypes.Date `gorm:"not null;index" json:"publicated_date"`
	CreatedAt      time.Time      `json:"-"`
	UpdatedAt      time.Time      `json:"-"`
}

// ViewRecord marks that an account has already been counted as a viewer of a work
type ViewRecord struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	AccountID uint64    `gorm:"not null;uniqueIndex:idx_view_account_work"`
	WorkID    uint64    `gorm:"not null;uniqueIndex:idx_view_account_work;index"`
	Timestamp time.Time `gorm:"not null"`
}

// Review is a profile's written feedback on a work
type Review struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ProfileID uint64    `gorm:"not null;index" json:"user"`
	WorkID    uint64    `gorm:"not null;index" json:"design"`
	Text      LongText  `gorm:"not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the table name for Category
func (Category) TableName() string {
	return "categories"
}

// TableName overrides the table name for Work
func (Work) TableName() string {
	return "designer_works"
}

// TableName overrides the table name for ViewRecord
func (ViewRecord) TableName() string {
	return "work_views"
}

// TableName overrides the table name for Review
func (Review) TableName() string {
	return "work_reviews"
}
