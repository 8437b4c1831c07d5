package models

import "time"

// Profile is the public face of an account. At most one per account.
type Profile struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	AccountID    uint64    `gorm:"not null;uniqueIndex"`
	Descriptions LongText  `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SocialLink points at a profile's account on another network
type SocialLink struct {
	ID        uint64   `gorm:"primaryKey;autoIncrement" json:"id"`
	ProfileID uint64   `gorm:"not null;index" json:"user"`
	Title     string   `gorm:"size:32;not null" json:"social_network_title"`
	Link      LongText `gorm:"not null" json:"link_to_social_networks"`
}

// ContactEntry is a labelled way to reach a profile's owner
type ContactEntry struct {
	ID        uint64   `gorm:"primaryKey;autoIncrement" json:"id"`
	ProfileID uint64   `gorm:"not null;index" json:"user"`
	Title     string   `gorm:"size:32;not null" json:"contact_title"`
	Data      LongText `gorm:"not null" json:"contact_data"`
}

// TableName overrides the table name for Profile
func (Profile) TableName() string {
	return "user_profiles"
}

// TableName overrides the table name for SocialLink
func (SocialLink) TableName() string {
	return "user_social_links"
}

// TableName overrides the table name for ContactEntry
func (ContactEntry) TableName() string {
	return "user_contacts"
}
