package models

import "time"

// Chat is a conversation between two profiles.
// PairLow/PairHigh hold the participant ids in ascending order so the
// unique index covers both orderings of the same pair.
type Chat struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	User1ID   uint64 `gorm:"not null;index"`
	User2ID   uint64 `gorm:"not null;index"`
	PairLow   uint64 `gorm:"not null;uniqueIndex:idx_chat_pair"`
	PairHigh  uint64 `gorm:"not null;uniqueIndex:idx_chat_pair"`
	CreatedAt time.Time
}

// Message is one entry of a chat, ordered by Timestamp then ID
type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ChatID    uint64    `gorm:"not null;index:idx_message_chat_time"`
	SenderID  uint64    `gorm:"not null;index"`
	Text      LongText  `gorm:"not null"`
	Timestamp time.Time `gorm:"not null;index:idx_message_chat_time"`
}

// HasParticipant reports whether profileID is one of the two chat members
func (c Chat) HasParticipant(profileID uint64) bool {
	return c.User1ID == profileID || c.User2ID == profileID
}

// TableName overrides the table name for Chat
func (Chat) TableName() string {
	return "chats"
}

// TableName overrides the table name for Message
func (Message) TableName() string {
	return "messages"
}
