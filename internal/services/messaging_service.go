package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/localnerve/designerhub/internal/database"
	"github.com/localnerve/designerhub/internal/models"
	"github.com/localnerve/designerhub/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// timestamp is reserved on some dialects, so let the dialector quote it
var byTimestamp = clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}}

// Participant identifies one side of a chat
type Participant struct {
	ProfileID uint64  `json:"id"`
	AccountID uint64  `json:"user"`
	FirstName string  `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// MessageView is a message as returned to clients
type MessageView struct {
	ID        uint64    `json:"id"`
	ChatID    uint64    `json:"chat"`
	Sender    uint64    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatView is a chat with its participants and, when loaded, its messages
type ChatView struct {
	ID        uint64        `json:"id"`
	User1     Participant   `json:"user1"`
	User2     Participant   `json:"user2"`
	CreatedAt time.Time     `json:"created_at"`
	Messages  []MessageView `json:"messages,omitempty"`
}

// MessagingService owns chats and messages between profiles
type MessagingService struct {
	DB  *gorm.DB
	Now func() time.Time
}

// NewMessagingService builds the messaging service
func NewMessagingService(db *gorm.DB) *MessagingService {
	return &MessagingService{
		DB:  db,
		Now: func() time.Time { return time.Now().UTC() },
	}
}

// CreateChat opens a chat between the initiator and the target account.
// Only one chat may exist per pair, in either order.
func (s *MessagingService) CreateChat(ctx context.Context, initiatorID, targetAccountID uint64) (*ChatView, error) {
	if initiatorID == 0 {
		return nil, types.Auth("messaging.chat", "Authentication credentials were not provided")
	}
	if targetAccountID == 0 {
		return nil, types.Validation("messaging.validation.user2", "user2 is required")
	}
	if initiatorID == targetAccountID {
		return nil, types.InvalidOperation("messaging.chat", "You cannot start a chat with yourself")
	}

	var chat models.Chat
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		from, err := profileOf(tx, initiatorID)
		if err != nil {
			return err
		}
		to, err := profileOf(tx, targetAccountID)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return types.NotFound("messaging.chat", "Account %d has no profile", targetAccountID)
			}
			return err
		}

		low, high := from.ID, to.ID
		if low > high {
			low, high = high, low
		}

		var count int64
		if err := tx.Model(&models.Chat{}).Where("pair_low = ? AND pair_high = ?", low, high).Count(&count).Error; err != nil {
			return fmt.Errorf("check chat: %w", err)
		}
		if count > 0 {
			return types.Conflict("messaging.chat", "A chat between these users already exists")
		}

		chat = models.Chat{User1ID: from.ID, User2ID: to.ID, PairLow: low, PairHigh: high, CreatedAt: s.Now()}
		if err := tx.Create(&chat).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return types.Conflict("messaging.chat", "A chat between these users already exists")
			}
			return fmt.Errorf("create chat: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "chat created", "chat_id", chat.ID)
	views, err := s.chatViews(s.DB.WithContext(ctx), []models.Chat{chat})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListChats returns the chats the account's profile takes part in
func (s *MessagingService) ListChats(ctx context.Context, accountID uint64) ([]ChatView, error) {
	db := s.DB.WithContext(ctx)
	profile, err := profileOf(db, accountID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return []ChatView{}, nil
		}
		return nil, err
	}

	var chats []models.Chat
	if err := db.Where("user1_id = ? OR user2_id = ?", profile.ID, profile.ID).Order("id").Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return s.chatViews(db, chats)
}

// GetChat returns a chat with its messages to one of its participants
func (s *MessagingService) GetChat(ctx context.Context, accountID, chatID uint64) (*ChatView, error) {
	db := s.DB.WithContext(ctx)
	chat, _, err := s.participantChat(db, accountID, chatID)
	if err != nil {
		return nil, err
	}
	views, err := s.chatViews(db, []models.Chat{*chat})
	if err != nil {
		return nil, err
	}
	messages, err := s.listMessages(db, chatID)
	if err != nil {
		return nil, err
	}
	views[0].Messages = messages
	return &views[0], nil
}

// PostMessage appends a message from the account's profile to a chat it takes part in
func (s *MessagingService) PostMessage(ctx context.Context, senderAccountID, chatID uint64, text string) (*MessageView, error) {
	if strings.TrimSpace(text) == "" {
		return nil, types.Validation("messaging.validation.text", "Message text is required")
	}

	db := s.DB.WithContext(ctx)
	_, profile, err := s.participantChat(db, senderAccountID, chatID)
	if err != nil {
		return nil, err
	}

	message := models.Message{
		ChatID:    chatID,
		SenderID:  profile.ID,
		Text:      models.LongText(text),
		Timestamp: s.Now(),
	}
	if err := db.Create(&message).Error; err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	view := toMessageView(message)
	return &view, nil
}

// ListMessages returns a chat's messages oldest first to one of its participants
func (s *MessagingService) ListMessages(ctx context.Context, accountID, chatID uint64) ([]MessageView, error) {
	db := s.DB.WithContext(ctx)
	if _, _, err := s.participantChat(db, accountID, chatID); err != nil {
		return nil, err
	}
	return s.listMessages(db, chatID)
}

// ListAllMessages returns messages across every chat the account takes part in
func (s *MessagingService) ListAllMessages(ctx context.Context, accountID uint64) ([]MessageView, error) {
	db := s.DB.WithContext(ctx)
	profile, err := profileOf(db, accountID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return []MessageView{}, nil
		}
		return nil, err
	}

	chats := db.Model(&models.Chat{}).Select("id").Where("user1_id = ? OR user2_id = ?", profile.ID, profile.ID)
	var messages []models.Message
	if err := db.Where("chat_id IN (?)", chats).Order("chat_id").Order(byTimestamp).Order("id").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return toMessageViews(messages), nil
}

// GetMessage loads one message visible to the account
func (s *MessagingService) GetMessage(ctx context.Context, accountID, messageID uint64) (*MessageView, error) {
	db := s.DB.WithContext(ctx)
	var message models.Message
	err := db.First(&message, messageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("messaging.message", "Message %d not found", messageID)
	}
	if err != nil {
		return nil, fmt.Errorf("load message: %w", err)
	}
	if _, _, err := s.participantChat(db, accountID, message.ChatID); err != nil {
		return nil, err
	}
	view := toMessageView(message)
	return &view, nil
}

func (s *MessagingService) listMessages(db *gorm.DB, chatID uint64) ([]MessageView, error) {
	var messages []models.Message
	if err := db.Where("chat_id = ?", chatID).Order(byTimestamp).Order("id").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return toMessageViews(messages), nil
}

// participantChat loads a chat and the caller's profile, requiring the profile to take part
func (s *MessagingService) participantChat(db *gorm.DB, accountID, chatID uint64) (*models.Chat, *models.Profile, error) {
	if accountID == 0 {
		return nil, nil, types.Auth("messaging", "Authentication credentials were not provided")
	}
	var chat models.Chat
	err := db.First(&chat, chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, types.NotFound("messaging.chat", "Chat %d not found", chatID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load chat: %w", err)
	}

	profile, err := profileOf(db, accountID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, nil, types.Forbidden("messaging.chat", "You are not a participant of this chat")
		}
		return nil, nil, err
	}
	if !chat.HasParticipant(profile.ID) {
		return nil, nil, types.Forbidden("messaging.chat", "You are not a participant of this chat")
	}
	return &chat, profile, nil
}

func (s *MessagingService) chatViews(db *gorm.DB, chats []models.Chat) ([]ChatView, error) {
	views := make([]ChatView, 0, len(chats))
	if len(chats) == 0 {
		return views, nil
	}

	profileIDs := make([]uint64, 0, len(chats)*2)
	for _, c := range chats {
		profileIDs = append(profileIDs, c.User1ID, c.User2ID)
	}

	var participants []Participant
	err := db.Table(models.Profile{}.TableName()+" AS p").
		Select("p.id AS profile_id, p.account_id AS account_id, a.first_name AS first_name, a.last_name AS last_name").
		Joins("JOIN "+models.Account{}.TableName()+" AS a ON a.id = p.account_id").
		Where("p.id IN ?", profileIDs).
		Scan(&participants).Error
	if err != nil {
		return nil, fmt.Errorf("load chat participants: %w", err)
	}

	byProfile := make(map[uint64]Participant, len(participants))
	for _, p := range participants {
		byProfile[p.ProfileID] = p
	}
	participant := func(id uint64) Participant {
		if p, ok := byProfile[id]; ok {
			return p
		}
		return Participant{ProfileID: id}
	}

	for _, c := range chats {
		views = append(views, ChatView{
			ID:        c.ID,
			User1:     participant(c.User1ID),
			User2:     participant(c.User2ID),
			CreatedAt: c.CreatedAt,
		})
	}
	return views, nil
}

func toMessageView(m models.Message) MessageView {
	return MessageView{
		ID:        m.ID,
		ChatID:    m.ChatID,
		Sender:    m.SenderID,
		Text:      string(m.Text),
		Timestamp: m.Timestamp,
	}
}

func toMessageViews(messages []models.Message) []MessageView {
	views := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, toMessageView(m))
	}
	return views
}
