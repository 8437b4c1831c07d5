package services

import (
	"context"
	"testing"
	"time"

	"github.com/localnerve/designerhub/internal/models"
	"github.com/localnerve/designerhub/internal/testutil"
	"github.com/localnerve/designerhub/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type chatFixture struct {
	svc     *MessagingService
	db      *gorm.DB
	a, b, c models.Account
}

func newChatFixture(t *testing.T) chatFixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := chatFixture{
		svc: NewMessagingService(db),
		db:  db,
		a:   testutil.CreateAccount(t, db, "a@example.com", "password1"),
		b:   testutil.CreateAccount(t, db, "b@example.com", "password1"),
		c:   testutil.CreateAccount(t, db, "c@example.com", "password1"),
	}
	testutil.CreateProfile(t, db, f.a.ID)
	testutil.CreateProfile(t, db, f.b.ID)
	testutil.CreateProfile(t, db, f.c.ID)
	return f
}

func TestCreateChatUniquePair(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	chat, err := f.svc.CreateChat(ctx, f.a.ID, f.b.ID)
	require.NoError(t, err)
	assert.Equal(t, f.a.ID, chat.User1.AccountID)
	assert.Equal(t, f.b.ID, chat.User2.AccountID)
	assert.Equal(t, "Test", chat.User2.FirstName)

	_, err = f.svc.CreateChat(ctx, f.a.ID, f.b.ID)
	assert.ErrorIs(t, err, types.ErrConflict)

	_, err = f.svc.CreateChat(ctx, f.b.ID, f.a.ID)
	assert.ErrorIs(t, err, types.ErrConflict, "reverse order is the same pair")

	_, err = f.svc.CreateChat(ctx, f.a.ID, f.a.ID)
	assert.ErrorIs(t, err, types.ErrInvalidOperation)

	_, err = f.svc.CreateChat(ctx, f.a.ID, 999)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = f.svc.CreateChat(ctx, f.c.ID, f.b.ID)
	require.NoError(t, err)
}

func TestCreateChatNeedsProfiles(t *testing.T) {
	f := newChatFixture(t)
	loner := testutil.CreateAccount(t, f.db, "d@example.com", "password1")

	_, err := f.svc.CreateChat(context.Background(), loner.ID, f.a.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = f.svc.CreateChat(context.Background(), f.a.ID, loner.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestMessagesOrderedAndRestricted(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	f.svc.Now = func() time.Time { return now }

	chat, err := f.svc.CreateChat(ctx, f.a.ID, f.b.ID)
	require.NoError(t, err)

	_, err = f.svc.PostMessage(ctx, f.a.ID, chat.ID, "first")
	require.NoError(t, err)
	_, err = f.svc.PostMessage(ctx, f.b.ID, chat.ID, "same instant")
	require.NoError(t, err)
	now = now.Add(time.Minute)
	_, err = f.svc.PostMessage(ctx, f.a.ID, chat.ID, "later")
	require.NoError(t, err)

	_, err = f.svc.PostMessage(ctx, f.c.ID, chat.ID, "intruder")
	assert.ErrorIs(t, err, types.ErrForbidden)
	_, err = f.svc.PostMessage(ctx, f.a.ID, chat.ID, "   ")
	assert.ErrorIs(t, err, types.ErrValidation)
	_, err = f.svc.PostMessage(ctx, f.a.ID, chat.ID+10, "nowhere")
	assert.ErrorIs(t, err, types.ErrNotFound)

	messages, err := f.svc.ListMessages(ctx, f.b.ID, chat.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0].Text)
	assert.Equal(t, "same instant", messages[1].Text)
	assert.Equal(t, "later", messages[2].Text)

	_, err = f.svc.ListMessages(ctx, f.c.ID, chat.ID)
	assert.ErrorIs(t, err, types.ErrForbidden)

	full, err := f.svc.GetChat(ctx, f.a.ID, chat.ID)
	require.NoError(t, err)
	assert.Len(t, full.Messages, 3)

	one, err := f.svc.GetMessage(ctx, f.b.ID, messages[2].ID)
	require.NoError(t, err)
	assert.Equal(t, "later", one.Text)
	_, err = f.svc.GetMessage(ctx, f.c.ID, messages[2].ID)
	assert.ErrorIs(t, err, types.ErrForbidden)
}

func TestListChats(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateChat(ctx, f.a.ID, f.b.ID)
	require.NoError(t, err)
	_, err = f.svc.CreateChat(ctx, f.c.ID, f.a.ID)
	require.NoError(t, err)

	chats, err := f.svc.ListChats(ctx, f.a.ID)
	require.NoError(t, err)
	assert.Len(t, chats, 2)

	chats, err = f.svc.ListChats(ctx, f.b.ID)
	require.NoError(t, err)
	assert.Len(t, chats, 1)

	all, err := f.svc.ListAllMessages(ctx, f.b.ID)
	require.NoError(t, err)
	assert.Empty(t, all)
}
