package services

import (
	"context"
	"testing"

	"github.com/localnerve/designerhub/internal/models"
	"github.com/localnerve/designerhub/internal/testutil"
	"github.com/localnerve/designerhub/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProfile(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewProfileService(db)
	ctx := context.Background()
	account := testutil.CreateAccount(t, db, "ada@example.com", "password1")

	view, err := svc.CreateProfile(ctx, account.ID, ProfileInput{
		Descriptions:   "Illustrator",
		SocialNetworks: types.FlexList[SocialLinkInput]{{Title: "Behance", Link: "https://behance.net/ada"}},
		ContactData: types.FlexList[ContactInput]{
			{Title: "Phone", Data: "+100"},
			{Title: "Telegram", Data: "@ada"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Test", view.FirstName)
	assert.Equal(t, "Illustrator", view.Descriptions)
	require.Len(t, view.SocialNetworks, 1)
	assert.Equal(t, "Behance", view.SocialNetworks[0].Title)
	require.Len(t, view.ContactData, 2)
	assert.Equal(t, view.ID, view.ContactData[1].ProfileID)

	_, err = svc.CreateProfile(ctx, account.ID, ProfileInput{Descriptions: "again"})
	assert.ErrorIs(t, err, types.ErrConflict)

	_, err = svc.CreateProfile(ctx, 0, ProfileInput{Descriptions: "anon"})
	assert.ErrorIs(t, err, types.ErrAuth)
}

func TestCreateProfileRollsBackOnBadChild(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewProfileService(db)
	account := testutil.CreateAccount(t, db, "ada@example.com", "password1")

	_, err := svc.CreateProfile(context.Background(), account.ID, ProfileInput{
		Descriptions:   "Illustrator",
		SocialNetworks: types.FlexList[SocialLinkInput]{{Title: "", Link: "x"}},
	})
	assert.ErrorIs(t, err, types.ErrValidation)

	var count int64
	require.NoError(t, db.Model(&models.Profile{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateAndDeleteProfile(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewProfileService(db)
	ctx := context.Background()
	owner := testutil.CreateAccount(t, db, "ada@example.com", "password1")
	other := testutil.CreateAccount(t, db, "bob@example.com", "password1")

	view, err := svc.CreateProfile(ctx, owner.ID, ProfileInput{
		Descriptions:   "Illustrator",
		SocialNetworks: types.FlexList[SocialLinkInput]{{Title: "Behance", Link: "https://behance.net/ada"}},
	})
	require.NoError(t, err)

	bio := "Art director"
	_, err = svc.UpdateProfile(ctx, other.ID, view.ID, ProfilePatch{Descriptions: &bio})
	assert.ErrorIs(t, err, types.ErrForbidden)

	links := types.FlexList[SocialLinkInput]{{Title: "Dribbble", Link: "https://dribbble.com/ada"}}
	updated, err := svc.UpdateProfile(ctx, owner.ID, view.ID, ProfilePatch{Descriptions: &bio, SocialNetworks: &links})
	require.NoError(t, err)
	assert.Equal(t, "Art director", updated.Descriptions)
	require.Len(t, updated.SocialNetworks, 1)
	assert.Equal(t, "Dribbble", updated.SocialNetworks[0].Title)

	assert.ErrorIs(t, svc.DeleteProfile(ctx, other.ID, view.ID), types.ErrForbidden)
	require.NoError(t, svc.DeleteProfile(ctx, owner.ID, view.ID))

	_, err = svc.GetProfile(ctx, view.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	remaining, err := svc.ListSocialLinks(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestListProfiles(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewProfileService(db)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com"} {
		account := testutil.CreateAccount(t, db, email, "password1")
		_, err := svc.CreateProfile(ctx, account.ID, ProfileInput{Descriptions: email})
		require.NoError(t, err)
	}

	views, err := svc.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "a@example.com", views[0].Descriptions)
	assert.NotNil(t, views[1].ContactData)
}

func TestSocialLinkAndContactEntries(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewProfileService(db)
	ctx := context.Background()
	owner := testutil.CreateAccount(t, db, "ada@example.com", "password1")
	other := testutil.CreateAccount(t, db, "bob@example.com", "password1")

	_, err := svc.AddSocialLink(ctx, owner.ID, SocialLinkInput{Title: "Behance", Link: "https://behance.net/ada"})
	assert.ErrorIs(t, err, types.ErrNotFound, "a profile is needed first")

	profile := testutil.CreateProfile(t, db, owner.ID)
	testutil.CreateProfile(t, db, other.ID)

	link, err := svc.AddSocialLink(ctx, owner.ID, SocialLinkInput{Title: "Behance", Link: "https://behance.net/ada"})
	require.NoError(t, err)
	assert.Equal(t, profile.ID, link.ProfileID)

	_, err = svc.UpdateSocialLink(ctx, other.ID, link.ID, SocialLinkInput{Title: "Hacked", Link: "x"})
	assert.ErrorIs(t, err, types.ErrForbidden)

	link, err = svc.UpdateSocialLink(ctx, owner.ID, link.ID, SocialLinkInput{Title: "Behance", Link: "https://behance.net/ada2"})
	require.NoError(t, err)
	assert.EqualValues(t, "https://behance.net/ada2", link.Link)

	contact, err := svc.AddContact(ctx, owner.ID, ContactInput{Title: "Phone", Data: "+100"})
	require.NoError(t, err)
	got, err := svc.GetContact(ctx, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, "Phone", got.Title)

	contacts, err := svc.ListContacts(ctx, profile.ID)
	require.NoError(t, err)
	assert.Len(t, contacts, 1)

	assert.ErrorIs(t, svc.DeleteContact(ctx, other.ID, contact.ID), types.ErrForbidden)
	require.NoError(t, svc.DeleteContact(ctx, owner.ID, contact.ID))
	require.NoError(t, svc.DeleteSocialLink(ctx, owner.ID, link.ID))

	_, err = svc.GetSocialLink(ctx, link.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}
