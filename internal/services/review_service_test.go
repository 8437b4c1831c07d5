package services

import (
	"context"
	"testing"

	"github.com/localnerve/designerhub/internal/testutil"
	"github.com/localnerve/designerhub/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewReviewService(db)
	ctx := context.Background()

	author := testutil.CreateAccount(t, db, "author@example.com", "password1")
	other := testutil.CreateAccount(t, db, "other@example.com", "password1")
	category := testutil.CreateCategory(t, db, "Branding")
	work := testutil.CreateWork(t, db, other.ID, category.ID, "Logo")

	_, err := svc.CreateReview(ctx, author.ID, ReviewInput{WorkID: types.FlexID(work.ID), Text: "Nice"})
	assert.ErrorIs(t, err, types.ErrNotFound, "reviews are written from a profile")

	profile := testutil.CreateProfile(t, db, author.ID)
	testutil.CreateProfile(t, db, other.ID)

	_, err = svc.CreateReview(ctx, author.ID, ReviewInput{WorkID: types.FlexID(work.ID + 5), Text: "Nice"})
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = svc.CreateReview(ctx, author.ID, ReviewInput{WorkID: types.FlexID(work.ID), Text: ""})
	assert.ErrorIs(t, err, types.ErrValidation)

	review, err := svc.CreateReview(ctx, author.ID, ReviewInput{WorkID: types.FlexID(work.ID), Text: "Nice"})
	require.NoError(t, err)
	assert.Equal(t, profile.ID, review.ProfileID)

	reviews, err := svc.ListReviews(ctx, work.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
	reviews, err = svc.ListReviews(ctx, work.ID+1)
	require.NoError(t, err)
	assert.Empty(t, reviews)

	_, err = svc.UpdateReview(ctx, other.ID, review.ID, "Mine now")
	assert.ErrorIs(t, err, types.ErrForbidden)

	updated, err := svc.UpdateReview(ctx, author.ID, review.ID, "Very nice")
	require.NoError(t, err)
	assert.EqualValues(t, "Very nice", updated.Text)

	assert.ErrorIs(t, svc.DeleteReview(ctx, other.ID, review.ID), types.ErrForbidden)
	require.NoError(t, svc.DeleteReview(ctx, author.ID, review.ID))

	_, err = svc.GetReview(ctx, review.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}
