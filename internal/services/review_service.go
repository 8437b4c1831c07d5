package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/localnerve/designerhub/internal/models"
	"github.com/localnerve/designerhub/internal/types"
	"gorm.io/gorm"
)

// ReviewInput carries a review of a work
type ReviewInput struct {
	WorkID types.FlexID `json:"design" validate:"required"`
	Text   string       `json:"text" validate:"required"`
}

// ReviewService owns reviews left on works
type ReviewService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{
		DB:  db,
		Now: func() time.Time { return time.Now().UTC() },
	}
}

// CreateReview stores a review by the caller's profile
func (s *ReviewService) CreateReview(ctx context.Context, accountID uint64, in ReviewInput) (*models.Review, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, types.Validation("review.validation.text", "Review text is required")
	}
	db := s.DB.WithContext(ctx)
	profile, err := profileOf(db, accountID)
	if err != nil {
		return nil, err
	}
	if err := requireWork(db, in.WorkID.Uint64()); err != nil {
		return nil, err
	}

	review := models.Review{
		ProfileID: profile.ID,
		WorkID:    in.WorkID.Uint64(),
		Text:      models.LongText(in.Text),
		CreatedAt: s.Now(),
	}
	if err := db.Create(&review).Error; err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return &review, nil
}

// ListReviews returns reviews ordered by id, optionally for one work
func (s *ReviewService) ListReviews(ctx context.Context, workID uint64) ([]models.Review, error) {
	reviews := []models.Review{}
	query := s.DB.WithContext(ctx).Order("id")
	if workID != 0 {
		query = query.Where("work_id = ?", workID)
	}
	if err := query.Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

func (s *ReviewService) GetReview(ctx context.Context, reviewID uint64) (*models.Review, error) {
	return loadReview(s.DB.WithContext(ctx), reviewID)
}

// UpdateReview replaces the text of a review written by the caller
func (s *ReviewService) UpdateReview(ctx context.Context, accountID, reviewID uint64, text string) (*models.Review, error) {
	if strings.TrimSpace(text) == "" {
		return nil, types.Validation("review.validation.text", "Review text is required")
	}
	var review *models.Review
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		review, err = authoredReview(tx, accountID, reviewID)
		if err != nil {
			return err
		}
		review.Text = models.LongText(text)
		return tx.Model(review).Update("text", review.Text).Error
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteReview removes a review written by the caller
func (s *ReviewService) DeleteReview(ctx context.Context, accountID, reviewID uint64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		review, err := authoredReview(tx, accountID, reviewID)
		if err != nil {
			return err
		}
		return tx.Delete(review).Error
	})
}

func loadReview(db *gorm.DB, reviewID uint64) (*models.Review, error) {
	var review models.Review
	err := db.First(&review, reviewID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("review", "Review %d not found", reviewID)
	}
	if err != nil {
		return nil, fmt.Errorf("load review: %w", err)
	}
	return &review, nil
}

func authoredReview(tx *gorm.DB, accountID, reviewID uint64) (*models.Review, error) {
	if accountID == 0 {
		return nil, types.Auth("review", "Authentication credentials were not provided")
	}
	review, err := loadReview(tx, reviewID)
	if err != nil {
		return nil, err
	}
	var profile models.Profile
	err = tx.Where("account_id = ?", accountID).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile.ID == 0 || profile.ID != review.ProfileID {
		return nil, types.Forbidden("review", "You did not write this review")
	}
	return review, nil
}
