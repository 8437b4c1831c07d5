package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/localnerve/designerhub/internal/models"
	"github.com/localnerve/designerhub/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CollectionKind selects one of an account's per-kind work collections
type CollectionKind string

const (
	Favorites CollectionKind = "favorites"
	Likes     CollectionKind = "likes"
)

// AddResult reports whether AddToCollection changed anything
type AddResult string

const (
	Added          AddResult = "added"
	AlreadyPresent AddResult = "already_present"
)

// Removed is the status reported after a successful removal
const Removed = "removed"

func (k CollectionKind) valid() bool {
	return k == Favorites || k == Likes
}

func (k CollectionKind) newOwner(accountID uint64, now time.Time) any {
	if k == Likes {
		return &models.Like{AccountID: accountID, CreatedAt: now}
	}
	return &models.Favorite{AccountID: accountID, CreatedAt: now}
}

func (k CollectionKind) ownerTable() string {
	if k == Likes {
		return models.Like{}.TableName()
	}
	return models.Favorite{}.TableName()
}

func (k CollectionKind) newMember(collectionID, workID uint64, now time.Time) any {
	if k == Likes {
		return &models.LikeWork{LikeID: collectionID, WorkID: workID, CreatedAt: now}
	}
	return &models.FavoriteWork{FavoriteID: collectionID, WorkID: workID, CreatedAt: now}
}

func (k CollectionKind) memberModel() any {
	if k == Likes {
		return &models.LikeWork{}
	}
	return &models.FavoriteWork{}
}

func (k CollectionKind) memberColumn() string {
	if k == Likes {
		return "like_id"
	}
	return "favorite_id"
}

// CollectionView lists the works in one collection
type CollectionView struct {
	ID      uint64   `json:"id"`
	User    uint64   `json:"user"`
	Designs []uint64 `json:"designs"`
}

// EngagementService manages favorites and likes
type EngagementService struct {
	DB  *gorm.DB
	Now func() time.Time
}

// NewEngagementService builds the engagement service
func NewEngagementService(db *gorm.DB) *EngagementService {
	return &EngagementService{
		DB:  db,
		Now: func() time.Time { return time.Now().UTC() },
	}
}

// AddToCollection puts workID in the account's collection of kind.
// A like also raises the work's like counter.
func (s *EngagementService) AddToCollection(ctx context.Context, kind CollectionKind, accountID, workID uint64) (AddResult, error) {
	if err := checkCollectionArgs(kind, accountID); err != nil {
		return "", err
	}

	var result AddResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireWork(tx, workID); err != nil {
			return err
		}
		collectionID, err := s.ensureCollection(tx, kind, accountID)
		if err != nil {
			return err
		}

		inserted := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(kind.newMember(collectionID, workID, s.Now()))
		if inserted.Error != nil {
			return fmt.Errorf("add to %s: %w", kind, inserted.Error)
		}
		if inserted.RowsAffected == 0 {
			result = AlreadyPresent
			return nil
		}

		if kind == Likes {
			if err := tx.Model(&models.Work{}).Where("id = ?", workID).
				UpdateColumn("likes", gorm.Expr("likes + ?", 1)).Error; err != nil {
				return fmt.Errorf("increment likes: %w", err)
			}
		}
		result = Added
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

// RemoveFromCollection takes workID out of the account's collection of kind
func (s *EngagementService) RemoveFromCollection(ctx context.Context, kind CollectionKind, accountID, workID uint64) error {
	if err := checkCollectionArgs(kind, accountID); err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireWork(tx, workID); err != nil {
			return err
		}
		collectionID, err := s.ensureCollection(tx, kind, accountID)
		if err != nil {
			return err
		}

		deleted := tx.Where(kind.memberColumn()+" = ? AND work_id = ?", collectionID, workID).Delete(kind.memberModel())
		if deleted.Error != nil {
			return fmt.Errorf("remove from %s: %w", kind, deleted.Error)
		}
		if deleted.RowsAffected == 0 {
			return types.NotFound("engagement."+string(kind), "Work %d is not in %s", workID, kind)
		}

		if kind == Likes {
			if err := tx.Model(&models.Work{}).Where("id = ? AND likes > 0", workID).
				UpdateColumn("likes", gorm.Expr("likes - ?", 1)).Error; err != nil {
				return fmt.Errorf("decrement likes: %w", err)
			}
		}
		return nil
	})
}

// ListCollection returns the account's collection of kind, creating it if needed
func (s *EngagementService) ListCollection(ctx context.Context, kind CollectionKind, accountID uint64) (*CollectionView, error) {
	if err := checkCollectionArgs(kind, accountID); err != nil {
		return nil, err
	}

	view := &CollectionView{User: accountID, Designs: []uint64{}}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		collectionID, err := s.ensureCollection(tx, kind, accountID)
		if err != nil {
			return err
		}
		view.ID = collectionID

		if err := tx.Model(kind.memberModel()).
			Where(kind.memberColumn()+" = ?", collectionID).
			Order("work_id").
			Pluck("work_id", &view.Designs).Error; err != nil {
			return fmt.Errorf("list %s: %w", kind, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ensureCollection gets or creates the account's collection keyed by its unique account column
func (s *EngagementService) ensureCollection(tx *gorm.DB, kind CollectionKind, accountID uint64) (uint64, error) {
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}},
		DoNothing: true,
	}).Create(kind.newOwner(accountID, s.Now())).Error
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", kind, err)
	}

	var id uint64
	err = tx.Table(kind.ownerTable()).Select("id").Where("account_id = ?", accountID).Scan(&id).Error
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", kind, err)
	}
	if id == 0 {
		return 0, fmt.Errorf("load %s: collection for account %d missing", kind, accountID)
	}
	return id, nil
}

func checkCollectionArgs(kind CollectionKind, accountID uint64) error {
	if !kind.valid() {
		return types.InvalidOperation("engagement.kind", "Unknown collection %q", kind)
	}
	if accountID == 0 {
		return types.Auth("engagement."+string(kind), "Authentication credentials were not provided")
	}
	return nil
}

func requireWork(tx *gorm.DB, workID uint64) error {
	var work models.Work
	err := tx.Select("id").First(&work, workID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.NotFound("catalog.work", "Work %d not found", workID)
	}
	if err != nil {
		return fmt.Errorf("load work: %w", err)
	}
	return nil
}
