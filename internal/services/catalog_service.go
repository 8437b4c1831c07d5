package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/localnerve/designerhub/internal/database"
	"github.com/localnerve/designerhub/internal/models"
	"github.com/localnerve/designerhub/internal/storage"
	"github.com/localnerve/designerhub/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/hints"
)

const (
	maxTitleLength    = 65
	maxHashtagLength  = 24
	maxCategoryLength = 42
	mediaURLExpiry    = time.Hour
)

// WorkInput carries the writable fields of a work
type WorkInput struct {
	Title        *string      `json:"design_title" validate:"omitempty,max=65"`
	MediaData    string       `json:"media_data" validate:"omitempty,max=512"`
	Descriptions string       `json:"descriptions" validate:"required"`
	CategoryID   types.FlexID `json:"category" validate:"required"`
	Hashtag      string       `json:"hashtag" validate:"required,max=24"`
}

// WorkPatch carries a partial update; nil fields are left untouched
type WorkPatch struct {
	Title        *string       `json:"design_title" validate:"omitempty,max=65"`
	MediaData    *string       `json:"media_data" validate:"omitempty,max=512"`
	Descriptions *string       `json:"descriptions" validate:"omitempty,min=1"`
	CategoryID   *types.FlexID `json:"category"`
	Hashtag      *string       `json:"hashtag" validate:"omitempty,min=1,max=24"`
}

// Patch converts a full input into an update that sets every field
func (in WorkInput) Patch() WorkPatch {
	category := in.CategoryID
	return WorkPatch{
		Title:        in.Title,
		MediaData:    &in.MediaData,
		Descriptions: &in.Descriptions,
		CategoryID:   &category,
		Hashtag:      &in.Hashtag,
	}
}

// Input converts a patch into a full input, leaving absent fields empty
func (p WorkPatch) Input() WorkInput {
	var in WorkInput
	in.Title = p.Title
	if p.MediaData != nil {
		in.MediaData = *p.MediaData
	}
	if p.Descriptions != nil {
		in.Descriptions = *p.Descriptions
	}
	if p.CategoryID != nil {
		in.CategoryID = *p.CategoryID
	}
	if p.Hashtag != nil {
		in.Hashtag = *p.Hashtag
	}
	return in
}

// MediaUpload is an image sent with a work
type MediaUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// WorkFilter narrows ListWorks; zero fields do not filter
type WorkFilter struct {
	Title           string
	Owner           string
	Hashtag         string
	CategoryID      uint64
	PublishedAfter  *time.Time
	PublishedBefore *time.Time
}

// WorkView is a work as returned to clients
type WorkView struct {
	models.Work
	MediaURL string `json:"media_url,omitempty"`
}

// CatalogService owns categories and designer works
type CatalogService struct {
	DB    *gorm.DB
	Media storage.MediaStore // optional
	Now   func() time.Time
}

// NewCatalogService builds the catalog service; media may be nil
func NewCatalogService(db *gorm.DB, media storage.MediaStore) *CatalogService {
	return &CatalogService{
		DB:    db,
		Media: media,
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

// ListCategories returns every category ordered by name
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.DB.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// CreateCategory adds a category. Only administrators may do so.
func (s *CatalogService) CreateCategory(ctx context.Context, caller *Identity, name string) (*models.Category, error) {
	if caller == nil {
		return nil, types.Auth("catalog.category", "Authentication credentials were not provided")
	}
	if !caller.IsAdmin {
		return nil, types.Forbidden("catalog.category", "Only administrators can create categories")
	}
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxCategoryLength {
		return nil, types.Validation("catalog.validation.category", "Category name must be 1 to %d characters", maxCategoryLength)
	}

	category := models.Category{Name: name}
	if err := s.DB.WithContext(ctx).Create(&category).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, types.Conflict("catalog.conflict.category", "Category %q already exists", name)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &category, nil
}

// CreateWork publishes a work for ownerID with zeroed counters and today's date
func (s *CatalogService) CreateWork(ctx context.Context, ownerID uint64, in WorkInput, upload *MediaUpload) (*WorkView, error) {
	if ownerID == 0 {
		return nil, types.Auth("catalog.work", "Authentication credentials were not provided")
	}
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Descriptions) == "" {
		return nil, types.Validation("catalog.validation.descriptions", "Descriptions are required")
	}
	hashtag := strings.TrimSpace(in.Hashtag)
	if hashtag == "" || utf8.RuneCountInString(hashtag) > maxHashtagLength {
		return nil, types.Validation("catalog.validation.hashtag", "Hashtag must be 1 to %d characters", maxHashtagLength)
	}
	if upload == nil && strings.TrimSpace(in.MediaData) == "" {
		return nil, types.Validation("catalog.validation.media_data", "Media data is required")
	}

	db := s.DB.WithContext(ctx)
	if err := s.requireCategory(db, in.CategoryID.Uint64()); err != nil {
		return nil, err
	}

	work := models.Work{
		AccountID:      ownerID,
		Title:          title,
		MediaData:      strings.TrimSpace(in.MediaData),
		Descriptions:   models.LongText(in.Descriptions),
		CategoryID:     in.CategoryID.Uint64(),
		Hashtag:        hashtag,
		PublicatedDate: today(s.Now()),
	}

	if upload != nil {
		key, err := s.putMedia(ctx, upload)
		if err != nil {
			return nil, err
		}
		work.MediaData = key
	}

	if err := db.Create(&work).Error; err != nil {
		s.discardMedia(ctx, work.MediaData, upload != nil)
		if database.IsUniqueViolation(err) {
			return nil, types.Conflict("catalog.conflict.title", "A work with this title already exists")
		}
		return nil, fmt.Errorf("create work: %w", err)
	}

	slog.InfoContext(ctx, "work created", "work_id", work.ID, "account_id", ownerID)
	return s.view(ctx, work), nil
}

// ListWorks returns works matching filter ordered by id
func (s *CatalogService) ListWorks(ctx context.Context, filter WorkFilter) ([]WorkView, error) {
	query := s.DB.WithContext(ctx).
		Clauses(hints.Comment("select", "designerhub:list_works")).
		Model(&models.Work{}).
		Select("designer_works.*")

	if title := strings.TrimSpace(filter.Title); title != "" {
		query = query.Where("LOWER(designer_works.title) LIKE ? ESCAPE '!'", containsPattern(title))
	}
	if hashtag := strings.TrimSpace(filter.Hashtag); hashtag != "" {
		query = query.Where("LOWER(designer_works.hashtag) LIKE ? ESCAPE '!'", containsPattern(hashtag))
	}
	if owner := strings.TrimSpace(filter.Owner); owner != "" {
		pattern := containsPattern(owner)
		query = query.
			Joins("JOIN accounts ON accounts.id = designer_works.account_id").
			Where(
				"LOWER(accounts.first_name) LIKE ? ESCAPE '!' OR LOWER(COALESCE(accounts.last_name, '')) LIKE ? ESCAPE '!' OR LOWER(accounts.email) LIKE ? ESCAPE '!'",
				pattern, pattern, pattern,
			)
	}
	if filter.CategoryID != 0 {
		query = query.Where("designer_works.category_id = ?", filter.CategoryID)
	}
	if filter.PublishedAfter != nil {
		query = query.Where("designer_works.publicated_date >= ?", today(*filter.PublishedAfter))
	}
	if filter.PublishedBefore != nil {
		query = query.Where("designer_works.publicated_date <= ?", today(*filter.PublishedBefore))
	}

	var works []models.Work
	if err := query.Order("designer_works.id").Find(&works).Error; err != nil {
		return nil, fmt.Errorf("list works: %w", err)
	}

	views := make([]WorkView, 0, len(works))
	for _, work := range works {
		views = append(views, *s.view(ctx, work))
	}
	return views, nil
}

// GetWork loads a work without counting a view
func (s *CatalogService) GetWork(ctx context.Context, workID uint64) (*WorkView, error) {
	work, err := s.loadWork(s.DB.WithContext(ctx), workID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, *work), nil
}

// ViewWork returns a work to viewerID and counts the view once per account
func (s *CatalogService) ViewWork(ctx context.Context, viewerID, workID uint64) (*WorkView, error) {
	if viewerID == 0 {
		return nil, types.Auth("catalog.view", "Authentication credentials were not provided")
	}

	var work *models.Work
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.loadWork(tx, workID); err != nil {
			return err
		}

		record := models.ViewRecord{AccountID: viewerID, WorkID: workID, Timestamp: s.Now()}
		inserted := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}, {Name: "work_id"}},
			DoNothing: true,
		}).Create(&record)
		if inserted.Error != nil {
			return fmt.Errorf("record view: %w", inserted.Error)
		}

		if inserted.RowsAffected == 1 {
			if err := tx.Model(&models.Work{}).Where("id = ?", workID).
				UpdateColumn("views", gorm.Expr("views + ?", 1)).Error; err != nil {
				return fmt.Errorf("increment views: %w", err)
			}
		}

		var err error
		work, err = s.loadWork(tx, workID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, *work), nil
}

// UpdateWork changes a work owned by callerID
func (s *CatalogService) UpdateWork(ctx context.Context, callerID, workID uint64, patch WorkPatch, upload *MediaUpload) (*WorkView, error) {
	if callerID == 0 {
		return nil, types.Auth("catalog.work", "Authentication credentials were not provided")
	}
	db := s.DB.WithContext(ctx)
	work, err := s.loadWork(db, workID)
	if err != nil {
		return nil, err
	}
	if work.AccountID != callerID {
		return nil, types.Forbidden("catalog.work", "You do not own this work")
	}

	updates := map[string]any{}
	if patch.Title != nil {
		title, err := normalizeTitle(patch.Title)
		if err != nil {
			return nil, err
		}
		updates["title"] = title
	}
	if patch.Descriptions != nil {
		if strings.TrimSpace(*patch.Descriptions) == "" {
			return nil, types.Validation("catalog.validation.descriptions", "Descriptions are required")
		}
		updates["descriptions"] = models.LongText(*patch.Descriptions)
	}
	if patch.Hashtag != nil {
		hashtag := strings.TrimSpace(*patch.Hashtag)
		if hashtag == "" || utf8.RuneCountInString(hashtag) > maxHashtagLength {
			return nil, types.Validation("catalog.validation.hashtag", "Hashtag must be 1 to %d characters", maxHashtagLength)
		}
		updates["hashtag"] = hashtag
	}
	if patch.CategoryID != nil {
		if err := s.requireCategory(db, patch.CategoryID.Uint64()); err != nil {
			return nil, err
		}
		updates["category_id"] = patch.CategoryID.Uint64()
	}
	if patch.MediaData != nil && upload == nil {
		media := strings.TrimSpace(*patch.MediaData)
		if media == "" {
			return nil, types.Validation("catalog.validation.media_data", "Media data is required")
		}
		updates["media_data"] = media
	}
	if upload != nil {
		key, err := s.putMedia(ctx, upload)
		if err != nil {
			return nil, err
		}
		updates["media_data"] = key
	}

	previousMedia := work.MediaData
	if len(updates) > 0 {
		if err := db.Model(&models.Work{}).Where("id = ?", workID).Updates(updates).Error; err != nil {
			if key, ok := updates["media_data"].(string); ok {
				s.discardMedia(ctx, key, upload != nil)
			}
			if database.IsUniqueViolation(err) {
				return nil, types.Conflict("catalog.conflict.title", "A work with this title already exists")
			}
			return nil, fmt.Errorf("update work: %w", err)
		}
		if media, ok := updates["media_data"].(string); ok && media != previousMedia {
			s.discardMedia(ctx, previousMedia, storage.IsMediaKey(previousMedia))
		}
	}

	return s.GetWork(ctx, workID)
}

// DeleteWork removes a work owned by callerID with its views, memberships and reviews
func (s *CatalogService) DeleteWork(ctx context.Context, callerID, workID uint64) error {
	if callerID == 0 {
		return types.Auth("catalog.work", "Authentication credentials were not provided")
	}

	var media string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		work, err := s.loadWork(tx, workID)
		if err != nil {
			return err
		}
		if work.AccountID != callerID {
			return types.Forbidden("catalog.work", "You do not own this work")
		}
		media = work.MediaData

		for _, dependent := range []any{
			&models.ViewRecord{},
			&models.FavoriteWork{},
			&models.LikeWork{},
			&models.Review{},
		} {
			if err := tx.Where("work_id = ?", workID).Delete(dependent).Error; err != nil {
				return fmt.Errorf("delete work dependents: %w", err)
			}
		}
		if err := tx.Delete(&models.Work{}, workID).Error; err != nil {
			return fmt.Errorf("delete work: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.discardMedia(ctx, media, storage.IsMediaKey(media))
	slog.InfoContext(ctx, "work deleted", "work_id", workID, "account_id", callerID)
	return nil
}

func (s *CatalogService) loadWork(db *gorm.DB, workID uint64) (*models.Work, error) {
	var work models.Work
	err := db.First(&work, workID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("catalog.work", "Work %d not found", workID)
	}
	if err != nil {
		return nil, fmt.Errorf("load work: %w", err)
	}
	return &work, nil
}

func (s *CatalogService) requireCategory(db *gorm.DB, categoryID uint64) error {
	if categoryID == 0 {
		return types.Validation("catalog.validation.category", "Category is required")
	}
	var count int64
	if err := db.Model(&models.Category{}).Where("id = ?", categoryID).Count(&count).Error; err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if count == 0 {
		return types.Validation("catalog.validation.category", "Invalid category %d", categoryID)
	}
	return nil
}

func (s *CatalogService) putMedia(ctx context.Context, upload *MediaUpload) (string, error) {
	if s.Media == nil {
		return "", types.Validation("catalog.validation.media_data", "Media uploads are not enabled")
	}
	key := storage.NewMediaKey(upload.Filename)
	if err := s.Media.Put(ctx, key, upload.Body, upload.Size, upload.ContentType); err != nil {
		return "", err
	}
	return key, nil
}

// discardMedia removes an uploaded object that is no longer referenced
func (s *CatalogService) discardMedia(ctx context.Context, key string, owned bool) {
	if !owned || s.Media == nil || key == "" {
		return
	}
	if err := s.Media.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "failed to delete media", "key", key, "error", err)
	}
}

func (s *CatalogService) view(ctx context.Context, work models.Work) *WorkView {
	v := &WorkView{Work: work}
	if s.Media != nil && storage.IsMediaKey(work.MediaData) {
		url, err := s.Media.PresignGet(ctx, work.MediaData, mediaURLExpiry)
		if err != nil {
			slog.WarnContext(ctx, "failed to presign media", "key", work.MediaData, "error", err)
		} else {
			v.MediaURL = url
		}
	}
	return v
}

func normalizeTitle(title *string) (*string, error) {
	if title == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*title)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > maxTitleLength {
		return nil, types.Validation("catalog.validation.title", "Title must be at most %d characters", maxTitleLength)
	}
	return &trimmed, nil
}

// today truncates t to its UTC calendar date
func today(t time.Time) datatypes.Date {
	y, m, d := t.UTC().Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// containsPattern builds a case-insensitive LIKE pattern escaped with '!'
func containsPattern(s string) string {
	replacer := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + replacer.Replace(strings.ToLower(s)) + "%"
}
