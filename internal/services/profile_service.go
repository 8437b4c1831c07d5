package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/localnerve/designerhub/internal/database"
	"github.com/localnerve/designerhub/internal/models"
	"github.com/localnerve/designerhub/internal/types"
	"gorm.io/gorm"
)

const maxEntryTitleLength = 32

// SocialLinkInput is a social network link on a profile
type SocialLinkInput struct {
	Title string `json:"social_network_title" validate:"required,max=32"`
	Link  string `json:"link_to_social_networks" validate:"required"`
}

// ContactInput is a contact entry on a profile
type ContactInput struct {
	Title string `json:"contact_title" validate:"required,max=32"`
	Data  string `json:"contact_data" validate:"required"`
}

// ProfileInput carries a profile with its links and contacts
type ProfileInput struct {
	Descriptions   string                          `json:"user_descriptions" validate:"required"`
	SocialNetworks types.FlexList[SocialLinkInput] `json:"social_networks" validate:"dive"`
	ContactData    types.FlexList[ContactInput]    `json:"contact_data" validate:"dive"`
}

// ProfilePatch carries a partial profile update; nil lists are left untouched
// and non-nil lists replace the existing entries.
type ProfilePatch struct {
	Descriptions   *string                          `json:"user_descriptions" validate:"omitempty,min=1"`
	SocialNetworks *types.FlexList[SocialLinkInput] `json:"social_networks"`
	ContactData    *types.FlexList[ContactInput]    `json:"contact_data"`
}

// ProfileView is a profile assembled with its owner's name, links and contacts
type ProfileView struct {
	ID             uint64                `json:"id"`
	User           uint64                `json:"user"`
	FirstName      string                `json:"user_first_name"`
	LastName       *string               `json:"user_last_name"`
	Descriptions   string                `json:"user_descriptions"`
	SocialNetworks []models.SocialLink   `json:"social_networks"`
	ContactData    []models.ContactEntry `json:"contact_data"`
}

// ProfileService owns profiles, social links and contact entries
type ProfileService struct {
	DB *gorm.DB
}

// NewProfileService builds the profile service
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// CreateProfile creates ownerID's profile together with its links and contacts
func (s *ProfileService) CreateProfile(ctx context.Context, ownerID uint64, in ProfileInput) (*ProfileView, error) {
	if ownerID == 0 {
		return nil, types.Auth("profile.create", "Authentication credentials were not provided")
	}
	if strings.TrimSpace(in.Descriptions) == "" {
		return nil, types.Validation("profile.validation.descriptions", "Descriptions are required")
	}
	if err := validateEntries(in.SocialNetworks.Slice(), in.ContactData.Slice()); err != nil {
		return nil, err
	}

	var profileID uint64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Profile{}).Where("account_id = ?", ownerID).Count(&count).Error; err != nil {
			return fmt.Errorf("check profile: %w", err)
		}
		if count > 0 {
			return types.Conflict("profile.conflict", "This account already has a profile")
		}

		profile := models.Profile{AccountID: ownerID, Descriptions: models.LongText(in.Descriptions)}
		if err := tx.Create(&profile).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return types.Conflict("profile.conflict", "This account already has a profile")
			}
			return fmt.Errorf("create profile: %w", err)
		}
		profileID = profile.ID

		return createEntries(tx, profile.ID, in.SocialNetworks.Slice(), in.ContactData.Slice())
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "profile created", "profile_id", profileID, "account_id", ownerID)
	return s.GetProfile(ctx, profileID)
}

// GetProfile assembles a profile with its links and contacts
func (s *ProfileService) GetProfile(ctx context.Context, profileID uint64) (*ProfileView, error) {
	db := s.DB.WithContext(ctx)
	var profile models.Profile
	err := db.First(&profile, profileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("profile", "Profile %d not found", profileID)
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	views, err := s.assemble(db, []models.Profile{profile})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListProfiles returns every profile ordered by id
func (s *ProfileService) ListProfiles(ctx context.Context) ([]ProfileView, error) {
	db := s.DB.WithContext(ctx)
	var profiles []models.Profile
	if err := db.Order("id").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return s.assemble(db, profiles)
}

// UpdateProfile changes a profile owned by callerID
func (s *ProfileService) UpdateProfile(ctx context.Context, callerID, profileID uint64, patch ProfilePatch) (*ProfileView, error) {
	if patch.Descriptions != nil && strings.TrimSpace(*patch.Descriptions) == "" {
		return nil, types.Validation("profile.validation.descriptions", "Descriptions are required")
	}
	var links []SocialLinkInput
	var contacts []ContactInput
	if patch.SocialNetworks != nil {
		links = patch.SocialNetworks.Slice()
	}
	if patch.ContactData != nil {
		contacts = patch.ContactData.Slice()
	}
	if err := validateEntries(links, contacts); err != nil {
		return nil, err
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedProfile(tx, callerID, profileID); err != nil {
			return err
		}
		if patch.Descriptions != nil {
			if err := tx.Model(&models.Profile{}).Where("id = ?", profileID).
				Update("descriptions", models.LongText(*patch.Descriptions)).Error; err != nil {
				return fmt.Errorf("update profile: %w", err)
			}
		}
		if patch.SocialNetworks != nil {
			if err := tx.Where("profile_id = ?", profileID).Delete(&models.SocialLink{}).Error; err != nil {
				return fmt.Errorf("replace social links: %w", err)
			}
		}
		if patch.ContactData != nil {
			if err := tx.Where("profile_id = ?", profileID).Delete(&models.ContactEntry{}).Error; err != nil {
				return fmt.Errorf("replace contacts: %w", err)
			}
		}
		return createEntries(tx, profileID, links, contacts)
	})
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, profileID)
}

// DeleteProfile removes a profile owned by callerID with everything hanging off it
func (s *ProfileService) DeleteProfile(ctx context.Context, callerID, profileID uint64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedProfile(tx, callerID, profileID); err != nil {
			return err
		}

		chats := tx.Model(&models.Chat{}).Select("id").Where("user1_id = ? OR user2_id = ?", profileID, profileID)
		if err := tx.Where("chat_id IN (?) OR sender_id = ?", chats, profileID).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}
		if err := tx.Where("user1_id = ? OR user2_id = ?", profileID, profileID).Delete(&models.Chat{}).Error; err != nil {
			return fmt.Errorf("delete chats: %w", err)
		}
		for _, dependent := range []any{&models.Review{}, &models.SocialLink{}, &models.ContactEntry{}} {
			if err := tx.Where("profile_id = ?", profileID).Delete(dependent).Error; err != nil {
				return fmt.Errorf("delete profile dependents: %w", err)
			}
		}
		if err := tx.Delete(&models.Profile{}, profileID).Error; err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		return nil
	})
}

// ListSocialLinks returns links, optionally only those of one profile
func (s *ProfileService) ListSocialLinks(ctx context.Context, profileID uint64) ([]models.SocialLink, error) {
	links := []models.SocialLink{}
	query := s.DB.WithContext(ctx).Order("id")
	if profileID != 0 {
		query = query.Where("profile_id = ?", profileID)
	}
	if err := query.Find(&links).Error; err != nil {
		return nil, fmt.Errorf("list social links: %w", err)
	}
	return links, nil
}

// GetSocialLink loads one link
func (s *ProfileService) GetSocialLink(ctx context.Context, id uint64) (*models.SocialLink, error) {
	var link models.SocialLink
	if err := findEntry(s.DB.WithContext(ctx), &link, id, "profile.social_link"); err != nil {
		return nil, err
	}
	return &link, nil
}

// AddSocialLink attaches a link to callerID's profile
func (s *ProfileService) AddSocialLink(ctx context.Context, callerID uint64, in SocialLinkInput) (*models.SocialLink, error) {
	if err := validateEntries([]SocialLinkInput{in}, nil); err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	profile, err := profileOf(db, callerID)
	if err != nil {
		return nil, err
	}
	link := models.SocialLink{ProfileID: profile.ID, Title: strings.TrimSpace(in.Title), Link: models.LongText(in.Link)}
	if err := db.Create(&link).Error; err != nil {
		return nil, fmt.Errorf("create social link: %w", err)
	}
	return &link, nil
}

// UpdateSocialLink changes a link on callerID's profile
func (s *ProfileService) UpdateSocialLink(ctx context.Context, callerID, id uint64, in SocialLinkInput) (*models.SocialLink, error) {
	if err := validateEntries([]SocialLinkInput{in}, nil); err != nil {
		return nil, err
	}
	var link models.SocialLink
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOwnedEntry(tx, &link, &link.ProfileID, callerID, id, "profile.social_link"); err != nil {
			return err
		}
		link.Title = strings.TrimSpace(in.Title)
		link.Link = models.LongText(in.Link)
		return tx.Save(&link).Error
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// DeleteSocialLink removes a link from callerID's profile
func (s *ProfileService) DeleteSocialLink(ctx context.Context, callerID, id uint64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link models.SocialLink
		if err := findOwnedEntry(tx, &link, &link.ProfileID, callerID, id, "profile.social_link"); err != nil {
			return err
		}
		return tx.Delete(&link).Error
	})
}

// ListContacts returns contact entries, optionally only those of one profile
func (s *ProfileService) ListContacts(ctx context.Context, profileID uint64) ([]models.ContactEntry, error) {
	contacts := []models.ContactEntry{}
	query := s.DB.WithContext(ctx).Order("id")
	if profileID != 0 {
		query = query.Where("profile_id = ?", profileID)
	}
	if err := query.Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

// GetContact loads one contact entry
func (s *ProfileService) GetContact(ctx context.Context, id uint64) (*models.ContactEntry, error) {
	var contact models.ContactEntry
	if err := findEntry(s.DB.WithContext(ctx), &contact, id, "profile.contact"); err != nil {
		return nil, err
	}
	return &contact, nil
}

// AddContact attaches a contact entry to callerID's profile
func (s *ProfileService) AddContact(ctx context.Context, callerID uint64, in ContactInput) (*models.ContactEntry, error) {
	if err := validateEntries(nil, []ContactInput{in}); err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	profile, err := profileOf(db, callerID)
	if err != nil {
		return nil, err
	}
	contact := models.ContactEntry{ProfileID: profile.ID, Title: strings.TrimSpace(in.Title), Data: models.LongText(in.Data)}
	if err := db.Create(&contact).Error; err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return &contact, nil
}

// UpdateContact changes a contact entry on callerID's profile
func (s *ProfileService) UpdateContact(ctx context.Context, callerID, id uint64, in ContactInput) (*models.ContactEntry, error) {
	if err := validateEntries(nil, []ContactInput{in}); err != nil {
		return nil, err
	}
	var contact models.ContactEntry
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOwnedEntry(tx, &contact, &contact.ProfileID, callerID, id, "profile.contact"); err != nil {
			return err
		}
		contact.Title = strings.TrimSpace(in.Title)
		contact.Data = models.LongText(in.Data)
		return tx.Save(&contact).Error
	})
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// DeleteContact removes a contact entry from callerID's profile
func (s *ProfileService) DeleteContact(ctx context.Context, callerID, id uint64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contact models.ContactEntry
		if err := findOwnedEntry(tx, &contact, &contact.ProfileID, callerID, id, "profile.contact"); err != nil {
			return err
		}
		return tx.Delete(&contact).Error
	})
}

// assemble joins profiles with owner names, links and contacts in three queries
func (s *ProfileService) assemble(db *gorm.DB, profiles []models.Profile) ([]ProfileView, error) {
	views := make([]ProfileView, 0, len(profiles))
	if len(profiles) == 0 {
		return views, nil
	}

	profileIDs := make([]uint64, 0, len(profiles))
	accountIDs := make([]uint64, 0, len(profiles))
	for _, p := range profiles {
		profileIDs = append(profileIDs, p.ID)
		accountIDs = append(accountIDs, p.AccountID)
	}

	var accounts []models.Account
	if err := db.Select("id", "first_name", "last_name").Where("id IN ?", accountIDs).Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("load profile owners: %w", err)
	}
	var links []models.SocialLink
	if err := db.Where("profile_id IN ?", profileIDs).Order("id").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("load social links: %w", err)
	}
	var contacts []models.ContactEntry
	if err := db.Where("profile_id IN ?", profileIDs).Order("id").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}

	owners := make(map[uint64]models.Account, len(accounts))
	for _, a := range accounts {
		owners[a.ID] = a
	}
	linksByProfile := make(map[uint64][]models.SocialLink)
	for _, l := range links {
		linksByProfile[l.ProfileID] = append(linksByProfile[l.ProfileID], l)
	}
	contactsByProfile := make(map[uint64][]models.ContactEntry)
	for _, c := range contacts {
		contactsByProfile[c.ProfileID] = append(contactsByProfile[c.ProfileID], c)
	}

	for _, p := range profiles {
		owner := owners[p.AccountID]
		view := ProfileView{
			ID:             p.ID,
			User:           p.AccountID,
			FirstName:      owner.FirstName,
			LastName:       owner.LastName,
			Descriptions:   string(p.Descriptions),
			SocialNetworks: linksByProfile[p.ID],
			ContactData:    contactsByProfile[p.ID],
		}
		if view.SocialNetworks == nil {
			view.SocialNetworks = []models.SocialLink{}
		}
		if view.ContactData == nil {
			view.ContactData = []models.ContactEntry{}
		}
		views = append(views, view)
	}
	return views, nil
}

func createEntries(tx *gorm.DB, profileID uint64, links []SocialLinkInput, contacts []ContactInput) error {
	if len(links) > 0 {
		rows := make([]models.SocialLink, 0, len(links))
		for _, l := range links {
			rows = append(rows, models.SocialLink{ProfileID: profileID, Title: strings.TrimSpace(l.Title), Link: models.LongText(l.Link)})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("create social links: %w", err)
		}
	}
	if len(contacts) > 0 {
		rows := make([]models.ContactEntry, 0, len(contacts))
		for _, c := range contacts {
			rows = append(rows, models.ContactEntry{ProfileID: profileID, Title: strings.TrimSpace(c.Title), Data: models.LongText(c.Data)})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("create contacts: %w", err)
		}
	}
	return nil
}

func validateEntries(links []SocialLinkInput, contacts []ContactInput) error {
	for _, l := range links {
		if err := validateEntry("profile.validation.social_network", l.Title, l.Link); err != nil {
			return err
		}
	}
	for _, c := range contacts {
		if err := validateEntry("profile.validation.contact", c.Title, c.Data); err != nil {
			return err
		}
	}
	return nil
}

func validateEntry(errorType, title, value string) error {
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > maxEntryTitleLength {
		return types.Validation(errorType, "Title must be 1 to %d characters", maxEntryTitleLength)
	}
	if strings.TrimSpace(value) == "" {
		return types.Validation(errorType, "Value is required")
	}
	return nil
}

// profileOf loads the profile belonging to accountID
func profileOf(db *gorm.DB, accountID uint64) (*models.Profile, error) {
	if accountID == 0 {
		return nil, types.Auth("profile", "Authentication credentials were not provided")
	}
	var profile models.Profile
	err := db.Where("account_id = ?", accountID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("profile", "Create a profile first")
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &profile, nil
}

func ownedProfile(tx *gorm.DB, callerID, profileID uint64) (*models.Profile, error) {
	if callerID == 0 {
		return nil, types.Auth("profile", "Authentication credentials were not provided")
	}
	var profile models.Profile
	err := tx.First(&profile, profileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("profile", "Profile %d not found", profileID)
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile.AccountID != callerID {
		return nil, types.Forbidden("profile", "You do not own this profile")
	}
	return &profile, nil
}

func findEntry(db *gorm.DB, dest any, id uint64, errorType string) error {
	err := db.First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.NotFound(errorType, "Entry %d not found", id)
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", errorType, err)
	}
	return nil
}

// findOwnedEntry loads dest and checks that the profile it hangs off belongs to callerID
func findOwnedEntry(tx *gorm.DB, dest any, profileID *uint64, callerID, id uint64, errorType string) error {
	if callerID == 0 {
		return types.Auth(errorType, "Authentication credentials were not provided")
	}
	if err := findEntry(tx, dest, id, errorType); err != nil {
		return err
	}
	_, err := ownedProfile(tx, callerID, *profileID)
	return err
}
