package wishlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"realty-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserPropertyRequired = errors.New("User ID and Property ID are required.")
	ErrInvalidPropertyID    = errors.New("Invalid property ID")
	ErrInvalidUserID        = errors.New("Invalid user ID")
)

// ListingFinder resolves property ids to listings. Unknown ids are omitted.
type ListingFinder interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Listing, error)
}

// Service stores per-user saved properties.
type Service struct {
	DB       *gorm.DB
	Listings ListingFinder
}

// EntryInput is the add/remove request body. UserID is optional; when sent it
// must match the session user.
type EntryInput struct {
	UserID     string `json:"userId"`
	PropertyID string `json:"propertyId"`
}

// ParseIDs checks the request ids. An empty userId is returned as uuid.Nil.
func (in EntryInput) ParseIDs() (userID, propertyID uuid.UUID, err error) {
	rawProperty := strings.TrimSpace(in.PropertyID)
	if rawProperty == "" {
		return uuid.Nil, uuid.Nil, ErrUserPropertyRequired
	}
	propertyID, err = uuid.Parse(rawProperty)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrInvalidPropertyID
	}
	if raw := strings.TrimSpace(in.UserID); raw != "" {
		userID, err = uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, uuid.Nil, ErrInvalidUserID
		}
	}
	return userID, propertyID, nil
}

// Add saves propertyID for userID. Saving the same pair twice is a no-op.
func (s *Service) Add(ctx context.Context, userID, propertyID uuid.UUID) error {
	if userID == uuid.Nil || propertyID == uuid.Nil {
		return ErrUserPropertyRequired
	}
	entry := domain.WishlistEntry{UserID: userID, PropertyID: propertyID}
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "property_id"}},
			DoNothing: true,
		}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("add wishlist entry: %w", err)
	}
	return nil
}

// Remove deletes the pair. Removing an absent pair succeeds.
func (s *Service) Remove(ctx context.Context, userID, propertyID uuid.UUID) error {
	if userID == uuid.Nil || propertyID == uuid.Nil {
		return ErrUserPropertyRequired
	}
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Delete(&domain.WishlistEntry{}).Error
	if err != nil {
		return fmt.Errorf("remove wishlist entry: %w", err)
	}
	return nil
}

// PropertyIDs returns the saved ids for userID in the order they were added.
func (s *Service) PropertyIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var entries []domain.WishlistEntry
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list wishlist entries: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.PropertyID)
	}
	return ids, nil
}

// ListForUser returns the saved listings. Entries that no longer resolve to a
// listing are dropped.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Listing, error) {
	ids, err := s.PropertyIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Listings.FindByIDs(ctx, ids)
}
