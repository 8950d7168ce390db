package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"realty-backend/internal/domain"
	"realty-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxAdditionalImages bounds the gallery size of a single listing.
const MaxAdditionalImages = 10

var ErrListingNotFound = errors.New("Listing not found")

// Service is the listing store.
type Service struct {
	DB *gorm.DB
}

// CreateListingInput is the validated shape of a new listing. Image fields
// carry already-stored references (URLs), in gallery order.
type CreateListingInput struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	PropertyType     string   `json:"propertyType" validate:"required_without=Title"`
	Price            string   `json:"price" validate:"required,has_digit,price"`
	Address          string   `json:"address" validate:"required"`
	Bedrooms         *int     `json:"bedrooms" validate:"required,gte=0"`
	Bathrooms        *float64 `json:"bathrooms" validate:"required,gte=0"`
	SquareFootage    *int     `json:"squareFootage" validate:"required,gte=0"`
	MainImage        string   `json:"mainImage"`
	AdditionalImages []string `json:"additionalImages" validate:"max=10,dive,required"`
}

// Validate checks required fields. It runs before any image is stored.
func (in CreateListingInput) Validate() error {
	in.Address = strings.TrimSpace(in.Address)
	in.Title = strings.TrimSpace(in.Title)
	in.PropertyType = strings.TrimSpace(in.PropertyType)
	return validation.Struct(in)
}

// DeriveTitle builds the listing title used when none is supplied.
func DeriveTitle(bedrooms int, propertyType string) string {
	return fmt.Sprintf("%d Bedroom %s", bedrooms, strings.TrimSpace(propertyType))
}

// CreateListing inserts the listing and its gallery rows in one transaction.
func (s *Service) CreateListing(ctx context.Context, in CreateListingInput) (*domain.Listing, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = DeriveTitle(*in.Bedrooms, in.PropertyType)
	}
	listing := &domain.Listing{
		Title:         title,
		Description:   strings.TrimSpace(in.Description),
		PropertyType:  strings.TrimSpace(in.PropertyType),
		Price:         domain.DigitsOnly(in.Price),
		Address:       strings.TrimSpace(in.Address),
		Bedrooms:      *in.Bedrooms,
		Bathrooms:     *in.Bathrooms,
		SquareFootage: *in.SquareFootage,
		MainImage:     in.MainImage,
	}

	tx := s.DB.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()
	if err := tx.Omit(clause.Associations).Create(listing).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("create listing: %w", err)
	}
	if len(in.AdditionalImages) > 0 {
		images := make([]domain.ListingImage, 0, len(in.AdditionalImages))
		for i, url := range in.AdditionalImages {
			images = append(images, domain.ListingImage{
				ListingID: listing.ID,
				Position:  i + 1,
				URL:       url,
			})
		}
		if err := tx.Create(&images).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("create listing images: %w", err)
		}
		listing.Images = images
	}
	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("commit listing: %w", err)
	}
	listing.Hydrate()
	return listing, nil
}

// GetAllListings returns every listing, newest first, with galleries.
func (s *Service) GetAllListings(ctx context.Context) ([]domain.Listing, error) {
	var listings []domain.Listing
	err := s.DB.WithContext(ctx).
		Preload("Images").
		Order("created_at DESC").
		Order("id DESC").
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}
	hydrateAll(listings)
	return listings, nil
}

// SearchListings loads every listing and narrows it with Apply.
func (s *Service) SearchListings(ctx context.Context, f Filter) ([]domain.Listing, error) {
	all, err := s.GetAllListings(ctx)
	if err != nil {
		return nil, err
	}
	return Apply(all, f), nil
}

// GetListingByID returns ErrListingNotFound when no listing has the id.
func (s *Service) GetListingByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	var listing domain.Listing
	err := s.DB.WithContext(ctx).Preload("Images").Where("id = ?", id).First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	listing.Hydrate()
	return &listing, nil
}

// GetListingsByIDs returns the listings for ids in request order. Malformed,
// unknown and repeated ids are skipped.
func (s *Service) GetListingsByIDs(ctx context.Context, ids []string) ([]domain.Listing, error) {
	parsed := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		parsed = append(parsed, id)
	}
	return s.FindByIDs(ctx, parsed)
}

// FindByIDs is GetListingsByIDs for already-parsed ids.
func (s *Service) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Listing, error) {
	if len(ids) == 0 {
		return []domain.Listing{}, nil
	}
	var found []domain.Listing
	if err := s.DB.WithContext(ctx).Preload("Images").Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("fetch listings by id: %w", err)
	}
	byID := make(map[uuid.UUID]domain.Listing, len(found))
	for _, l := range found {
		l.Hydrate()
		byID[l.ID] = l
	}
	out := make([]domain.Listing, 0, len(found))
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			out = append(out, l)
			delete(byID, id)
		}
	}
	return out, nil
}

func hydrateAll(listings []domain.Listing) {
	for i := range listings {
		listings[i].Hydrate()
	}
}
