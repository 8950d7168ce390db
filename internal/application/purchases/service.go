package purchases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"realty-backend/internal/application/listings"
	"realty-backend/internal/domain"
	"realty-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrPropertyNotFound = errors.New("Property not found")

// ListingGetter loads the listing a deposit is made against.
type ListingGetter interface {
	GetListingByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
}

// Service records deposit requests. No payment is taken.
type Service struct {
	DB       *gorm.DB
	Listings ListingGetter
	Now      func() time.Time
}

// DepositInput is the purchase form body.
type DepositInput struct {
	PropertyID string          `json:"propertyId" validate:"required,uuid"`
	Name       string          `json:"name" validate:"required,max=120"`
	Email      string          `json:"email" validate:"required,email"`
	Phone      string          `json:"phone" validate:"required,min=7,max=20"`
	Deposit    decimal.Decimal `json:"deposit" validate:"required,gte=1000"`
	CardNumber string          `json:"cardNumber" validate:"required,len=16,number"`
	ExpiryDate string          `json:"expiryDate" validate:"required,card_expiry"`
	CVV        string          `json:"cvv" validate:"required,len=3,number"`
}

func (in *DepositInput) normalize() {
	in.PropertyID = strings.TrimSpace(in.PropertyID)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.CardNumber = strings.NewReplacer(" ", "", "-", "").Replace(in.CardNumber)
	in.ExpiryDate = strings.TrimSpace(in.ExpiryDate)
	in.CVV = strings.TrimSpace(in.CVV)
}

// Validate normalizes the input and checks it, including card expiry.
func (in *DepositInput) Validate(now time.Time) error {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return err
	}
	if cardExpired(in.ExpiryDate, now) {
		return &validation.Error{Fields: map[string]string{"expiryDate": "card has expired"}}
	}
	return nil
}

// cardExpired reports whether an MM/YY expiry is before now's month.
func cardExpired(expiry string, now time.Time) bool {
	month, err1 := strconv.Atoi(expiry[:2])
	year, err2 := strconv.Atoi(expiry[3:])
	if err1 != nil || err2 != nil {
		return true
	}
	year += 2000
	return year < now.Year() || (year == now.Year() && month < int(now.Month()))
}

// Submit validates the form and stores a DepositRequest with a snapshot of
// the listing. Only the last four card digits are kept.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, in DepositInput) (*domain.DepositRequest, error) {
	if err := in.Validate(s.now()); err != nil {
		return nil, err
	}
	propertyID := uuid.MustParse(in.PropertyID)
	listing, err := s.Listings.GetListingByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, listings.ErrListingNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	snapshot, err := json.Marshal(listing)
	if err != nil {
		return nil, fmt.Errorf("snapshot listing: %w", err)
	}

	req := &domain.DepositRequest{
		UserID:          userID,
		PropertyID:      propertyID,
		FullName:        in.Name,
		Email:           in.Email,
		Phone:           in.Phone,
		Deposit:         in.Deposit.Round(2),
		CardLast4:       in.CardNumber[len(in.CardNumber)-4:],
		CardExpiry:      in.ExpiryDate,
		ListingSnapshot: datatypes.JSON(snapshot),
	}
	if err := s.DB.WithContext(ctx).Create(req).Error; err != nil {
		return nil, fmt.Errorf("create deposit request: %w", err)
	}
	return req, nil
}

// ListForUser returns the user's deposit requests, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.DepositRequest, error) {
	out := []domain.DepositRequest{}
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list deposit requests: %w", err)
	}
	return out, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
