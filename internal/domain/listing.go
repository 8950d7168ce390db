package domain

import (
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Listing is a property-for-sale record. Images are kept in listing_images;
// AdditionalImages and FormattedPrice are derived by Hydrate.
type Listing struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title         string         `gorm:"column:title;not null" json:"title"`
	Description   string         `gorm:"column:description" json:"description"`
	PropertyType  string         `gorm:"column:property_type" json:"propertyType"`
	Price         string         `gorm:"column:price;not null" json:"price"`
	Address       string         `gorm:"column:address;not null" json:"address"`
	Bedrooms      int            `gorm:"column:bedrooms;not null" json:"bedrooms"`
	Bathrooms     float64        `gorm:"column:bathrooms;not null" json:"bathrooms"`
	SquareFootage int            `gorm:"column:square_footage;not null" json:"squareFootage"`
	MainImage     string         `gorm:"column:main_image" json:"mainImage"`
	Images        []ListingImage `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt     time.Time      `gorm:"column:created_at;index" json:"createdAt"`

	AdditionalImages []string `gorm:"-" json:"additionalImages"`
	FormattedPrice   string   `gorm:"-" json:"formattedPrice"`
}

func (Listing) TableName() string {
	return "listings"
}

// BeforeCreate sets id if not already set (DBs without default uuid).
func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Hydrate fills the derived fields from the stored columns.
func (l *Listing) Hydrate() {
	sort.SliceStable(l.Images, func(i, j int) bool {
		return l.Images[i].Position < l.Images[j].Position
	})
	l.AdditionalImages = make([]string, 0, len(l.Images))
	for _, img := range l.Images {
		l.AdditionalImages = append(l.AdditionalImages, img.URL)
	}
	l.FormattedPrice = FormatPrice(l.Price)
}

// NumericPrice strips every non-digit from price and parses the rest.
// "$350,000" -> 350000. Returns 0 when nothing numeric is left.
func NumericPrice(price string) int64 {
	digits := DigitsOnly(price)
	if digits == "" {
		return 0
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// DigitsOnly drops every rune that is not an ASCII digit.
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// FormatPrice renders a stored price for display ("350000" -> "$350,000").
func FormatPrice(price string) string {
	if DigitsOnly(price) == "" {
		return ""
	}
	return "$" + humanize.Comma(NumericPrice(price))
}

// ListingImage is one entry of a listing's additional image gallery.
type ListingImage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	ListingID uuid.UUID `gorm:"column:listing_id;type:uuid;not null;uniqueIndex:idx_listing_images_position,priority:1"`
	Position  int       `gorm:"column:position;not null;uniqueIndex:idx_listing_images_position,priority:2"`
	URL       string    `gorm:"column:url;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (ListingImage) TableName() string {
	return "listing_images"
}
