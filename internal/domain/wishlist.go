package domain

import (
	"time"

	"github.com/google/uuid"
)

// WishlistEntry saves a listing for a user. At most one row per pair.
type WishlistEntry struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_wishlist_user_property,priority:1" json:"userId"`
	PropertyID uuid.UUID `gorm:"column:property_id;type:uuid;not null;uniqueIndex:idx_wishlist_user_property,priority:2;index" json:"propertyId"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (WishlistEntry) TableName() string {
	return "wishlist_entries"
}
