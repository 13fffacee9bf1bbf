package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Rating is unique per (user_id, store_id); resubmission updates the row.
type Rating struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_user_store;index" json:"userId"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	StoreID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_user_store;index" json:"storeId"`
	Store     Store     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Value     int       `gorm:"not null;check:value BETWEEN 1 AND 5" json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *Rating) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
