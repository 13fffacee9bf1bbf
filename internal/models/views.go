package models

import "time"

// StoreSummary is a store enriched with its aggregate rating and, when a
// viewer is known, the viewer's own rating.
type StoreSummary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Address       *string   `json:"address"`
	OwnerID       *string   `json:"ownerId"`
	CreatedAt     time.Time `json:"createdAt"`
	AverageRating float64   `json:"averageRating"`
	TotalRatings  int64     `json:"totalRatings"`
	UserRating    *int      `json:"userRating"`
}

// Rater is one rating on an owner's store joined with its author.
type Rater struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Rating  int       `json:"rating"`
	RatedAt time.Time `json:"ratedAt"`
}

type OwnerDashboard struct {
	Store         StoreSummary `json:"store"`
	AverageRating float64      `json:"averageRating"`
	TotalRatings  int64        `json:"totalRatings"`
	Raters        []Rater      `json:"raters"`
}

type Stats struct {
	TotalUsers   int64 `json:"totalUsers"`
	TotalStores  int64 `json:"totalStores"`
	TotalRatings int64 `json:"totalRatings"`
}

// UserDetail is the admin view of a user; Store is set for store owners.
type UserDetail struct {
	User
	Store *OwnedStore `json:"store,omitempty"`
}

type OwnedStore struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	AverageRating float64 `json:"averageRating"`
	TotalRatings  int64   `json:"totalRatings"`
}
