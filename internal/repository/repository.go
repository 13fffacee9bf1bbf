// Package repository is the persistence contract used by the service layer.
// Implementations never interpolate caller input into SQL: filters are bound
// as parameters and sort targets arrive as typed, allow-listed fields.
package repository

import (
	"context"
	"errors"

	"store-ratings/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type UserSortField string

const (
	UserSortName      UserSortField = "name"
	UserSortEmail     UserSortField = "email"
	UserSortAddress   UserSortField = "address"
	UserSortRole      UserSortField = "role"
	UserSortCreatedAt UserSortField = "created_at"
)

type StoreSortField string

const (
	StoreSortName          StoreSortField = "name"
	StoreSortEmail         StoreSortField = "email"
	StoreSortAddress       StoreSortField = "address"
	StoreSortCreatedAt     StoreSortField = "created_at"
	StoreSortAverageRating StoreSortField = "average_rating"
)

// UserFilter narrows the admin user listing. Text fields are substring
// patterns; '%' and '_' inside them act as LIKE wildcards.
type UserFilter struct {
	Name    string
	Email   string
	Address string
	Role    models.UserRole
	SortBy  UserSortField
	Desc    bool
}

type StoreFilter struct {
	Name    string
	Address string
	SortBy  StoreSortField
	Desc    bool
}

type UserRepository interface {
	// CreateUser returns ErrDuplicate when the e-mail is already taken.
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	ListUsers(ctx context.Context, f UserFilter) ([]models.User, error)
	CountUsersByRole(ctx context.Context, role models.UserRole) (int64, error)
}

// StoreRepository returns stores with aggregates computed at read time:
// AverageRating is the raw mean (0 without ratings), TotalRatings the count.
type StoreRepository interface {
	// CreateStore returns ErrDuplicate when the e-mail is already taken.
	CreateStore(ctx context.Context, s *models.Store) error
	StoreExists(ctx context.Context, id string) (bool, error)
	ListStoreSummaries(ctx context.Context, f StoreFilter) ([]models.StoreSummary, error)
	GetStoreSummary(ctx context.Context, id string) (*models.StoreSummary, error)
	// GetStoreSummaryByOwner returns the owner's earliest-created store.
	GetStoreSummaryByOwner(ctx context.Context, ownerID string) (*models.StoreSummary, error)
}

type RatingRepository interface {
	// UpsertRating inserts or overwrites the rating for (userID, storeID).
	// created reports whether a new row was inserted.
	UpsertRating(ctx context.Context, userID, storeID string, value int) (r *models.Rating, created bool, err error)
	// UserRatings maps store id to the user's rating value.
	UserRatings(ctx context.Context, userID string) (map[string]int, error)
	GetUserRating(ctx context.Context, userID, storeID string) (*models.Rating, error)
	// ListRaters returns the store's ratings with author details, newest first.
	ListRaters(ctx context.Context, storeID string) ([]models.Rater, error)
}

type StatsRepository interface {
	Counts(ctx context.Context) (models.Stats, error)
}

type AuditRepository interface {
	RecordAudit(ctx context.Context, entry *models.AuditLog) error
	ListAudit(ctx context.Context, limit int) ([]models.AuditLog, error)
}

type Repository interface {
	UserRepository
	StoreRepository
	RatingRepository
	StatsRepository
	AuditRepository
}
