package service

import (
	"math"
	"strings"

	"store-ratings/internal/repository"
)

// StoreQuery is the raw listing request. SortBy values outside the allow-list
// fall back to "name"; SortOrder is ascending only when it equals "asc".
type StoreQuery struct {
	Name      string
	Address   string
	SortBy    string
	SortOrder string
}

type UserQuery struct {
	Name      string
	Email     string
	Address   string
	Role      string
	SortBy    string
	SortOrder string
}

var storeSortAllowList = map[string]repository.StoreSortField{
	"name":           repository.StoreSortName,
	"email":          repository.StoreSortEmail,
	"address":        repository.StoreSortAddress,
	"created_at":     repository.StoreSortCreatedAt,
	"average_rating": repository.StoreSortAverageRating,
}

var userSortAllowList = map[string]repository.UserSortField{
	"name":       repository.UserSortName,
	"email":      repository.UserSortEmail,
	"address":    repository.UserSortAddress,
	"role":       repository.UserSortRole,
	"created_at": repository.UserSortCreatedAt,
}

func storeSortField(raw string) repository.StoreSortField {
	if f, ok := storeSortAllowList[strings.TrimSpace(raw)]; ok {
		return f
	}
	return repository.StoreSortName
}

func userSortField(raw string) repository.UserSortField {
	if f, ok := userSortAllowList[strings.TrimSpace(raw)]; ok {
		return f
	}
	return repository.UserSortCreatedAt
}

func descending(order string) bool {
	return !strings.EqualFold(strings.TrimSpace(order), "asc")
}

func (q StoreQuery) filter() repository.StoreFilter {
	return repository.StoreFilter{
		Name:    strings.TrimSpace(q.Name),
		Address: strings.TrimSpace(q.Address),
		SortBy:  storeSortField(q.SortBy),
		Desc:    descending(q.SortOrder),
	}
}

// roundRating rounds an average to two decimals for display.
func roundRating(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}
