package service

import (
	"store-ratings/internal/apperr"
	"store-ratings/internal/models"
)

// Principal is the verified caller of an operation.
type Principal struct {
	UserID string
	Email  string
	Role   models.UserRole
}

type Operation string

const (
	OpViewProfile    Operation = "view_profile"
	OpChangePassword Operation = "change_password"
	OpCreateUser     Operation = "create_user"
	OpListUsers      Operation = "list_users"
	OpGetUser        Operation = "get_user"
	OpViewStats      Operation = "view_stats"
	OpViewAudit      Operation = "view_audit"
	OpCreateStore    Operation = "create_store"
	OpListStores     Operation = "list_stores"
	OpGetStore       Operation = "get_store"
	OpOwnerDashboard Operation = "owner_dashboard"
	OpSubmitRating   Operation = "submit_rating"
)

var anyRole = []models.UserRole{models.RoleAdmin, models.RoleUser, models.RoleStoreOwner}

// policy is the single source of truth for who may call what. Operations
// missing from the table are denied.
var policy = map[Operation][]models.UserRole{
	OpViewProfile:    anyRole,
	OpChangePassword: anyRole,
	OpListStores:     anyRole,
	OpGetStore:       anyRole,

	OpCreateUser:  {models.RoleAdmin},
	OpListUsers:   {models.RoleAdmin},
	OpGetUser:     {models.RoleAdmin},
	OpViewStats:   {models.RoleAdmin},
	OpViewAudit:   {models.RoleAdmin},
	OpCreateStore: {models.RoleAdmin},

	OpOwnerDashboard: {models.RoleStoreOwner},
	// only regular users rate; owners and admins are refused
	OpSubmitRating: {models.RoleUser},
}

// Authorize checks the caller's role against the operation's allowed set.
func Authorize(p *Principal, op Operation) error {
	if p == nil || p.UserID == "" {
		return apperr.Unauthorized("Not authenticated")
	}
	for _, r := range policy[op] {
		if r == p.Role {
			return nil
		}
	}
	return apperr.Forbidden("Insufficient permissions")
}

// AllowedRoles returns a copy of the roles permitted to run op.
func AllowedRoles(op Operation) []models.UserRole {
	return append([]models.UserRole(nil), policy[op]...)
}
