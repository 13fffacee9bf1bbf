package service

import (
	"context"
	"strings"

	"store-ratings/internal/apperr"
	"store-ratings/internal/models"
	"store-ratings/internal/repository"

	"github.com/sirupsen/logrus"
)

type CreateStoreInput struct {
	Name    string  `json:"name" validate:"min=20,max=60"`
	Email   string  `json:"email" validate:"required,email,max=255"`
	Address *string `json:"address" validate:"omitempty,max=400"`
	OwnerID *string `json:"ownerId" validate:"omitempty,uuid"`
}

func (s *Service) CreateStore(ctx context.Context, p *Principal, in CreateStoreInput) (*models.Store, error) {
	if err := Authorize(p, OpCreateStore); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Address = trimPtr(in.Address)
	in.OwnerID = trimPtr(in.OwnerID)
	if err := s.check(in); err != nil {
		return nil, err
	}

	if in.OwnerID != nil {
		owner, err := s.repo.GetUser(ctx, *in.OwnerID)
		if err != nil && !isNotFound(err) {
			return nil, internal("failed to load owner", err)
		}
		if owner == nil || owner.Role != models.RoleStoreOwner {
			return nil, apperr.Validation("Provided owner must have role store_owner",
				apperr.FieldError{Field: "ownerId", Message: "Provided owner must have role store_owner"})
		}
	}

	st := &models.Store{
		Name:    in.Name,
		Email:   in.Email,
		Address: in.Address,
		OwnerID: in.OwnerID,
	}
	if err := s.repo.CreateStore(ctx, st); err != nil {
		if isDuplicate(err) {
			return nil, apperr.Conflict("Store email already in use")
		}
		return nil, internal("failed to save store", err)
	}

	s.log.WithFields(logrus.Fields{"store_id": st.ID, "owner_id": st.OwnerID}).Info("store created")
	s.audit(ctx, p, "store", st.ID, "create", "created store "+st.Name)
	return st, nil
}

// ListStores returns filtered, sorted stores with aggregates and the caller's
// own rating merged in.
func (s *Service) ListStores(ctx context.Context, p *Principal, q StoreQuery) ([]models.StoreSummary, error) {
	if err := Authorize(p, OpListStores); err != nil {
		return nil, err
	}
	return s.listStores(ctx, q.filter(), p.UserID)
}

// listStores enriches with viewerID's ratings when viewerID is set. The
// viewer's ratings are fetched once and joined in memory.
func (s *Service) listStores(ctx context.Context, f repository.StoreFilter, viewerID string) ([]models.StoreSummary, error) {
	stores, err := s.repo.ListStoreSummaries(ctx, f)
	if err != nil {
		return nil, internal("failed to list stores", err)
	}

	var mine map[string]int
	if viewerID != "" {
		mine, err = s.repo.UserRatings(ctx, viewerID)
		if err != nil {
			return nil, internal("failed to load viewer ratings", err)
		}
	}

	for i := range stores {
		stores[i].AverageRating = roundRating(stores[i].AverageRating)
		if v, ok := mine[stores[i].ID]; ok {
			v := v
			stores[i].UserRating = &v
		}
	}
	return stores, nil
}

func (s *Service) GetStore(ctx context.Context, p *Principal, id string) (*models.StoreSummary, error) {
	if err := Authorize(p, OpGetStore); err != nil {
		return nil, err
	}
	return s.getStore(ctx, id, p.UserID)
}

func (s *Service) getStore(ctx context.Context, id, viewerID string) (*models.StoreSummary, error) {
	if !validID(id) {
		return nil, apperr.NotFound("Store not found")
	}
	st, err := s.repo.GetStoreSummary(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("Store not found")
		}
		return nil, internal("failed to load store", err)
	}
	st.AverageRating = roundRating(st.AverageRating)

	if viewerID != "" {
		r, err := s.repo.GetUserRating(ctx, viewerID, id)
		switch {
		case err == nil:
			v := r.Value
			st.UserRating = &v
		case isNotFound(err):
		default:
			return nil, internal("failed to load viewer rating", err)
		}
	}
	return st, nil
}

// OwnerDashboard serves the caller's own store; the owner is always the
// caller, never a parameter.
func (s *Service) OwnerDashboard(ctx context.Context, p *Principal) (*models.OwnerDashboard, error) {
	if err := Authorize(p, OpOwnerDashboard); err != nil {
		return nil, err
	}

	st, err := s.repo.GetStoreSummaryByOwner(ctx, p.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("No store is associated with your account")
		}
		return nil, internal("failed to load store", err)
	}

	raters, err := s.repo.ListRaters(ctx, st.ID)
	if err != nil {
		return nil, internal("failed to load raters", err)
	}

	// totals come from the same rows as raters so the view is self-consistent
	var sum int64
	for _, r := range raters {
		sum += int64(r.Rating)
	}
	total := int64(len(raters))
	avg := 0.0
	if total > 0 {
		avg = roundRating(float64(sum) / float64(total))
	}
	st.AverageRating = avg
	st.TotalRatings = total

	return &models.OwnerDashboard{
		Store:         *st,
		AverageRating: avg,
		TotalRatings:  total,
		Raters:        raters,
	}, nil
}
