package service

import (
	"context"
	"strconv"
	"strings"

	"store-ratings/internal/apperr"
	"store-ratings/internal/metrics"
	"store-ratings/internal/models"

	"github.com/sirupsen/logrus"
)

type SubmitRatingInput struct {
	StoreID string `json:"storeId" validate:"required,uuid"`
	Value   int    `json:"value" validate:"min=1,max=5"`
}

// SubmitRating records the caller's rating for a store. A second submission
// for the same store overwrites the first; concurrent submissions resolve as
// last writer wins.
func (s *Service) SubmitRating(ctx context.Context, p *Principal, in SubmitRatingInput) (*models.Rating, error) {
	if err := Authorize(p, OpSubmitRating); err != nil {
		return nil, err
	}
	in.StoreID = strings.TrimSpace(in.StoreID)
	if err := s.check(in); err != nil {
		return nil, err
	}

	exists, err := s.repo.StoreExists(ctx, in.StoreID)
	if err != nil {
		return nil, internal("failed to load store", err)
	}
	if !exists {
		return nil, apperr.NotFound("Store not found")
	}

	rating, created, err := s.repo.UpsertRating(ctx, p.UserID, in.StoreID, in.Value)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("Store not found")
		}
		return nil, internal("failed to save rating", err)
	}

	metrics.RecordRating(created)
	action := "update"
	if created {
		action = "create"
	}
	s.log.WithFields(logrus.Fields{
		"rating_id": rating.ID,
		"store_id":  rating.StoreID,
		"user_id":   rating.UserID,
		"value":     rating.Value,
		"created":   created,
	}).Info("rating submitted")
	s.audit(ctx, p, "rating", rating.ID, action, "store "+rating.StoreID+" rated "+strconv.Itoa(rating.Value))

	return rating, nil
}
