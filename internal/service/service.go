// Package service holds the access-controlled operations of the rating
// platform: identity management, the store registry, the rating ledger and
// the aggregation queries behind the user, owner and admin views.
package service

import (
	"context"
	"errors"

	"store-ratings/internal/apperr"
	"store-ratings/internal/auth"
	"store-ratings/internal/models"
	"store-ratings/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const auditListLimit = 200

type Service struct {
	repo     repository.Repository
	tokens   *auth.Tokens
	log      *logrus.Logger
	validate *validator.Validate
}

func New(repo repository.Repository, tokens *auth.Tokens, log *logrus.Logger) *Service {
	return &Service{
		repo:     repo,
		tokens:   tokens,
		log:      log,
		validate: newValidator(),
	}
}

// internal hides storage failures from callers and keeps the cause for logs.
func internal(msg string, err error) error {
	return apperr.Internal(msg, err)
}

// validID rejects ids that cannot exist so they never reach a uuid column.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// audit records a change; failures are logged and never fail the request.
func (s *Service) audit(ctx context.Context, actor *Principal, entity, entityID, action, details string) {
	entry := &models.AuditLog{
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	}
	if actor != nil {
		id := actor.UserID
		entry.ActorID = &id
	}
	if err := s.repo.RecordAudit(ctx, entry); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"entity":    entity,
			"entity_id": entityID,
			"action":    action,
		}).Warn("failed to write audit log")
	}
}

func (s *Service) ListAudit(ctx context.Context, p *Principal) ([]models.AuditLog, error) {
	if err := Authorize(p, OpViewAudit); err != nil {
		return nil, err
	}
	logs, err := s.repo.ListAudit(ctx, auditListLimit)
	if err != nil {
		return nil, internal("failed to load audit log", err)
	}
	return logs, nil
}

func (s *Service) DashboardStats(ctx context.Context, p *Principal) (models.Stats, error) {
	if err := Authorize(p, OpViewStats); err != nil {
		return models.Stats{}, err
	}
	st, err := s.repo.Counts(ctx)
	if err != nil {
		return models.Stats{}, internal("failed to count records", err)
	}
	return st, nil
}

func isNotFound(err error) bool  { return errors.Is(err, repository.ErrNotFound) }
func isDuplicate(err error) bool { return errors.Is(err, repository.ErrDuplicate) }
