// Package memory is an in-memory implementation of repository.Repository. It
// is safe for concurrent use and is intended for tests and local development.
package memory

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"store-ratings/internal/models"
	"store-ratings/internal/repository"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	users   map[string]models.User
	stores  map[string]models.Store
	ratings map[string]models.Rating
	// (user_id, store_id) -> rating id
	ratingKeys map[ratingKey]string
	audit      []models.AuditLog

	now func() time.Time
}

type ratingKey struct {
	userID  string
	storeID string
}

var _ repository.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		users:      make(map[string]models.User),
		stores:     make(map[string]models.Store),
		ratings:    make(map[string]models.Rating),
		ratingKeys: make(map[ratingKey]string),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the timestamp source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// like reproduces SQL ILIKE '%pattern%': '%' and '_' in the pattern stay wildcards.
func like(value, pattern string) bool {
	if pattern == "" {
		return true
	}
	var b strings.Builder
	b.WriteString("(?is)")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	re, err := regexp.Compile(b.String())
	if err != nil {
		return false
	}
	return re.MatchString(value)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

//
// USERS
//

func (s *Store) emailTakenLocked(email string) bool {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTakenLocked(u.Email) {
		return repository.ErrDuplicate
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := s.now()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.TrimSpace(email)
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) UpdatePassword(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = s.now()
	s.users[id] = u
	return nil
}

func userLess(a, b models.User, field repository.UserSortField) (less, equal bool) {
	switch field {
	case repository.UserSortName:
		return a.Name < b.Name, a.Name == b.Name
	case repository.UserSortEmail:
		return a.Email < b.Email, a.Email == b.Email
	case repository.UserSortAddress:
		x, y := deref(a.Address), deref(b.Address)
		return x < y, x == y
	case repository.UserSortRole:
		return a.Role < b.Role, a.Role == b.Role
	}
	return a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
}

func (s *Store) ListUsers(_ context.Context, f repository.UserFilter) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		if !like(u.Name, f.Name) || !like(u.Email, f.Email) {
			continue
		}
		if f.Address != "" && (u.Address == nil || !like(*u.Address, f.Address)) {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		out = append(out, u)
	}

	sort.SliceStable(out, func(i, j int) bool {
		less, equal := userLess(out[i], out[j], f.SortBy)
		if equal {
			return out[i].ID < out[j].ID
		}
		if f.Desc {
			return !less
		}
		return less
	})
	return out, nil
}

func (s *Store) CountUsersByRole(_ context.Context, role models.UserRole) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, u := range s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

//
// STORES
//

func (s *Store) CreateStore(_ context.Context, st *models.Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.stores {
		if strings.EqualFold(existing.Email, st.Email) {
			return repository.ErrDuplicate
		}
	}
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	now := s.now()
	st.CreatedAt = now
	st.UpdatedAt = now
	s.stores[st.ID] = *st
	return nil
}

func (s *Store) StoreExists(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.stores[id]
	return ok, nil
}

func (s *Store) summaryLocked(st models.Store) models.StoreSummary {
	var sum, count int64
	for _, r := range s.ratings {
		if r.StoreID == st.ID {
			sum += int64(r.Value)
			count++
		}
	}
	avg := 0.0
	if count > 0 {
		avg = float64(sum) / float64(count)
	}
	return models.StoreSummary{
		ID:            st.ID,
		Name:          st.Name,
		Email:         st.Email,
		Address:       st.Address,
		OwnerID:       st.OwnerID,
		CreatedAt:     st.CreatedAt,
		AverageRating: avg,
		TotalRatings:  count,
	}
}

func storeLess(a, b models.StoreSummary, field repository.StoreSortField) (less, equal bool) {
	switch field {
	case repository.StoreSortAverageRating:
		return a.AverageRating < b.AverageRating, a.AverageRating == b.AverageRating
	case repository.StoreSortCreatedAt:
		return a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
	case repository.StoreSortEmail:
		return a.Email < b.Email, a.Email == b.Email
	case repository.StoreSortAddress:
		x, y := deref(a.Address), deref(b.Address)
		return x < y, x == y
	}
	return a.Name < b.Name, a.Name == b.Name
}

func (s *Store) ListStoreSummaries(_ context.Context, f repository.StoreFilter) ([]models.StoreSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.StoreSummary, 0, len(s.stores))
	for _, st := range s.stores {
		if !like(st.Name, f.Name) {
			continue
		}
		if f.Address != "" && (st.Address == nil || !like(*st.Address, f.Address)) {
			continue
		}
		out = append(out, s.summaryLocked(st))
	}

	sort.SliceStable(out, func(i, j int) bool {
		less, equal := storeLess(out[i], out[j], f.SortBy)
		if equal {
			return out[i].ID < out[j].ID
		}
		if f.Desc {
			return !less
		}
		return less
	})
	return out, nil
}

func (s *Store) GetStoreSummary(_ context.Context, id string) (*models.StoreSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stores[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	sum := s.summaryLocked(st)
	return &sum, nil
}

func (s *Store) GetStoreSummaryByOwner(_ context.Context, ownerID string) (*models.StoreSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *models.Store
	for _, st := range s.stores {
		if st.OwnerID == nil || *st.OwnerID != ownerID {
			continue
		}
		if found == nil || st.CreatedAt.Before(found.CreatedAt) ||
			(st.CreatedAt.Equal(found.CreatedAt) && st.ID < found.ID) {
			st := st
			found = &st
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	sum := s.summaryLocked(*found)
	return &sum, nil
}

//
// RATINGS
//

func (s *Store) UpsertRating(_ context.Context, userID, storeID string, value int) (*models.Rating, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.stores[storeID]; !ok {
		return nil, false, repository.ErrNotFound
	}

	now := s.now()
	key := ratingKey{userID: userID, storeID: storeID}
	if id, ok := s.ratingKeys[key]; ok {
		r := s.ratings[id]
		r.Value = value
		r.UpdatedAt = now
		s.ratings[id] = r
		return &r, false, nil
	}

	r := models.Rating{
		ID:        uuid.NewString(),
		UserID:    userID,
		StoreID:   storeID,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.ratings[r.ID] = r
	s.ratingKeys[key] = r.ID
	return &r, true, nil
}

func (s *Store) UserRatings(_ context.Context, userID string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int)
	for _, r := range s.ratings {
		if r.UserID == userID {
			out[r.StoreID] = r.Value
		}
	}
	return out, nil
}

func (s *Store) GetUserRating(_ context.Context, userID, storeID string) (*models.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.ratingKeys[ratingKey{userID: userID, storeID: storeID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r := s.ratings[id]
	return &r, nil
}

func (s *Store) ListRaters(_ context.Context, storeID string) ([]models.Rater, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type row struct {
		rater models.Rater
		id    string
	}
	rows := []row{}
	for _, r := range s.ratings {
		if r.StoreID != storeID {
			continue
		}
		u, ok := s.users[r.UserID]
		if !ok {
			continue
		}
		rows = append(rows, row{
			rater: models.Rater{ID: u.ID, Name: u.Name, Email: u.Email, Rating: r.Value, RatedAt: r.CreatedAt},
			id:    r.ID,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].rater.RatedAt.Equal(rows[j].rater.RatedAt) {
			return rows[i].id < rows[j].id
		}
		return rows[i].rater.RatedAt.After(rows[j].rater.RatedAt)
	})

	raters := make([]models.Rater, 0, len(rows))
	for _, r := range rows {
		raters = append(raters, r.rater)
	}
	return raters, nil
}

//
// STATS / AUDIT
//

func (s *Store) Counts(_ context.Context) (models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return models.Stats{
		TotalUsers:   int64(len(s.users)),
		TotalStores:  int64(len(s.stores)),
		TotalRatings: int64(len(s.ratings)),
	}, nil
}

func (s *Store) RecordAudit(_ context.Context, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = s.now()
	s.audit = append(s.audit, *entry)
	return nil
}

func (s *Store) ListAudit(_ context.Context, limit int) ([]models.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AuditLog, 0, len(s.audit))
	for i := len(s.audit) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, s.audit[i])
	}
	return out, nil
}
