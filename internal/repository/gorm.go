package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"store-ratings/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRepository implements Repository over a gorm handle (postgres in production).
type GormRepository struct {
	db *gorm.DB
}

var _ Repository = (*GormRepository)(nil)

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

func likePattern(s string) string {
	return "%" + s + "%"
}

//
// USERS
//

func (r *GormRepository) CreateUser(ctx context.Context, u *models.User) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(email) = LOWER(?)", u.Email).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *GormRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *GormRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", strings.TrimSpace(email)).
		Take(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *GormRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"password_hash": hash, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

var userSortColumns = map[UserSortField]string{
	UserSortName:      "name",
	UserSortEmail:     "email",
	UserSortAddress:   "address",
	UserSortRole:      "role",
	UserSortCreatedAt: "created_at",
}

func (r *GormRepository) ListUsers(ctx context.Context, f UserFilter) ([]models.User, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if f.Name != "" {
		q = q.Where("name ILIKE ?", likePattern(f.Name))
	}
	if f.Email != "" {
		q = q.Where("email ILIKE ?", likePattern(f.Email))
	}
	if f.Address != "" {
		q = q.Where("address ILIKE ?", likePattern(f.Address))
	}
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}

	col, ok := userSortColumns[f.SortBy]
	if !ok {
		col = userSortColumns[UserSortCreatedAt]
	}
	q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: f.Desc})

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormRepository) CountUsersByRole(ctx context.Context, role models.UserRole) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", role).
		Count(&count).Error
	return count, err
}

//
// STORES
//

type storeRow struct {
	ID            string
	Name          string
	Email         string
	Address       *string
	OwnerID       *string
	CreatedAt     time.Time
	AverageRating float64
	TotalRatings  int64
}

func (row storeRow) summary() models.StoreSummary {
	return models.StoreSummary{
		ID:            row.ID,
		Name:          row.Name,
		Email:         row.Email,
		Address:       row.Address,
		OwnerID:       row.OwnerID,
		CreatedAt:     row.CreatedAt,
		AverageRating: row.AverageRating,
		TotalRatings:  row.TotalRatings,
	}
}

// summaries aggregates in the database: one LEFT JOIN + GROUP BY per call.
func (r *GormRepository) summaries(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("stores AS s").
		Select(`s.id, s.name, s.email, s.address, s.owner_id, s.created_at,
			COALESCE(AVG(r.value), 0) AS average_rating,
			COUNT(r.id) AS total_ratings`).
		Joins("LEFT JOIN ratings r ON r.store_id = s.id").
		Group("s.id")
}

func (r *GormRepository) CreateStore(ctx context.Context, s *models.Store) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Store{}).
		Where("LOWER(email) = LOWER(?)", s.Email).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(s).Error)
}

func (r *GormRepository) StoreExists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Store{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

var storeSortColumns = map[StoreSortField]string{
	StoreSortName:          "s.name",
	StoreSortEmail:         "s.email",
	StoreSortAddress:       "s.address",
	StoreSortCreatedAt:     "s.created_at",
	StoreSortAverageRating: "average_rating",
}

func (r *GormRepository) ListStoreSummaries(ctx context.Context, f StoreFilter) ([]models.StoreSummary, error) {
	q := r.summaries(ctx)
	if f.Name != "" {
		q = q.Where("s.name ILIKE ?", likePattern(f.Name))
	}
	if f.Address != "" {
		q = q.Where("s.address ILIKE ?", likePattern(f.Address))
	}

	col, ok := storeSortColumns[f.SortBy]
	if !ok {
		col = storeSortColumns[StoreSortName]
	}
	q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: col, Raw: true}, Desc: f.Desc}).
		Order("s.id")

	var rows []storeRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.StoreSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.summary())
	}
	return out, nil
}

func (r *GormRepository) GetStoreSummary(ctx context.Context, id string) (*models.StoreSummary, error) {
	var rows []storeRow
	if err := r.summaries(ctx).Where("s.id = ?", id).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	s := rows[0].summary()
	return &s, nil
}

func (r *GormRepository) GetStoreSummaryByOwner(ctx context.Context, ownerID string) (*models.StoreSummary, error) {
	var rows []storeRow
	if err := r.summaries(ctx).
		Where("s.owner_id = ?", ownerID).
		Order("s.created_at ASC").
		Limit(1).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	s := rows[0].summary()
	return &s, nil
}

//
// RATINGS
//

func (r *GormRepository) UpsertRating(ctx context.Context, userID, storeID string, value int) (*models.Rating, bool, error) {
	var out models.Rating
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Rating
		err := tx.Where("user_id = ? AND store_id = ?", userID, storeID).Take(&existing).Error
		switch {
		case err == nil:
			if err := tx.Model(&existing).Update("value", value).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			rating := models.Rating{UserID: userID, StoreID: storeID, Value: value}
			res := tx.Omit(clause.Associations).
				Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "user_id"}, {Name: "store_id"}},
					DoNothing: true,
				}).
				Create(&rating)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				created = true
				break
			}
			// гонка двух первых оценок: строку уже вставили, побеждает последняя запись
			if err := tx.Model(&models.Rating{}).
				Where("user_id = ? AND store_id = ?", userID, storeID).
				Update("value", value).Error; err != nil {
				return err
			}
		default:
			return err
		}

		return tx.Where("user_id = ? AND store_id = ?", userID, storeID).Take(&out).Error
	})
	if err != nil {
		return nil, false, translate(err)
	}
	return &out, created, nil
}

func (r *GormRepository) UserRatings(ctx context.Context, userID string) (map[string]int, error) {
	var rows []struct {
		StoreID string
		Value   int
	}
	if err := r.db.WithContext(ctx).Model(&models.Rating{}).
		Select("store_id, value").
		Where("user_id = ?", userID).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.StoreID] = row.Value
	}
	return out, nil
}

func (r *GormRepository) GetUserRating(ctx context.Context, userID, storeID string) (*models.Rating, error) {
	var rating models.Rating
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		Take(&rating).Error; err != nil {
		return nil, translate(err)
	}
	return &rating, nil
}

func (r *GormRepository) ListRaters(ctx context.Context, storeID string) ([]models.Rater, error) {
	raters := []models.Rater{}
	err := r.db.WithContext(ctx).
		Table("ratings AS r").
		Select("u.id, u.name, u.email, r.value AS rating, r.created_at AS rated_at").
		Joins("JOIN users u ON u.id = r.user_id").
		Where("r.store_id = ?", storeID).
		Order("r.created_at DESC").
		Scan(&raters).Error
	return raters, err
}

//
// STATS / AUDIT
//

func (r *GormRepository) Counts(ctx context.Context) (models.Stats, error) {
	var st models.Stats
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.User{}).Count(&st.TotalUsers).Error; err != nil {
		return st, err
	}
	if err := db.Model(&models.Store{}).Count(&st.TotalStores).Error; err != nil {
		return st, err
	}
	if err := db.Model(&models.Rating{}).Count(&st.TotalRatings).Error; err != nil {
		return st, err
	}
	return st, nil
}

func (r *GormRepository) RecordAudit(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *GormRepository) ListAudit(ctx context.Context, limit int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
