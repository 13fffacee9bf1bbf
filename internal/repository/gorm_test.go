package repository

import (
	"context"
	"testing"
	"time"

	"store-ratings/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockRepo(t *testing.T) (*GormRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	return NewGormRepository(db), mock
}

func TestCountsQueriesEachTable(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "stores"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "ratings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	st, err := repo.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Stats{TotalUsers: 7, TotalStores: 3, TotalRatings: 12}, st)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmailIsCaseInsensitive(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role"}))

	_, err := repo.GetUserByEmail(context.Background(), "X@y.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserRejectsTakenEmailBeforeInsert(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs("x@y.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := repo.CreateUser(context.Background(), &models.User{Name: "dup", Email: "x@y.com", Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreExists(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "stores" WHERE id = \$1`).
		WithArgs("store-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	ok, err := repo.StoreExists(context.Background(), "store-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var ratingColumns = []string{"id", "user_id", "store_id", "value", "created_at", "updated_at"}

func TestUpsertRatingUpdatesExistingRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "ratings" WHERE user_id = \$1 AND store_id = \$2`).
		WillReturnRows(sqlmock.NewRows(ratingColumns).AddRow("r1", "u1", "s1", 3, now, now))
	mock.ExpectExec(`UPDATE "ratings" SET "value"=\$1,"updated_at"=\$2 WHERE .*"id" = \$3`).
		WithArgs(4, sqlmock.AnyArg(), "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "ratings" WHERE user_id = \$1 AND store_id = \$2`).
		WillReturnRows(sqlmock.NewRows(ratingColumns).AddRow("r1", "u1", "s1", 4, now, now))
	mock.ExpectCommit()

	rating, created, err := repo.UpsertRating(context.Background(), "u1", "s1", 4)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "r1", rating.ID)
	assert.Equal(t, 4, rating.Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertRatingInsertsFirstRating(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "ratings" WHERE user_id = \$1 AND store_id = \$2`).
		WillReturnRows(sqlmock.NewRows(ratingColumns))
	mock.ExpectExec(`INSERT INTO "ratings" .* ON CONFLICT \("user_id","store_id"\) DO NOTHING`).
		WithArgs(sqlmock.AnyArg(), "u1", "s1", 5, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "ratings" WHERE user_id = \$1 AND store_id = \$2`).
		WillReturnRows(sqlmock.NewRows(ratingColumns).AddRow("r1", "u1", "s1", 5, now, now))
	mock.ExpectCommit()

	rating, created, err := repo.UpsertRating(context.Background(), "u1", "s1", 5)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 5, rating.Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertRatingLosingInsertRaceIsAnUpdate(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "ratings" WHERE user_id = \$1 AND store_id = \$2`).
		WillReturnRows(sqlmock.NewRows(ratingColumns))
	mock.ExpectExec(`INSERT INTO "ratings" .* ON CONFLICT \("user_id","store_id"\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE "ratings" SET "value"=\$1,"updated_at"=\$2 WHERE user_id = \$3 AND store_id = \$4`).
		WithArgs(2, sqlmock.AnyArg(), "u1", "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "ratings" WHERE user_id = \$1 AND store_id = \$2`).
		WillReturnRows(sqlmock.NewRows(ratingColumns).AddRow("r0", "u1", "s1", 2, now, now))
	mock.ExpectCommit()

	rating, created, err := repo.UpsertRating(context.Background(), "u1", "s1", 2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "r0", rating.ID)
	assert.Equal(t, 2, rating.Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var storeColumns = []string{"id", "name", "email", "address", "owner_id", "created_at", "average_rating", "total_ratings"}

func TestListStoreSummariesFiltersAndSorts(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`COALESCE\(AVG\(r.value\), 0\) AS average_rating.*FROM stores AS s LEFT JOIN ratings r ON r.store_id = s.id ` +
		`WHERE s.name ILIKE \$1 AND s.address ILIKE \$2 GROUP BY s.id ORDER BY average_rating DESC,s.id$`).
		WithArgs("%cof%", "%main%").
		WillReturnRows(sqlmock.NewRows(storeColumns).
			AddRow("s2", "Coffee Two", "two@x.com", "Main St", nil, now, 4.5, 2).
			AddRow("s1", "Coffee One", "one@x.com", "Main St", nil, now, 0, 0))

	got, err := repo.ListStoreSummaries(context.Background(), StoreFilter{
		Name: "cof", Address: "main", SortBy: StoreSortAverageRating, Desc: true,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s2", got[0].ID)
	assert.Equal(t, 4.5, got[0].AverageRating)
	assert.Equal(t, int64(2), got[0].TotalRatings)
	assert.Equal(t, int64(0), got[1].TotalRatings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListStoreSummariesUnknownSortFallsBackToName(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`GROUP BY s.id ORDER BY s.name,s.id$`).
		WillReturnRows(sqlmock.NewRows(storeColumns))

	got, err := repo.ListStoreSummaries(context.Background(), StoreFilter{SortBy: StoreSortField("owner_id")})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStoreSummaryByOwnerTakesEarliest(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`WHERE s.owner_id = \$1 GROUP BY s.id ORDER BY s.created_at ASC LIMIT`).
		WillReturnRows(sqlmock.NewRows(storeColumns).AddRow("s1", "First", "f@x.com", nil, "o1", now, 3.5, 2))

	got, err := repo.GetStoreSummaryByOwner(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	require.NotNil(t, got.OwnerID)
	assert.Equal(t, "o1", *got.OwnerID)

	mock.ExpectQuery(`WHERE s.owner_id = \$1 GROUP BY s.id ORDER BY s.created_at ASC LIMIT`).
		WillReturnRows(sqlmock.NewRows(storeColumns))

	_, err = repo.GetStoreSummaryByOwner(context.Background(), "o2")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRatersNewestFirst(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT u.id, u.name, u.email, r.value AS rating, r.created_at AS rated_at FROM ratings AS r ` +
		`JOIN users u ON u.id = r.user_id WHERE r.store_id = \$1 ORDER BY r.created_at DESC$`).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "rating", "rated_at"}).
			AddRow("u2", "Bob", "bob@x.com", 2, now).
			AddRow("u1", "Alice", "alice@x.com", 4, now.Add(-time.Hour)))

	raters, err := repo.ListRaters(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, raters, 2)
	assert.Equal(t, "u2", raters[0].ID)
	assert.Equal(t, 2, raters[0].Rating)
	assert.Equal(t, 4, raters[1].Rating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordAuditBindsMissingActorAsNull(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "audit_logs" \("id","created_at","actor_id","entity","entity_id","action","details"\)`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), nil, "user", "u1", "create", "x").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.RecordAudit(context.Background(), &models.AuditLog{
		Entity: "user", EntityID: "u1", Action: "create", Details: "x",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
