package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"communities/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestCommunityRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommunityRepository(db, 0)
	ctx := context.Background()

	community := models.CreateCommunityInput{Name: "gophers", Description: "all things go"}.
		ToCommunity(time.Now())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "communities"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, community)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), community.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommunityRepository_Count_EscapesSearch(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommunityRepository(db, 0)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "communities" WHERE LOWER(communities.name) LIKE $1`)).
		WithArgs(`%50\%\_off%`, `%50\%\_off%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	total, err := repo.Count(context.Background(), "  50%_OFF ")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommunityRepository_Count_StoreError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommunityRepository(db, 0)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "communities"`)).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.Count(context.Background(), "")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommunityRepository_Replace(t *testing.T) {
	tests := []struct {
		name          string
		rowsAffected  int64
		expectedError error
	}{
		{name: "Success", rowsAffected: 1},
		{name: "No Row Touched", rowsAffected: 0, expectedError: ErrConcurrencyConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewCommunityRepository(db, 0)

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(`UPDATE "communities" SET`)).
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))
			mock.ExpectCommit()

			err := repo.Replace(context.Background(), &models.Community{ID: 5, Name: "renamed"})
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCommunityRepository_Delete_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommunityRepository(db, 0)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM community_subscribers WHERE community_id = $1`)).
		WithArgs(999).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "communities" WHERE "communities"."id" = $1`)).
		WithArgs(999).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\tmp`, escapeLike(`c:\tmp`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestSortColumn(t *testing.T) {
	assert.Equal(t, "communities.id", sortColumn(models.SortByID))
	assert.Equal(t, "communities.created_at", sortColumn(models.SortByCreatedAt))
	assert.Equal(t, "posts_count", sortColumn(models.SortByPostsCount))
	assert.Equal(t, "subscribers_count", sortColumn(models.SortBySubscribersCount))
	assert.Equal(t, "communities.id", sortColumn(models.ParseSortKey("bogus")))
}
