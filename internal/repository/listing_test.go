package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"communities/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Community{}, &models.Post{}))
	return db
}

// seedCommunities inserts n communities. Community i gets (i % 4) posts and
// (n - i) % 3 subscribers so the count sorts have ties to break.
func seedCommunities(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	users := make([]models.User, 3)
	for i := range users {
		users[i] = models.User{Username: fmt.Sprintf("user-%d", i)}
	}
	require.NoError(t, db.Create(&users).Error)

	for i := 1; i <= n; i++ {
		c := &models.Community{
			Name:        fmt.Sprintf("Community %02d", i),
			Description: fmt.Sprintf("description for %02d", i),
			CreatedAt:   base.Add(time.Duration((i*7)%n) * time.Hour),
			Subscribers: users[:(n-i)%3],
		}
		require.NoError(t, db.Create(c).Error)
		for p := 0; p < i%4; p++ {
			require.NoError(t, db.Create(&models.Post{
				Title:       fmt.Sprintf("post %d/%d", i, p),
				CommunityID: c.ID,
				AuthorID:    users[0].ID,
			}).Error)
		}
	}
}

func TestCommunityRepository_List_FirstPageByID(t *testing.T) {
	db := setupSQLiteDB(t)
	seedCommunities(t, db, 25)
	repo := NewCommunityRepository(db, 0)
	ctx := context.Background()

	total, err := repo.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)

	page, err := repo.List(ctx, ListOptions{SortKey: models.SortByID, Ascending: true, Offset: 0, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 10)
	for i, c := range page {
		assert.Equal(t, uint(i+1), c.ID)
	}
}

func TestCommunityRepository_List_SortsAreMonotone(t *testing.T) {
	db := setupSQLiteDB(t)
	seedCommunities(t, db, 25)
	repo := NewCommunityRepository(db, 0)
	ctx := context.Background()

	value := map[models.SortKey]func(c *models.Community) int64{
		models.SortByID:               func(c *models.Community) int64 { return int64(c.ID) },
		models.SortByCreatedAt:        func(c *models.Community) int64 { return c.CreatedAt.Unix() },
		models.SortByPostsCount:       func(c *models.Community) int64 { return c.PostsCount },
		models.SortBySubscribersCount: func(c *models.Community) int64 { return c.SubscribersCount },
	}

	for key, get := range value {
		for _, ascending := range []bool{true, false} {
			t.Run(fmt.Sprintf("%s/asc=%t", key, ascending), func(t *testing.T) {
				rows, err := repo.List(ctx, ListOptions{SortKey: key, Ascending: ascending, Limit: 25})
				require.NoError(t, err)
				require.Len(t, rows, 25)
				for i := 1; i < len(rows); i++ {
					prev, cur := get(rows[i-1]), get(rows[i])
					if ascending {
						assert.LessOrEqual(t, prev, cur)
					} else {
						assert.GreaterOrEqual(t, prev, cur)
					}
					if prev == cur {
						assert.Less(t, rows[i-1].ID, rows[i].ID, "ties break by id ascending")
					}
				}
			})
		}
	}
}

func TestCommunityRepository_List_UnknownSortKeyMatchesID(t *testing.T) {
	db := setupSQLiteDB(t)
	seedCommunities(t, db, 12)
	repo := NewCommunityRepository(db, 0)
	ctx := context.Background()

	byID, err := repo.List(ctx, ListOptions{SortKey: models.SortByID, Ascending: false, Limit: 12})
	require.NoError(t, err)
	unknown, err := repo.List(ctx, ListOptions{SortKey: models.ParseSortKey("popularity"), Ascending: false, Limit: 12})
	require.NoError(t, err)

	assert.Equal(t, idsOf(byID), idsOf(unknown))
}

func TestCommunityRepository_Search(t *testing.T) {
	db := setupSQLiteDB(t)
	seedCommunities(t, db, 25)
	require.NoError(t, db.Create(&models.Community{Name: "Deals", Description: "50% off_today"}).Error)
	repo := NewCommunityRepository(db, 0)
	ctx := context.Background()

	tests := []struct {
		name     string
		search   string
		expected int64
	}{
		{name: "Case Insensitive Name", search: "community 0", expected: 9},
		{name: "Description Match", search: "FOR 2", expected: 6},
		{name: "Trimmed", search: "  deals  ", expected: 1},
		{name: "Literal Percent", search: "50%", expected: 1},
		{name: "Literal Underscore", search: "f_t", expected: 1},
		{name: "Wildcard Is Not Special", search: "%", expected: 1},
		{name: "No Match", search: "zzz-nothing", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, err := repo.Count(ctx, tt.search)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, total)

			rows, err := repo.List(ctx, ListOptions{Search: tt.search, SortKey: models.SortByID, Ascending: true, Limit: 100})
			require.NoError(t, err)
			assert.Len(t, rows, int(tt.expected))
		})
	}
}

func TestCommunityRepository_GetByID_IncludesCounts(t *testing.T) {
	db := setupSQLiteDB(t)
	seedCommunities(t, db, 5)
	repo := NewCommunityRepository(db, 0)

	c, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Community 03", c.Name)
	assert.Equal(t, int64(3), c.PostsCount)
	assert.Equal(t, int64(2), c.SubscribersCount)

	_, err = repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCommunityRepository_ReplaceKeepsCreatedAt(t *testing.T) {
	db := setupSQLiteDB(t)
	seedCommunities(t, db, 3)
	repo := NewCommunityRepository(db, 0)
	ctx := context.Background()

	before, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)

	err = repo.Replace(ctx, &models.Community{ID: 2, Name: "renamed", Description: "new", CreatedAt: time.Now()})
	require.NoError(t, err)

	after, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "renamed", after.Name)
	assert.Equal(t, "new", after.Description)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))

	err = repo.Replace(ctx, &models.Community{ID: 99, Name: "ghost"})
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
}

func TestCommunityRepository_DeleteCascades(t *testing.T) {
	db := setupSQLiteDB(t)
	seedCommunities(t, db, 3)
	repo := NewCommunityRepository(db, 0)
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, 2))

	exists, err := repo.Exists(ctx, 2)
	require.NoError(t, err)
	assert.False(t, exists)

	var posts, subs int64
	require.NoError(t, db.Model(&models.Post{}).Where("community_id = ?", 2).Count(&posts).Error)
	require.NoError(t, db.Table("community_subscribers").Where("community_id = ?", 2).Count(&subs).Error)
	assert.Zero(t, posts)
	assert.Zero(t, subs)

	assert.ErrorIs(t, repo.Delete(ctx, 2), gorm.ErrRecordNotFound)
}

func idsOf(rows []*models.Community) []uint {
	ids := make([]uint, len(rows))
	for i, c := range rows {
		ids[i] = c.ID
	}
	return ids
}
