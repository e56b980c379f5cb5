// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"communities/internal/cache"
	"communities/internal/models"
	"communities/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrConcurrencyConflict is returned when a replace touched no row.
var ErrConcurrencyConflict = errors.New("concurrency conflict")

// ListOptions is a resolved listing plan. Offset and Limit are already derived
// from the clamped page.
type ListOptions struct {
	Search    string
	SortKey   models.SortKey
	Ascending bool
	Offset    int
	Limit     int
}

// CommunityRepository defines the interface for community data operations
type CommunityRepository interface {
	Count(ctx context.Context, search string) (int64, error)
	List(ctx context.Context, opts ListOptions) ([]*models.Community, error)
	GetByID(ctx context.Context, id uint) (*models.Community, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, community *models.Community) error
	Replace(ctx context.Context, community *models.Community) error
	Delete(ctx context.Context, id uint) error
}

// communityRepository implements CommunityRepository
type communityRepository struct {
	db       *gorm.DB
	cacheTTL time.Duration
	logger   *observability.RepoLogger
	metrics  *observability.DatabaseMetrics
}

// NewCommunityRepository creates a new community repository. A cacheTTL of zero
// disables the Redis cache for single reads.
func NewCommunityRepository(db *gorm.DB, cacheTTL time.Duration) CommunityRepository {
	return &communityRepository{
		db:       db,
		cacheTTL: cacheTTL,
		logger:   observability.NewRepoLogger("communities"),
		metrics:  observability.NewDatabaseMetrics("communities"),
	}
}

func (r *communityRepository) Count(ctx context.Context, search string) (int64, error) {
	defer r.metrics.TrackQuery("count")()

	var total int64
	err := applySearch(readDB(r.db).WithContext(ctx).Model(&models.Community{}), search).
		Count(&total).Error
	if err != nil {
		r.logger.LogError(ctx, err, "count")
		return 0, err
	}
	return total, nil
}

func (r *communityRepository) List(ctx context.Context, opts ListOptions) ([]*models.Community, error) {
	defer r.metrics.TrackQuery("list")()

	var communities []*models.Community
	query := applySearch(applyCommunityDetails(readDB(r.db).WithContext(ctx)), opts.Search)
	err := applyCommunitySort(query, opts.SortKey, opts.Ascending).
		Offset(opts.Offset).
		Limit(opts.Limit).
		Find(&communities).Error
	if err != nil {
		r.logger.LogError(ctx, err, "list")
		return nil, err
	}

	observability.ListingResultSize.Observe(float64(len(communities)))
	r.logger.LogRead(ctx, map[string]interface{}{
		"sort":   opts.SortKey.String(),
		"offset": opts.Offset,
		"limit":  opts.Limit,
		"rows":   len(communities),
	})
	return communities, nil
}

func (r *communityRepository) GetByID(ctx context.Context, id uint) (*models.Community, error) {
	defer r.metrics.TrackQuery("get")()

	var community models.Community
	hit, err := cache.Aside(ctx, cache.CommunityKey(id), &community, r.cacheTTL, func() error {
		return applyCommunityDetails(readDB(r.db).WithContext(ctx)).First(&community, id).Error
	})
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.LogError(ctx, err, "get")
		}
		return nil, err
	}
	if hit {
		observability.CacheLookups.WithLabelValues("hit").Inc()
	} else if r.cacheTTL > 0 {
		observability.CacheLookups.WithLabelValues("miss").Inc()
	}
	return &community, nil
}

// Exists always reads the primary so a re-check after a failed write sees the latest state.
func (r *communityRepository) Exists(ctx context.Context, id uint) (bool, error) {
	defer r.metrics.TrackQuery("exists")()

	var n int64
	err := r.db.WithContext(ctx).Model(&models.Community{}).Where("id = ?", id).Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *communityRepository) Create(ctx context.Context, community *models.Community) error {
	defer r.metrics.TrackQuery("create")()

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(community).Error; err != nil {
		r.logger.LogError(ctx, err, "create")
		return err
	}
	r.logger.LogCreate(ctx, map[string]interface{}{"id": community.ID})
	return nil
}

// Replace overwrites the mutable fields of an existing row. created_at is never touched.
func (r *communityRepository) Replace(ctx context.Context, community *models.Community) error {
	defer r.metrics.TrackQuery("replace")()

	result := r.db.WithContext(ctx).
		Model(&models.Community{}).
		Where("id = ?", community.ID).
		Updates(map[string]interface{}{
			"name":        community.Name,
			"description": community.Description,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		r.logger.LogError(ctx, result.Error, "replace")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConcurrencyConflict
	}

	cache.InvalidateCommunity(ctx, community.ID)
	r.logger.LogUpdate(ctx, map[string]interface{}{"id": community.ID})
	return nil
}

// Delete removes the subscriber associations and then the community. Posts go
// with it through the foreign key cascade.
func (r *communityRepository) Delete(ctx context.Context, id uint) error {
	defer r.metrics.TrackQuery("delete")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM community_subscribers WHERE community_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Community{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.LogError(ctx, err, "delete")
		}
		return err
	}

	cache.InvalidateCommunity(ctx, id)
	r.logger.LogDelete(ctx, map[string]interface{}{"id": id})
	return nil
}

// applyCommunityDetails adds subqueries to fetch post and subscriber counts in a single query.
func applyCommunityDetails(db *gorm.DB) *gorm.DB {
	return db.Select("communities.*, " +
		"(SELECT COUNT(*) FROM posts WHERE posts.community_id = communities.id) AS posts_count, " +
		"(SELECT COUNT(*) FROM community_subscribers WHERE community_subscribers.community_id = communities.id) AS subscribers_count")
}

// applySearch keeps rows whose name or description contains the trimmed term,
// ignoring case. LIKE wildcards in the term match literally.
func applySearch(db *gorm.DB, search string) *gorm.DB {
	term := strings.TrimSpace(search)
	if term == "" {
		return db
	}
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	return db.Where(
		`LOWER(communities.name) LIKE ? ESCAPE '\' OR LOWER(communities.description) LIKE ? ESCAPE '\'`,
		pattern, pattern,
	)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// sortColumn maps a sort key onto its ORDER BY column. posts_count and
// subscribers_count are SELECT aliases from applyCommunityDetails.
func sortColumn(key models.SortKey) string {
	switch key {
	case models.SortByCreatedAt:
		return "communities.created_at"
	case models.SortByPostsCount:
		return "posts_count"
	case models.SortBySubscribersCount:
		return "subscribers_count"
	default:
		return "communities.id"
	}
}

// applyCommunitySort orders by the requested key, then by id so pages stay stable under ties.
func applyCommunitySort(db *gorm.DB, key models.SortKey, ascending bool) *gorm.DB {
	column := sortColumn(key)
	db = db.Order(clause.OrderByColumn{
		Column: clause.Column{Name: column, Raw: true},
		Desc:   !ascending,
	})
	if column != "communities.id" {
		db = db.Order(clause.OrderByColumn{
			Column: clause.Column{Name: "communities.id", Raw: true},
		})
	}
	return db
}
