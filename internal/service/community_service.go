package service

import (
	"context"
	"errors"
	"time"

	"communities/internal/models"
	"communities/internal/observability"
	"communities/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// CommunityServiceOptions configures the listing page size policy.
// MaxPageSize <= 0 means page sizes are not capped.
type CommunityServiceOptions struct {
	DefaultPageSize int
	MaxPageSize     int
}

type CommunityService struct {
	repo repository.CommunityRepository
	opts CommunityServiceOptions
	now  func() time.Time
}

// ListCommunitiesInput carries the raw listing parameters after HTTP defaults are applied.
type ListCommunitiesInput struct {
	PageNumber  int
	PageSize    int
	SortKey     string
	IsAscending bool
	SearchKey   string
}

// CommunityPage is one page of a listing plus its count metadata.
type CommunityPage struct {
	Items      []*models.Community
	TotalItems int64
	TotalPages int
	PageNumber int
	PageSize   int
}

func NewCommunityService(repo repository.CommunityRepository, opts CommunityServiceOptions) *CommunityService {
	if opts.DefaultPageSize < 1 {
		opts.DefaultPageSize = DefaultPageSize
	}
	return &CommunityService{
		repo: repo,
		opts: opts,
		now:  time.Now,
	}
}

// ListCommunities filters, sorts and paginates communities. The requested page
// is clamped to the available range; an empty result reports page 1.
func (s *CommunityService) ListCommunities(ctx context.Context, in ListCommunitiesInput) (*CommunityPage, error) {
	span, ctx := observability.NewSpan(ctx, "CommunityService.ListCommunities")
	defer span.End()

	pageSize := NormalizePageSize(in.PageSize, s.opts.DefaultPageSize, s.opts.MaxPageSize)
	sortKey := models.ParseSortKey(in.SortKey)
	span.AddAttributes(
		attribute.String("listing.sort_key", sortKey.String()),
		attribute.Bool("listing.ascending", in.IsAscending),
		attribute.Int("listing.page_size", pageSize),
	)

	total, err := s.repo.Count(ctx, in.SearchKey)
	if err != nil {
		span.SetError(err)
		return nil, models.NewInternalError(err)
	}

	page := &CommunityPage{
		Items:      []*models.Community{},
		TotalItems: total,
		TotalPages: TotalPages(total, pageSize),
		PageNumber: 1,
		PageSize:   pageSize,
	}
	if total == 0 {
		return page, nil
	}

	page.PageNumber = ClampPage(in.PageNumber, page.TotalPages)
	items, err := s.repo.List(ctx, repository.ListOptions{
		Search:    in.SearchKey,
		SortKey:   sortKey,
		Ascending: in.IsAscending,
		Offset:    Offset(page.PageNumber, pageSize),
		Limit:     pageSize,
	})
	if err != nil {
		span.SetError(err)
		return nil, models.NewInternalError(err)
	}
	if items != nil {
		page.Items = items
	}

	span.AddAttributes(
		attribute.Int64("listing.total_items", total),
		attribute.Int("listing.page", page.PageNumber),
	)
	return page, nil
}

func (s *CommunityService) GetCommunity(ctx context.Context, id uint) (*models.Community, error) {
	span, ctx := observability.NewSpan(ctx, "CommunityService.GetCommunity")
	defer span.End()
	span.AddAttributes(attribute.Int64("community.id", int64(id)))

	community, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Community", id)
		}
		span.SetError(err)
		return nil, models.NewInternalError(err)
	}
	return community, nil
}

// ReplaceCommunity overwrites community id with the given record. A record
// whose id differs from the path id is rejected without touching the store.
// When the write touches no row the primary is re-checked: a missing row is
// NOT_FOUND, an existing one is a CONCURRENCY_CONFLICT.
func (s *CommunityService) ReplaceCommunity(ctx context.Context, id uint, community *models.Community) error {
	span, ctx := observability.NewSpan(ctx, "CommunityService.ReplaceCommunity")
	defer span.End()
	span.AddAttributes(attribute.Int64("community.id", int64(id)))

	if community == nil || community.ID != id {
		return models.NewValidationError("Community ID in body does not match the URL")
	}

	err := s.repo.Replace(ctx, community)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrConcurrencyConflict) {
		span.SetError(err)
		return models.NewInternalError(err)
	}

	exists, existsErr := s.repo.Exists(ctx, id)
	if existsErr != nil {
		span.SetError(existsErr)
		return models.NewInternalError(existsErr)
	}
	if !exists {
		return models.NewNotFoundError("Community", id)
	}
	span.SetError(err)
	return models.NewConflictError("Community", id, err)
}

func (s *CommunityService) CreateCommunity(ctx context.Context, in models.CreateCommunityInput) (*models.Community, error) {
	span, ctx := observability.NewSpan(ctx, "CommunityService.CreateCommunity")
	defer span.End()

	community := in.ToCommunity(s.now())
	if err := s.repo.Create(ctx, community); err != nil {
		span.SetError(err)
		return nil, models.NewInternalError(err)
	}
	span.AddAttributes(attribute.Int64("community.id", int64(community.ID)))
	return community, nil
}

func (s *CommunityService) DeleteCommunity(ctx context.Context, id uint) error {
	span, ctx := observability.NewSpan(ctx, "CommunityService.DeleteCommunity")
	defer span.End()
	span.AddAttributes(attribute.Int64("community.id", int64(id)))

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Community", id)
		}
		span.SetError(err)
		return models.NewInternalError(err)
	}
	return nil
}
