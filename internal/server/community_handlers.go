package server

import (
	"fmt"
	"strconv"
	"time"

	"communities/internal/models"
	"communities/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Listing metadata headers.
const (
	HeaderTotalCount  = "X-Total-Count"
	HeaderTotalPages  = "X-Total-Pages"
	HeaderCurrentPage = "X-Current-Page"
)

// GetCommunities handles GET /api/communities
// @Summary List communities
// @Description Filter, sort and paginate communities. Paging metadata is returned in X-Total-Count, X-Total-Pages and X-Current-Page.
// @Tags communities
// @Produce json
// @Param pageNumber query int false "One-based page number" default(1)
// @Param pageSize query int false "Rows per page" default(10)
// @Param sortKey query string false "id, createdat, postscount or subscriberscount" default(id)
// @Param isAscending query bool false "Sort direction" default(true)
// @Param searchKey query string false "Case-insensitive substring of name or description"
// @Success 200 {array} models.Community
// @Header 200 {integer} X-Total-Count "Rows matching the filter"
// @Header 200 {integer} X-Total-Pages "Number of pages"
// @Header 200 {integer} X-Current-Page "Page actually returned"
// @Failure 500 {object} models.ErrorResponse
// @Router /communities [get]
func (s *Server) GetCommunities(c *fiber.Ctx) error {
	ctx := c.UserContext()

	page, err := s.communityService.ListCommunities(ctx, service.ListCommunitiesInput{
		PageNumber:  c.QueryInt("pageNumber", 1),
		PageSize:    c.QueryInt("pageSize", 0),
		SortKey:     c.Query("sortKey", models.SortByID.String()),
		IsAscending: c.QueryBool("isAscending", true),
		SearchKey:   c.Query("searchKey"),
	})
	if err != nil {
		return respondError(c, err)
	}

	c.Set(HeaderTotalCount, strconv.FormatInt(page.TotalItems, 10))
	c.Set(HeaderTotalPages, strconv.Itoa(page.TotalPages))
	c.Set(HeaderCurrentPage, strconv.Itoa(page.PageNumber))
	return c.JSON(page.Items)
}

// GetCommunity handles GET /api/communities/:id
// @Summary Get community
// @Tags communities
// @Produce json
// @Param id path int true "Community ID"
// @Success 200 {object} models.Community
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /communities/{id} [get]
func (s *Server) GetCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	community, err := s.communityService.GetCommunity(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(community)
}

// PutCommunity handles PUT /api/communities/:id
// @Summary Replace community
// @Description Replaces name and description. The body id must match the path id.
// @Tags communities
// @Accept json
// @Param id path int true "Community ID"
// @Param community body models.Community true "Full community record"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /communities/{id} [put]
func (s *Server) PutCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var community models.Community
	if err := c.BodyParser(&community); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.communityService.ReplaceCommunity(c.UserContext(), id, &community); err != nil {
		return respondError(c, err)
	}

	s.publishCommunityEvent(EventCommunityUpdated, id, communitySummary(&community))
	return c.SendStatus(fiber.StatusNoContent)
}

// PostCommunity handles POST /api/communities
// @Summary Create community
// @Tags communities
// @Accept json
// @Produce json
// @Param community body models.CreateCommunityInput true "New community"
// @Success 201 {object} models.Community
// @Header 201 {string} Location "URL of the created community"
// @Failure 400 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /communities [post]
func (s *Server) PostCommunity(c *fiber.Ctx) error {
	var in models.CreateCommunityInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	community, err := s.communityService.CreateCommunity(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}

	summary := communitySummary(community)
	summary["created_at"] = community.CreatedAt.UTC().Format(time.RFC3339Nano)
	s.publishCommunityEvent(EventCommunityCreated, community.ID, summary)

	c.Location(fmt.Sprintf("/api/communities/%d", community.ID))
	return c.Status(fiber.StatusCreated).JSON(community)
}

// DeleteCommunity handles DELETE /api/communities/:id
// @Summary Delete community
// @Tags communities
// @Param id path int true "Community ID"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /communities/{id} [delete]
func (s *Server) DeleteCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if err := s.communityService.DeleteCommunity(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}

	s.publishCommunityEvent(EventCommunityDeleted, id, map[string]interface{}{"id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
