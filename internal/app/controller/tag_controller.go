package controller

import (
	goerrors "errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tagcord/tagcord-backend/internal/app/model"
	"github.com/tagcord/tagcord-backend/internal/app/service"
	"github.com/tagcord/tagcord-backend/internal/errors"
	"github.com/tagcord/tagcord-backend/internal/middleware"
)

type TagController struct {
	tagService     *service.TagService
	listingService *service.ListingService
	homeFeedSize   int
}

func NewTagController(tagService *service.TagService, listingService *service.ListingService, homeFeedSize int) *TagController {
	if homeFeedSize <= 0 {
		homeFeedSize = 8
	}
	return &TagController{
		tagService:     tagService,
		listingService: listingService,
		homeFeedSize:   homeFeedSize,
	}
}

// ListTags returns one filtered, sorted page of tags.
// GET /api/tags?search=&categories=&sort=&page=
func (ctrl *TagController) ListTags(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	params := service.ListingParams{
		Text:       c.Query("search"),
		Categories: splitCategories(c.QueryArray("categories")),
		Sort:       c.Query("sort"),
		Page:       page,
	}

	result, err := ctrl.listingService.PlanParams(c.Request.Context(), params)
	if err != nil {
		ctrl.respondListingError(c, err)
		return
	}

	pageSize := ctrl.listingService.PageSize()
	log.Debug("Listing page served", map[string]interface{}{
		"total_matches": result.TotalMatches,
		"page":          page,
	})

	c.JSON(http.StatusOK, gin.H{
		"tags":          result.Items,
		"total_matches": result.TotalMatches,
		"page":          page,
		"page_size":     pageSize,
		"total_pages":   int(math.Ceil(float64(result.TotalMatches) / float64(pageSize))),
	})
}

// RecentTags returns the home feed: the newest tags, unfiltered.
// GET /api/tags/recent
func (ctrl *TagController) RecentTags(c *gin.Context) {
	result, err := ctrl.listingService.PlanParams(c.Request.Context(), service.ListingParams{
		Sort:     service.SortNewest,
		Page:     1,
		PageSize: ctrl.homeFeedSize,
	})
	if err != nil {
		ctrl.respondListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tags": result.Items,
	})
}

// ListCategories returns the fixed category vocabulary.
// GET /api/tags/categories
func (ctrl *TagController) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": model.AvailableCategories,
		"max_per_tag": model.MaxCategoriesPerTag,
	})
}

// GetTag returns a single tag by ID.
// GET /api/tags/:id
func (ctrl *TagController) GetTag(c *gin.Context) {
	tag, err := ctrl.tagService.GetByID(c.Param("id"))
	if err != nil {
		if goerrors.Is(err, service.ErrTagNotFound) {
			errors.NotFound(c, errors.TagNotFound, "Tag not found")
			return
		}
		errors.InternalError(c, "Failed to load tag")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

// CreateTag submits a new tag owned by the signed-in user.
// POST /api/tags
func (ctrl *TagController) CreateTag(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "Sign in to submit a tag")
		return
	}

	var input service.TagInput
	if err := c.ShouldBindJSON(&input); err != nil {
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request body")
		return
	}

	tag, fieldErrors, err := ctrl.tagService.Create(c.Request.Context(), userID, input)
	if err != nil {
		ctrl.respondMutationError(c, err)
		return
	}
	if fieldErrors != nil {
		errors.RespondWithValidationError(c, fieldErrors)
		return
	}

	log.Info("Tag submitted", map[string]interface{}{
		"tag_id":   tag.ID,
		"tag_name": tag.TagName,
	})

	c.JSON(http.StatusCreated, gin.H{"tag": tag})
}

// UpdateTag overwrites a tag. Owner or admin only.
// PUT /api/tags/:id
func (ctrl *TagController) UpdateTag(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "Sign in to edit tags")
		return
	}

	var input service.TagInput
	if err := c.ShouldBindJSON(&input); err != nil {
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request body")
		return
	}

	tag, fieldErrors, err := ctrl.tagService.Update(c.Request.Context(), userID, middleware.IsAdmin(c), c.Param("id"), input)
	if err != nil {
		ctrl.respondMutationError(c, err)
		return
	}
	if fieldErrors != nil {
		errors.RespondWithValidationError(c, fieldErrors)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

// DeleteTag removes a tag. Owner or admin only.
// DELETE /api/tags/:id
func (ctrl *TagController) DeleteTag(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "Sign in to delete tags")
		return
	}

	if err := ctrl.tagService.Delete(c.Request.Context(), userID, middleware.IsAdmin(c), c.Param("id")); err != nil {
		ctrl.respondMutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted"})
}

// MyTags lists the signed-in user's own tags.
// GET /api/my-tags
func (ctrl *TagController) MyTags(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "Sign in to see your tags")
		return
	}

	tags, err := ctrl.tagService.ListByOwner(userID)
	if err != nil {
		errors.InternalError(c, "Failed to load your tags")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tags":  tags,
		"count": len(tags),
	})
}

func (ctrl *TagController) respondListingError(c *gin.Context, err error) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case goerrors.Is(err, service.ErrInvalidQuery):
		errors.BadRequest(c, errors.QueryInvalid, "Invalid listing query")
	case goerrors.Is(err, service.ErrStoreUnavailable):
		log.Error("Listing store unavailable", err, nil)
		errors.Unavailable(c, "Listings are temporarily unavailable. Please try again")
	default:
		log.Error("Listing query failed", err, nil)
		errors.InternalError(c, "Failed to load listings")
	}
}

func (ctrl *TagController) respondMutationError(c *gin.Context, err error) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case goerrors.Is(err, service.ErrTagNotFound):
		errors.NotFound(c, errors.TagNotFound, "Tag not found")
	case goerrors.Is(err, service.ErrForbidden):
		errors.Forbidden(c, "Only the owner or an admin can modify this tag")
	case goerrors.Is(err, service.ErrTagNameTaken):
		errors.Conflict(c, errors.TagNameTaken, "This tag name already exists. Please choose a different one")
	case goerrors.Is(err, service.ErrProfileRequired):
		errors.RespondWithError(c, http.StatusForbidden, errors.ProfileRequired, "A profile is required to submit tags")
	case goerrors.Is(err, service.ErrStoreUnavailable):
		log.Error("Tag store unavailable", err, nil)
		errors.Unavailable(c, "Tags are temporarily unavailable. Please try again")
	default:
		log.Error("Tag mutation failed", err, nil)
		errors.InternalError(c, "Something went wrong. Please try again later")
	}
}

// splitCategories accepts a repeated categories parameter as well as a
// single comma-separated value.
func splitCategories(values []string) []string {
	var categories []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				categories = append(categories, part)
			}
		}
	}
	return categories
}
