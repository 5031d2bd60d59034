package controller

import (
	goerrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tagcord/tagcord-backend/internal/app/service"
	"github.com/tagcord/tagcord-backend/internal/errors"
	"github.com/tagcord/tagcord-backend/internal/middleware"
	"gorm.io/gorm"
)

type AdminController struct {
	adminService *service.AdminService
}

func NewAdminController(adminService *service.AdminService) *AdminController {
	return &AdminController{
		adminService: adminService,
	}
}

type AdminCreateTagRequest struct {
	OwnerID string           `json:"owner_id" binding:"required"`
	Tag     service.TagInput `json:"tag" binding:"required"`
}

// CreateTag submits a tag on behalf of any user.
// POST /api/admin/create-tag
func (ctrl *AdminController) CreateTag(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AdminCreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request body")
		return
	}

	tag, fieldErrors, err := ctrl.adminService.CreateTagFor(c.Request.Context(), req.OwnerID, req.Tag)
	if err != nil {
		ctrl.respondAdminError(c, err)
		return
	}
	if fieldErrors != nil {
		errors.RespondWithValidationError(c, fieldErrors)
		return
	}

	adminID, _ := middleware.GetUserID(c)
	log.Info("Admin created tag", map[string]interface{}{
		"admin_id": adminID,
		"tag_id":   tag.ID,
		"owner_id": req.OwnerID,
	})

	c.JSON(http.StatusOK, gin.H{"data": tag})
}

type AdminUpdateTagRequest struct {
	TagID   string           `json:"tag_id" binding:"required"`
	Updates service.TagInput `json:"updates" binding:"required"`
}

// UpdateTag edits any tag with admin authority.
// POST /api/admin/update-tag
func (ctrl *AdminController) UpdateTag(c *gin.Context) {
	var req AdminUpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request body")
		return
	}

	adminID, _ := middleware.GetUserID(c)
	tag, fieldErrors, err := ctrl.adminService.UpdateTag(c.Request.Context(), adminID, req.TagID, req.Updates)
	if err != nil {
		ctrl.respondAdminError(c, err)
		return
	}
	if fieldErrors != nil {
		errors.RespondWithValidationError(c, fieldErrors)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tag})
}

type AdminDeleteTagRequest struct {
	TagID string `json:"tag_id" binding:"required"`
}

// DeleteTag removes any tag with admin authority.
// POST /api/admin/delete-tag
func (ctrl *AdminController) DeleteTag(c *gin.Context) {
	var req AdminDeleteTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request body")
		return
	}

	adminID, _ := middleware.GetUserID(c)
	if err := ctrl.adminService.DeleteTag(c.Request.Context(), adminID, req.TagID); err != nil {
		ctrl.respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted"})
}

type MakeAdminRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// MakeAdmin promotes a profile to admin.
// POST /api/admin/make-admin
func (ctrl *AdminController) MakeAdmin(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req MakeAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.BadRequest(c, errors.ValidationInvalidInput, "user_id is required")
		return
	}

	if err := ctrl.adminService.MakeAdmin(req.UserID); err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			errors.NotFound(c, errors.ProfileNotFound, "Profile not found")
			return
		}
		log.Error("Failed to promote profile", err, map[string]interface{}{
			"user_id": req.UserID,
		})
		errors.InternalError(c, "Failed to promote user")
		return
	}

	adminID, _ := middleware.GetUserID(c)
	log.Info("Profile promoted", map[string]interface{}{
		"admin_id": adminID,
		"user_id":  req.UserID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "User promoted to admin"})
}

// ListTags returns every tag with owner profiles for the moderation table.
// GET /api/admin/tags
func (ctrl *AdminController) ListTags(c *gin.Context) {
	tags, err := ctrl.adminService.ListAllTags()
	if err != nil {
		errors.InternalError(c, "Failed to load tags")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tags":  tags,
		"count": len(tags),
	})
}

// ListUsers returns every registered profile.
// GET /api/admin/users
func (ctrl *AdminController) ListUsers(c *gin.Context) {
	users, err := ctrl.adminService.ListUsers()
	if err != nil {
		errors.InternalError(c, "Failed to load users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}

// ExportTags streams an xlsx workbook of every tag.
// GET /api/admin/export
func (ctrl *AdminController) ExportTags(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	workbook, err := ctrl.adminService.ExportTags()
	if err != nil {
		log.Error("Export failed", err, nil)
		errors.InternalError(c, "Failed to export tags")
		return
	}
	defer workbook.Close()

	filename := service.ExportFilename(time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := workbook.Write(c.Writer); err != nil {
		log.Error("Failed to stream export", err, nil)
	}
}

func (ctrl *AdminController) respondAdminError(c *gin.Context, err error) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case goerrors.Is(err, service.ErrTagNotFound):
		errors.NotFound(c, errors.TagNotFound, "Tag not found")
	case goerrors.Is(err, service.ErrTagNameTaken):
		errors.Conflict(c, errors.TagNameTaken, "This tag name already exists")
	case goerrors.Is(err, service.ErrProfileRequired):
		errors.NotFound(c, errors.ProfileNotFound, "The target owner has no profile")
	default:
		log.Error("Admin operation failed", err, nil)
		errors.InternalError(c, "Something went wrong. Please try again later")
	}
}
