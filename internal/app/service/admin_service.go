package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/tagcord/tagcord-backend/internal/app/model"
	"github.com/tagcord/tagcord-backend/internal/app/repository"
	"github.com/tagcord/tagcord-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// AdminService wraps the moderation surface. Every call here is behind the
// admin middleware; the service still routes mutations through TagService
// so the same validation and cache invalidation apply.
type AdminService struct {
	tagService  *TagService
	tagRepo     repository.TagRepository
	profileRepo repository.ProfileRepository
}

func NewAdminService(
	tagService *TagService,
	tagRepo repository.TagRepository,
	profileRepo repository.ProfileRepository,
) *AdminService {
	return &AdminService{
		tagService:  tagService,
		tagRepo:     tagRepo,
		profileRepo: profileRepo,
	}
}

// CreateTagFor submits a tag on behalf of the given owner.
func (s *AdminService) CreateTagFor(ctx context.Context, ownerID string, input TagInput) (*model.Tag, map[string]string, error) {
	return s.tagService.Create(ctx, ownerID, input)
}

// UpdateTag edits any tag with admin authority.
func (s *AdminService) UpdateTag(ctx context.Context, adminID, tagID string, input TagInput) (*model.Tag, map[string]string, error) {
	return s.tagService.Update(ctx, adminID, true, tagID, input)
}

// DeleteTag removes any tag with admin authority.
func (s *AdminService) DeleteTag(ctx context.Context, adminID, tagID string) error {
	return s.tagService.Delete(ctx, adminID, true, tagID)
}

// MakeAdmin promotes a profile to admin.
func (s *AdminService) MakeAdmin(userID string) error {
	if err := s.profileRepo.SetAdmin(userID, true); err != nil {
		return err
	}
	logger.Info("Profile promoted to admin", map[string]interface{}{
		"profile_id": userID,
	})
	return nil
}

// ListAllTags returns every tag with its current owner profile attached,
// for the moderation table.
func (s *AdminService) ListAllTags() ([]model.Tag, error) {
	return s.tagRepo.FindAllWithOwner()
}

// ListUsers returns every registered profile, newest first.
func (s *AdminService) ListUsers() ([]model.Profile, error) {
	return s.profileRepo.FindAll()
}

var exportHeaders = []string{"Tag Name", "Icon", "Invite Link", "Description", "Categories", "Owner", "Created At"}

// ExportTags writes every tag into an xlsx workbook for offline review.
func (s *AdminService) ExportTags() (*excelize.File, error) {
	tags, err := s.tagRepo.FindAllWithOwner()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Tags"
	f.SetSheetName("Sheet1", sheet)

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, tag := range tags {
		invite := ""
		if tag.InviteURL != nil {
			invite = *tag.InviteURL
		}
		description := ""
		if tag.Description != nil {
			description = *tag.Description
		}

		row := i + 2
		values := []interface{}{
			tag.TagName,
			tag.IconID,
			invite,
			description,
			strings.Join(tag.Categories, ", "),
			tag.OwnerUsername,
			tag.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	logger.Info("Exported tags to workbook", map[string]interface{}{
		"count": len(tags),
	})
	return f, nil
}

// ExportFilename names the download with the export date.
func ExportFilename(date string) string {
	return fmt.Sprintf("tagcord-tags-%s.xlsx", date)
}
