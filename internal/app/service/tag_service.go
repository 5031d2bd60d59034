package service

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"github.com/tagcord/tagcord-backend/internal/app/model"
	"github.com/tagcord/tagcord-backend/internal/app/repository"
	apperrors "github.com/tagcord/tagcord-backend/internal/errors"
	"github.com/tagcord/tagcord-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrTagNotFound     = errors.New("tag not found")
	ErrForbidden       = errors.New("not allowed to modify this tag")
	ErrTagNameTaken    = errors.New("tag name already taken")
	ErrProfileRequired = errors.New("a profile is required to submit tags")
)

// TagNotifier receives a signal after every tag mutation. The feed hub
// implements it to re-plan subscriber pages.
type TagNotifier interface {
	NotifyChanged()
}

type TagService struct {
	tagRepo     repository.TagRepository
	profileRepo repository.ProfileRepository
	listing     *ListingService
	notifier    TagNotifier
}

func NewTagService(
	tagRepo repository.TagRepository,
	profileRepo repository.ProfileRepository,
	listing *ListingService,
	notifier TagNotifier,
) *TagService {
	return &TagService{
		tagRepo:     tagRepo,
		profileRepo: profileRepo,
		listing:     listing,
		notifier:    notifier,
	}
}

// Create validates and stores a new tag owned by ownerID. The owner's
// username and avatar are copied onto the tag as a submission-time snapshot
// and never resynced afterwards. Field-level failures come back in the map;
// everything else is an error.
func (s *TagService) Create(ctx context.Context, ownerID string, input TagInput) (*model.Tag, map[string]string, error) {
	validated, fieldErrors := ValidateTagInput(input)
	if fieldErrors != nil {
		return nil, fieldErrors, nil
	}

	profile, err := s.profileRepo.FindByID(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrProfileRequired
		}
		return nil, nil, err
	}

	// Read-then-write uniqueness check. Not atomic: two simultaneous
	// submissions can both pass it, so the unique index on tag_name is the
	// backstop and its violation maps to the same error.
	if err := s.checkNameAvailable(validated.TagName, ""); err != nil {
		return nil, nil, err
	}

	tag := &model.Tag{
		TagName:       validated.TagName,
		IconID:        validated.IconID,
		ImageURL:      validated.ImageURL,
		Categories:    pq.StringArray(validated.Categories),
		OwnerID:       profile.ID,
		OwnerUsername: profile.Username,
		OwnerAvatar:   profile.Avatar,
	}
	tag.InviteURL = &validated.InviteURL
	if validated.Description != "" {
		tag.Description = &validated.Description
	}

	if err := s.tagRepo.Create(tag); err != nil {
		if apperrors.ParseStoreError(err, "tag").Code == apperrors.TagNameTaken {
			return nil, nil, ErrTagNameTaken
		}
		return nil, nil, err
	}

	logger.Info("Tag created", map[string]interface{}{
		"tag_id":   tag.ID,
		"tag_name": tag.TagName,
		"owner_id": tag.OwnerID,
	})

	s.afterMutation(ctx)
	return tag, nil, nil
}

// Update overwrites a tag's mutable fields. Only the owner or an admin may
// do so; the owner snapshot fields stay as they were at submission time.
func (s *TagService) Update(ctx context.Context, actorID string, actorIsAdmin bool, tagID string, input TagInput) (*model.Tag, map[string]string, error) {
	tag, err := s.findTag(tagID)
	if err != nil {
		return nil, nil, err
	}

	if !canMutate(actorID, actorIsAdmin, tag) {
		return nil, nil, ErrForbidden
	}

	validated, fieldErrors := ValidateTagInput(input)
	if fieldErrors != nil {
		return nil, fieldErrors, nil
	}

	if err := s.checkNameAvailable(validated.TagName, tag.ID); err != nil {
		return nil, nil, err
	}

	tag.TagName = validated.TagName
	tag.IconID = validated.IconID
	tag.Categories = pq.StringArray(validated.Categories)
	tag.InviteURL = &validated.InviteURL
	tag.Description = nil
	if validated.Description != "" {
		tag.Description = &validated.Description
	}
	tag.ImageURL = validated.ImageURL
	if tag.ImageURL == "" {
		tag.ImageURL = model.DefaultImageURL
	}

	if err := s.tagRepo.Update(tag); err != nil {
		if apperrors.ParseStoreError(err, "tag").Code == apperrors.TagNameTaken {
			return nil, nil, ErrTagNameTaken
		}
		return nil, nil, err
	}

	logger.Info("Tag updated", map[string]interface{}{
		"tag_id":   tag.ID,
		"actor_id": actorID,
	})

	s.afterMutation(ctx)
	return tag, nil, nil
}

// Delete removes a tag, gated the same way as Update.
func (s *TagService) Delete(ctx context.Context, actorID string, actorIsAdmin bool, tagID string) error {
	tag, err := s.findTag(tagID)
	if err != nil {
		return err
	}

	if !canMutate(actorID, actorIsAdmin, tag) {
		return ErrForbidden
	}

	if err := s.tagRepo.Delete(tag.ID); err != nil {
		return err
	}

	logger.Info("Tag deleted", map[string]interface{}{
		"tag_id":   tag.ID,
		"actor_id": actorID,
	})

	s.afterMutation(ctx)
	return nil
}

func (s *TagService) GetByID(id string) (*model.Tag, error) {
	return s.findTag(id)
}

func (s *TagService) ListByOwner(ownerID string) ([]model.Tag, error) {
	return s.tagRepo.FindByOwner(ownerID)
}

func (s *TagService) findTag(id string) (*model.Tag, error) {
	tag, err := s.tagRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return tag, nil
}

func (s *TagService) checkNameAvailable(tagName string, excludeID string) error {
	_, err := s.tagRepo.FindByName(tagName, excludeID)
	if err == nil {
		return ErrTagNameTaken
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

func (s *TagService) afterMutation(ctx context.Context) {
	if s.listing != nil {
		s.listing.Invalidate(ctx)
	}
	if s.notifier != nil {
		s.notifier.NotifyChanged()
	}
}

func canMutate(actorID string, actorIsAdmin bool, tag *model.Tag) bool {
	return actorIsAdmin || actorID == tag.OwnerID
}
