package repository

import (
	"github.com/tagcord/tagcord-backend/internal/app/model"
	"github.com/tagcord/tagcord-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	Create(profile *model.Profile) error
	Update(profile *model.Profile) error
	Delete(id string) error
	FindByID(id string) (*model.Profile, error)
	FindByDiscordID(discordID string) (*model.Profile, error)
	FindAll() ([]model.Profile, error)
	SetAdmin(id string, isAdmin bool) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(profile *model.Profile) error {
	if err := r.db.Create(profile).Error; err != nil {
		logger.Error("Failed to create profile in database", err, map[string]interface{}{
			"discord_id": profile.DiscordID,
		})
		return err
	}
	return nil
}

func (r *profileRepository) Update(profile *model.Profile) error {
	if err := r.db.Save(profile).Error; err != nil {
		logger.Error("Failed to update profile in database", err, map[string]interface{}{
			"profile_id": profile.ID,
		})
		return err
	}
	return nil
}

func (r *profileRepository) Delete(id string) error {
	if err := r.db.Delete(&model.Profile{}, "id = ?", id).Error; err != nil {
		logger.Error("Failed to delete profile from database", err, map[string]interface{}{
			"profile_id": id,
		})
		return err
	}
	return nil
}

func (r *profileRepository) FindByID(id string) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) FindByDiscordID(discordID string) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.First(&profile, "discord_id = ?", discordID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) FindAll() ([]model.Profile, error) {
	var profiles []model.Profile
	if err := r.db.Order("created_at DESC").Find(&profiles).Error; err != nil {
		logger.Error("Failed to list profiles", err, nil)
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepository) SetAdmin(id string, isAdmin bool) error {
	result := r.db.Model(&model.Profile{}).Where("id = ?", id).Update("is_admin", isAdmin)
	if result.Error != nil {
		logger.Error("Failed to update admin flag", result.Error, map[string]interface{}{
			"profile_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
