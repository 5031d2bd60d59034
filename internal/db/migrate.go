package db

import (
	"github.com/tagcord/tagcord-backend/internal/app/model"
	"github.com/tagcord/tagcord-backend/pkg/logger"
)

// Migrate runs database migrations. The schema is two user-facing tables
// (profiles, tags) plus the category join rows used by the overlap filter.
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.Profile{},
		&model.Tag{},
		&model.TagCategory{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
