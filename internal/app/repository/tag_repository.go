package repository

import (
	"strings"

	"github.com/tagcord/tagcord-backend/internal/app/model"
	"github.com/tagcord/tagcord-backend/pkg/logger"
	"gorm.io/gorm"
)

// TagFilter describes one filtered, sorted, paginated read. Text matches
// tag name, description and owner username case-insensitively (OR across
// the three). Categories use overlap semantics: any shared category matches.
type TagFilter struct {
	Text       string
	Categories []string
	SortOldest bool
	Limit      int
	Offset     int
}

type TagRepository interface {
	Create(tag *model.Tag) error
	Update(tag *model.Tag) error
	Delete(id string) error
	DeleteByOwner(ownerID string) error
	FindByID(id string) (*model.Tag, error)
	FindByName(tagName string, excludeID string) (*model.Tag, error)
	FindByOwner(ownerID string) ([]model.Tag, error)
	FindWithFilter(filter TagFilter) ([]model.Tag, int64, error)
	FindAllWithOwner() ([]model.Tag, error)
	BulkCreate(tags []model.Tag, batchSize int) error
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(tag *model.Tag) error {
	logger.Debug("Creating tag in database", map[string]interface{}{
		"tag_name": tag.TagName,
		"owner_id": tag.OwnerID,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tag).Error; err != nil {
			return err
		}
		return syncCategories(tx, tag)
	})
	if err != nil {
		logger.Error("Failed to create tag in database", err, map[string]interface{}{
			"tag_name": tag.TagName,
			"owner_id": tag.OwnerID,
		})
		return err
	}
	return nil
}

func (r *tagRepository) Update(tag *model.Tag) error {
	logger.Debug("Updating tag in database", map[string]interface{}{
		"tag_id":   tag.ID,
		"tag_name": tag.TagName,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(tag).Error; err != nil {
			return err
		}
		return syncCategories(tx, tag)
	})
	if err != nil {
		logger.Error("Failed to update tag in database", err, map[string]interface{}{
			"tag_id": tag.ID,
		})
		return err
	}
	return nil
}

// syncCategories rewrites the join rows to mirror the Categories snapshot.
func syncCategories(tx *gorm.DB, tag *model.Tag) error {
	if err := tx.Where("tag_id = ?", tag.ID).Delete(&model.TagCategory{}).Error; err != nil {
		return err
	}
	for _, category := range tag.Categories {
		row := model.TagCategory{TagID: tag.ID, Category: category}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *tagRepository) Delete(id string) error {
	logger.Debug("Deleting tag from database", map[string]interface{}{
		"tag_id": id,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&model.TagCategory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Tag{}, "id = ?", id).Error
	})
	if err != nil {
		logger.Error("Failed to delete tag from database", err, map[string]interface{}{
			"tag_id": id,
		})
		return err
	}
	return nil
}

// DeleteByOwner removes every tag a profile owns. Used by the account
// deletion cascade before the profile row itself goes away.
func (r *tagRepository) DeleteByOwner(ownerID string) error {
	logger.Debug("Deleting all tags for owner", map[string]interface{}{
		"owner_id": ownerID,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		sub := tx.Model(&model.Tag{}).Select("id").Where("owner_id = ?", ownerID)
		if err := tx.Where("tag_id IN (?)", sub).Delete(&model.TagCategory{}).Error; err != nil {
			return err
		}
		return tx.Where("owner_id = ?", ownerID).Delete(&model.Tag{}).Error
	})
	if err != nil {
		logger.Error("Failed to delete tags for owner", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		return err
	}
	return nil
}

func (r *tagRepository) FindByID(id string) (*model.Tag, error) {
	var tag model.Tag
	if err := r.db.First(&tag, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindByName looks up a tag by its (uppercase) name, optionally excluding
// one ID so edits don't collide with themselves.
func (r *tagRepository) FindByName(tagName string, excludeID string) (*model.Tag, error) {
	query := r.db.Where("tag_name = ?", tagName)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var tag model.Tag
	if err := query.First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) FindByOwner(ownerID string) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.Where("owner_id = ?", ownerID).
		Order("created_at DESC, id ASC").
		Find(&tags).Error
	if err != nil {
		logger.Error("Failed to find tags by owner", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		return nil, err
	}
	return tags, nil
}

// FindWithFilter runs the single read behind a listing page: total match
// count before pagination, then the page itself. Ordering is created_at in
// the requested direction with id ascending as a deterministic tie-break.
func (r *tagRepository) FindWithFilter(filter TagFilter) ([]model.Tag, int64, error) {
	logger.Debug("Finding tags with filter", map[string]interface{}{
		"text":       filter.Text,
		"categories": filter.Categories,
		"oldest":     filter.SortOldest,
		"limit":      filter.Limit,
		"offset":     filter.Offset,
	})

	base := r.filterQuery(filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		logger.Error("Failed to count tags with filter", err, nil)
		return nil, 0, err
	}

	direction := "DESC"
	if filter.SortOldest {
		direction = "ASC"
	}

	query := base.Session(&gorm.Session{}).
		Order("tags.created_at " + direction).
		Order("tags.id ASC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var tags []model.Tag
	if err := query.Find(&tags).Error; err != nil {
		logger.Error("Failed to find tags with filter", err, nil)
		return nil, 0, err
	}

	return tags, total, nil
}

func (r *tagRepository) filterQuery(filter TagFilter) *gorm.DB {
	query := r.db.Model(&model.Tag{})

	if filter.Text != "" {
		like := "%" + strings.ToLower(filter.Text) + "%"
		query = query.Where(
			"LOWER(tags.tag_name) LIKE ? OR LOWER(tags.description) LIKE ? OR LOWER(tags.owner_username) LIKE ?",
			like, like, like,
		)
	}

	if len(filter.Categories) > 0 {
		sub := r.db.Table("tag_categories").
			Select("tag_id").
			Where("category IN ?", filter.Categories)
		query = query.Where("tags.id IN (?)", sub)
	}

	return query
}

// FindAllWithOwner returns every tag with its owner profile preloaded.
// Admin panel only; browsing surfaces use the denormalized snapshot fields.
func (r *tagRepository) FindAllWithOwner() ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.Preload("Owner").
		Order("created_at DESC, id ASC").
		Find(&tags).Error
	if err != nil {
		logger.Error("Failed to find all tags with owners", err, nil)
		return nil, err
	}
	return tags, nil
}

func (r *tagRepository) BulkCreate(tags []model.Tag, batchSize int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(tags, batchSize).Error; err != nil {
			return err
		}
		for i := range tags {
			if err := syncCategories(tx, &tags[i]); err != nil {
				return err
			}
		}
		return nil
	})
}
