package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// DefaultImageURL is applied when a listing is submitted without card art.
const DefaultImageURL = "https://placeholder.pics/svg/400x200/5865F2-FFFFFF/Tagcord"

// Tag represents a single community listing: a short uppercase tag name,
// a guild icon, an invite link and up to three categories. Owner username
// and avatar are snapshots taken at write time and are never resynced when
// the profile changes later.
type Tag struct {
	ID            string         `gorm:"type:uuid;primarykey" json:"id"`
	TagName       string         `gorm:"type:varchar(4);uniqueIndex;not null" json:"tag_name"`
	IconID        int            `gorm:"not null" json:"icon_id"`
	InviteURL     *string        `json:"invite_url"`
	Description   *string        `json:"description"`
	ImageURL      string         `gorm:"not null" json:"image_url"`
	Categories    pq.StringArray `gorm:"type:text[]" json:"categories"`
	OwnerID       string         `gorm:"type:uuid;index;not null" json:"owner_id"`
	OwnerUsername string         `gorm:"not null" json:"owner_username"`
	OwnerAvatar   *string        `json:"owner_avatar"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	Owner *Profile `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

func (Tag) TableName() string {
	return "tags"
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.ImageURL == "" {
		t.ImageURL = DefaultImageURL
	}
	return nil
}

// TagCategory is the join row behind the category overlap filter. The
// repository keeps it in sync with the Categories snapshot column on every
// write, so filtering never has to parse the array in SQL.
type TagCategory struct {
	TagID    string `gorm:"type:uuid;primaryKey" json:"tag_id"`
	Category string `gorm:"type:varchar(32);primaryKey;index" json:"category"`

	Tag Tag `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (TagCategory) TableName() string {
	return "tag_categories"
}
