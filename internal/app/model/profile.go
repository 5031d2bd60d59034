package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is a registered user's identity snapshot. The ID matches the
// identity-provider subject, so a user keeps the same row across sign-ins.
type Profile struct {
	ID            string    `gorm:"type:uuid;primarykey" json:"id"`
	DiscordID     string    `gorm:"uniqueIndex;not null" json:"discord_id"`
	Username      string    `gorm:"not null" json:"username"`
	Avatar        *string   `json:"avatar"`
	Discriminator *string   `json:"discriminator"` // legacy Discord field, null for new accounts
	IsAdmin       bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
