package model

import (
	"time"

	"gorm.io/gorm"
)

// Organization represents the organization model stored in the database
// This is the tenancy root: every other entity carries its ID for isolation
type Organization struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	Name               string         `json:"name" gorm:"type:varchar(100);not null"`
	SubscriptionTier   string         `json:"subscription_tier" gorm:"type:varchar(50);default:'free'"`
	SubscriptionStatus string         `json:"subscription_status" gorm:"type:varchar(50);default:'active'"`
	OwnerID            uint           `json:"owner_id" gorm:"index;not null"`
	Active             bool           `json:"active" gorm:"default:true"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`
}
