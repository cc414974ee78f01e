// Package model holds the GORM table mappings for the persistence layer.
package model

import "time"

// MemberModel mirrors the 'members' table. The email column carries the
// provider-derived virtual address and is the identity key for social login.
type MemberModel struct {
	ID                int64  `gorm:"primaryKey;autoIncrement"`
	Email             string `gorm:"type:varchar(255);unique;not null"`
	Name              string `gorm:"type:varchar(100);not null"`
	IslandName        string `gorm:"type:varchar(100);not null"`
	ProfileImageIndex int    `gorm:"not null;default:0"`
	OAuthID           string `gorm:"column:oauth_id;type:varchar(255)"`
	Provider          string `gorm:"type:varchar(20);not null"`
	Status            string `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	RefreshToken *RefreshTokenModel `gorm:"foreignKey:MemberID"`
}

// TableName explicitly sets the table name for GORM.
func (MemberModel) TableName() string {
	return "members"
}
