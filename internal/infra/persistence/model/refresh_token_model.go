package model

import "time"

// RefreshTokenModel mirrors the 'refresh_tokens' table. MemberID is unique,
// so each member holds at most one row; rotation updates it in place.
type RefreshTokenModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	MemberID  int64  `gorm:"unique;not null"`
	Token     string `gorm:"type:varchar(512);unique;not null"`
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (RefreshTokenModel) TableName() string {
	return "refresh_tokens"
}
