package user

import "time"

type User struct {
	ID                int64     `gorm:"primaryKey"`
	Email             string    `gorm:"column:email;uniqueIndex;not null"`
	FullName          string    `gorm:"column:full_name;not null"`
	PasswordHash      string    `gorm:"column:password_hash;not null"`
	SAPSRole          string    `gorm:"column:saps_role"`
	Province          string    `gorm:"column:province"`
	Station           string    `gorm:"column:station"`
	BadgeNumber       string    `gorm:"column:badge_number"`
	ProfilePictureURL string    `gorm:"column:profile_picture_url"`
	ProfileComplete   bool      `gorm:"column:profile_complete;default:false"`
	IsActive          bool      `gorm:"column:is_active;default:true"`
	CreatedAt         time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt         time.Time `gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}
