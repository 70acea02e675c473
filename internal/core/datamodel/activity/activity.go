package activity

import "time"

type ActivityEvent struct {
	ID          int64     `gorm:"primaryKey"`
	ActionType  string    `gorm:"column:action_type;not null"`
	CaseID      int64     `gorm:"column:case_id;index"`
	CaseNumber  string    `gorm:"column:case_number"`
	Description string    `gorm:"column:description;not null"`
	UserName    string    `gorm:"column:user_name"`
	Province    string    `gorm:"column:province;index"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ActivityEvent) TableName() string {
	return "activity_events"
}
