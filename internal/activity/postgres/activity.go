package postgres

import (
	"gorm.io/gorm"

	"github.com/saps-platform/case-management/internal/activity"
	activityDatamodel "github.com/saps-platform/case-management/internal/core/datamodel/activity"
)

// ActivityRepository implements the activity.Repository interface using GORM
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) activity.Repository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(event *activity.Event) error {
	model := activity.ToDataModel(event)
	if err := r.db.Create(model).Error; err != nil {
		return err
	}
	event.ID = model.ID
	return nil
}

func (r *ActivityRepository) GetRecent(limit int) ([]*activity.Event, error) {
	var models []*activityDatamodel.ActivityEvent
	err := r.db.Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return activity.FromDataModelSlice(models), nil
}

func (r *ActivityRepository) GetByCaseID(caseID int64, limit int) ([]*activity.Event, error) {
	var models []*activityDatamodel.ActivityEvent
	err := r.db.Where("case_id = ?", caseID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return activity.FromDataModelSlice(models), nil
}
