package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/saps-platform/case-management/internal"
	"github.com/saps-platform/case-management/internal/casefile"
	casefileDatamodel "github.com/saps-platform/case-management/internal/core/datamodel/casefile"
)

// CaseRepository implements the casefile.Repository interface using GORM
type CaseRepository struct {
	db *gorm.DB
}

func NewCaseRepository(db *gorm.DB) casefile.Repository {
	return &CaseRepository{db: db}
}

// Create saves a new case. A unique-index violation on case_number is mapped
// to a conflict error so the service can regenerate the number.
func (r *CaseRepository) Create(c *casefile.Case) error {
	model, err := casefile.ToDataModel(c)
	if err != nil {
		return err
	}

	if err := r.db.Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return internal.NewConflictError("case number already exists", internal.ErrCodeCaseNumberConflict).WithCause(err)
		}
		return err
	}

	c.ID = model.ID
	return nil
}

func (r *CaseRepository) GetByID(id int64) (*casefile.Case, error) {
	var model casefileDatamodel.Case
	if err := r.db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrCaseNotFound
		}
		return nil, err
	}
	return casefile.FromDataModel(&model)
}

func (r *CaseRepository) List(filter casefile.ListFilter) ([]*casefile.Case, error) {
	query := r.db.Model(&casefileDatamodel.Case{})

	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Province != "" {
		query = query.Where("province = ?", filter.Province)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.CrimeType != "" {
		query = query.Where("crime_type = ?", filter.CrimeType)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("case_number LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var models []*casefileDatamodel.Case
	err := query.Order("reported_date DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	return casefile.FromDataModelSlice(models)
}

func (r *CaseRepository) Update(c *casefile.Case) error {
	model, err := casefile.ToDataModel(c)
	if err != nil {
		return err
	}
	return r.db.Save(model).Error
}

func (r *CaseRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&casefileDatamodel.Case{}).Error
}
