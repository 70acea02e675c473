package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/saps-platform/case-management/internal"
	casefileDatamodel "github.com/saps-platform/case-management/internal/core/datamodel/casefile"
	reportDatamodel "github.com/saps-platform/case-management/internal/core/datamodel/report"
	"github.com/saps-platform/case-management/internal/rbac"
	"github.com/saps-platform/case-management/internal/reports"
)

// ReportRepository implements the reports.Repository interface using GORM.
// Statistics are aggregated straight off the cases table.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) reports.Repository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(report *reports.Report) error {
	model, err := reports.ToDataModel(report)
	if err != nil {
		return err
	}

	if err := r.db.Create(model).Error; err != nil {
		return err
	}

	report.ID = model.ID
	return nil
}

func (r *ReportRepository) GetByID(id int64) (*reports.Report, error) {
	var model reportDatamodel.Report
	if err := r.db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError("Report not found", internal.ErrCodeCaseNotFound)
		}
		return nil, err
	}
	return reports.FromDataModel(&model)
}

func (r *ReportRepository) Update(report *reports.Report) error {
	model, err := reports.ToDataModel(report)
	if err != nil {
		return err
	}
	return r.db.Save(model).Error
}

func (r *ReportRepository) ListRecent(limit int) ([]*reports.Report, error) {
	var models []*reportDatamodel.Report
	err := r.db.Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return reports.FromDataModelSlice(models)
}

type countRow struct {
	Key   string `gorm:"column:key"`
	Count int64  `gorm:"column:count"`
}

// AggregateStats counts cases reported in the given window. The
// "All Provinces" sentinel means no province filter.
func (r *ReportRepository) AggregateStats(province string, start, end time.Time) (*reports.Stats, error) {
	stats := &reports.Stats{
		ByType:     make(map[string]int64),
		ByProvince: make(map[string]int64),
		ByStatus:   make(map[string]int64),
		ByPriority: make(map[string]int64),
	}

	base := func() *gorm.DB {
		query := r.db.Model(&casefileDatamodel.Case{}).
			Where("reported_date >= ? AND reported_date <= ?", start, end)
		if province != "" && province != reports.AllProvinces {
			query = query.Where("province = ?", province)
		}
		return query
	}

	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", string(rbac.StatusSolved)).Count(&stats.Solved).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", string(rbac.StatusUnderInvestigation)).Count(&stats.UnderInvestigation).Error; err != nil {
		return nil, err
	}
	if err := base().Where("priority = ?", "Critical").Count(&stats.Critical).Error; err != nil {
		return nil, err
	}

	if stats.Total > 0 {
		stats.ClearanceRate = float64(stats.Solved) / float64(stats.Total) * 100
	}

	grouped := func(column string, into map[string]int64) error {
		var rows []countRow
		err := base().
			Select(column + " AS key, COUNT(*) AS count").
			Group(column).
			Scan(&rows).Error
		if err != nil {
			return err
		}
		for _, row := range rows {
			into[row.Key] = row.Count
		}
		return nil
	}

	if err := grouped("crime_type", stats.ByType); err != nil {
		return nil, err
	}
	if err := grouped("province", stats.ByProvince); err != nil {
		return nil, err
	}
	if err := grouped("status", stats.ByStatus); err != nil {
		return nil, err
	}
	if err := grouped("priority", stats.ByPriority); err != nil {
		return nil, err
	}

	return stats, nil
}
