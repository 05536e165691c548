package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/classinsight/classinsight-api/internal/models"
)

// ReportRepository persists the outcome of scheduled report runs.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	FindLatest(ctx context.Context, limit int) ([]models.Report, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository constructs a repository backed by GORM.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepository) FindLatest(ctx context.Context, limit int) ([]models.Report, error) {
	if limit <= 0 {
		limit = 10
	}

	var reports []models.Report
	err := r.db.WithContext(ctx).
		Order("data_geracao DESC").
		Limit(limit).
		Find(&reports).
		Error
	return reports, err
}
