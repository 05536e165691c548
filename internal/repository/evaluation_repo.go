package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/classinsight/classinsight-api/internal/models"
)

// EvaluationRepository persists evaluations. No operation retries internally;
// retry decisions belong to callers.
type EvaluationRepository interface {
	Create(ctx context.Context, evaluation *models.Evaluation) error
	FindByID(ctx context.Context, id int64) (*models.Evaluation, error)
	FindAll(ctx context.Context) ([]models.Evaluation, error)
	FindByMinScore(ctx context.Context, threshold float64) ([]models.Evaluation, error)
	Stats(ctx context.Context) (models.EvaluationStats, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type evaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository constructs a repository backed by GORM.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) Create(ctx context.Context, evaluation *models.Evaluation) error {
	return r.db.WithContext(ctx).Create(evaluation).Error
}

// FindByID returns nil without error when no row matches.
func (r *evaluationRepository) FindByID(ctx context.Context, id int64) (*models.Evaluation, error) {
	var evaluation models.Evaluation
	err := r.db.WithContext(ctx).First(&evaluation, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &evaluation, nil
}

func (r *evaluationRepository) FindAll(ctx context.Context) ([]models.Evaluation, error) {
	var evaluations []models.Evaluation
	err := r.db.WithContext(ctx).
		Order("data_criacao DESC").
		Find(&evaluations).
		Error
	return evaluations, err
}

func (r *evaluationRepository) FindByMinScore(ctx context.Context, threshold float64) ([]models.Evaluation, error) {
	var evaluations []models.Evaluation
	err := r.db.WithContext(ctx).
		Where("nota >= ?", threshold).
		Order("nota DESC").
		Find(&evaluations).
		Error
	return evaluations, err
}

// Stats computes count, mean, min and max over all rows in one round trip.
// COALESCE keeps the aggregates at zero for an empty table.
func (r *evaluationRepository) Stats(ctx context.Context) (models.EvaluationStats, error) {
	var stats models.EvaluationStats
	err := r.db.WithContext(ctx).
		Model(&models.Evaluation{}).
		Select("COUNT(*) AS count, COALESCE(AVG(nota), 0) AS mean, COALESCE(MIN(nota), 0) AS min, COALESCE(MAX(nota), 0) AS max").
		Scan(&stats).
		Error
	return stats, err
}

// Delete removes the row if present. Returns false when nothing matched,
// which makes repeated deletes of the same id harmless.
func (r *evaluationRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Evaluation{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
