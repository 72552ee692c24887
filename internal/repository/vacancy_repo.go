package repository

import (
	"context"

	"github.com/fill11/match-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VacancyFilter struct {
	Status   *models.VacancyStatus
	OnlyOpen bool
}

type VacancyRepository interface {
	Create(ctx context.Context, tx *gorm.DB, vacancy *models.Vacancy) error
	FindByID(ctx context.Context, id, matchID uuid.UUID) (*models.Vacancy, error)
	FindByMatchID(ctx context.Context, matchID uuid.UUID, filter VacancyFilter) ([]models.Vacancy, error)
	FindForUpdate(ctx context.Context, tx *gorm.DB, id, matchID uuid.UUID) (*models.Vacancy, error)
	IncrementFilled(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)
	ExpireByMatchID(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) (int64, error)
	GetDB() *gorm.DB
}

type vacancyRepository struct {
	db *gorm.DB
}

func NewVacancyRepository(db *gorm.DB) VacancyRepository {
	return &vacancyRepository{db: db}
}

func (r *vacancyRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *vacancyRepository) Create(ctx context.Context, tx *gorm.DB, vacancy *models.Vacancy) error {
	return tx.WithContext(ctx).Create(vacancy).Error
}

func (r *vacancyRepository) FindByID(ctx context.Context, id, matchID uuid.UUID) (*models.Vacancy, error) {
	var vacancy models.Vacancy
	err := r.db.WithContext(ctx).
		Where("id = ? AND match_id = ?", id, matchID).
		First(&vacancy).Error
	if err != nil {
		return nil, err
	}
	return &vacancy, nil
}

func (r *vacancyRepository) FindByMatchID(ctx context.Context, matchID uuid.UUID, filter VacancyFilter) ([]models.Vacancy, error) {
	var vacancies []models.Vacancy
	q := r.db.WithContext(ctx).Where("match_id = ?", matchID)
	if filter.OnlyOpen {
		q = q.Where("status = ?", models.VacancyStatusOpen)
	} else if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if err := q.Order("created_at DESC").Find(&vacancies).Error; err != nil {
		return nil, err
	}
	return vacancies, nil
}

// FindForUpdate locks the vacancy row, scoped to its match.
func (r *vacancyRepository) FindForUpdate(ctx context.Context, tx *gorm.DB, id, matchID uuid.UUID) (*models.Vacancy, error) {
	var vacancy models.Vacancy
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND match_id = ?", id, matchID).
		First(&vacancy).Error
	if err != nil {
		return nil, err
	}
	return &vacancy, nil
}

// IncrementFilled is a single compare-and-swap: it only succeeds while the vacancy
// is OPEN with room, and flips it to FILLED when the last slot is taken.
// SET expressions see the pre-update row on both Postgres and SQLite.
func (r *vacancyRepository) IncrementFilled(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.Vacancy{}).
		Where("id = ? AND status = ? AND filled_count < count_needed", id, models.VacancyStatusOpen).
		Updates(map[string]any{
			"filled_count": gorm.Expr("filled_count + 1"),
			"status": gorm.Expr("CASE WHEN filled_count + 1 >= count_needed THEN ? ELSE status END",
				models.VacancyStatusFilled),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *vacancyRepository) ExpireByMatchID(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) (int64, error) {
	res := tx.WithContext(ctx).
		Model(&models.Vacancy{}).
		Where("match_id = ? AND status <> ?", matchID, models.VacancyStatusExpired).
		Update("status", models.VacancyStatusExpired)
	return res.RowsAffected, res.Error
}
