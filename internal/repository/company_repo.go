package repository

import (
	"context"
	"errors"

	"github.com/c0ex38/Backend-DuaMiss/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyRepo interface {
	Create(ctx context.Context, c *models.Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Company, error)
	// ExistsByOwnerAndNameCI ignores the record with id == exclude (uuid.Nil excludes nothing).
	ExistsByOwnerAndNameCI(ctx context.Context, ownerID uuid.UUID, name string, exclude uuid.UUID) (bool, error)
}

type companyRepo struct{ db *gorm.DB }

func NewCompanyRepo(db *gorm.DB) CompanyRepo { return &companyRepo{db: db} }

func (r *companyRepo) Create(ctx context.Context, c *models.Company) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *companyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var c models.Company
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *companyRepo) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	return translate(r.db.WithContext(ctx).Model(&models.Company{}).Where("id = ?", id).Update("name", name).Error)
}

func (r *companyRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Company, error) {
	var list []models.Company
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *companyRepo) ExistsByOwnerAndNameCI(ctx context.Context, ownerID uuid.UUID, name string, exclude uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Company{}).
		Where("owner_id = ? AND lower(name) = lower(?)", ownerID, name)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var cnt int64
	err := q.Count(&cnt).Error
	return cnt > 0, err
}
