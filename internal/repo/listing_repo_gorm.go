package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/akramasif506/cloudstore3-sub001/internal/domain"
)

type ListingRepo struct{ db *gorm.DB }

func NewListingRepo(db *gorm.DB) *ListingRepo { return &ListingRepo{db: db} }

func (r *ListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *ListingRepo) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	var l domain.Listing
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ListingRepo) List(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Listing{})
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		tx = tx.Where("category = ?", f.Category)
	}
	if f.OwnerID != "" {
		tx = tx.Where("owner_id = ?", f.OwnerID)
	}
	if s := strings.TrimSpace(f.Q); s != "" {
		like := "%" + s + "%"
		tx = tx.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var items []domain.Listing
	if err := tx.Order("created_at desc").Offset(f.Offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ListingRepo) UpdateStatus(ctx context.Context, id string, status domain.ListingStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Listing{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
