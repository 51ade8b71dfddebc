package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/akramasif506/cloudstore3-sub001/internal/domain"
)

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{db: db} }

// PlaceFromCart 事务内完成 读车 → 建单 → 清车
func (r *OrderRepo) PlaceFromCart(ctx context.Context, ownerID string, build func(items []domain.CartItem) (*domain.Order, error)) (*domain.Order, error) {
	var order *domain.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []domain.CartItem
		if err := tx.Where("owner_id = ?", ownerID).Find(&items).Error; err != nil {
			return err
		}
		o, err := build(items)
		if err != nil {
			return err
		}
		if err := tx.Create(o).Error; err != nil {
			return err
		}
		if err := tx.Where("owner_id = ?", ownerID).Delete(&domain.CartItem{}).Error; err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

func (r *OrderRepo) ListAll(ctx context.Context, offset, limit int) ([]domain.Order, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Order{})
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []domain.Order
	if err := r.db.WithContext(ctx).Preload("Items").
		Order("created_at desc").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
