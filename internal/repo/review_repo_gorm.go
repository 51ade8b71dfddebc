package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/akramasif506/cloudstore3-sub001/internal/domain"
)

type ReviewRepo struct{ db *gorm.DB }

func NewReviewRepo(db *gorm.DB) *ReviewRepo { return &ReviewRepo{db: db} }

func (r *ReviewRepo) Append(ctx context.Context, rv *domain.Review) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *ReviewRepo) ListByListing(ctx context.Context, listingID string) ([]domain.Review, error) {
	var out []domain.Review
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

func (r *ReviewRepo) CountByListing(ctx context.Context, listingID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("listing_id = ?", listingID).
		Count(&n).Error
	return n, err
}
