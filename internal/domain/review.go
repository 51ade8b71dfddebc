package domain

import (
	"context"
	"time"
)

// Review 评价。ReviewerName/ReviewerAvatar 是下单时刻的快照，
// 之后资料变更不会回写（物化视图式不变量）。
type Review struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	ListingID      string    `gorm:"index;size:36" json:"listingId"`
	ReviewerID     string    `gorm:"size:36" json:"reviewerId"`
	ReviewerName   string    `gorm:"size:64" json:"reviewerName"`
	ReviewerAvatar string    `gorm:"size:255" json:"reviewerAvatar"`
	Rating         int       `json:"rating"` // [1,5]
	Comment        string    `gorm:"size:1024" json:"comment"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (Review) TableName() string { return "reviews" }

type ReviewRepository interface {
	Append(ctx context.Context, r *Review) error
	ListByListing(ctx context.Context, listingID string) ([]Review, error)
	CountByListing(ctx context.Context, listingID string) (int64, error)
}
