package domain

import (
	"context"
	"time"
)

// ListingStatus 商品生命周期状态
type ListingStatus string

const (
	StatusPendingReview ListingStatus = "pending_review"
	StatusApproved      ListingStatus = "approved"
	StatusRejected      ListingStatus = "rejected"
)

// Condition 成色枚举
var Conditions = map[string]struct{}{
	"new":      {},
	"like_new": {},
	"good":     {},
	"fair":     {},
	"poor":     {},
}

type Listing struct {
	ID          string        `gorm:"primaryKey;size:36" json:"id"`
	OwnerID     string        `gorm:"index;size:36" json:"ownerId"` // 创建后不可变
	OwnerName   string        `gorm:"size:64" json:"ownerName"`
	OwnerPhone  string        `gorm:"size:32" json:"ownerPhone"`
	Name        string        `gorm:"size:128" json:"name"`
	Description string        `gorm:"size:2048" json:"description"`
	Price       float64       `json:"price"`
	Category    string        `gorm:"index;size:64" json:"category"`
	Subcategory string        `gorm:"size:64" json:"subcategory"`
	Condition   string        `gorm:"size:16" json:"condition"`
	ImageURL    string        `gorm:"size:255" json:"imageUrl"`
	Status      ListingStatus `gorm:"index;size:24" json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func (Listing) TableName() string { return "listings" }

// ListingFilter 浏览/搜索条件
type ListingFilter struct {
	Status   ListingStatus
	Category string
	Q        string // 名称/描述模糊搜
	OwnerID  string
	Offset   int
	Limit    int
}

type ListingRepository interface {
	Create(ctx context.Context, l *Listing) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	List(ctx context.Context, f ListingFilter) ([]Listing, int64, error)
	// UpdateStatus 审核流转，只改 status
	UpdateStatus(ctx context.Context, id string, status ListingStatus) error
}
