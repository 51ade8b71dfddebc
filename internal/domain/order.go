package domain

import (
	"context"
	"time"
)

// CartItem 购物车行，owner 维度的简单 CRUD（走 ez.Crud 注册）
type CartItem struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	OwnerID   string    `gorm:"index;size:36" json:"ownerId"`
	ListingID string    `gorm:"size:36" json:"listingId" binding:"required"`
	Quantity  int       `gorm:"default:1" json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (CartItem) TableName() string { return "cart_items" }

type OrderStatus string

const (
	OrderPlaced OrderStatus = "placed"
)

type Order struct {
	ID        string      `gorm:"primaryKey;size:36" json:"id"`
	OwnerID   string      `gorm:"index;size:36" json:"ownerId"`
	Total     float64     `json:"total"`
	Status    OrderStatus `gorm:"size:16" json:"status"`
	Items     []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt time.Time   `json:"createdAt"`
}

func (Order) TableName() string { return "orders" }

// OrderItem 下单时刻的商品快照
type OrderItem struct {
	ID          string  `gorm:"primaryKey;size:36" json:"id"`
	OrderID     string  `gorm:"index;size:36" json:"orderId"`
	ListingID   string  `gorm:"size:36" json:"listingId"`
	ListingName string  `gorm:"size:128" json:"listingName"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
}

func (OrderItem) TableName() string { return "order_items" }

type OrderRepository interface {
	// PlaceFromCart 事务内：读购物车 → 写订单+行 → 清空购物车
	PlaceFromCart(ctx context.Context, ownerID string, build func(items []CartItem) (*Order, error)) (*Order, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Order, error)
	ListAll(ctx context.Context, offset, limit int) ([]Order, int64, error)
}
