package service

import (
	"context"

	"github.com/akramasif506/cloudstore3-sub001/internal/domain"
	"github.com/akramasif506/cloudstore3-sub001/pkg/utils"
)

type OrderService struct {
	orders   domain.OrderRepository
	listings domain.ListingRepository
}

func NewOrderService(orders domain.OrderRepository, listings domain.ListingRepository) *OrderService {
	return &OrderService{orders: orders, listings: listings}
}

// Checkout 把购物车快照成订单并清空购物车（仓储层事务内完成）。
// 商品名/单价取下单时刻快照。
func (s *OrderService) Checkout(ctx context.Context, current *domain.User) (*domain.Order, error) {
	if current == nil {
		return nil, &AuthorizationError{}
	}
	o, err := s.orders.PlaceFromCart(ctx, current.ID, func(items []domain.CartItem) (*domain.Order, error) {
		if len(items) == 0 {
			return nil, NewValidationError("cart", "cart is empty")
		}
		order := &domain.Order{
			ID:      utils.NewID(),
			OwnerID: current.ID,
			Status:  domain.OrderPlaced,
		}
		for _, it := range items {
			l, err := s.listings.FindByID(ctx, it.ListingID)
			if err != nil {
				return nil, internalf(err, "lookup listing failed")
			}
			if l == nil || l.Status != domain.StatusApproved {
				return nil, NewValidationError("cart", "listing "+it.ListingID+" is not available")
			}
			qty := it.Quantity
			if qty <= 0 {
				qty = 1
			}
			order.Items = append(order.Items, domain.OrderItem{
				ID:          utils.NewID(),
				OrderID:     order.ID,
				ListingID:   l.ID,
				ListingName: l.Name,
				UnitPrice:   l.Price,
				Quantity:    qty,
			})
			order.Total += l.Price * float64(qty)
		}
		return order, nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) MyOrders(ctx context.Context, current *domain.User) ([]domain.Order, error) {
	if current == nil {
		return nil, &AuthorizationError{}
	}
	out, err := s.orders.ListByOwner(ctx, current.ID)
	if err != nil {
		return nil, internalf(err, "list orders failed")
	}
	return out, nil
}

func (s *OrderService) ListAll(ctx context.Context, acting *domain.User, offset, limit int) ([]domain.Order, int64, error) {
	if acting == nil || acting.Role != domain.RoleAdmin {
		return nil, 0, &AuthorizationError{}
	}
	out, total, err := s.orders.ListAll(ctx, offset, limit)
	if err != nil {
		return nil, 0, internalf(err, "list all orders failed")
	}
	return out, total, nil
}
