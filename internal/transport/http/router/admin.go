package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/akramasif506/cloudstore3-sub001/internal/core/server"
	"github.com/akramasif506/cloudstore3-sub001/internal/domain"
	"github.com/akramasif506/cloudstore3-sub001/internal/service"
	mdw "github.com/akramasif506/cloudstore3-sub001/internal/transport/http/middleware"
)

type AdminDeps struct {
	Log      *zap.Logger
	DB       *gorm.DB
	Sessions *service.SessionManager
	Users    *service.UserService
	Listings *service.ListingService
	Orders   *service.OrderService
}

func NewAdminEngine(d AdminDeps) *gin.Engine {
	// 后台流量小，用最小引擎（ginzap 日志 + 恢复 + CORS）打底
	r := server.NewRouter(d.Log)

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		mdw.Metrics(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1")
	admin.Use(mdw.SessionAuth(d.Sessions, domain.RoleAdmin, true))

	mountAdminUsers(admin, d)
	mountAdminListings(admin, d)
	mountAdminOrders(admin, d)

	return r
}

func mountAdminUsers(admin *gin.RouterGroup, d AdminDeps) {
	ez := New(admin)

	type listQ struct {
		Offset int    `form:"offset,default=0"`
		Limit  int    `form:"limit,default=20"`
		Q      string `form:"q"` // 按 email/name 模糊搜
	}
	type row struct {
		ID        string      `json:"id"`
		Email     string      `json:"email"`
		Name      string      `json:"name"`
		Role      domain.Role `json:"role"`
		CreatedAt time.Time   `json:"createdAt"`
	}
	type listOut struct {
		Total int64 `json:"total"`
		Items []row `json:"items"`
	}
	RegisterAction[listQ, listOut](ez, d.DB, Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: BindQuery,
		Handler: func(c *gin.Context, _ *gorm.DB, in *listQ) (listOut, error) {
			us, total, err := d.Users.List(c.Request.Context(), mdw.CurrentUser(c), in.Q, in.Offset, in.Limit)
			if err != nil {
				return listOut{}, err
			}
			out := listOut{Total: total, Items: make([]row, 0, len(us))}
			for _, u := range us {
				out.Items = append(out.Items, row{
					ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, CreatedAt: u.CreatedAt,
				})
			}
			return out, nil
		},
	})

	type roleIn struct {
		Role string `json:"role" binding:"required"`
	}
	RegisterAction[roleIn, gin.H](ez, d.DB, Action[roleIn, gin.H]{
		Method: http.MethodPut,
		Path:   "/users/:id/role",
		Binder: BindJSON,
		Handler: func(c *gin.Context, _ *gorm.DB, in *roleIn) (gin.H, error) {
			err := d.Users.UpdateUserRole(c.Request.Context(), mdw.CurrentUser(c), c.Param("id"), domain.Role(in.Role))
			if err != nil {
				return nil, err
			}
			return gin.H{"id": c.Param("id"), "role": in.Role}, nil
		},
	})
}

func mountAdminListings(admin *gin.RouterGroup, d AdminDeps) {
	ez := New(admin)

	type listQ struct {
		Status string `form:"status,default=pending_review"`
		Offset int    `form:"offset,default=0"`
		Limit  int    `form:"limit,default=20"`
	}
	type listOut struct {
		Total int64            `json:"total"`
		Items []domain.Listing `json:"items"`
	}
	RegisterAction[listQ, listOut](ez, d.DB, Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/listings",
		Binder: BindQuery,
		Handler: func(c *gin.Context, _ *gorm.DB, in *listQ) (listOut, error) {
			items, total, err := d.Listings.Browse(c.Request.Context(), domain.ListingFilter{
				Status: domain.ListingStatus(in.Status), Offset: in.Offset, Limit: in.Limit,
			})
			if err != nil {
				return listOut{}, err
			}
			return listOut{Total: total, Items: items}, nil
		},
	})

	moderate := func(status domain.ListingStatus) func(c *gin.Context, _ *gorm.DB, _ *struct{}) (gin.H, error) {
		return func(c *gin.Context, _ *gorm.DB, _ *struct{}) (gin.H, error) {
			if err := d.Listings.Moderate(c.Request.Context(), mdw.CurrentUser(c), c.Param("id"), status); err != nil {
				return nil, err
			}
			return gin.H{"id": c.Param("id"), "status": status}, nil
		}
	}
	RegisterAction[struct{}, gin.H](ez, d.DB, Action[struct{}, gin.H]{
		Method:  http.MethodPost,
		Path:    "/listings/:id/approve",
		Binder:  BindNone,
		Handler: moderate(domain.StatusApproved),
	})
	RegisterAction[struct{}, gin.H](ez, d.DB, Action[struct{}, gin.H]{
		Method:  http.MethodPost,
		Path:    "/listings/:id/reject",
		Binder:  BindNone,
		Handler: moderate(domain.StatusRejected),
	})
}

func mountAdminOrders(admin *gin.RouterGroup, d AdminDeps) {
	ez := New(admin)

	type listQ struct {
		Offset int `form:"offset,default=0"`
		Limit  int `form:"limit,default=20"`
	}
	type listOut struct {
		Total int64          `json:"total"`
		Items []domain.Order `json:"items"`
	}
	RegisterAction[listQ, listOut](ez, d.DB, Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/orders",
		Binder: BindQuery,
		Handler: func(c *gin.Context, _ *gorm.DB, in *listQ) (listOut, error) {
			items, total, err := d.Orders.ListAll(c.Request.Context(), mdw.CurrentUser(c), in.Offset, in.Limit)
			if err != nil {
				return listOut{}, err
			}
			return listOut{Total: total, Items: items}, nil
		},
	})
}
