package router

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/akramasif506/cloudstore3-sub001/internal/core/config"
	"github.com/akramasif506/cloudstore3-sub001/internal/core/server"
	"github.com/akramasif506/cloudstore3-sub001/internal/domain"
	"github.com/akramasif506/cloudstore3-sub001/internal/service"
	httpez "github.com/akramasif506/cloudstore3-sub001/internal/transport/http/ez"
	mdw "github.com/akramasif506/cloudstore3-sub001/internal/transport/http/middleware"
	resp "github.com/akramasif506/cloudstore3-sub001/internal/transport/http/response"
)

type APIDeps struct {
	Log      *zap.Logger
	DB       *gorm.DB
	Cfg      *config.Config
	Sessions *service.SessionManager
	Users    *service.UserService
	Listings *service.ListingService
	Reviews  *service.ReviewService
	Orders   *service.OrderService
}

func NewAPIEngine(d APIDeps) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		server.CORS(d.Cfg.App.CORSOrigins),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		mdw.SimpleRecovery(),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	// 商品图片静态回源
	r.Static(d.Cfg.Upload.BaseURL, d.Cfg.Upload.Dir)

	api := r.Group("/api/v1")

	mountAuth(api, d)
	mountPublicListings(api, d)

	// 鉴权分组
	authed := api.Group("")
	authed.Use(mdw.SessionAuth(d.Sessions, "", true))
	mountMe(authed, d)
	mountIntake(authed, d)
	mountCart(authed, d)
	mountOrders(authed, d)

	return r
}

/* ---------- 注册/登录/会话 ---------- */

func mountAuth(api *gin.RouterGroup, d APIDeps) {
	ezPublic := New(api)

	type registerIn struct {
		Email    string `json:"email"    binding:"required"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name"     binding:"required"`
		Phone    string `json:"phone"`
		Address  string `json:"address"`
	}
	RegisterAction[registerIn, gin.H](ezPublic, d.DB, Action[registerIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: BindJSON,
		Handler: func(c *gin.Context, _ *gorm.DB, in *registerIn) (gin.H, error) {
			u, err := d.Users.Register(c.Request.Context(), service.RegisterInput{
				Email: in.Email, Password: in.Password, Name: in.Name,
				Phone: in.Phone, Address: in.Address,
			})
			if err != nil {
				return nil, err
			}
			return gin.H{"id": u.ID, "email": u.Email, "name": u.Name, "role": u.Role}, nil
		},
	})

	type loginIn struct {
		Email    string `json:"email"    binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	RegisterAction[loginIn, gin.H](ezPublic, d.DB, Action[loginIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: BindJSON,
		Handler: func(c *gin.Context, _ *gorm.DB, in *loginIn) (gin.H, error) {
			tok, u, err := d.Users.Login(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return nil, err
			}
			return gin.H{
				"idToken": tok,
				"user":    gin.H{"id": u.ID, "email": u.Email, "name": u.Name, "role": u.Role},
			}, nil
		},
	})

	// POST /auth {idToken} → 换发会话 Cookie
	api.POST("/auth", func(c *gin.Context) {
		var in struct {
			IDToken string `json:"idToken" binding:"required"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, "idToken is required"))
			return
		}
		cookie, maxAge, err := d.Sessions.CreateSession(c.Request.Context(), in.IDToken)
		if err != nil {
			ae := FromServiceError(err)
			if ae.Code == resp.CodeUnauthorized {
				c.JSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "invalid token"))
				return
			}
			c.JSON(http.StatusInternalServerError, resp.Error(ae.Code, ae.Msg))
			return
		}
		setSessionCookie(c, cookie, int(maxAge.Seconds()), d.Cfg.IsProd())
		c.JSON(http.StatusOK, resp.OK(gin.H{"isLogged": true}))
	})

	// GET /auth → 探活当前会话
	api.GET("/auth", func(c *gin.Context) {
		ck, _ := c.Cookie(service.SessionCookieName)
		u, err := d.Sessions.ResolveCurrentUser(c.Request.Context(), ck)
		if err != nil {
			c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "internal error"))
			return
		}
		if u == nil {
			c.JSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "unauthorized"))
			return
		}
		c.JSON(http.StatusOK, resp.OK(gin.H{"isLogged": true}))
	})

	// DELETE /auth → 登出（删 Cookie）
	api.DELETE("/auth", func(c *gin.Context) {
		setSessionCookie(c, "", -1, d.Cfg.IsProd())
		c.JSON(http.StatusOK, resp.OK(gin.H{"isLogged": false}))
	})
}

func setSessionCookie(c *gin.Context, value string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(service.SessionCookieName, value, maxAge, "/", "", secure, true)
}

/* ---------- 公开浏览 ---------- */

func mountPublicListings(api *gin.RouterGroup, d APIDeps) {
	ez := New(api)

	type browseQ struct {
		Category string `form:"category"`
		Q        string `form:"q"`
		Offset   int    `form:"offset,default=0"`
		Limit    int    `form:"limit,default=20"`
	}
	type pageOut struct {
		Total int64            `json:"total"`
		Items []domain.Listing `json:"items"`
	}
	RegisterAction[browseQ, pageOut](ez, d.DB, Action[browseQ, pageOut]{
		Method: http.MethodGet,
		Path:   "/listings",
		Binder: BindQuery,
		Handler: func(c *gin.Context, _ *gorm.DB, in *browseQ) (pageOut, error) {
			items, total, err := d.Listings.Browse(c.Request.Context(), domain.ListingFilter{
				Category: in.Category, Q: in.Q, Offset: in.Offset, Limit: in.Limit,
			})
			if err != nil {
				return pageOut{}, err
			}
			return pageOut{Total: total, Items: items}, nil
		},
	})

	RegisterAction[struct{}, *domain.Listing](ez, d.DB, Action[struct{}, *domain.Listing]{
		Method: http.MethodGet,
		Path:   "/listings/:id",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (*domain.Listing, error) {
			l, err := d.Listings.GetListing(c.Request.Context(), c.Param("id"))
			if err != nil {
				return nil, err
			}
			if l == nil {
				return nil, NotFound("listing not found")
			}
			return l, nil
		},
	})

	RegisterAction[struct{}, []domain.Review](ez, d.DB, Action[struct{}, []domain.Review]{
		Method: http.MethodGet,
		Path:   "/listings/:id/reviews",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) ([]domain.Review, error) {
			return d.Reviews.ListReviews(c.Request.Context(), c.Param("id"))
		},
	})
}

/* ---------- 个人资料 ---------- */

func mountMe(authed *gin.RouterGroup, d APIDeps) {
	ez := New(authed)

	RegisterAction[struct{}, *domain.User](ez, d.DB, Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (*domain.User, error) {
			return mdw.CurrentUser(c), nil
		},
	})

	type profileIn struct {
		Name      string `json:"name"`
		Phone     string `json:"phone"`
		Address   string `json:"address"`
		AvatarURL string `json:"avatarUrl"`
	}
	RegisterAction[profileIn, *domain.User](ez, d.DB, Action[profileIn, *domain.User]{
		Method: http.MethodPut,
		Path:   "/me",
		Binder: BindJSON,
		Handler: func(c *gin.Context, _ *gorm.DB, in *profileIn) (*domain.User, error) {
			return d.Users.UpdateProfile(c.Request.Context(), mdw.CurrentUser(c), service.ProfileUpdate{
				Name: in.Name, Phone: in.Phone, Address: in.Address, AvatarURL: in.AvatarURL,
			})
		},
	})
}

/* ---------- 上架与评价 ---------- */

func mountIntake(authed *gin.RouterGroup, d APIDeps) {
	// multipart 表单，字段名沿用前端约定
	authed.POST("/listings", func(c *gin.Context) {
		price, _ := strconv.ParseFloat(strings.TrimSpace(c.PostForm("price")), 64)
		in := service.ListingInput{
			Name:        c.PostForm("productName"),
			Description: c.PostForm("productDescription"),
			Price:       price,
			Category:    c.PostForm("category"),
			Subcategory: c.PostForm("subcategory"),
			Condition:   c.PostForm("condition"),
		}

		var img service.Image
		if fh, err := c.FormFile("productImage"); err == nil && fh != nil {
			f, err := fh.Open()
			if err != nil {
				WriteErr(c, Internal("read image failed", err))
				return
			}
			defer f.Close()
			img = service.Image{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
				Reader:      f,
			}
		}

		id, err := d.Listings.CreateListing(c.Request.Context(), mdw.CurrentUser(c), in, img)
		if err != nil {
			WriteErr(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(gin.H{"productId": id}))
	})

	ez := New(authed)

	type myQ struct {
		Offset int `form:"offset,default=0"`
		Limit  int `form:"limit,default=20"`
	}
	type pageOut struct {
		Total int64            `json:"total"`
		Items []domain.Listing `json:"items"`
	}
	RegisterAction[myQ, pageOut](ez, d.DB, Action[myQ, pageOut]{
		Method: http.MethodGet,
		Path:   "/my/listings",
		Binder: BindQuery,
		Handler: func(c *gin.Context, _ *gorm.DB, in *myQ) (pageOut, error) {
			items, total, err := d.Listings.MyListings(c.Request.Context(), mdw.CurrentUser(c), in.Offset, in.Limit)
			if err != nil {
				return pageOut{}, err
			}
			return pageOut{Total: total, Items: items}, nil
		},
	})

	type reviewIn struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	RegisterAction[reviewIn, gin.H](ez, d.DB, Action[reviewIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/listings/:id/reviews",
		Binder: BindJSON,
		Handler: func(c *gin.Context, _ *gorm.DB, in *reviewIn) (gin.H, error) {
			err := d.Reviews.SubmitReview(c.Request.Context(), mdw.CurrentUser(c), c.Param("id"), in.Rating, in.Comment)
			if err != nil {
				return nil, err
			}
			return gin.H{"submitted": true}, nil
		},
	})
}

/* ---------- 购物车与下单 ---------- */

func mountCart(authed *gin.RouterGroup, d APIDeps) {
	httpez.Crud(httpez.CrudConfig[domain.CartItem]{
		DB:    d.DB,
		Group: authed,
		Path:  "/cart",
		New:   func() *domain.CartItem { return &domain.CartItem{} },
		Hooks: httpez.CrudHooks[domain.CartItem]{
			BeforeCreate: func(c *gin.Context, m *domain.CartItem) error {
				if m.Quantity <= 0 {
					m.Quantity = 1
				}
				return nil
			},
		},
	})
}

func mountOrders(authed *gin.RouterGroup, d APIDeps) {
	ez := New(authed)

	RegisterAction[struct{}, *domain.Order](ez, d.DB, Action[struct{}, *domain.Order]{
		Method: http.MethodPost,
		Path:   "/checkout",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (*domain.Order, error) {
			return d.Orders.Checkout(c.Request.Context(), mdw.CurrentUser(c))
		},
	})

	RegisterAction[struct{}, []domain.Order](ez, d.DB, Action[struct{}, []domain.Order]{
		Method: http.MethodGet,
		Path:   "/my/orders",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) ([]domain.Order, error) {
			return d.Orders.MyOrders(c.Request.Context(), mdw.CurrentUser(c))
		},
	})
}
