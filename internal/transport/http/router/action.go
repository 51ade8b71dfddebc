package router

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/akramasif506/cloudstore3-sub001/internal/service"
	resp "github.com/akramasif506/cloudstore3-sub001/internal/transport/http/response"
)

/* ================== 轻封装 ================== */

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param / c.PostForm 取
)

// AErr 统一错误对象（配合 resp.Error(int, msg)）
type AErr struct {
	Code   int
	Msg    string
	Err    error
	Fields map[string]string // 校验错误按字段给提示
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// FromServiceError 服务层错误分级 → 响应码。
// 处理器边界的唯一转换点，原始错误不外泄。
func FromServiceError(err error) *AErr {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return &AErr{Code: resp.CodeBadRequest, Msg: "validation failed", Fields: verr.Fields}
	}
	var aerr *service.AuthorizationError
	if errors.As(err, &aerr) {
		return &AErr{Code: resp.CodeUnauthorized, Msg: aerr.Error()}
	}
	var cerr *service.ConfigurationError
	if errors.As(err, &cerr) {
		return &AErr{Code: resp.CodeServerError, Msg: cerr.Error()}
	}
	var ierr *service.InternalError
	if errors.As(err, &ierr) {
		return &AErr{Code: resp.CodeServerError, Msg: ierr.Msg, Err: ierr.Unwrap()}
	}
	var ae *AErr
	if errors.As(err, &ae) {
		return ae
	}
	return &AErr{Code: resp.CodeServerError, Msg: err.Error()}
}

// WriteErr 统一写出错误响应（HTTP 200 + 业务码，校验错误带 errors 字段）
func WriteErr(c *gin.Context, err error) {
	ae := FromServiceError(err)
	if len(ae.Fields) > 0 {
		c.JSON(http.StatusOK, resp.ErrorData(ae.Code, ae.Msg, gin.H{"errors": ae.Fields}))
		return
	}
	c.JSON(http.StatusOK, resp.Error(ae.Code, ae.Msg))
}

/* ================== Action（非 CRUD 一行注册） ================== */

// Action 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // "GET" | "POST" | "PUT" | "DELETE"
	Path    string // 例："/auth/login"、"/listings/:id/approve"
	Binder  Binder // 绑定方式
	UseTx   bool   // 是否包事务（gorm.Transaction）
	Handler func(c *gin.Context, db *gorm.DB, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口（传入 *gorm.DB）
func RegisterAction[I any, O any](e EZ, db *gorm.DB, a Action[I, O]) {
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default: // BindNone: 不绑定
		}
		if bindErr != nil {
			c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, bindErr.Error()))
			return
		}

		run := func(tx *gorm.DB) (O, error) { return a.Handler(c, tx, &in) }
		var out O
		var err error
		if a.UseTx {
			err = db.WithContext(c).Transaction(func(tx *gorm.DB) error {
				o, e := run(tx)
				out = o
				return e
			})
		} else {
			out, err = run(db.WithContext(c))
		}

		if err != nil {
			WriteErr(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}
