package service

import (
	"context"
	"strings"

	"github.com/akramasif506/cloudstore3-sub001/internal/core/auth"
	"github.com/akramasif506/cloudstore3-sub001/internal/domain"
	"github.com/akramasif506/cloudstore3-sub001/pkg/utils"
)

type UserService struct {
	users domain.UserRepository
	jwter *auth.JWTer
}

func NewUserService(users domain.UserRepository, j *auth.JWTer) *UserService {
	return &UserService{users: users, jwter: j}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Address  string
}

func (in *RegisterInput) validate() *ValidationError {
	fields := map[string]string{}
	if !strings.Contains(in.Email, "@") {
		fields["email"] = "valid email is required"
	}
	if len(in.Password) < 8 {
		fields["password"] = "password must be at least 8 characters"
	}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "name is required"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Register 注册。首个注册者自动提为 admin，之后一律 user。
// 首管判定放在事务里，靠数据库把 count→create 串行化。
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if verr := in.validate(); verr != nil {
		return nil, verr
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var created *domain.User
	err := s.users.InTx(ctx, func(tx domain.UserRepository) error {
		if existing, err := tx.FindByEmail(ctx, email); err != nil {
			return internalf(err, "lookup email failed")
		} else if existing != nil {
			return NewValidationError("email", "email already registered")
		}
		n, err := tx.CountAll(ctx)
		if err != nil {
			return internalf(err, "count users failed")
		}
		role := domain.RoleUser
		if n == 0 {
			role = domain.RoleAdmin
		}
		u := &domain.User{
			ID:           utils.NewID(),
			Email:        email,
			Name:         strings.TrimSpace(in.Name),
			PasswordHash: utils.HashPassword(in.Password),
			Role:         role,
			Phone:        in.Phone,
			Address:      in.Address,
		}
		if err := tx.Create(ctx, u); err != nil {
			return internalf(err, "create user failed")
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Login 校验口令并签发身份令牌。失败只给笼统拒绝，不区分原因。
func (s *UserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, internalf(err, "lookup user failed")
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return "", nil, &AuthorizationError{Msg: "invalid credentials"}
	}
	tok, err := s.jwter.Issue(u.ID, string(u.Role))
	if err != nil {
		return "", nil, internalf(err, "issue token failed")
	}
	return tok, u, nil
}

type ProfileUpdate struct {
	Name      string
	Phone     string
	Address   string
	AvatarURL string
}

// UpdateProfile 本人自助改联系信息，不碰 role
func (s *UserService) UpdateProfile(ctx context.Context, current *domain.User, in ProfileUpdate) (*domain.User, error) {
	if current == nil {
		return nil, &AuthorizationError{}
	}
	if strings.TrimSpace(in.Name) != "" {
		current.Name = strings.TrimSpace(in.Name)
	}
	if in.Phone != "" {
		current.Phone = in.Phone
	}
	if in.Address != "" {
		current.Address = in.Address
	}
	if in.AvatarURL != "" {
		current.AvatarURL = in.AvatarURL
	}
	if err := s.users.Update(ctx, current); err != nil {
		return nil, internalf(err, "update profile failed")
	}
	return current, nil
}

// UpdateUserRole 仅 admin 可调；只合并 role 字段。
// 没有自降级/末位 admin 保护（沿用原行为，待产品确认）。
func (s *UserService) UpdateUserRole(ctx context.Context, acting *domain.User, targetID string, role domain.Role) error {
	if acting == nil || acting.Role != domain.RoleAdmin {
		return &AuthorizationError{}
	}
	if !role.Valid() {
		return NewValidationError("role", "role must be admin or user")
	}
	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return internalf(err, "lookup target failed")
	}
	if target == nil {
		return NewValidationError("id", "user not found")
	}
	if err := s.users.UpdateRole(ctx, targetID, role); err != nil {
		return internalf(err, "update role failed")
	}
	return nil
}

func (s *UserService) List(ctx context.Context, acting *domain.User, q string, offset, limit int) ([]domain.User, int64, error) {
	if acting == nil || acting.Role != domain.RoleAdmin {
		return nil, 0, &AuthorizationError{}
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	users, total, err := s.users.List(ctx, q, offset, limit)
	if err != nil {
		return nil, 0, internalf(err, "list users failed")
	}
	return users, total, nil
}
