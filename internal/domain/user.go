package domain

import (
	"context"
	"time"
)

// Role 封闭枚举，避免散落的字符串比较
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleUser }

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:191" json:"email"`
	Name         string    `gorm:"size:64" json:"name"`
	PasswordHash string    `gorm:"size:191" json:"-"`
	Role         Role      `gorm:"size:16" json:"role"` // "user"/"admin"
	Phone        string    `gorm:"size:32" json:"phone"`
	Address      string    `gorm:"size:255" json:"address"`
	AvatarURL    string    `gorm:"size:255" json:"avatarUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, q string, offset, limit int) ([]User, int64, error)
	Update(ctx context.Context, u *User) error
	// UpdateRole 只合并 role 字段，不碰其它列
	UpdateRole(ctx context.Context, id string, role Role) error
	CountAll(ctx context.Context) (int64, error)
	// InTx 在一个事务里执行 fn（注册首管判定需要串行化）
	InTx(ctx context.Context, fn func(txRepo UserRepository) error) error
}
