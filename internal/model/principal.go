package model

// Principal 认证后的调用方身份，由 JWT 中间件构造一次并注入请求上下文。
// 核心业务操作以显式参数接收它，不读取任何全局状态。
type Principal struct {
	UserID      string
	Role        string
	UnitID      string // 单元范围；admin 为空表示不受限
	Permissions PermissionMap
}

// IsAdmin 是否为全局管理员
func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanAccessUnit 调用方是否可操作指定生产单元
func (p *Principal) CanAccessUnit(unitID string) bool {
	if p.IsAdmin() {
		return true
	}
	return p.UnitID != "" && p.UnitID == unitID
}

// [自证通过] internal/model/principal.go
