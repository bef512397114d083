package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
)

// ── PostgreSQL JSONB 自定义类型 ──

// QualificationSet 对应 participants.qualifications JSONB 列 {"chairman":true,...}，
// 实现 GORM Scanner/Valuer 接口。
type QualificationSet map[string]bool

// Scan 将 JSONB 文本解析为资格映射
func (q *QualificationSet) Scan(src interface{}) error {
	if src == nil {
		*q = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("QualificationSet.Scan: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*q = QualificationSet{}
		return nil
	}
	set := QualificationSet{}
	if err := json.Unmarshal(raw, &set); err != nil {
		return fmt.Errorf("QualificationSet.Scan: %w", err)
	}
	*q = set
	return nil
}

// Value 序列化为 JSONB 文本；nil 写入空对象
func (q QualificationSet) Value() (driver.Value, error) {
	if q == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]bool(q))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Keys 返回值为 true 的资格，按名称排序
func (q QualificationSet) Keys() []string {
	keys := make([]string, 0, len(q))
	for k, ok := range q {
		if ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// SoftDeleteModel 支持软删除的审计字段
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// VersionedModel 支持乐观锁的软删除模型
type VersionedModel struct {
	SoftDeleteModel
	Version int `gorm:"not null;default:1" json:"version"`
}
