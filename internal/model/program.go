package model

import "time"

// 节目单状态
const (
	ProgramStatusDraft      = "draft"
	ProgramStatusDesignated = "designated"
)

// Program 周聚会节目单 对应表 programs
type Program struct {
	ProgramID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"program_id"`
	Title     string    `gorm:"type:varchar(200);not null"                     json:"title"`
	WeekStart time.Time `gorm:"type:date;not null"                             json:"week_start"`
	MeetingAt time.Time `gorm:"not null"                                       json:"meeting_at"`
	Status    string    `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"` // draft | designated
	VersionedModel

	// 关联
	Parts []ProgramPart `gorm:"foreignKey:ProgramID" json:"parts,omitempty"`
}

func (Program) TableName() string { return "programs" }

// ProgramPart 节目单中的单个节目 对应表 program_parts
type ProgramPart struct {
	PartID          string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"part_id"`
	ProgramID       string `gorm:"type:uuid;not null"                             json:"program_id"`
	Position        int    `gorm:"not null"                                       json:"position"`
	Title           string `gorm:"type:varchar(200);not null"                     json:"title"`
	RawType         string `gorm:"type:varchar(40)"                               json:"raw_type,omitempty"`
	DurationMinutes int    `gorm:"not null;default:0"                             json:"duration_minutes"`
	BaseModel
}

func (ProgramPart) TableName() string { return "program_parts" }
