package model

import "time"

// AssignmentHistory 指派历史 对应表 assignment_history（只追加）
type AssignmentHistory struct {
	HistoryID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"history_id"`
	PrincipalID   string    `gorm:"type:uuid;not null"                             json:"principal_id"`
	AssistantID   *string   `gorm:"type:uuid"                                      json:"assistant_id,omitempty"`
	PartType      string    `gorm:"type:varchar(40);not null"                      json:"part_type"`
	ProgramID     *string   `gorm:"type:uuid"                                      json:"program_id,omitempty"`
	DesignationID *string   `gorm:"type:uuid"                                      json:"designation_id,omitempty"`
	AssignedAt    time.Time `gorm:"not null"                                       json:"assigned_at"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (AssignmentHistory) TableName() string { return "assignment_history" }

// Designation 节目指派结果 对应表 designations
type Designation struct {
	DesignationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"designation_id"`
	ProgramID     string  `gorm:"type:uuid;not null"                             json:"program_id"`
	PartID        string  `gorm:"type:uuid;not null"                             json:"part_id"`
	PartType      string  `gorm:"type:varchar(40);not null"                      json:"part_type"`
	PrincipalID   *string `gorm:"type:uuid"                                      json:"principal_id,omitempty"`
	AssistantID   *string `gorm:"type:uuid"                                      json:"assistant_id,omitempty"`
	Status        string  `gorm:"type:varchar(10);not null"                      json:"status"` // OK | PENDING
	State         string  `gorm:"type:varchar(20);not null"                      json:"state"`  // assigned | degraded | unassigned
	Strategy      string  `gorm:"type:varchar(40)"                               json:"strategy,omitempty"`
	Reason        string  `gorm:"type:text"                                      json:"reason,omitempty"`
	Attempts      int     `gorm:"not null;default:0"                             json:"attempts"`
	Manual        bool    `gorm:"not null;default:false"                         json:"manual"`
	VersionedModel

	// 关联
	Part      *ProgramPart `gorm:"foreignKey:PartID;references:PartID"               json:"part,omitempty"`
	Principal *Participant `gorm:"foreignKey:PrincipalID;references:ParticipantID"   json:"principal,omitempty"`
	Assistant *Participant `gorm:"foreignKey:AssistantID;references:ParticipantID"   json:"assistant,omitempty"`
}

func (Designation) TableName() string { return "designations" }

// DesignationChangeLog 指派变更记录 对应表 designation_change_logs（纯审计日志）
type DesignationChangeLog struct {
	ChangeLogID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"change_log_id"`
	DesignationID        string    `gorm:"type:uuid;not null"                             json:"designation_id"`
	ProgramID            string    `gorm:"type:uuid;not null"                             json:"program_id"`
	OriginalPrincipalID  *string   `gorm:"type:uuid"                                      json:"original_principal_id,omitempty"`
	NewPrincipalID       *string   `gorm:"type:uuid"                                      json:"new_principal_id,omitempty"`
	OriginalAssistantID  *string   `gorm:"type:uuid"                                      json:"original_assistant_id,omitempty"`
	NewAssistantID       *string   `gorm:"type:uuid"                                      json:"new_assistant_id,omitempty"`
	ChangeType           string    `gorm:"type:varchar(20);not null"                      json:"change_type"` // manual_adjust
	Reason               string    `gorm:"type:varchar(500)"                              json:"reason,omitempty"`
	CreatedAt            time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (DesignationChangeLog) TableName() string { return "designation_change_logs" }
