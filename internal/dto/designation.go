package dto

// ── 指派模块 DTO ──

// GenerateDesignationsRequest 生成指派请求
type GenerateDesignationsRequest struct {
	// AsOf 计算冷却期的参考时间（RFC3339）；为空时使用节目单聚会时间
	AsOf string `json:"as_of"`
}

// UpdateDesignationRequest 手动调整指派请求
type UpdateDesignationRequest struct {
	PrincipalID *string `json:"principal_id" binding:"omitempty,uuid"`
	AssistantID *string `json:"assistant_id" binding:"omitempty,uuid"`
	// ClearAssistant 为 true 时移除助手
	ClearAssistant bool   `json:"clear_assistant"`
	Reason         string `json:"reason"  binding:"required,min=2,max=500"`
	Version        int    `json:"version" binding:"required,min=1"`
}

// CandidateListRequest 候选人查询参数
type CandidateListRequest struct {
	AsOf string `form:"as_of"`
}

// ChangeLogListRequest 变更日志查询参数
type ChangeLogListRequest struct {
	ProgramID string `form:"program_id" binding:"omitempty,uuid"`
	PaginationRequest
}

// ── 响应 ──

// GenerateDesignationsResponse 生成结果
type GenerateDesignationsResponse struct {
	ProgramID    string                `json:"program_id"`
	Total        int                   `json:"total"`
	Assigned     int                   `json:"assigned"`
	Degraded     int                   `json:"degraded"`
	Unassigned   int                   `json:"unassigned"`
	Warnings     []string              `json:"warnings"`
	Designations []DesignationResponse `json:"designations"`
}

// DesignationResponse 指派结果响应
type DesignationResponse struct {
	ID        string            `json:"id"`
	ProgramID string            `json:"program_id"`
	PartID    string            `json:"part_id"`
	PartTitle string            `json:"part_title,omitempty"`
	Position  int               `json:"position"`
	PartType  string            `json:"part_type"`
	Principal *ParticipantBrief `json:"principal,omitempty"`
	Assistant *ParticipantBrief `json:"assistant,omitempty"`
	Status    string            `json:"status"`
	State     string            `json:"state"`
	Strategy  string            `json:"strategy,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Attempts  int               `json:"attempts"`
	Manual    bool              `json:"manual"`
	Version   int               `json:"version"`
}

// CandidateResponse 候选人及排序分数
type CandidateResponse struct {
	Participant ParticipantBrief `json:"participant"`
	Score       float64          `json:"score"`
	InCooldown  bool             `json:"in_cooldown"`
	LastServed  *string          `json:"last_served,omitempty"`
}

// ChangeLogResponse 变更日志响应
type ChangeLogResponse struct {
	ID                  string  `json:"id"`
	DesignationID       string  `json:"designation_id"`
	ProgramID           string  `json:"program_id"`
	OriginalPrincipalID *string `json:"original_principal_id,omitempty"`
	NewPrincipalID      *string `json:"new_principal_id,omitempty"`
	OriginalAssistantID *string `json:"original_assistant_id,omitempty"`
	NewAssistantID      *string `json:"new_assistant_id,omitempty"`
	ChangeType          string  `json:"change_type"`
	Reason              string  `json:"reason,omitempty"`
	CreatedAt           string  `json:"created_at"`
}

// RuleResponse 规则目录条目
type RuleResponse struct {
	PartType              string   `json:"part_type"`
	Gender                string   `json:"gender"`
	AllowedRoles          []string `json:"allowed_roles"`
	RequiredQualification string   `json:"required_qualification,omitempty"`
	RequiresAssistant     bool     `json:"requires_assistant"`
	AssistantSameGender   bool     `json:"assistant_same_gender"`
	AllowFamilyAssistant  bool     `json:"allow_family_assistant"`
	CooldownDays          int      `json:"cooldown_days"`
	AssistantCooldownDays int      `json:"assistant_cooldown_days,omitempty"`
}
