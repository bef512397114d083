package dto

// ── 成员模块 DTO ──

// ParticipantListRequest 成员列表查询参数
type ParticipantListRequest struct {
	PaginationRequest
	ActiveOnly bool   `form:"active_only"`
	Gender     string `form:"gender"  binding:"omitempty,oneof=male female"`
	Keyword    string `form:"keyword" binding:"omitempty,max=50"`
}

// CreateParticipantRequest 新增成员请求
type CreateParticipantRequest struct {
	Name                string          `json:"name"                  binding:"required,min=1,max=100"`
	Gender              string          `json:"gender"                binding:"required,oneof=male female"`
	Role                string          `json:"role"                  binding:"required,max=40"`
	Active              *bool           `json:"active"`
	Minor               bool            `json:"minor"`
	FamilyGroupID       *string         `json:"family_group_id"       binding:"omitempty,max=64"`
	PrimaryGuardianID   *string         `json:"primary_guardian_id"   binding:"omitempty,uuid"`
	SecondaryGuardianID *string         `json:"secondary_guardian_id" binding:"omitempty,uuid"`
	FatherID            *string         `json:"father_id"             binding:"omitempty,uuid"`
	MotherID            *string         `json:"mother_id"             binding:"omitempty,uuid"`
	Qualifications      map[string]bool `json:"qualifications"`
}

// UpdateParticipantRequest 更新成员请求（字段为空表示不修改）
type UpdateParticipantRequest struct {
	Name                *string         `json:"name"                  binding:"omitempty,min=1,max=100"`
	Gender              *string         `json:"gender"                binding:"omitempty,oneof=male female"`
	Role                *string         `json:"role"                  binding:"omitempty,max=40"`
	Active              *bool           `json:"active"`
	Minor               *bool           `json:"minor"`
	FamilyGroupID       *string         `json:"family_group_id"       binding:"omitempty,max=64"`
	PrimaryGuardianID   *string         `json:"primary_guardian_id"   binding:"omitempty,uuid"`
	SecondaryGuardianID *string         `json:"secondary_guardian_id" binding:"omitempty,uuid"`
	FatherID            *string         `json:"father_id"             binding:"omitempty,uuid"`
	MotherID            *string         `json:"mother_id"             binding:"omitempty,uuid"`
	Qualifications      map[string]bool `json:"qualifications"`
	Version             int             `json:"version"               binding:"required,min=1"`
}

// ── 响应 ──

// ParticipantResponse 成员信息响应
type ParticipantResponse struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Gender              string   `json:"gender"`
	Role                string   `json:"role"`
	Active              bool     `json:"active"`
	Minor               bool     `json:"minor"`
	FamilyGroupID       *string  `json:"family_group_id,omitempty"`
	PrimaryGuardianID   *string  `json:"primary_guardian_id,omitempty"`
	SecondaryGuardianID *string  `json:"secondary_guardian_id,omitempty"`
	FatherID            *string  `json:"father_id,omitempty"`
	MotherID            *string  `json:"mother_id,omitempty"`
	Qualifications      []string `json:"qualifications"`
	Version             int      `json:"version"`
	CreatedAt           string   `json:"created_at"`
	UpdatedAt           string   `json:"updated_at"`
}

// ParticipantBrief 成员简要信息
type ParticipantBrief struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Gender string `json:"gender"`
	Role   string `json:"role"`
}
