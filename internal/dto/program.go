package dto

// ── 节目单模块 DTO ──

// CreateProgramRequest 创建节目单请求
type CreateProgramRequest struct {
	Title     string              `json:"title"      binding:"required,min=1,max=200"`
	WeekStart string              `json:"week_start" binding:"required,datetime=2006-01-02"`
	MeetingAt string              `json:"meeting_at" binding:"required"` // RFC3339
	Parts     []CreatePartRequest `json:"parts"      binding:"required,min=1,dive"`
}

// CreatePartRequest 节目请求项（顺序即节目顺序）
type CreatePartRequest struct {
	Title           string `json:"title"            binding:"required,min=1,max=200"`
	RawType         string `json:"raw_type"         binding:"omitempty,max=40"`
	DurationMinutes int    `json:"duration_minutes" binding:"omitempty,min=0,max=120"`
}

// ProgramListRequest 节目单列表查询参数
type ProgramListRequest struct {
	PaginationRequest
}

// ── 响应 ──

// ProgramResponse 节目单响应
type ProgramResponse struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	WeekStart string         `json:"week_start"`
	MeetingAt string         `json:"meeting_at"`
	Status    string         `json:"status"`
	Parts     []PartResponse `json:"parts,omitempty"`
	Version   int            `json:"version"`
	CreatedAt string         `json:"created_at"`
}

// PartResponse 节目响应（含分类结果）
type PartResponse struct {
	ID              string `json:"id"`
	Position        int    `json:"position"`
	Title           string `json:"title"`
	RawType         string `json:"raw_type,omitempty"`
	PartType        string `json:"part_type"`
	DurationMinutes int    `json:"duration_minutes"`
}
