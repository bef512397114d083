package engine

import "time"

// ── 基础枚举 ──

// Gender 性别
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	// GenderAny 仅用于规则：不限性别
	GenderAny Gender = "any"
)

// Qualification 参与者技能（资格）键
type Qualification string

const (
	QualChairman        Qualification = "chairman"
	QualPrayer          Qualification = "prayer"
	QualTreasures       Qualification = "treasures"
	QualGems            Qualification = "gems"
	QualReading         Qualification = "reading"
	QualStarting        Qualification = "starting"
	QualFollowing       Qualification = "following"
	QualMakingDisciples Qualification = "making_disciples"
	QualExplaining      Qualification = "explaining"
	QualTalk            Qualification = "talk"
)

// AllQualifications 固定的资格键集合（顺序稳定）
var AllQualifications = []Qualification{
	QualChairman, QualPrayer, QualTreasures, QualGems, QualReading,
	QualStarting, QualFollowing, QualMakingDisciples, QualExplaining, QualTalk,
}

// ministryQualifications 传道技能，任意一项为 true 即视为"具备传道技能"
var ministryQualifications = []Qualification{
	QualStarting, QualFollowing, QualMakingDisciples, QualExplaining,
}

// Qualifications 资格映射
type Qualifications map[Qualification]bool

// Has 是否具备指定资格
func (q Qualifications) Has(key Qualification) bool {
	return q[key]
}

// HasAnyMinistrySkill 是否具备任意一项传道技能
func (q Qualifications) HasAnyMinistrySkill() bool {
	for _, k := range ministryQualifications {
		if q[k] {
			return true
		}
	}
	return false
}

// Status 指派结果状态
type Status string

const (
	StatusOK      Status = "OK"
	StatusPending Status = "PENDING"
)

// State 单个节目的处理状态
type State string

const (
	StatePending    State = "pending"
	StateAssigned   State = "assigned"
	StateDegraded   State = "degraded"
	StateUnassigned State = "unassigned"
)

// IsTerminal 是否终态
func (s State) IsTerminal() bool {
	return s == StateAssigned || s == StateDegraded || s == StateUnassigned
}

// ── 输入 ──

// Participant 会众成员（只读输入）
type Participant struct {
	ID                  string         `json:"id"                              yaml:"id"`
	Name                string         `json:"name,omitempty"                  yaml:"name,omitempty"`
	Gender              Gender         `json:"gender"                          yaml:"gender"`
	Role                string         `json:"role"                            yaml:"role"`
	Active              bool           `json:"active"                          yaml:"active"`
	Minor               bool           `json:"minor,omitempty"                 yaml:"minor,omitempty"`
	FamilyGroupID       string         `json:"family_group_id,omitempty"       yaml:"family_group_id,omitempty"`
	PrimaryGuardianID   string         `json:"primary_guardian_id,omitempty"   yaml:"primary_guardian_id,omitempty"`
	SecondaryGuardianID string         `json:"secondary_guardian_id,omitempty" yaml:"secondary_guardian_id,omitempty"`
	FatherID            string         `json:"father_id,omitempty"             yaml:"father_id,omitempty"`
	MotherID            string         `json:"mother_id,omitempty"             yaml:"mother_id,omitempty"`
	Qualifications      Qualifications `json:"qualifications,omitempty"        yaml:"qualifications,omitempty"`
}

// parentIDs 返回所有非空的父母/监护人 ID
func (p *Participant) parentIDs() []string {
	ids := make([]string, 0, 4)
	for _, id := range []string{p.PrimaryGuardianID, p.SecondaryGuardianID, p.FatherID, p.MotherID} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Part 聚会节目中的一个环节
type Part struct {
	ID       string `json:"id"                 yaml:"id"`
	Title    string `json:"title"              yaml:"title"`
	RawType  string `json:"raw_type,omitempty" yaml:"raw_type,omitempty"`
	Position int    `json:"position,omitempty" yaml:"position,omitempty"`
}

// HistoryEntry 历史指派记录（只追加）
type HistoryEntry struct {
	PrincipalID string    `json:"principal_id"           yaml:"principal_id"`
	AssistantID string    `json:"assistant_id,omitempty" yaml:"assistant_id,omitempty"`
	PartType    string    `json:"part_type"              yaml:"part_type"`
	AssignedAt  time.Time `json:"assigned_at"            yaml:"assigned_at"`
}

// involves 该记录是否包含指定参与者（主讲或助手）
func (h *HistoryEntry) involves(id string) bool {
	return h.PrincipalID == id || (h.AssistantID != "" && h.AssistantID == id)
}

// ── 输出 ──

// Decision 单个节目的指派结果
type Decision struct {
	PartID      string   `json:"part_id"`
	PartType    PartType `json:"part_type"`
	PrincipalID string   `json:"principal_id,omitempty"`
	AssistantID string   `json:"assistant_id,omitempty"`
	Status      Status   `json:"status"`
	State       State    `json:"state"`
	Strategy    Strategy `json:"strategy,omitempty"` // 生效的降级策略
	Reason      string   `json:"reason,omitempty"`   // 审计说明；干净指派时为空
	Attempts    int      `json:"attempts,omitempty"` // 已尝试的降级策略数
}

// HasPrincipal 是否已选出主讲
func (d *Decision) HasPrincipal() bool {
	return d.PrincipalID != ""
}
